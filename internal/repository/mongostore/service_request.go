package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

type ServiceRequestRepo struct{ C *mongo.Collection }

func (r *ServiceRequestRepo) Create(ctx context.Context, sr *model.ServiceRequest) error {
	now := time.Now().UTC()
	sr.ID = primitive.NewObjectID()
	sr.CreatedAt, sr.UpdatedAt = now, now
	_, err := r.C.InsertOne(ctx, sr)
	return err
}

func (r *ServiceRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.ServiceRequest, error) {
	var sr model.ServiceRequest
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&sr)
	return sr, notFound(err)
}

func (r *ServiceRequestRepo) List(ctx context.Context) ([]model.ServiceRequest, error) {
	cur, err := r.C.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []model.ServiceRequest{}
	err = cur.All(ctx, &out)
	return out, err
}

// Patch is a single FindOneAndUpdate with $set on the named paths, so
// concurrent patches touching different fields do not overwrite each other.
func (r *ServiceRequestRepo) Patch(ctx context.Context, id primitive.ObjectID, p repository.ServiceRequestPatch) (model.ServiceRequest, error) {
	filter := bson.M{"_id": id}
	if p.ExpectServiceStatus != "" {
		filter["service_status"] = p.ExpectServiceStatus
	}
	var sr model.ServiceRequest
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.C.FindOneAndUpdate(ctx, filter, bson.M{"$set": patchSet(p, time.Now().UTC())}, opts).Decode(&sr)
	return sr, notFound(err)
}

func patchSet(p repository.ServiceRequestPatch, now time.Time) bson.M {
	set := bson.M{"updated_by": p.UpdatedBy, "updated_at": now}
	if p.ServiceStatus != "" {
		set["service_status"] = p.ServiceStatus
	}
	if p.Status != "" {
		set["status"] = p.Status
	}
	if p.ShopOwnerID != "" {
		set["shop_owner_id"] = p.ShopOwnerID
	}
	if p.AdvanceAmount != nil {
		set["paymentDetails.advance_amount"] = *p.AdvanceAmount
	}
	if p.TotalAmount != nil {
		set["paymentDetails.total_amount"] = *p.TotalAmount
	}
	if p.PaymentMethod != nil {
		set["paymentDetails.payment_method"] = *p.PaymentMethod
	}
	if p.PaymentStatus != nil {
		set["paymentDetails.payment_status"] = *p.PaymentStatus
	}
	return set
}

func (r *ServiceRequestRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
