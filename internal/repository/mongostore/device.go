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

type DeviceRepo struct{ C *mongo.Collection }

func (r *DeviceRepo) Create(ctx context.Context, d *model.Device) error {
	now := time.Now().UTC()
	d.ID = primitive.NewObjectID()
	d.CreatedOn, d.UpdatedOn = now, now
	_, err := r.C.InsertOne(ctx, d)
	return err
}

func (r *DeviceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.Device, error) {
	var d model.Device
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	return d, notFound(err)
}

// LatestForCustomer returns the most recently created device of a customer.
func (r *DeviceRepo) LatestForCustomer(ctx context.Context, customerID primitive.ObjectID) (model.Device, error) {
	var d model.Device
	opts := options.FindOne().SetSort(bson.D{{Key: "created_on", Value: -1}, {Key: "_id", Value: -1}})
	err := r.C.FindOne(ctx, bson.M{"customer_id": customerID}, opts).Decode(&d)
	return d, notFound(err)
}

func (r *DeviceRepo) Update(ctx context.Context, d model.Device) error {
	d.UpdatedOn = time.Now().UTC()
	res, err := r.C.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DeviceRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *DeviceRepo) DeleteByCustomer(ctx context.Context, customerID primitive.ObjectID) error {
	_, err := r.C.DeleteMany(ctx, bson.M{"customer_id": customerID})
	return err
}
