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

type CustomerRepo struct{ C *mongo.Collection }

func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Email = normalizeEmail(c.Email)
	c.CreatedOn, c.UpdatedOn = now, now
	_, err := r.C.InsertOne(ctx, c)
	return duplicate(err, "email")
}

func (r *CustomerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (model.Customer, error) {
	var c model.Customer
	err := r.C.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, notFound(err)
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	var c model.Customer
	err := r.C.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&c)
	return c, notFound(err)
}

func (r *CustomerRepo) ListByCreator(ctx context.Context, createdBy string) ([]model.Customer, error) {
	cur, err := r.C.Find(ctx, bson.M{"created_by": createdBy}, options.Find().SetSort(bson.D{{Key: "created_on", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []model.Customer{}
	err = cur.All(ctx, &out)
	return out, err
}

func (r *CustomerRepo) Update(ctx context.Context, c model.Customer) error {
	c.Email = normalizeEmail(c.Email)
	c.UpdatedOn = time.Now().UTC()
	res, err := r.C.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return duplicate(err, "email")
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.C.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
