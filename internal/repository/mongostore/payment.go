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

type PaymentRepo struct{ C *mongo.Collection }

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedOn, p.UpdatedOn = now, now
	p.Derive()
	_, err := r.C.InsertOne(ctx, p)
	return err
}

func (r *PaymentRepo) LatestForCustomer(ctx context.Context, customerID primitive.ObjectID) (model.Payment, error) {
	var p model.Payment
	opts := options.FindOne().SetSort(bson.D{{Key: "created_on", Value: -1}, {Key: "_id", Value: -1}})
	if err := r.C.FindOne(ctx, bson.M{"customer_id": customerID}, opts).Decode(&p); err != nil {
		return model.Payment{}, notFound(err)
	}
	p.Derive()
	return p, nil
}

func (r *PaymentRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]model.Payment, error) {
	cur, err := r.C.Find(ctx, bson.M{"customer_id": customerID}, options.Find().SetSort(bson.D{{Key: "created_on", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []model.Payment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Derive()
	}
	return out, nil
}

func (r *PaymentRepo) Update(ctx context.Context, p model.Payment) error {
	p.UpdatedOn = time.Now().UTC()
	p.Derive()
	res, err := r.C.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
