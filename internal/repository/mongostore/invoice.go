package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Subham7008/Quick-Serve/internal/model"
)

type InvoiceRepo struct{ C *mongo.Collection }

func (r *InvoiceRepo) Create(ctx context.Context, inv *model.Invoice) error {
	inv.ID = primitive.NewObjectID()
	_, err := r.C.InsertOne(ctx, inv)
	return duplicate(err, "invoice_number")
}

func (r *InvoiceRepo) ListByServiceRequest(ctx context.Context, id primitive.ObjectID) ([]model.Invoice, error) {
	cur, err := r.C.Find(ctx, bson.M{"service_request_id": id}, options.Find().SetSort(bson.D{{Key: "invoice_date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []model.Invoice{}
	err = cur.All(ctx, &out)
	return out, err
}
