package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names of the document store.
const (
	CollCustomers       = "customers"
	CollDevices         = "devices"
	CollPayments        = "payments"
	CollServiceRequests = "service_requests"
	CollInvoices        = "invoices"
)

// ConnectMongo dials the document store and pings the primary.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories
// rely on.  customers.email is the backstop for the upsert-by-email race.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		CollCustomers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uq_customers_email")},
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
		},
		CollDevices: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_on", Value: -1}}},
		},
		CollPayments: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_on", Value: -1}}},
		},
		CollInvoices: {
			{Keys: bson.D{{Key: "service_request_id", Value: 1}}},
			{Keys: bson.D{{Key: "invoice_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes on %s: %w", coll, err)
		}
	}
	return nil
}
