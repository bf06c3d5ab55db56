// Package mongostore implements the document repositories (customers,
// devices, payments, service requests and invoices) on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Subham7008/Quick-Serve/internal/database"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

// Collections groups the handles used by the repositories.
type Collections struct {
	Customers       *mongo.Collection
	Devices         *mongo.Collection
	Payments        *mongo.Collection
	ServiceRequests *mongo.Collection
	Invoices        *mongo.Collection
}

func NewCollections(db *mongo.Database) Collections {
	return Collections{
		Customers:       db.Collection(database.CollCustomers),
		Devices:         db.Collection(database.CollDevices),
		Payments:        db.Collection(database.CollPayments),
		ServiceRequests: db.Collection(database.CollServiceRequests),
		Invoices:        db.Collection(database.CollInvoices),
	}
}

// TxRunner runs units of work in a client session transaction.  Multi
// document transactions need a replica set, so they are opt-in.
type TxRunner struct {
	Client  *mongo.Client
	Enabled bool
}

func (t TxRunner) Transactional() bool { return t.Enabled }

// WithinTx runs fn inside a transaction when enabled.  fn receives the
// session context and must pass it to every repository call.
func (t TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.Enabled {
		return fn(ctx)
	}
	sess, err := t.Client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// notFound maps mongo.ErrNoDocuments onto repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// duplicate maps an E11000 write error onto repository.DuplicateError.
func duplicate(err error, field string) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return &repository.DuplicateError{Field: field}
	}
	return err
}

// Register wires every document repository into st.
func Register(st *repository.Stores, c Collections, tx TxRunner) {
	st.Customers = &CustomerRepo{C: c.Customers}
	st.Devices = &DeviceRepo{C: c.Devices}
	st.Payments = &PaymentRepo{C: c.Payments}
	st.ServiceRequests = &ServiceRequestRepo{C: c.ServiceRequests}
	st.Invoices = &InvoiceRepo{C: c.Invoices}
	st.Tx = tx
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
