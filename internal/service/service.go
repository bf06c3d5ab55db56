// Package service holds the business rules: the two credential flows and
// the session registry, the service request lifecycle, invoice generation
// and the customer, device and payment records.  Every exported method
// returns either nil or an *apperr.Error.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/queue"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID         string
	Identifier string
	Kind       model.SubjectKind
	Role       string
	SessionID  string
}

const publishTimeout = 3 * time.Second

// publish sends an event and only logs failures; events never fail the
// operation that produced them.
func publish(ctx context.Context, p queue.Publisher, logger *slog.Logger, q string, event any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, q, event); err != nil {
		logger.Warn("event publish failed", "queue", q, "err", err)
	}
}

// internal logs an unexpected failure and hides it behind a generic error.
func internal(logger *slog.Logger, op string, err error) error {
	logger.Error(op, "err", err)
	return apperr.Internal(err)
}

// parseObjectID rejects anything that is not 24 hex characters.
func parseObjectID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid "+what+" id", apperr.FieldError{Field: "id", Message: "must be 24 hex characters"})
	}
	return oid, nil
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }

// rollback collects compensating actions for a unit of work that runs
// without a store transaction.
type rollback struct {
	steps []func(ctx context.Context) error
}

func (r *rollback) add(fn func(ctx context.Context) error) { r.steps = append(r.steps, fn) }

func (r *rollback) run(ctx context.Context, logger *slog.Logger) {
	for i := len(r.steps) - 1; i >= 0; i-- {
		if err := r.steps[i](ctx); err != nil {
			logger.Error("compensating write failed", "step", i, "err", err)
		}
	}
}

// runUnit executes fn atomically.  With a transactional backend fn runs in
// a transaction; otherwise the compensations fn registered are replayed in
// reverse order when it fails.
func runUnit(ctx context.Context, tx repository.TxRunner, logger *slog.Logger, fn func(ctx context.Context, rb *rollback) error) error {
	if tx.Transactional() {
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			return fn(ctx, &rollback{})
		})
	}
	rb := &rollback{}
	if err := fn(ctx, rb); err != nil {
		rb.run(context.WithoutCancel(ctx), logger)
		return err
	}
	return nil
}
