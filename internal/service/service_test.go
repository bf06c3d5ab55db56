package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Subham7008/Quick-Serve/internal/apperr"
	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/queue"
	"github.com/Subham7008/Quick-Serve/internal/repository"
	"github.com/Subham7008/Quick-Serve/internal/repository/memory"
)

const testSecret = "test-secret"

type published struct {
	queue string
	event any
}

// recorder is a queue.Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (r *recorder) Publish(_ context.Context, q string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{q, event})
	return r.err
}

func (r *recorder) lifecycle() []queue.ServiceRequestEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []queue.ServiceRequestEvent
	for _, p := range r.events {
		if ev, ok := p.event.(queue.ServiceRequestEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) otps() []queue.OTPIssuedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []queue.OTPIssuedEvent
	for _, p := range r.events {
		if ev, ok := p.event.(queue.OTPIssuedEvent); ok {
			out = append(out, ev)
		}
	}
	return out
}

var _ queue.Publisher = (*recorder)(nil)

type env struct {
	st        repository.Stores
	pub       *recorder
	auth      *AuthService
	lifecycle *LifecycleService
	records   *RecordsService
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, memory.New())
}

func newEnvWith(t *testing.T, st repository.Stores) *env {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	pub := &recorder{}
	logger := discardLogger()
	return &env{
		st:  st,
		pub: pub,
		auth: NewAuthService(st, pub, AuthConfig{
			JWTSecret:         testSecret,
			UserTokenTTL:      24 * time.Hour,
			ShopOwnerTokenTTL: 24 * time.Hour,
			OTPTTL:            10 * time.Minute,
			BcryptCost:        4,
		}, logger),
		lifecycle: NewLifecycleService(st, pub, node, logger),
		records:   NewRecordsService(st, logger),
	}
}

var phoneSeq atomic.Int64

func validSignup(name string) SignupInput {
	return SignupInput{
		UserName:     name,
		FirstName:    "Alice",
		LastName:     "Smith",
		BusinessName: "Fix It",
		Email:        name + "@example.com",
		Password:     "Abc12345!",
		PhoneNumber:  fmt.Sprintf("98765%05d", phoneSeq.Add(1)),
	}
}

func (e *env) signupUser(t *testing.T, name string) Identity {
	t.Helper()
	res, err := e.auth.Signup(context.Background(), validSignup(name))
	require.NoError(t, err)
	id, err := e.auth.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	return id
}

func (e *env) registerOwner(t *testing.T, contact string) model.ShopOwner {
	t.Helper()
	o, err := e.auth.RegisterShopOwner(context.Background(), RegisterShopOwnerInput{
		OwnerDetails: OwnerDetails{Name: "Bob", Email: contact + "@shop.com", ContactNumber: contact, Password: "secret"},
		ShopDetails:  ShopDetailsInput{ShopName: "Bob's Repairs", Address: "1 Main St", ServiceOffered: []string{"screen"}},
	})
	require.NoError(t, err)
	return o
}

func requireKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T: %v", err, err)
	require.Equal(t, kind, ae.Kind, ae.Error())
	return ae
}

func hasField(ae *apperr.Error, field string) bool {
	for _, f := range ae.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func TestRunUnitCompensatesInReverse(t *testing.T) {
	st := memory.New()
	var order []int
	boom := errors.New("boom")
	err := runUnit(context.Background(), st.Tx, discardLogger(), func(ctx context.Context, rb *rollback) error {
		rb.add(func(context.Context) error { order = append(order, 1); return nil })
		rb.add(func(context.Context) error { order = append(order, 2); return errors.New("ignored") })
		rb.add(func(context.Context) error { order = append(order, 3); return nil })
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{3, 2, 1}, order)
}

func TestRunUnitSkipsCompensationOnSuccess(t *testing.T) {
	st := memory.New()
	called := false
	err := runUnit(context.Background(), st.Tx, discardLogger(), func(ctx context.Context, rb *rollback) error {
		rb.add(func(context.Context) error { called = true; return nil })
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

type txOnly struct{ ran bool }

func (t *txOnly) Transactional() bool { return true }

func (t *txOnly) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.ran = true
	return fn(ctx)
}

func TestRunUnitUsesTransactionWhenAvailable(t *testing.T) {
	tx := &txOnly{}
	called := false
	err := runUnit(context.Background(), tx, discardLogger(), func(ctx context.Context, rb *rollback) error {
		rb.add(func(context.Context) error { called = true; return nil })
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.True(t, tx.ran)
	assert.False(t, called, "compensations are not run inside a transaction")
}

func TestMoneyHelpers(t *testing.T) {
	assert.Equal(t, 0.2, remaining(0.3, 0.1))
	assert.Equal(t, -50.0, remaining(100, 150))
	assert.Equal(t, 100.0, estimateOrTotal(nil, 100))
	zero := 0.0
	assert.Equal(t, 100.0, estimateOrTotal(&zero, 100))
	est := 80.0
	assert.Equal(t, 80.0, estimateOrTotal(&est, 100))
}
