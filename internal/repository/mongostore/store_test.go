package mongostore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

func TestDuplicateKeyTranslation(t *testing.T) {
	we := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}

	de, ok := repository.IsDuplicate(duplicate(we, "email"))
	require.True(t, ok)
	assert.Equal(t, "email", de.Field)

	other := errors.New("network")
	assert.Equal(t, other, duplicate(other, "email"))
	assert.NoError(t, duplicate(nil, "email"))
}

func TestNotFoundTranslation(t *testing.T) {
	assert.ErrorIs(t, notFound(mongo.ErrNoDocuments), repository.ErrNotFound)
	assert.ErrorIs(t, notFound(fmt.Errorf("decode: %w", mongo.ErrNoDocuments)), repository.ErrNotFound)
	assert.NoError(t, notFound(nil))
}

func TestTxRunnerDisabledRunsInline(t *testing.T) {
	var ran bool
	tx := TxRunner{}
	assert.False(t, tx.Transactional())
	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestPatchSetTouchesOnlyNamedPaths(t *testing.T) {
	total := 7000.0
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	set := patchSet(repository.ServiceRequestPatch{TotalAmount: &total, UpdatedBy: "u-1"}, now)
	assert.Equal(t, bson.M{
		"paymentDetails.total_amount": 7000.0,
		"updated_by":                  "u-1",
		"updated_at":                  now,
	}, set)

	set = patchSet(repository.ServiceRequestPatch{
		ServiceStatus: model.ServiceAssignedToShop,
		Status:        model.StatusInProgress,
		ShopOwnerID:   "owner-1",
	}, now)
	assert.Equal(t, model.ServiceAssignedToShop, set["service_status"])
	assert.Equal(t, model.StatusInProgress, set["status"])
	assert.Equal(t, "owner-1", set["shop_owner_id"])
	assert.NotContains(t, set, "paymentDetails.total_amount")
	assert.NotContains(t, set, "paymentDetails")
}
