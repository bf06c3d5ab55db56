package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Subham7008/Quick-Serve/internal/model"
	"github.com/Subham7008/Quick-Serve/internal/repository"
)

func TestPaymentDerivedOnWrite(t *testing.T) {
	st := New()
	ctx := context.Background()
	customer := primitive.NewObjectID()

	p := model.Payment{CustomerID: customer, TotalAmount: 1200.5, AdvanceAmount: 200.25, RemainingAmount: 99}
	require.NoError(t, st.Payments.Create(ctx, &p))
	assert.Equal(t, 1200.5, p.EstimateCost)
	assert.Equal(t, 1000.25, p.RemainingAmount)

	got, err := st.Payments.LatestForCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, 1200.5, got.EstimateCost)
	assert.Equal(t, 1000.25, got.RemainingAmount)

	got.TotalAmount = 0.3
	got.AdvanceAmount = 0.1
	got.EstimateCost = 0
	require.NoError(t, st.Payments.Update(ctx, got))

	list, err := st.Payments.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 0.3, list[0].EstimateCost)
	assert.Equal(t, 0.2, list[0].RemainingAmount)
}

func TestPaymentKeepsExplicitEstimate(t *testing.T) {
	st := New()
	p := model.Payment{CustomerID: primitive.NewObjectID(), TotalAmount: 500, EstimateCost: 450}
	require.NoError(t, st.Payments.Create(context.Background(), &p))
	assert.Equal(t, 450.0, p.EstimateCost)
	assert.Equal(t, 500.0, p.RemainingAmount)
}

func TestServiceRequestPatch(t *testing.T) {
	st := New()
	ctx := context.Background()
	sr := model.ServiceRequest{
		ServiceStatus:  model.ServiceInProgress,
		Status:         model.StatusInProgress,
		PaymentDetails: model.PaymentDetails{TotalAmount: 5000, AdvanceAmount: 1000, PaymentMethod: "cash"},
	}
	require.NoError(t, st.ServiceRequests.Create(ctx, &sr))

	total := 7000.0
	got, err := st.ServiceRequests.Patch(ctx, sr.ID, repository.ServiceRequestPatch{TotalAmount: &total, UpdatedBy: "u-2"})
	require.NoError(t, err)
	assert.Equal(t, 7000.0, got.PaymentDetails.TotalAmount)
	assert.Equal(t, 1000.0, got.PaymentDetails.AdvanceAmount)
	assert.Equal(t, "cash", got.PaymentDetails.PaymentMethod)
	assert.Equal(t, model.ServiceInProgress, got.ServiceStatus)
	assert.Equal(t, "u-2", got.UpdatedBy)

	_, err = st.ServiceRequests.Patch(ctx, sr.ID, repository.ServiceRequestPatch{
		ExpectServiceStatus: model.ServiceAssignedToShop,
		ServiceStatus:       model.ServiceInProgress,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound, "status guard no longer matches")

	got, err = st.ServiceRequests.Patch(ctx, sr.ID, repository.ServiceRequestPatch{
		ExpectServiceStatus: model.ServiceInProgress,
		ServiceStatus:       model.ServiceRepairCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ServiceRepairCompleted, got.ServiceStatus)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Equal(t, 7000.0, got.PaymentDetails.TotalAmount)

	_, err = st.ServiceRequests.Patch(ctx, primitive.NewObjectID(), repository.ServiceRequestPatch{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
