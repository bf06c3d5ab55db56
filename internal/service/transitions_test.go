package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Subham7008/Quick-Serve/internal/model"
)

var workflow = []model.ServiceStatus{
	model.ServicePendingShopAssignment,
	model.ServiceAssignedToShop,
	model.ServiceInProgress,
	model.ServiceRepairCompleted,
	model.ServiceDelivered,
}

func TestValidTransitionOnlyAllowsNextStep(t *testing.T) {
	for i, from := range workflow {
		for j, to := range workflow {
			want := j == i+1
			assert.Equal(t, want, ValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestValidTransitionRejectsUnknownStates(t *testing.T) {
	tests := []struct {
		name     string
		from, to model.ServiceStatus
	}{
		{"unknown target", model.ServiceInProgress, "on_hold"},
		{"unknown source", "on_hold", model.ServiceInProgress},
		{"empty", "", model.ServicePendingShopAssignment},
		{"from terminal", model.ServiceDelivered, model.ServicePendingShopAssignment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, ValidTransition(tt.from, tt.to))
		})
	}
}

func TestNextServiceStatus(t *testing.T) {
	next, ok := NextServiceStatus(model.ServiceInProgress)
	assert.True(t, ok)
	assert.Equal(t, model.ServiceRepairCompleted, next)

	_, ok = NextServiceStatus(model.ServiceDelivered)
	assert.False(t, ok)
}

func TestKnownServiceStatus(t *testing.T) {
	for _, s := range workflow {
		assert.True(t, KnownServiceStatus(s), s)
	}
	assert.False(t, KnownServiceStatus("cancelled"))
}

func TestCoarseStatusAfter(t *testing.T) {
	assert.Equal(t, model.StatusCompleted, coarseStatusAfter(model.ServiceDelivered, model.StatusInProgress))
	assert.Equal(t, model.StatusPending, coarseStatusAfter(model.ServiceInProgress, model.StatusPending))
	assert.Equal(t, model.StatusInProgress, coarseStatusAfter(model.ServiceRepairCompleted, model.StatusInProgress))
}
