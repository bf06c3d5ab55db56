package service

import "github.com/Subham7008/Quick-Serve/internal/model"

// serviceTransitions lists, for every service_status, the only state it may
// move to.  delivered is terminal.
var serviceTransitions = map[model.ServiceStatus]model.ServiceStatus{
	model.ServicePendingShopAssignment: model.ServiceAssignedToShop,
	model.ServiceAssignedToShop:        model.ServiceInProgress,
	model.ServiceInProgress:            model.ServiceRepairCompleted,
	model.ServiceRepairCompleted:       model.ServiceDelivered,
}

// ValidTransition reports whether a request in from may move to to.
func ValidTransition(from, to model.ServiceStatus) bool {
	next, ok := serviceTransitions[from]
	return ok && next == to
}

// NextServiceStatus returns the single allowed successor of from.
func NextServiceStatus(from model.ServiceStatus) (model.ServiceStatus, bool) {
	next, ok := serviceTransitions[from]
	return next, ok
}

// KnownServiceStatus reports whether s is one of the five workflow states.
func KnownServiceStatus(s model.ServiceStatus) bool {
	if s == model.ServiceDelivered {
		return true
	}
	_, ok := serviceTransitions[s]
	return ok
}

// coarseStatusAfter is the coarse status once a request reaches next.
// Only delivery moves it; everything else keeps the current value.
func coarseStatusAfter(next model.ServiceStatus, current model.Status) model.Status {
	if next == model.ServiceDelivered {
		return model.StatusCompleted
	}
	return current
}
