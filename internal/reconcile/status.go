package reconcile

import "supply-service/internal/models"

// DeriveStatus maps the reconciled aggregates into the order's lifecycle
// state. Terminal checks run first: an explicitly voided order stays
// cancelled, and completion requires both a settled balance and every
// returned unit accepted back into stock. A half-accepted return keeps the
// order open even when fully paid.
func DeriveStatus(t Totals, remainingBalance int64, cancelled bool) string {
	if cancelled {
		return models.StatusCancelled
	}
	if remainingBalance <= 0 && t.TotalReturned == t.TotalAccepted {
		return models.StatusCompleted
	}
	if t.TotalReturned == t.TotalSupplied {
		return models.StatusFullyReturned
	}
	if t.TotalReturned > 0 {
		return models.StatusPartiallyReturned
	}
	return models.StatusSupplied
}
