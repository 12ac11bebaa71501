package reconciliation

import (
	"context"

	"github.com/frogstop/payments/internal/domain"
)

// IReconciliationService applies one canonical provider event to the payment
// records: match anonymous deposits, transition state, and trigger the payout
// on the first confirmation.
type IReconciliationService interface {
	// ProcessEvent is idempotent with respect to payout triggering:
	// redelivering a confirmation event never invokes a second payout. A
	// returned error means a processing fault (including an event referencing
	// a payment id that was never created); unmatched deposits and unknown
	// statuses are acknowledged results, not errors.
	ProcessEvent(ctx context.Context, event *domain.CanonicalEvent) (*domain.ReconciliationResult, error)
}
