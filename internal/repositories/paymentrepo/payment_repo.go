package paymentrepo

import (
	"context"

	"github.com/frogstop/payments/internal/domain"
)

// TransitionParams describes one conditional status write. The write combines
// status, transaction hash, updated-at and (optionally) withdrawal status in a
// single statement, and only applies when the stored status is one of
// FromStatuses. This is the compare-and-swap that prevents duplicate payout
// triggering under concurrent redelivery.
type TransitionParams struct {
	PaymentID       string
	Status          domain.PaymentStatus
	TransactionHash string
	// WithdrawalStatus is written alongside the status when non-empty; it is
	// never set independently of a confirmed/completed transition.
	WithdrawalStatus domain.WithdrawalStatus
	FromStatuses     []domain.PaymentStatus
}

type IPaymentRepository interface {
	// Create persists a new payment record. PaymentID is the primary key and
	// is created exactly once, by checkout.
	Create(ctx context.Context, record *domain.PaymentRecord) error

	// GetByID returns the record, or nil when the id is unknown.
	GetByID(ctx context.Context, paymentID string) (*domain.PaymentRecord, error)

	// Transition applies a conditional status write. It returns false when the
	// record exists but its current status is not in FromStatuses, and
	// domain.ErrPaymentNotFound when no record with the id exists - a status
	// update must fail rather than silently create.
	Transition(ctx context.Context, params TransitionParams) (bool, error)

	// SetWithdrawalStatus records the payout outcome. It mutates only the
	// withdrawal status and updated-at, never the payment status.
	SetWithdrawalStatus(ctx context.Context, paymentID string, status domain.WithdrawalStatus) error

	// FindOldestPendingByAmount returns the oldest pending record whose
	// canonical amount equals the given one, or nil when none matches.
	// Oldest-first is business policy: the first order placed is the first
	// credited.
	FindOldestPendingByAmount(ctx context.Context, amount string) (*domain.PaymentRecord, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*domain.PaymentRecord, error)
}
