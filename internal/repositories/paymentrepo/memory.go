package paymentrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/frogstop/payments/internal/domain"
)

// memoryRepository keeps payment records in process memory. It backs sandbox
// deployments that run without a database, and tests. Semantics mirror the
// Postgres implementation, including the conditional transition.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]*domain.PaymentRecord
}

func NewMemory() IPaymentRepository {
	return &memoryRepository{
		records: make(map[string]*domain.PaymentRecord),
	}
}

func (r *memoryRepository) Create(ctx context.Context, record *domain.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *record
	r.records[record.PaymentID] = &clone
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[paymentID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (r *memoryRepository) Transition(ctx context.Context, params TransitionParams) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[params.PaymentID]
	if !ok {
		return false, domain.ErrPaymentNotFound
	}

	admissible := false
	for _, s := range params.FromStatuses {
		if record.Status == s {
			admissible = true
			break
		}
	}
	if !admissible {
		return false, nil
	}

	record.Status = params.Status
	if params.TransactionHash != "" {
		record.TransactionHash = params.TransactionHash
	}
	if params.WithdrawalStatus != "" {
		record.WithdrawalStatus = params.WithdrawalStatus
	}
	record.UpdatedAt = time.Now().UTC()

	return true, nil
}

func (r *memoryRepository) SetWithdrawalStatus(ctx context.Context, paymentID string, status domain.WithdrawalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[paymentID]
	if !ok {
		return domain.ErrPaymentNotFound
	}

	record.WithdrawalStatus = status
	record.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) FindOldestPendingByAmount(ctx context.Context, amount string) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var match *domain.PaymentRecord
	for _, record := range r.records {
		if record.Status != domain.StatusPending || record.Amount != amount {
			continue
		}
		if match == nil || record.CreatedAt.Before(match.CreatedAt) ||
			(record.CreatedAt.Equal(match.CreatedAt) && record.PaymentID < match.PaymentID) {
			match = record
		}
	}
	if match == nil {
		return nil, nil
	}

	clone := *match
	return &clone, nil
}

func (r *memoryRepository) List(ctx context.Context) ([]*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*domain.PaymentRecord, 0, len(r.records))
	for _, record := range r.records {
		clone := *record
		records = append(records, &clone)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].PaymentID > records[j].PaymentID
	})

	return records, nil
}
