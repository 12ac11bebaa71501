package reconciliation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/internal/repositories/paymentrepo"
)

type reconciliationService struct {
	payments paymentrepo.IPaymentRepository
	payout   interfaces.PayoutOrchestrator
	logger   zerolog.Logger
}

func NewReconciliationService(
	payments paymentrepo.IPaymentRepository,
	payout interfaces.PayoutOrchestrator,
	logger zerolog.Logger,
) IReconciliationService {
	return &reconciliationService{
		payments: payments,
		payout:   payout,
		logger:   logger.With().Str("component", "reconciliation").Logger(),
	}
}

func (s *reconciliationService) ProcessEvent(ctx context.Context, event *domain.CanonicalEvent) (*domain.ReconciliationResult, error) {
	requestID := uuid.New().String()
	log := s.logger.With().
		Str("request_id", requestID).
		Str("event_type", event.EventType).
		Str("payment_id", event.PaymentID).
		Str("status", event.Status).
		Logger()

	log.Info().Msg("Processing payment event")

	if event.PaymentID == "" {
		result, err := s.matchDeposit(ctx, log, event)
		if err != nil || result != nil {
			return result, err
		}
		// The matcher resolved a payment id; fall through to the transition.
	}

	switch domain.PaymentStatus(event.Status) {
	case domain.StatusPending:
		return s.refreshPending(ctx, log, event)

	case domain.StatusConfirmed, domain.StatusCompleted:
		return s.confirm(ctx, log, event)

	case domain.StatusFailed:
		return s.fail(ctx, log, event)

	default:
		log.Info().Msg("Unknown payment status, acknowledging without transition")
		return &domain.ReconciliationResult{
			Outcome:   domain.OutcomeUnknownStatus,
			PaymentID: event.PaymentID,
			Message:   "Event received, status not recognized",
		}, nil
	}
}

// matchDeposit resolves an anonymous deposit-credit event to a pending
// payment by amount, oldest first. A nil result with nil error means the
// matcher resolved the event in place and processing should continue.
func (s *reconciliationService) matchDeposit(ctx context.Context, log zerolog.Logger, event *domain.CanonicalEvent) (*domain.ReconciliationResult, error) {
	if event.Amount == "" {
		log.Warn().Msg("Event carries neither payment id nor amount, ignoring")
		return &domain.ReconciliationResult{
			Outcome: domain.OutcomeIgnored,
			Message: "Event received, nothing to reconcile",
		}, nil
	}

	record, err := s.payments.FindOldestPendingByAmount(ctx, event.Amount)
	if err != nil {
		return nil, fmt.Errorf("matching deposit by amount: %w", err)
	}
	if record == nil {
		log.Warn().Str("amount", event.Amount).Msg("No pending payment matches deposit amount")
		return &domain.ReconciliationResult{
			Outcome: domain.OutcomeUnmatched,
			Message: "Deposit received but no matching payment found",
		}, nil
	}

	log.Info().
		Str("matched_payment_id", record.PaymentID).
		Str("amount", event.Amount).
		Msg("Matched anonymous deposit to pending payment")

	// A matched deposit is the final success signal for the order.
	event.PaymentID = record.PaymentID
	event.Status = string(domain.StatusCompleted)

	return nil, nil
}

func (s *reconciliationService) refreshPending(ctx context.Context, log zerolog.Logger, event *domain.CanonicalEvent) (*domain.ReconciliationResult, error) {
	ok, err := s.payments.Transition(ctx, paymentrepo.TransitionParams{
		PaymentID:       event.PaymentID,
		Status:          domain.StatusPending,
		TransactionHash: event.TransactionHash,
		FromStatuses:    []domain.PaymentStatus{domain.StatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("refreshing pending payment %s: %w", event.PaymentID, err)
	}
	if !ok {
		log.Info().Msg("Payment already past pending, ignoring stale event")
		return &domain.ReconciliationResult{
			Outcome:   domain.OutcomeDuplicate,
			PaymentID: event.PaymentID,
			Message:   "Webhook processed successfully",
		}, nil
	}

	return &domain.ReconciliationResult{
		Outcome:   domain.OutcomeTransitioned,
		PaymentID: event.PaymentID,
		Status:    domain.StatusPending,
		Message:   "Webhook processed successfully",
	}, nil
}

// confirm handles the payout-triggering transition. The claim below is a
// compare-and-swap accepted only from pending, writing the new status and an
// initial withdrawal status in one statement; of any number of concurrent
// deliveries exactly one claim succeeds, and only that one invokes the payout
// orchestrator.
func (s *reconciliationService) confirm(ctx context.Context, log zerolog.Logger, event *domain.CanonicalEvent) (*domain.ReconciliationResult, error) {
	target := domain.PaymentStatus(event.Status)

	claimed, err := s.payments.Transition(ctx, paymentrepo.TransitionParams{
		PaymentID:        event.PaymentID,
		Status:           target,
		TransactionHash:  event.TransactionHash,
		WithdrawalStatus: domain.WithdrawalStatusPending,
		FromStatuses:     []domain.PaymentStatus{domain.StatusPending},
	})
	if err != nil {
		return nil, fmt.Errorf("claiming confirmation for %s: %w", event.PaymentID, err)
	}

	if !claimed {
		return s.reconfirm(ctx, log, event, target)
	}

	log.Info().Str("target_status", string(target)).Msg("Payment confirmed, triggering auto-withdrawal")

	amount, tokenSymbol := event.Amount, event.TokenSymbol
	if amount == "" {
		record, err := s.payments.GetByID(ctx, event.PaymentID)
		if err == nil && record != nil {
			amount = record.Amount
			if tokenSymbol == "" {
				tokenSymbol = record.TokenSymbol
			}
		}
	}

	result := s.payout.Initiate(ctx, amount, tokenSymbol)
	if result.Err != "" {
		log.Warn().Str("payout_error", result.Err).Msg("Payout degraded, withdrawal stays non-terminal")
	}

	if err := s.payments.SetWithdrawalStatus(ctx, event.PaymentID, result.Status); err != nil {
		// The payment transition is already committed and the payout was
		// invoked; a failed bookkeeping write must not fail the event.
		log.Error().Err(err).Msg("Failed to record withdrawal status")
	}

	return &domain.ReconciliationResult{
		Outcome:          domain.OutcomeTransitioned,
		PaymentID:        event.PaymentID,
		Status:           target,
		WithdrawalStatus: result.Status,
		PayoutID:         result.PayoutID,
		Message:          "Webhook processed successfully",
	}, nil
}

// reconfirm handles a confirmation event whose claim lost: the record is
// already confirmed, completed, or failed. The only transition left is the
// payout-free promotion confirmed -> completed; everything else is a no-op so
// redelivery stays idempotent.
func (s *reconciliationService) reconfirm(ctx context.Context, log zerolog.Logger, event *domain.CanonicalEvent, target domain.PaymentStatus) (*domain.ReconciliationResult, error) {
	if target == domain.StatusCompleted {
		promoted, err := s.payments.Transition(ctx, paymentrepo.TransitionParams{
			PaymentID:       event.PaymentID,
			Status:          domain.StatusCompleted,
			TransactionHash: event.TransactionHash,
			FromStatuses:    []domain.PaymentStatus{domain.StatusConfirmed},
		})
		if err != nil {
			return nil, fmt.Errorf("completing payment %s: %w", event.PaymentID, err)
		}
		if promoted {
			log.Info().Msg("Payment completed")
			return &domain.ReconciliationResult{
				Outcome:   domain.OutcomeTransitioned,
				PaymentID: event.PaymentID,
				Status:    domain.StatusCompleted,
				Message:   "Webhook processed successfully",
			}, nil
		}
	}

	log.Info().Msg("Confirmation already applied, skipping payout")
	return &domain.ReconciliationResult{
		Outcome:   domain.OutcomeDuplicate,
		PaymentID: event.PaymentID,
		Status:    target,
		Message:   "Webhook processed successfully",
	}, nil
}

func (s *reconciliationService) fail(ctx context.Context, log zerolog.Logger, event *domain.CanonicalEvent) (*domain.ReconciliationResult, error) {
	ok, err := s.payments.Transition(ctx, paymentrepo.TransitionParams{
		PaymentID:       event.PaymentID,
		Status:          domain.StatusFailed,
		TransactionHash: event.TransactionHash,
		FromStatuses:    []domain.PaymentStatus{domain.StatusPending, domain.StatusConfirmed},
	})
	if err != nil {
		return nil, fmt.Errorf("failing payment %s: %w", event.PaymentID, err)
	}
	if !ok {
		log.Info().Msg("Payment already terminal, ignoring failure event")
		return &domain.ReconciliationResult{
			Outcome:   domain.OutcomeDuplicate,
			PaymentID: event.PaymentID,
			Message:   "Webhook processed successfully",
		}, nil
	}

	log.Info().Msg("Payment failed")
	return &domain.ReconciliationResult{
		Outcome:   domain.OutcomeTransitioned,
		PaymentID: event.PaymentID,
		Status:    domain.StatusFailed,
		Message:   "Webhook processed successfully",
	}, nil
}
