package payout

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/pkg/config"
)

const defaultTimeout = 10 * time.Second

// Orchestrator triggers the merchant fiat withdrawal once a payment is
// confirmed. Its own failure must never abort the reconciliation that invoked
// it, so Initiate returns a result value instead of an error: a downstream
// fault degrades to a non-terminal withdrawal status with the diagnostic
// attached.
type Orchestrator struct {
	client     interfaces.ProviderClient
	cfg        config.PayoutConfig
	blockchain string
	timeout    time.Duration
	logger     zerolog.Logger
}

func New(client interfaces.ProviderClient, cfg config.PayoutConfig, blockchain string, logger zerolog.Logger) *Orchestrator {
	timeout := defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Orchestrator{
		client:     client,
		cfg:        cfg,
		blockchain: blockchain,
		timeout:    timeout,
		logger:     logger.With().Str("component", "payout_orchestrator").Logger(),
	}
}

var _ interfaces.PayoutOrchestrator = (*Orchestrator)(nil)

func (o *Orchestrator) Initiate(ctx context.Context, amount, tokenSymbol string) domain.PayoutResult {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req := &domain.PayoutRequest{
		Amount:      amount,
		TokenSymbol: tokenSymbol,
		Blockchain:  o.blockchain,
		Description: o.cfg.Description,
		Destination: domain.PayoutDestination{
			BankName:          o.cfg.BankName,
			AccountNumber:     o.cfg.AccountNumber,
			Currency:          o.cfg.Currency,
			CountryCode:       o.cfg.CountryCode,
			BankAccountType:   o.cfg.BankAccountType,
			AccountHolderName: o.cfg.AccountHolderName,
		},
	}

	o.logger.Info().
		Str("amount", amount).
		Str("token_symbol", tokenSymbol).
		Msg("Initiating payout")

	payout, err := o.client.RequestPayout(ctx, req)
	if err != nil {
		// A timed-out call lands here too. The payment's own status has
		// already been decided; the withdrawal stays non-terminal for an
		// out-of-band retry.
		o.logger.Error().Err(err).Str("amount", amount).Msg("Payout request failed")
		return domain.PayoutResult{
			Status: domain.WithdrawalStatusPending,
			Err:    err.Error(),
		}
	}

	o.logger.Info().
		Str("payout_id", payout.ID).
		Str("provider_status", payout.Status).
		Msg("Payout initiated")

	return domain.PayoutResult{
		PayoutID: payout.ID,
		Status:   withdrawalStatusFrom(payout.Status),
	}
}

// withdrawalStatusFrom maps the provider's payout status onto the record's
// withdrawal status. Unknown provider statuses count as processing: the
// request was accepted and its terminal outcome is not yet known.
func withdrawalStatusFrom(providerStatus string) domain.WithdrawalStatus {
	switch providerStatus {
	case "PENDING", "pending":
		return domain.WithdrawalStatusPending
	case "COMPLETED", "completed", "EXECUTED":
		return domain.WithdrawalStatusCompleted
	case "FAILED", "failed", "CANCELLED":
		return domain.WithdrawalStatusFailed
	default:
		return domain.WithdrawalStatusProcessing
	}
}
