package interfaces

import (
	"context"

	"github.com/frogstop/payments/internal/domain"
)

// ProviderClient talks to the payment provider. The sandbox implementation
// substitutes deterministic mock data when no API key is configured.
type ProviderClient interface {
	// GetAccount retrieves the provider account holding the deposit wallet.
	GetAccount(ctx context.Context) (*domain.ProviderAccount, error)

	// RequestPayout submits a fiat payout request. Transport and non-2xx
	// failures surface as errors; the orchestrator is the only caller and is
	// responsible for degrading them.
	RequestPayout(ctx context.Context, req *domain.PayoutRequest) (*domain.ProviderPayout, error)
}

// WebhookVerifier authenticates inbound webhook deliveries.
type WebhookVerifier interface {
	Verify(rawBody []byte, signature, timestamp string) bool
}

// PayoutOrchestrator triggers the downstream fiat withdrawal for a confirmed
// payment. It never returns an error: every failure mode degrades into the
// result value.
type PayoutOrchestrator interface {
	Initiate(ctx context.Context, amount, tokenSymbol string) domain.PayoutResult
}

// PaymentStreamer pushes payment status updates to live subscribers.
type PaymentStreamer interface {
	BroadcastPayment(update *domain.PaymentUpdate)
}
