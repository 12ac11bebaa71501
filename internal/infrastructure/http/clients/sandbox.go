package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
)

// sandboxClient serves provider calls with generated data when no API key is
// configured. It is a full implementation of the provider capability, so the
// rest of the system carries no mock-mode branching.
type sandboxClient struct {
	accountID string
	logger    zerolog.Logger
}

func NewSandboxClient(accountID string, logger zerolog.Logger) interfaces.ProviderClient {
	if accountID == "" {
		accountID = "acc_sandbox_mock"
	}
	return &sandboxClient{
		accountID: accountID,
		logger:    logger.With().Str("component", "sandbox_client").Logger(),
	}
}

func (c *sandboxClient) GetAccount(ctx context.Context) (*domain.ProviderAccount, error) {
	address, err := mockWalletAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to generate mock wallet address: %w", err)
	}

	c.logger.Info().Str("deposit_address", address).Msg("Serving sandbox account")

	return &domain.ProviderAccount{
		AccountID:      c.accountID,
		DepositAddress: address,
		Blockchain:     "POLYGON",
	}, nil
}

func (c *sandboxClient) RequestPayout(ctx context.Context, req *domain.PayoutRequest) (*domain.ProviderPayout, error) {
	payout := &domain.ProviderPayout{
		ID:     fmt.Sprintf("payout_mock_%d", time.Now().UnixMilli()),
		Status: "PENDING",
	}

	c.logger.Info().
		Str("payout_id", payout.ID).
		Str("amount", req.Amount).
		Str("token_symbol", req.TokenSymbol).
		Msg("Serving sandbox payout")

	return payout, nil
}

func mockWalletAddress() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(b), nil
}
