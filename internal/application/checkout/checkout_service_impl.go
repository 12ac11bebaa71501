package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/internal/repositories/paymentrepo"
	"github.com/frogstop/payments/pkg/config"
)

type checkoutService struct {
	payments    paymentrepo.IPaymentRepository
	provider    interfaces.ProviderClient
	cfg         config.CheckoutConfig
	environment string
	logger      zerolog.Logger
}

func NewCheckoutService(
	payments paymentrepo.IPaymentRepository,
	provider interfaces.ProviderClient,
	cfg config.CheckoutConfig,
	environment string,
	logger zerolog.Logger,
) ICheckoutService {
	if environment == "" {
		environment = "sandbox"
	}
	return &checkoutService{
		payments:    payments,
		provider:    provider,
		cfg:         cfg,
		environment: environment,
		logger:      logger.With().Str("component", "checkout").Logger(),
	}
}

func (s *checkoutService) CreatePayment(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	account, err := s.provider.GetAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving deposit account: %w", err)
	}

	paymentID, err := newPaymentID(s.environment)
	if err != nil {
		return nil, fmt.Errorf("generating payment id: %w", err)
	}

	now := time.Now().UTC()
	expiry := time.Duration(s.cfg.ExpiryMinutes) * time.Minute
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	// USDC settles 1:1 against USD; the canonical form is the matching key
	// for anonymous deposits, so it is fixed here once and never recomputed.
	amountUSDC := decimal.NewFromFloat(req.Amount).StringFixed(2)

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	response := &CheckoutResponse{
		PaymentID:      paymentID,
		AccountID:      account.AccountID,
		DepositAddress: account.DepositAddress,
		Blockchain:     s.cfg.Blockchain,
		Network:        s.cfg.Network,
		TokenSymbol:    s.cfg.TokenSymbol,
		AmountUSD:      req.Amount,
		AmountUSDC:     amountUSDC,
		Currency:       currency,
		Status:         domain.StatusPending,
		ExpiresAt:      now.Add(expiry),
		CreatedAt:      now,
		Instructions: PaymentInstructions{
			Message:     fmt.Sprintf("Send %s on %s to the deposit address below", s.cfg.TokenSymbol, s.cfg.Network),
			Network:     s.cfg.Network,
			Token:       s.cfg.TokenSymbol,
			Address:     account.DepositAddress,
			Amount:      amountUSDC,
			FaucetURL:   s.cfg.FaucetURL,
			ExplorerURL: s.cfg.ExplorerURL + account.DepositAddress,
		},
	}

	details, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("marshaling payment details: %w", err)
	}

	record := &domain.PaymentRecord{
		PaymentID:      paymentID,
		AccountID:      account.AccountID,
		DepositAddress: account.DepositAddress,
		Blockchain:     s.cfg.Blockchain,
		TokenSymbol:    s.cfg.TokenSymbol,
		Amount:         amountUSDC,
		Currency:       currency,
		Status:         domain.StatusPending,
		Details:        details,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(expiry),
	}

	if err := s.payments.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting payment: %w", err)
	}

	s.logger.Info().
		Str("payment_id", paymentID).
		Str("amount", amountUSDC).
		Str("deposit_address", account.DepositAddress).
		Msg("Payment initiated")

	return response, nil
}

func (s *checkoutService) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error) {
	return s.payments.GetByID(ctx, paymentID)
}

func (s *checkoutService) ListPayments(ctx context.Context) ([]*domain.PaymentRecord, error) {
	return s.payments.List(ctx)
}

func newPaymentID(environment string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("pay_%s_%d_%s", environment, time.Now().UnixMilli(), hex.EncodeToString(b)), nil
}
