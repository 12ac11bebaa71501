package checkout

import (
	"context"
	"time"

	"github.com/frogstop/payments/internal/domain"
)

type CheckoutItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type CheckoutRequest struct {
	Amount   float64        `json:"amount"`
	Currency string         `json:"currency"`
	Items    []CheckoutItem `json:"items"`
}

type PaymentInstructions struct {
	Message     string `json:"message"`
	Network     string `json:"network"`
	Token       string `json:"token"`
	Address     string `json:"address"`
	Amount      string `json:"amount"`
	FaucetURL   string `json:"faucetUrl,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

type CheckoutResponse struct {
	PaymentID      string               `json:"paymentId"`
	AccountID      string               `json:"accountId"`
	DepositAddress string               `json:"depositAddress"`
	Blockchain     string               `json:"blockchain"`
	Network        string               `json:"network"`
	TokenSymbol    string               `json:"tokenSymbol"`
	AmountUSD      float64              `json:"amountUSD"`
	AmountUSDC     string               `json:"amountUSDC"`
	Currency       string               `json:"currency"`
	Status         domain.PaymentStatus `json:"status"`
	ExpiresAt      time.Time            `json:"expiresAt"`
	CreatedAt      time.Time            `json:"createdAt"`
	Instructions   PaymentInstructions  `json:"instructions"`
}

// ICheckoutService initiates payments and serves status queries. Checkout is
// the only writer that creates payment records; webhooks may only transition
// records that checkout created first.
type ICheckoutService interface {
	CreatePayment(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.PaymentRecord, error)
	ListPayments(ctx context.Context) ([]*domain.PaymentRecord, error)
}
