package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string
type WithdrawalStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusConfirmed PaymentStatus = "confirmed"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
)

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusFailed     WithdrawalStatus = "failed"
)

var (
	// ErrPaymentNotFound is returned by store operations that are conditioned
	// on the payment record existing. A webhook referencing an id that was
	// never created is a data-integrity anomaly, not a normal business outcome.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrMalformedPayload marks webhook bodies that are not valid JSON,
	// distinct from business-logic failures after parsing.
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// PaymentRecord is the unit of reconciliation. Amount is kept in a single
// canonical fixed-two-decimal string representation so that equality matching
// of anonymous deposits is deterministic.
type PaymentRecord struct {
	PaymentID        string           `json:"payment_id" db:"payment_id"`
	AccountID        string           `json:"account_id" db:"account_id"`
	DepositAddress   string           `json:"deposit_address" db:"deposit_address"`
	Blockchain       string           `json:"blockchain" db:"blockchain"`
	TokenSymbol      string           `json:"token_symbol" db:"token_symbol"`
	Amount           string           `json:"amount" db:"amount"`
	Currency         string           `json:"currency" db:"currency"`
	Status           PaymentStatus    `json:"status" db:"status"`
	TransactionHash  string           `json:"transaction_hash" db:"transaction_hash"`
	WithdrawalStatus WithdrawalStatus `json:"withdrawal_status,omitempty" db:"withdrawal_status"`
	Details          json.RawMessage  `json:"details,omitempty" db:"details"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
	ExpiresAt        time.Time        `json:"expires_at" db:"expires_at"`
}

// CanonicalAmount coerces an amount of any JSON-decoded type into the
// canonical fixed-two-decimal string. The second return is false when the
// value is absent or not a usable quantity.
func CanonicalAmount(v interface{}) (string, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return "", false
		}
		return d.StringFixed(2), true
	case float64:
		return decimal.NewFromFloat(n).StringFixed(2), true
	case int:
		return decimal.NewFromInt(int64(n)).StringFixed(2), true
	case int64:
		return decimal.NewFromInt(n).StringFixed(2), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return "", false
		}
		return d.StringFixed(2), true
	default:
		return "", false
	}
}
