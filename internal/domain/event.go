package domain

import "time"

// CanonicalEvent is the shape-independent internal form of a provider
// webhook notification. Status stays a raw string so unrecognized provider
// statuses flow through to the controller, which acknowledges them without a
// transition. PaymentID is empty for anonymous deposit events until the
// matcher resolves them.
type CanonicalEvent struct {
	EventType       string    `json:"event_type"`
	PaymentID       string    `json:"payment_id"`
	Status          string    `json:"status"`
	Blockchain      string    `json:"blockchain"`
	TokenSymbol     string    `json:"token_symbol"`
	Amount          string    `json:"amount"`
	TransactionHash string    `json:"transaction_hash"`
	Confirmations   int       `json:"confirmations"`
	Timestamp       time.Time `json:"timestamp"`
}

type ReconciliationOutcome string

const (
	// OutcomeTransitioned means the event moved a payment record to a new status.
	OutcomeTransitioned ReconciliationOutcome = "transitioned"
	// OutcomeDuplicate means the stored status already reflected the event.
	OutcomeDuplicate ReconciliationOutcome = "duplicate"
	// OutcomeUnmatched means an anonymous deposit matched no pending payment.
	OutcomeUnmatched ReconciliationOutcome = "unmatched"
	// OutcomeIgnored means the event carried nothing actionable.
	OutcomeIgnored ReconciliationOutcome = "ignored"
	// OutcomeUnknownStatus means the status value is not part of the lifecycle.
	OutcomeUnknownStatus ReconciliationOutcome = "unknown_status"
)

type ReconciliationResult struct {
	Outcome          ReconciliationOutcome `json:"outcome"`
	PaymentID        string                `json:"payment_id,omitempty"`
	Status           PaymentStatus         `json:"status,omitempty"`
	WithdrawalStatus WithdrawalStatus      `json:"withdrawal_status,omitempty"`
	PayoutID         string                `json:"payout_id,omitempty"`
	Message          string                `json:"message"`
}

// PaymentUpdate is pushed to websocket subscribers on every reconciliation
// transition.
type PaymentUpdate struct {
	Type             string           `json:"type"`
	PaymentID        string           `json:"payment_id"`
	Status           PaymentStatus    `json:"status"`
	WithdrawalStatus WithdrawalStatus `json:"withdrawal_status,omitempty"`
	TransactionHash  string           `json:"transaction_hash,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
}
