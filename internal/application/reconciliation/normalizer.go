package reconciliation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/frogstop/payments/internal/domain"
)

const (
	// Provider discriminators for the anonymous balance-activity shape.
	eventCategoryBalanceActivity = "MURAL_ACCOUNT_BALANCE_ACTIVITY"
	activityTypeAccountCredited  = "account_credited"

	defaultEventType   = "payment.status.updated"
	depositEventType   = "deposit_received"
	defaultBlockchain  = "POLYGON"
	defaultTokenSymbol = "USDC"
)

type webhookPayload struct {
	EventCategory   string           `json:"eventCategory"`
	EventType       string           `json:"eventType"`
	Type            string           `json:"type"`
	PaymentID       string           `json:"paymentId"`
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	Blockchain      string           `json:"blockchain"`
	TokenSymbol     string           `json:"tokenSymbol"`
	Amount          interface{}      `json:"amount"`
	AmountUSDC      interface{}      `json:"amountUSDC"`
	TransactionHash string           `json:"transactionHash"`
	TxHash          string           `json:"txHash"`
	Confirmations   int              `json:"confirmations"`
	Timestamp       string           `json:"timestamp"`
	OccurredAt      string           `json:"occurredAt"`
	Payload         *balanceActivity `json:"payload"`
}

type balanceActivity struct {
	Type               string              `json:"type"`
	TokenAmount        *tokenAmount        `json:"tokenAmount"`
	TransactionDetails *transactionDetails `json:"transactionDetails"`
}

type tokenAmount struct {
	TokenAmount interface{} `json:"tokenAmount"`
	Blockchain  string      `json:"blockchain"`
	TokenSymbol string      `json:"tokenSymbol"`
}

type transactionDetails struct {
	TransactionHash string `json:"transactionHash"`
}

// Normalize maps either known provider payload shape into one canonical
// event. It is permissive: every field has a default and an unknown shape
// still yields a best-effort event. The only failure is a body that is not
// valid JSON, reported as domain.ErrMalformedPayload so the caller can
// distinguish it from business-logic errors.
func Normalize(raw []byte, receivedAt time.Time) (*domain.CanonicalEvent, error) {
	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if payload.EventCategory == eventCategoryBalanceActivity &&
		payload.Payload != nil && payload.Payload.Type == activityTypeAccountCredited {
		return normalizeBalanceActivity(&payload, receivedAt), nil
	}

	eventType := firstNonEmpty(payload.EventType, payload.Type, defaultEventType)
	amount, _ := domain.CanonicalAmount(firstValue(payload.Amount, payload.AmountUSDC))

	return &domain.CanonicalEvent{
		EventType:       eventType,
		PaymentID:       firstNonEmpty(payload.PaymentID, payload.ID),
		Status:          payload.Status,
		Blockchain:      firstNonEmpty(payload.Blockchain, defaultBlockchain),
		TokenSymbol:     firstNonEmpty(payload.TokenSymbol, defaultTokenSymbol),
		Amount:          amount,
		TransactionHash: firstNonEmpty(payload.TransactionHash, payload.TxHash),
		Confirmations:   payload.Confirmations,
		Timestamp:       parseTimestamp(payload.Timestamp, receivedAt),
	}, nil
}

// normalizeBalanceActivity handles the anonymous deposit shape. The provider
// only emits it once the credit has settled on chain, so presence of the
// event implies confirmation: status confirmed, one confirmation, no payment
// id until the matcher resolves one.
func normalizeBalanceActivity(payload *webhookPayload, receivedAt time.Time) *domain.CanonicalEvent {
	p := payload.Payload

	ev := &domain.CanonicalEvent{
		EventType:     depositEventType,
		Status:        string(domain.StatusConfirmed),
		Blockchain:    defaultBlockchain,
		TokenSymbol:   defaultTokenSymbol,
		Confirmations: 1,
		Timestamp:     parseTimestamp(payload.OccurredAt, receivedAt),
	}

	if p.TokenAmount != nil {
		ev.Blockchain = firstNonEmpty(p.TokenAmount.Blockchain, defaultBlockchain)
		ev.TokenSymbol = firstNonEmpty(p.TokenAmount.TokenSymbol, defaultTokenSymbol)
		ev.Amount, _ = domain.CanonicalAmount(p.TokenAmount.TokenAmount)
	}
	if p.TransactionDetails != nil {
		ev.TransactionHash = p.TransactionDetails.TransactionHash
	}

	return ev
}

func parseTimestamp(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}
	return ts
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstValue(values ...interface{}) interface{} {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
