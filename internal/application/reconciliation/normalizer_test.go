package reconciliation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frogstop/payments/internal/domain"
)

var ingestedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalize_StatusUpdateShape(t *testing.T) {
	raw := []byte(`{
		"eventType": "payment.status.updated",
		"paymentId": "pay_1",
		"status": "confirmed",
		"blockchain": "POLYGON",
		"tokenSymbol": "USDC",
		"amount": 10,
		"transactionHash": "0xabc",
		"confirmations": 12,
		"timestamp": "2026-02-28T09:30:00Z"
	}`)

	ev, err := Normalize(raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "payment.status.updated", ev.EventType)
	assert.Equal(t, "pay_1", ev.PaymentID)
	assert.Equal(t, "confirmed", ev.Status)
	assert.Equal(t, "10.00", ev.Amount)
	assert.Equal(t, "0xabc", ev.TransactionHash)
	assert.Equal(t, 12, ev.Confirmations)
	assert.Equal(t, time.Date(2026, 2, 28, 9, 30, 0, 0, time.UTC), ev.Timestamp)
}

func TestNormalize_StatusUpdateAliases(t *testing.T) {
	raw := []byte(`{
		"type": "payment.updated",
		"id": "pay_2",
		"status": "completed",
		"amountUSDC": "25.5",
		"txHash": "0xdef"
	}`)

	ev, err := Normalize(raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "payment.updated", ev.EventType)
	assert.Equal(t, "pay_2", ev.PaymentID)
	assert.Equal(t, "25.50", ev.Amount, "string amounts coerce to the canonical form")
	assert.Equal(t, "0xdef", ev.TransactionHash)
}

func TestNormalize_BalanceActivityShape(t *testing.T) {
	raw := []byte(`{
		"eventCategory": "MURAL_ACCOUNT_BALANCE_ACTIVITY",
		"occurredAt": "2026-02-28T10:00:00Z",
		"payload": {
			"type": "account_credited",
			"tokenAmount": {
				"tokenAmount": 10,
				"blockchain": "POLYGON",
				"tokenSymbol": "USDC"
			},
			"transactionDetails": {
				"transactionHash": "0xfeed"
			}
		}
	}`)

	ev, err := Normalize(raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "deposit_received", ev.EventType)
	assert.Empty(t, ev.PaymentID, "deposit events carry no payment id")
	assert.Equal(t, string(domain.StatusConfirmed), ev.Status)
	assert.Equal(t, "10.00", ev.Amount)
	assert.Equal(t, "0xfeed", ev.TransactionHash)
	assert.Equal(t, 1, ev.Confirmations, "presence of the event implies confirmation")
	assert.Equal(t, time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC), ev.Timestamp)
}

func TestNormalize_BalanceActivityMinimal(t *testing.T) {
	raw := []byte(`{
		"eventCategory": "MURAL_ACCOUNT_BALANCE_ACTIVITY",
		"payload": {"type": "account_credited"}
	}`)

	ev, err := Normalize(raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "POLYGON", ev.Blockchain)
	assert.Equal(t, "USDC", ev.TokenSymbol)
	assert.Empty(t, ev.Amount)
	assert.Equal(t, ingestedAt, ev.Timestamp)
}

func TestNormalize_OtherCategoriesUseStatusUpdateShape(t *testing.T) {
	raw := []byte(`{
		"eventCategory": "MURAL_ACCOUNT_BALANCE_ACTIVITY",
		"payload": {"type": "account_debited"},
		"status": "failed",
		"paymentId": "pay_3"
	}`)

	ev, err := Normalize(raw, ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "pay_3", ev.PaymentID)
	assert.Equal(t, "failed", ev.Status)
}

func TestNormalize_DefaultsOnEmptyObject(t *testing.T) {
	ev, err := Normalize([]byte(`{}`), ingestedAt)
	require.NoError(t, err)

	assert.Equal(t, "payment.status.updated", ev.EventType)
	assert.Empty(t, ev.PaymentID)
	assert.Empty(t, ev.Status)
	assert.Equal(t, "POLYGON", ev.Blockchain)
	assert.Equal(t, "USDC", ev.TokenSymbol)
	assert.Empty(t, ev.Amount)
	assert.Equal(t, ingestedAt, ev.Timestamp)
}

func TestNormalize_BadTimestampFallsBack(t *testing.T) {
	ev, err := Normalize([]byte(`{"timestamp": "yesterday-ish"}`), ingestedAt)
	require.NoError(t, err)
	assert.Equal(t, ingestedAt, ev.Timestamp)
}

func TestNormalize_MalformedJSON(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"status":`} {
		_, err := Normalize([]byte(raw), ingestedAt)
		assert.ErrorIs(t, err, domain.ErrMalformedPayload, "input %q", raw)
	}
}
