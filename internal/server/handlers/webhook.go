package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/application/reconciliation"
	"github.com/frogstop/payments/internal/domain"
	"github.com/frogstop/payments/internal/domain/interfaces"
)

const (
	signatureHeader = "X-Mural-Webhook-Signature"
	timestampHeader = "X-Mural-Webhook-Timestamp"
)

// WebhookHandler is the ingestion edge: it authenticates the raw body,
// normalizes it and hands the canonical event to reconciliation. The raw
// bytes are used for signature verification exactly as received; the body is
// never re-serialized before verification.
type WebhookHandler struct {
	reconciliationSvc reconciliation.IReconciliationService
	verifier          interfaces.WebhookVerifier
	streamer          interfaces.PaymentStreamer
	logger            zerolog.Logger
}

func NewWebhookHandler(reconciliationSvc reconciliation.IReconciliationService, verifier interfaces.WebhookVerifier, streamer interfaces.PaymentStreamer, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciliationSvc: reconciliationSvc,
		verifier:          verifier,
		streamer:          streamer,
		logger:            logger,
	}
}

func (h *WebhookHandler) HandleMuralWebhook(c *gin.Context) {
	receivedAt := time.Now().UTC()

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read webhook body")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader(signatureHeader)
	timestamp := c.GetHeader(timestampHeader)

	if !h.verifier.Verify(rawBody, signature, timestamp) {
		h.logger.Warn().
			Str("timestamp", timestamp).
			Int("body_bytes", len(rawBody)).
			Msg("Webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Invalid webhook signature",
		})
		return
	}

	event, err := reconciliation.Normalize(rawBody, receivedAt)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to parse webhook payload")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Malformed webhook payload",
		})
		return
	}

	result, err := h.reconciliationSvc.ProcessEvent(c.Request.Context(), event)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			h.logger.Error().
				Str("payment_id", event.PaymentID).
				Msg("Webhook referenced unknown payment")
		} else {
			h.logger.Error().Err(err).
				Str("payment_id", event.PaymentID).
				Msg("Failed to process webhook event")
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to process webhook",
		})
		return
	}

	if result.Outcome == domain.OutcomeTransitioned && h.streamer != nil {
		h.streamer.BroadcastPayment(&domain.PaymentUpdate{
			Type:             "payment.updated",
			PaymentID:        result.PaymentID,
			Status:           result.Status,
			WithdrawalStatus: result.WithdrawalStatus,
			TransactionHash:  event.TransactionHash,
			Timestamp:        receivedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
		"outcome":  result.Outcome,
		"message":  result.Message,
	})
}
