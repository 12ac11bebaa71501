package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/application/checkout"
	"github.com/frogstop/payments/internal/domain"
)

type PaymentHandler struct {
	checkoutSvc checkout.ICheckoutService
	logger      zerolog.Logger
}

func NewPaymentHandler(checkoutSvc checkout.ICheckoutService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		checkoutSvc: checkoutSvc,
		logger:      logger,
	}
}

type paymentResponse struct {
	PaymentID        string                  `json:"paymentId"`
	Status           domain.PaymentStatus    `json:"status"`
	AmountUSDC       string                  `json:"amountUSDC"`
	Currency         string                  `json:"currency"`
	DepositAddress   string                  `json:"depositAddress"`
	TransactionHash  string                  `json:"transactionHash,omitempty"`
	WithdrawalStatus domain.WithdrawalStatus `json:"withdrawalStatus,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
	ExpiresAt        time.Time               `json:"expiresAt"`
}

func toPaymentResponse(record *domain.PaymentRecord) paymentResponse {
	return paymentResponse{
		PaymentID:        record.PaymentID,
		Status:           record.Status,
		AmountUSDC:       record.Amount,
		Currency:         record.Currency,
		DepositAddress:   record.DepositAddress,
		TransactionHash:  record.TransactionHash,
		WithdrawalStatus: record.WithdrawalStatus,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
		ExpiresAt:        record.ExpiresAt,
	}
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

	record, err := h.checkoutSvc.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.logger.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to fetch payment")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to fetch payment",
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Payment not found",
		})
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(record))
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	records, err := h.checkoutSvc.ListPayments(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list payments")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to list payments",
		})
		return
	}

	payments := make([]paymentResponse, 0, len(records))
	for _, record := range records {
		payments = append(payments, toPaymentResponse(record))
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"count":    len(payments),
	})
}
