package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/application/checkout"
)

type CheckoutHandler struct {
	checkoutSvc checkout.ICheckoutService
	logger      zerolog.Logger
}

func NewCheckoutHandler(checkoutSvc checkout.ICheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutSvc: checkoutSvc,
		logger:      logger,
	}
}

func (h *CheckoutHandler) CreatePayment(c *gin.Context) {
	var req checkout.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Amount must be greater than zero",
		})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Cart items are required",
		})
		return
	}

	resp, err := h.checkoutSvc.CreatePayment(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error().Err(err).Float64("amount", req.Amount).Msg("Failed to create payment")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to create payment",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
