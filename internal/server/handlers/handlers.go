package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/application/checkout"
	"github.com/frogstop/payments/internal/application/reconciliation"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/internal/server/middleware"
	"github.com/frogstop/payments/internal/server/websocket"
	"github.com/frogstop/payments/pkg/config"
)

type Handlers struct {
	CheckoutSvc       checkout.ICheckoutService
	ReconciliationSvc reconciliation.IReconciliationService
	Verifier          interfaces.WebhookVerifier
	WsManager         *websocket.Manager
	Logger            zerolog.Logger
	Config            *config.Config
}

func New(checkoutSvc checkout.ICheckoutService, reconciliationSvc reconciliation.IReconciliationService, verifier interfaces.WebhookVerifier, wsManager *websocket.Manager, logger zerolog.Logger, config *config.Config) *Handlers {
	return &Handlers{
		CheckoutSvc:       checkoutSvc,
		ReconciliationSvc: reconciliationSvc,
		Verifier:          verifier,
		WsManager:         wsManager,
		Logger:            logger,
		Config:            config,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	webhookHandler := NewWebhookHandler(h.ReconciliationSvc, h.Verifier, h.WsManager, h.Logger)
	checkoutHandler := NewCheckoutHandler(h.CheckoutSvc, h.Logger)
	paymentHandler := NewPaymentHandler(h.CheckoutSvc, h.Logger)
	wsHandler := NewWebSocketHandler(h.WsManager, h.Config.WebSocket)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// WebSocket endpoint
	router.GET("/status", wsHandler.HandleConnection)

	v1 := router.Group("/v1")
	{
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/mural", webhookHandler.HandleMuralWebhook)
		}

		v1.POST("/checkout", checkoutHandler.CreatePayment)

		payments := v1.Group("/payments")
		{
			payments.GET("/:id", paymentHandler.GetPayment)
			payments.GET("", middleware.APIKeyAuth(h.Config.Security.APIKey), paymentHandler.ListPayments)
		}
	}
}
