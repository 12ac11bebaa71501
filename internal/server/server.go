package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/frogstop/payments/internal/application/checkout"
	"github.com/frogstop/payments/internal/application/reconciliation"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/internal/server/handlers"
	"github.com/frogstop/payments/internal/server/middleware"
	"github.com/frogstop/payments/internal/server/websocket"
	"github.com/frogstop/payments/pkg/config"
)

type Server struct {
	CheckoutSvc       checkout.ICheckoutService
	ReconciliationSvc reconciliation.IReconciliationService
	Verifier          interfaces.WebhookVerifier
	Cfg               *config.Config
	Logger            zerolog.Logger
	Router            *gin.Engine
	httpServer        *http.Server
	WsManager         *websocket.Manager
}

func New(cfg *config.Config, checkoutSvc checkout.ICheckoutService, reconciliationSvc reconciliation.IReconciliationService, verifier interfaces.WebhookVerifier, logger zerolog.Logger, wsManager *websocket.Manager) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	return &Server{
		Cfg:               cfg,
		CheckoutSvc:       checkoutSvc,
		ReconciliationSvc: reconciliationSvc,
		Verifier:          verifier,
		Logger:            logger,
		Router:            router,
		WsManager:         wsManager,
	}
}

func (s *Server) SetupRouter() {
	middleware.SetupMiddleware(s.Router)

	handler := handlers.New(
		s.CheckoutSvc,
		s.ReconciliationSvc,
		s.Verifier,
		s.WsManager,
		s.Logger,
		s.Cfg,
	)
	handler.SetupHandlers(s.Router)
}

func (s *Server) Start() {
	s.SetupRouter()

	s.httpServer = &http.Server{
		Addr:         s.Cfg.Server.Host + ":" + s.Cfg.Server.Port,
		Handler:      s.Router,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-stopChan
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	s.Logger.Info().Msg("Server exited gracefully")
}
