package main

import (
	"github.com/frogstop/payments/internal/application/checkout"
	"github.com/frogstop/payments/internal/application/payout"
	"github.com/frogstop/payments/internal/application/reconciliation"
	"github.com/frogstop/payments/internal/domain/interfaces"
	"github.com/frogstop/payments/internal/infrastructure/database"
	"github.com/frogstop/payments/internal/infrastructure/http/clients"
	"github.com/frogstop/payments/internal/infrastructure/verifier"
	"github.com/frogstop/payments/internal/repositories/paymentrepo"
	"github.com/frogstop/payments/internal/server"
	"github.com/frogstop/payments/internal/server/websocket"
	"github.com/frogstop/payments/pkg/config"
	"github.com/frogstop/payments/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithConfig(cfg.Logger)

	var paymentRepo paymentrepo.IPaymentRepository
	if cfg.Database.Host != "" {
		db, err := database.New(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.ShutDown()
		paymentRepo = paymentrepo.New(db, log)
	} else {
		log.Warn().Msg("No database configured, using in-memory payment store")
		paymentRepo = paymentrepo.NewMemory()
	}

	var providerClient interfaces.ProviderClient
	if cfg.Mural.APIKey != "" {
		providerClient = clients.NewMuralClient(cfg.Mural, log)
	} else {
		log.Warn().Msg("No Mural API key configured, using sandbox provider client")
		providerClient = clients.NewSandboxClient(cfg.Mural.AccountID, log)
	}

	webhookVerifier, err := verifier.New(cfg.Webhook, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize webhook verifier")
	}

	payoutOrchestrator := payout.New(providerClient, cfg.Payout, cfg.Checkout.Blockchain, log)

	checkoutService := checkout.NewCheckoutService(
		paymentRepo,
		providerClient,
		cfg.Checkout,
		cfg.Server.Environment,
		log,
	)
	reconciliationService := reconciliation.NewReconciliationService(
		paymentRepo,
		payoutOrchestrator,
		log,
	)

	wsManager := websocket.NewManager(log)

	srv := server.New(cfg, checkoutService, reconciliationService, webhookVerifier, log, wsManager)
	srv.Start()
}
