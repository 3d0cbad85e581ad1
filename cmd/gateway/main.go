package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/adapters/kafka"
	"github.com/DanielPopoola/tourvista-payments/internal/adapters/mail"
	"github.com/DanielPopoola/tourvista-payments/internal/adapters/postgres"
	"github.com/DanielPopoola/tourvista-payments/internal/adapters/razorpay"
	"github.com/DanielPopoola/tourvista-payments/internal/api"
	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest/middleware"
	"github.com/DanielPopoola/tourvista-payments/internal/invoice"
	"github.com/DanielPopoola/tourvista-payments/internal/metrics"
	"github.com/DanielPopoola/tourvista-payments/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()

	if cfg.Database.MigrateOnStart {
		if err := migrateUp(cfg, logger); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := postgres.NewStore(db, logger)
	m := metrics.New()

	gatewayClient := razorpay.NewClient(cfg.Gateway)
	retryGateway := razorpay.NewRetryClient(gatewayClient, cfg.Retry)

	orchestrator := service.NewPaymentOrchestrator(
		store,
		retryGateway,
		cfg.Gateway.Currency,
		logger,
		service.WithRecorder(m),
	)
	bookingService := service.NewBookingService(store, logger)
	passengerService := service.NewPassengerService(store, logger)
	queryService := service.NewPaymentQueryService(store)
	invoices := invoice.NewGenerator(store, cfg.Mail.CompanyName, cfg.Gateway.Currency, logger)

	doc, err := api.Load(ctx)
	if err != nil {
		logger.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}
	validateRequests, err := middleware.RequestValidator(doc, logger)
	if err != nil {
		logger.Error("failed to build request validator", "error", err)
		os.Exit(1)
	}

	h := handlers.NewHandlers(
		orchestrator,
		bookingService,
		passengerService,
		queryService,
		invoices,
		db,
		logger,
	).WithWebhookTimeout(cfg.Server.WebhookTimeout)

	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux)
	h.RegisterRoutes(mux)
	mux.Handle("GET "+cfg.Metrics.Path, m.Handler())

	handler := validateRequests(mux)
	handler = middleware.Metrics(m)(handler)
	handler = middleware.Recovery(logger, m)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.RequestTimeout, handlers.WebhookRoute)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var publisher ports.EventPublisher
	if cfg.Kafka.Enabled {
		kp, err := kafka.NewPublisher(cfg.Kafka, logger)
		if err != nil {
			logger.Error("failed to create kafka publisher", "error", err)
			os.Exit(1)
		}
		defer kp.Close()
		publisher = kp
	}

	dispatcher := worker.NewOutboxDispatcher(
		store,
		mail.NewNotifier(cfg.Mail, logger),
		publisher,
		invoices,
		m,
		cfg.Worker,
		logger,
	)
	integrityChecker := worker.NewIntegrityChecker(
		store.Payments(),
		m,
		cfg.Worker.IntegrityInterval,
		cfg.Worker.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		dispatcher.Start(workerCtx)
	}()
	go func() {
		defer wg.Done()
		integrityChecker.Start(workerCtx)
	}()

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	cancelWorkers()
	wg.Wait()

	logger.Info("server exited")
}

func migrateUp(cfg *config.Config, logger *slog.Logger) error {
	migrator, err := postgres.NewMigrator(cfg.Database.URL(), logger)
	if err != nil {
		return err
	}
	defer migrator.Close()
	return migrator.Up()
}
