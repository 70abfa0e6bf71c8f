package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Stephen-Muteti/writing-backend/internal/application/services"
	"github.com/Stephen-Muteti/writing-backend/internal/config"
	"github.com/Stephen-Muteti/writing-backend/internal/infrastructure/collaborators"
	"github.com/Stephen-Muteti/writing-backend/internal/infrastructure/db/postgres"
	"github.com/Stephen-Muteti/writing-backend/internal/infrastructure/storage"
	rest "github.com/Stephen-Muteti/writing-backend/internal/interface/api/rest/chi"
	"github.com/Stephen-Muteti/writing-backend/internal/interface/api/rest/middleware"
	"github.com/Stephen-Muteti/writing-backend/pkg/logger"
	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
)

// Version indicates the current version of the application.
var Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Server run context.
	serverCtx, serverStopCtx := context.WithCancel(context.Background())
	defer serverStopCtx()

	// Load application configurations.
	cfg := config.MustLoad()

	// Create root logger tagged with server version.
	logger := logger.New(cfg).With(serverCtx, "version", Version)

	db, err := postgres.Connect(cfg, logger)
	if err != nil {
		return err
	}

	// Close connection.
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(err)
		}
		_ = logger.Sync()
	}()

	// Create tables and indexes if they do not exist yet.
	if err = postgres.Bootstrap(serverCtx, db); err != nil {
		return fmt.Errorf("failed to bootstrap the database: %w", err)
	}

	// Create default transaction manager for database/sql package.
	trManager := manager.Must(
		trmsql.NewDefaultFactory(db),
		manager.WithCtxManager(trmcontext.DefaultManager),
	)

	// Init repositories.
	bidRepo, err := postgres.NewBidRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init bid repository: %w", err)
	}

	orderRepo, err := postgres.NewOrderRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init order repository: %w", err)
	}

	paymentRepo, err := postgres.NewPaymentRepository(db, trmsql.DefaultCtxGetter, logger)
	if err != nil {
		return fmt.Errorf("failed to init payment repository: %w", err)
	}

	userRepo, err := postgres.NewUserRepository(db, logger)
	if err != nil {
		return fmt.Errorf("failed to init user repository: %w", err)
	}

	// Init collaborator clients.
	notifier, err := collaborators.NewNotifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init notifier: %w", err)
	}
	defer notifier.Stop()

	messenger, err := collaborators.NewMessenger(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init messenger: %w", err)
	}

	pricer, err := collaborators.NewPricer(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init pricer: %w", err)
	}

	fileStore, err := storage.NewFileStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init file store: %w", err)
	}

	// Init services.
	authService, err := services.NewAuthService(userRepo, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init auth service: %w", err)
	}

	bidService, err := services.NewBidService(
		bidRepo, orderRepo, userRepo, trManager, messenger, notifier, logger)
	if err != nil {
		return fmt.Errorf("failed to init bid service: %w", err)
	}

	orderService, err := services.NewOrderService(
		orderRepo, bidRepo, paymentRepo, userRepo, trManager, pricer, notifier, fileStore, logger)
	if err != nil {
		return fmt.Errorf("failed to init order service: %w", err)
	}

	paymentService, err := services.NewPaymentService(
		paymentRepo, userRepo, trManager, notifier, logger)
	if err != nil {
		return fmt.Errorf("failed to init payment service: %w", err)
	}

	// Create root router and register controllers.
	router := rest.InitChi(logger, cfg)

	options := rest.ChiServerOptions{
		BaseURL:     "/api/v1",
		BaseRouter:  router,
		Middlewares: []rest.MiddlewareFunc{middleware.Middleware(authService)},
	}

	rest.NewBidController(bidService, options)
	rest.NewOrderController(orderService, options)
	rest.NewPaymentController(paymentService, options)

	// Build HTTP server.
	hs := &http.Server{
		Addr:              cfg.HTTPServer.Address,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:       cfg.HTTPServer.IdleTimeout,
		Handler:           router,
	}

	// Graceful shutdown.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT,
			syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

		signal := <-sig

		logger.With(serverCtx, "signal", signal.String()).
			Infof("Shutting down server with %s timeout",
				cfg.HTTPServer.ShutdownTimeout)

		if err = hs.Shutdown(serverCtx); err != nil {
			logger.Errorf("graceful shutdown failed: %s", err)
		}
		serverStopCtx()
	}()

	// Start the HTTP server with graceful shutdown.
	logger.Infof("Server %v is running at %v", Version, cfg.HTTPServer.Address)
	if err = hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run server failed: %w", err)
	}

	// Wait for server context to be stopped or force exit if timeout exceeded.
	select {
	case <-serverCtx.Done():
	case <-time.After(cfg.HTTPServer.ShutdownTimeout):
		return errors.New("graceful shutdown timed out.. forcing exit")
	}

	return nil
}
