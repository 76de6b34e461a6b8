package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	courierapp "github.com/trustdelivery/backoffice/internal/courier/app"
	courierpg "github.com/trustdelivery/backoffice/internal/courier/repository/postgres"
	"github.com/trustdelivery/backoffice/internal/identity/app"
	identitypg "github.com/trustdelivery/backoffice/internal/identity/repository/postgres"
	"github.com/trustdelivery/backoffice/internal/platform/config"
	"github.com/trustdelivery/backoffice/internal/platform/database"
	"github.com/trustdelivery/backoffice/internal/platform/logger"
	"github.com/trustdelivery/backoffice/internal/platform/messagebroker"
	httptransport "github.com/trustdelivery/backoffice/internal/transport/http"
	"github.com/trustdelivery/backoffice/internal/transport/http/middleware"
)

const serviceName = "backoffice-api"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("backoffice API starting", "port", cfg.ServerPort)

	ctx := context.Background()
	dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("connected to PostgreSQL")

	if err := database.Migrate(ctx, dbPool, appLogger); err != nil {
		appLogger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// NATS is optional; without it the API runs with events disabled.
	var identityPublisher app.EventPublisher
	var courierPublisher courierapp.EventPublisher
	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			appLogger.Warn("NATS unavailable, continuing without events", "error", err)
		} else {
			defer natsClient.Close()
			identityPublisher = natsClient
			courierPublisher = natsClient
			appLogger.Info("connected to NATS")
		}
	}

	accountRepo := identitypg.NewPgAccountRepository(dbPool)
	riderRepo := identitypg.NewPgRiderRepository(dbPool)
	shopRepo := identitypg.NewPgShopRepository(dbPool)
	deliveryRepo := courierpg.NewPgDeliveryRepository(dbPool)

	tokenService := app.NewTokenService(app.TokenConfig{
		Secret:       cfg.JWTSecret,
		TTL:          cfg.TokenTTL(),
		RefreshBelow: cfg.RefreshThreshold(),
	})
	authService := app.NewAuthService(accountRepo, tokenService, identityPublisher, app.AuthConfig{
		MaxFailedLogins: cfg.AuthMaxFailedLogins,
		LockoutDuration: cfg.LockoutDuration(),
	}, appLogger)
	accountService := app.NewAccountService(accountRepo, appLogger)
	riderService := app.NewRiderService(dbPool, accountRepo, riderRepo, appLogger)
	shopService := app.NewShopService(shopRepo, appLogger)
	deliveryService := courierapp.NewDeliveryService(deliveryRepo, riderRepo, shopRepo, courierPublisher, appLogger)

	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRateMaxAttempts, cfg.LoginRateWindow())

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:         authService,
		Tokens:       tokenService,
		Accounts:     accountRepo,
		Users:        accountService,
		Riders:       riderService,
		Shops:        shopService,
		Deliveries:   deliveryService,
		LoginLimiter: loginLimiter,
		Logger:       appLogger,
		Debug:        cfg.Debug,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		appLogger.Error("HTTP server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		appLogger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	appLogger.Info("backoffice API stopped")
}
