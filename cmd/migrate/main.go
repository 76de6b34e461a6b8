package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/trustdelivery/backoffice/internal/platform/config"
	"github.com/trustdelivery/backoffice/internal/platform/database"
	"github.com/trustdelivery/backoffice/internal/platform/logger"
)

// Applies any pending schema migrations and exits. The API binary also runs
// migrations on boot; this exists for deploy pipelines that migrate first.
func main() {
	cfg, err := config.Load("backoffice-migrate")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)

	ctx := context.Background()
	dbPool, err := database.NewDBPool(ctx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.Migrate(ctx, dbPool, appLogger); err != nil {
		appLogger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	appLogger.Info("migrations up to date")
}
