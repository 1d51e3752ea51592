// Package main implements the entry point for the MicroNotes review API
// server, which schedules spaced-repetition reviews over note atoms and
// tracks review sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/micronotes/review-api/internal/config"
	"github.com/micronotes/review-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// run loads configuration, connects the backing services, and either
// executes a migration command or starts the HTTP server.
func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	slog.SetDefault(appLogger)

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("failed to close database", slog.String("error", closeErr.Error()))
		}
	}()

	if migrateCmd != "" {
		if err := runMigrations(db, migrateCmd, appLogger); err != nil {
			return fmt.Errorf("migration %q failed: %w", migrateCmd, err)
		}
		appLogger.Info("migration command completed", slog.String("command", migrateCmd))
		return nil
	}

	// Normal startup applies pending migrations before serving traffic.
	if err := runMigrations(db, "up", appLogger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app := newApplication(cfg, appLogger, db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.startPurgeSweep(ctx)

	return app.startHTTPServer(ctx, app.setupRouter())
}
