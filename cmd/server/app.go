package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/micronotes/review-api/internal/api"
	"github.com/micronotes/review-api/internal/config"
	"github.com/micronotes/review-api/internal/domain/srs"
	"github.com/micronotes/review-api/internal/platform/postgres"
	"github.com/micronotes/review-api/internal/service/review"
	"github.com/micronotes/review-api/internal/store"
)

// purgeInterval is how often the retention sweep removes expired
// sessions and responses.
const purgeInterval = time.Hour

// application holds the wired-up dependencies for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	sessionStore  store.SessionStore
	responseStore store.ResponseStore

	reviewHandler  *api.ReviewHandler
	sessionHandler *api.SessionHandler
}

// newApplication builds the dependency graph: stores over the database
// connection, domain services over the stores, and HTTP handlers over the
// services.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	atomStore := postgres.NewPostgresAtomStore(db, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, logger)
	responseStore := postgres.NewPostgresResponseStore(db, logger)

	srsService := srs.NewDefaultService()
	selector := review.NewSelector(
		atomStore, cfg.Review.DefaultDueLimit, cfg.Review.MaxDueLimit, logger)

	sessionService := review.NewSessionService(
		db,
		atomStore,
		sessionStore,
		responseStore,
		selector,
		srsService,
		time.Duration(cfg.Review.SessionRetentionDays)*24*time.Hour,
		time.Duration(cfg.Review.ResponseRetentionDays)*24*time.Hour,
		logger,
	)

	return &application{
		config:         cfg,
		logger:         logger,
		db:             db,
		sessionStore:   sessionStore,
		responseStore:  responseStore,
		reviewHandler:  api.NewReviewHandler(selector, srsService, logger),
		sessionHandler: api.NewSessionHandler(sessionService, logger),
	}
}

// startPurgeSweep runs the retention sweep on a fixed interval until the
// context is canceled. Expired rows are removed in the background so request
// handlers never pay the deletion cost.
func (app *application) startPurgeSweep(ctx context.Context) {
	log := app.logger.With(slog.String("component", "purge_sweep"))

	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debug("purge sweep stopped")
				return
			case <-ticker.C:
				app.purgeExpired(ctx, log)
			}
		}
	}()
}

// purgeExpired deletes sessions and responses whose retention window has
// passed. Failures are logged and retried on the next tick.
func (app *application) purgeExpired(ctx context.Context, log *slog.Logger) {
	now := time.Now().UTC()

	sessions, err := app.sessionStore.DeleteExpired(ctx, now)
	if err != nil {
		log.Error("failed to purge expired sessions", slog.String("error", err.Error()))
	}

	responses, err := app.responseStore.DeleteExpired(ctx, now)
	if err != nil {
		log.Error("failed to purge expired responses", slog.String("error", err.Error()))
	}

	if sessions > 0 || responses > 0 {
		log.Info("purged expired records",
			slog.Int64("sessions", sessions),
			slog.Int64("responses", responses))
	}
}
