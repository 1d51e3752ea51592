package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

const sessionColumns = `id, user_id, session_type, status, started_at, ended_at,
		atom_ids, total_atoms, completed_atoms, settings, expires_at,
		created_at, updated_at`

// Create implements store.SessionStore.Create
// It saves a new review session to the database, handling domain validation.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	atomIDs, err := json.Marshal(session.AtomIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal session atom IDs: %w", err)
	}
	settings, err := json.Marshal(session.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal session settings: %w", err)
	}

	query := `
		INSERT INTO review_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.SessionType,
		string(session.Status),
		session.StartedAt,
		nullableTime(session.EndedAt),
		atomIDs,
		session.TotalAtoms,
		session.CompletedAtoms,
		settings,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create review session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return MapError(err)
	}

	log.Info("review session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.Int("total_atoms", session.TotalAtoms))
	return nil
}

// GetByID implements store.SessionStore.GetByID
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + sessionColumns + ` FROM review_sessions WHERE id = $1`

	var (
		session domain.ReviewSession
		status  string
		endedAt sql.NullTime
		atomIDs []byte
		settings []byte
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.SessionType,
		&status,
		&session.StartedAt,
		&endedAt,
		&atomIDs,
		&session.TotalAtoms,
		&session.CompletedAtoms,
		&settings,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("review session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get review session by ID",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}

	session.Status = domain.SessionStatus(status)
	if endedAt.Valid {
		session.EndedAt = endedAt.Time
	}
	if err := json.Unmarshal(atomIDs, &session.AtomIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session atom IDs: %w", err)
	}
	if err := json.Unmarshal(settings, &session.Settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session settings: %w", err)
	}

	return &session, nil
}

// IncrementProgress implements store.SessionStore.IncrementProgress
// The increment happens inside the database so concurrent submissions
// never read-modify-write a stale counter. The WHERE clause guards both
// the active status and the total, so the counter cannot run past the
// session's atom count.
func (s *PostgresSessionStore) IncrementProgress(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE review_sessions
		SET completed_atoms = completed_atoms + 1,
		    updated_at = $2
		WHERE id = $1
		  AND status = 'active'
		  AND completed_atoms < total_atoms
	`
	result, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		log.Error("failed to increment session progress",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "active review session"); err != nil {
		return fmt.Errorf("%w: %v", store.ErrSessionNotFound, err)
	}

	return nil
}

// MarkCompleted implements store.SessionStore.MarkCompleted
// The status guard makes the transition happen exactly once; a second
// call reports ErrUpdateFailed instead of silently rewriting the end time.
func (s *PostgresSessionStore) MarkCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE review_sessions
		SET status = 'completed',
		    ended_at = $2,
		    updated_at = $2
		WHERE id = $1
		  AND status = 'active'
	`
	result, err := s.db.ExecContext(ctx, query, id, endedAt)
	if err != nil {
		log.Error("failed to mark review session completed",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Distinguish a missing session from one already completed.
		var status string
		err := s.db.QueryRowContext(
			ctx, `SELECT status FROM review_sessions WHERE id = $1`, id,
		).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSessionNotFound
		}
		if err != nil {
			return MapError(err)
		}
		return fmt.Errorf("%w: session already %s", store.ErrUpdateFailed, status)
	}

	log.Info("review session completed",
		slog.String("session_id", id.String()))
	return nil
}

// DeleteExpired implements store.SessionStore.DeleteExpired
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx, `DELETE FROM review_sessions WHERE expires_at <= $1`, now,
	)
	if err != nil {
		log.Error("failed to delete expired sessions",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// WithTxSessionStore implements store.SessionStore.WithTxSessionStore
// It returns a new SessionStore that executes against the given transaction.
func (s *PostgresSessionStore) WithTxSessionStore(tx *sql.Tx) store.SessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
