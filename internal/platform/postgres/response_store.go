package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/store"
)

// PostgresResponseStore implements the store.ResponseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresResponseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResponseStore creates a new PostgreSQL implementation of the ResponseStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresResponseStore(db store.DBTX, logger *slog.Logger) *PostgresResponseStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresResponseStore{
		db:     db,
		logger: logger.With(slog.String("component", "response_store")),
	}
}

// Ensure PostgresResponseStore implements store.ResponseStore interface
var _ store.ResponseStore = (*PostgresResponseStore)(nil)

const responseColumns = `id, session_id, atom_id, idempotency_key,
		success_rating, response_time_ms, confidence_level, difficulty_perceived,
		review_method, notes,
		new_interval_days, new_ease_factor, performance_category,
		retention_probability, algorithm_version,
		expires_at, created_at`

// Create implements store.ResponseStore.Create
// Returns store.ErrDuplicateResponse when the partial unique index on
// (session_id, idempotency_key) rejects a repeated key.
func (s *PostgresResponseStore) Create(ctx context.Context, response *domain.ReviewResponse) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := response.Validate(); err != nil {
		log.Warn("response validation failed during create",
			slog.String("error", err.Error()),
			slog.String("response_id", response.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_responses (` + responseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		response.ID,
		response.SessionID,
		response.AtomID,
		nullableString(response.IdempotencyKey),
		response.SuccessRating,
		response.ResponseTimeMs,
		response.ConfidenceLevel,
		response.DifficultyPerceived,
		response.ReviewMethod,
		response.Notes,
		response.NewIntervalDays,
		response.NewEaseFactor,
		string(response.PerformanceCategory),
		response.RetentionProbability,
		response.AlgorithmVersion,
		response.ExpiresAt,
		response.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("duplicate response rejected",
				slog.String("session_id", response.SessionID.String()),
				slog.String("idempotency_key", response.IdempotencyKey))
			return fmt.Errorf("%w: %v", store.ErrDuplicateResponse, err)
		}
		log.Error("failed to create review response",
			slog.String("error", err.Error()),
			slog.String("response_id", response.ID.String()),
			slog.String("session_id", response.SessionID.String()))
		return MapError(err)
	}

	log.Debug("review response recorded",
		slog.String("response_id", response.ID.String()),
		slog.String("session_id", response.SessionID.String()),
		slog.String("atom_id", response.AtomID.String()))
	return nil
}

// GetByIdempotencyKey implements store.ResponseStore.GetByIdempotencyKey
// Returns store.ErrResponseNotFound if no response with the key exists.
func (s *PostgresResponseStore) GetByIdempotencyKey(
	ctx context.Context,
	sessionID uuid.UUID,
	key string,
) (*domain.ReviewResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + responseColumns + `
		FROM review_responses
		WHERE session_id = $1 AND idempotency_key = $2
	`

	response, err := scanResponse(s.db.QueryRowContext(ctx, query, sessionID, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrResponseNotFound
		}
		log.Error("failed to get response by idempotency key",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}

	return response, nil
}

// ListBySession implements store.ResponseStore.ListBySession
// Responses come back in submission order.
func (s *PostgresResponseStore) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]*domain.ReviewResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + responseColumns + `
		FROM review_responses
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		log.Error("failed to list responses for session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	responses := make([]*domain.ReviewResponse, 0)
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, MapError(err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return responses, nil
}

// DeleteExpired implements store.ResponseStore.DeleteExpired
func (s *PostgresResponseStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx, `DELETE FROM review_responses WHERE expires_at <= $1`, now,
	)
	if err != nil {
		log.Error("failed to delete expired responses",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// WithTxResponseStore implements store.ResponseStore.WithTxResponseStore
// It returns a new ResponseStore that executes against the given transaction.
func (s *PostgresResponseStore) WithTxResponseStore(tx *sql.Tx) store.ResponseStore {
	return &PostgresResponseStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanResponse(row rowScanner) (*domain.ReviewResponse, error) {
	var (
		response       domain.ReviewResponse
		idempotencyKey sql.NullString
		category       string
	)

	err := row.Scan(
		&response.ID,
		&response.SessionID,
		&response.AtomID,
		&idempotencyKey,
		&response.SuccessRating,
		&response.ResponseTimeMs,
		&response.ConfidenceLevel,
		&response.DifficultyPerceived,
		&response.ReviewMethod,
		&response.Notes,
		&response.NewIntervalDays,
		&response.NewEaseFactor,
		&category,
		&response.RetentionProbability,
		&response.AlgorithmVersion,
		&response.ExpiresAt,
		&response.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	response.IdempotencyKey = idempotencyKey.String
	response.PerformanceCategory = domain.PerformanceCategory(category)

	return &response, nil
}

// nullableString maps an empty string to SQL NULL, so the partial unique
// index on idempotency keys ignores responses submitted without one.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
