package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
)

// SessionStore defines the interface for review session persistence.
type SessionStore interface {
	// Create saves a new review session to the store.
	// Returns validation errors if the session data is invalid.
	Create(ctx context.Context, session *domain.ReviewSession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error)

	// IncrementProgress advances the session's completed atom counter by
	// one, guarded at the database level so the counter never exceeds the
	// total and only moves while the session is active. Concurrent
	// submissions each get their own increment.
	// Returns ErrSessionNotFound if no active session with capacity matches.
	//
	// This method is called as part of a response submission and MUST be
	// run within a transaction alongside the response insert and atom
	// schedule update. Use WithTxSessionStore with store.RunInTransaction.
	IncrementProgress(ctx context.Context, id uuid.UUID) error

	// MarkCompleted transitions an active session to completed, recording
	// the end time. The transition happens exactly once: a session already
	// completed is left untouched and ErrUpdateFailed is returned so the
	// caller can reject the repeat.
	MarkCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time) error

	// DeleteExpired removes sessions whose retention window has passed.
	// Returns the number of sessions removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// WithTxSessionStore returns a new SessionStore instance that uses the
	// provided transaction. The transaction should be created and managed
	// by the caller (typically a service).
	WithTxSessionStore(tx *sql.Tx) SessionStore
}
