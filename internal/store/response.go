package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
)

// ResponseStore defines the interface for review response persistence.
// Responses are immutable records: there are no update operations.
type ResponseStore interface {
	// Create saves a new review response to the store.
	// Returns ErrDuplicateResponse if a response with the same idempotency
	// key already exists for the session.
	//
	// This method is called as part of a response submission and MUST be
	// run within a transaction alongside the atom schedule update and
	// session progress increment. Use WithTxResponseStore with
	// store.RunInTransaction.
	Create(ctx context.Context, response *domain.ReviewResponse) error

	// GetByIdempotencyKey retrieves the response previously recorded for
	// the given session and idempotency key.
	// Returns ErrResponseNotFound if no such response exists.
	GetByIdempotencyKey(ctx context.Context, sessionID uuid.UUID, key string) (*domain.ReviewResponse, error)

	// ListBySession retrieves all responses recorded for a session, in
	// submission order. Returns an empty slice when the session has no
	// responses yet.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.ReviewResponse, error)

	// DeleteExpired removes responses whose retention window has passed.
	// Returns the number of responses removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// WithTxResponseStore returns a new ResponseStore instance that uses
	// the provided transaction. The transaction should be created and
	// managed by the caller (typically a service).
	WithTxResponseStore(tx *sql.Tx) ResponseStore
}
