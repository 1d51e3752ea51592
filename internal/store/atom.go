package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
)

// AtomStore defines the interface for atom data persistence.
type AtomStore interface {
	// Create saves a new atom to the store.
	// All atoms must be valid according to domain validation rules.
	// Returns validation errors if any atom data is invalid.
	Create(ctx context.Context, atom *domain.Atom) error

	// GetByID retrieves an atom by its unique ID.
	// Returns ErrAtomNotFound if the atom does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Atom, error)

	// GetMultiple retrieves the atoms with the given IDs, in the order
	// the IDs were supplied. IDs with no matching atom are skipped.
	GetMultiple(ctx context.Context, ids []uuid.UUID) ([]*domain.Atom, error)

	// FindDueCandidates retrieves up to limit atoms for the given user
	// whose next review time is at or before now, or that have never been
	// scheduled. Results are ordered by next review time ascending with
	// never-scheduled atoms first, so the most overdue work surfaces
	// within a bounded scan.
	FindDueCandidates(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.Atom, error)

	// UpdateSchedule replaces the atom's review schedule state and
	// difficulty score. Returns ErrAtomNotFound if the atom does not exist.
	//
	// This method is called as part of a response submission and MUST be
	// run within a transaction alongside the response insert and session
	// progress update. Use WithTxAtomStore with store.RunInTransaction.
	UpdateSchedule(ctx context.Context, id uuid.UUID, schedule domain.ReviewSchedule, difficulty float64) error

	// WithTxAtomStore returns a new AtomStore instance that uses the provided
	// transaction. This allows for multiple operations to be executed within
	// a single transaction. The transaction should be created and managed by
	// the caller (typically a service).
	WithTxAtomStore(tx *sql.Tx) AtomStore
}
