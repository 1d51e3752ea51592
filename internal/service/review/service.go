// Package review implements the review engine's application services:
// selecting due atoms, running review sessions, and summarizing session
// performance. It sits between the HTTP layer and the stores, and owns
// the transactional write path for response submission.
package review

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/domain/srs"
)

// Common error types for the review services
var (
	// ErrNoAtomsDue indicates that the user has no atoms due for review.
	ErrNoAtomsDue = errors.New("no atoms due for review")

	// ErrSessionNotFound indicates that the review session does not exist.
	ErrSessionNotFound = errors.New("review session not found")

	// ErrAtomNotFound indicates that the atom does not exist.
	ErrAtomNotFound = errors.New("atom not found")

	// ErrAtomNotInSession indicates the atom is not part of the session's
	// review list.
	ErrAtomNotInSession = errors.New("atom not part of review session")

	// ErrSessionCompleted indicates the session has already been completed
	// and accepts no further operations.
	ErrSessionCompleted = errors.New("review session already completed")

	// ErrInvalidResponse indicates an invalid response submission.
	ErrInvalidResponse = errors.New("invalid review response")
)

// DueItem is one atom selected for review, with its selection scores and
// time estimate.
type DueItem struct {
	Atom             *domain.Atom `json:"atom"`
	Urgency          float64      `json:"urgency"`
	Priority         float64      `json:"priority"`
	EstimatedMinutes float64      `json:"estimated_minutes"`
}

// DueItems is the result of a due-item selection: the chosen atoms in
// priority order plus aggregate planning hints.
type DueItems struct {
	Items                 []DueItem `json:"items"`
	TotalEstimatedMinutes float64   `json:"total_estimated_minutes"`
	// ReviewLimitReached is true when the selection filled the effective
	// limit, meaning more atoms may be due beyond this page.
	ReviewLimitReached bool `json:"review_limit_reached"`
	// NextReviewAt suggests when the client should check back. Zero when
	// nothing was selected.
	NextReviewAt time.Time `json:"next_review_at,omitempty"`
}

// Selector chooses which due atoms a user should review next.
type Selector interface {
	// SelectDueItems returns up to limit atoms due for review, highest
	// priority first. A limit of zero or less falls back to the
	// configured default; limits above the configured maximum are capped.
	// Returns an empty result (not an error) when nothing is due.
	SelectDueItems(ctx context.Context, userID uuid.UUID, limit int, now time.Time) (*DueItems, error)
}

// StartSessionInput carries the caller's knobs for a new review session.
// Zero values fall back to defaults (regular type, configured atom limit,
// 30 minute nominal time limit).
type StartSessionInput struct {
	UserID           uuid.UUID
	SessionType      string
	MaxAtoms         int
	TimeLimitMinutes int
	ShuffleOrder     bool
	ShowHints        bool
}

// StartedSession is the result of starting a session: the stored session
// plus the atoms to review, in session order.
type StartedSession struct {
	Session               *domain.ReviewSession
	Atoms                 []*domain.Atom
	TotalEstimatedMinutes float64
}

// SubmitResponseInput carries one learner answer into the engine.
type SubmitResponseInput struct {
	AtomID              uuid.UUID
	IdempotencyKey      string
	SuccessRating       float64
	ResponseTimeMs      int
	ConfidenceLevel     float64
	DifficultyPerceived float64
	ReviewMethod        string
	Notes               string
}

// SubmitResult is what the caller gets back after a response is recorded:
// the immutable response record, the calculation detail that produced it,
// and the session's updated progress.
type SubmitResult struct {
	Response       *domain.ReviewResponse
	Details        srs.Details
	CompletedAtoms int
	TotalAtoms     int
	// Replayed is true when the idempotency key matched an earlier
	// submission and the stored result was returned instead of writing
	// a new one.
	Replayed bool
}

// SessionSummary is the result of ending a session: the final session
// state plus statistics over everything answered in it.
type SessionSummary struct {
	Session    *domain.ReviewSession
	Statistics *SessionStatistics
	// NextReviewSuggestion tells the learner whether more atoms are
	// already waiting.
	NextReviewSuggestion string
}

// SessionState is the current view of a session for status polling.
type SessionState struct {
	Session            *domain.ReviewSession
	ResponsesSubmitted int
}

// SessionService orchestrates the review session lifecycle.
type SessionService interface {
	// StartSession selects due atoms and creates an active session over
	// them. Returns ErrNoAtomsDue when the user has nothing to review;
	// callers surface that as an empty result rather than a failure.
	StartSession(ctx context.Context, in StartSessionInput) (*StartedSession, error)

	// SubmitResponse records one answer in an active session, updates the
	// atom's schedule via the interval calculator, and advances session
	// progress. The three writes happen in a single transaction.
	// Returns ErrSessionNotFound, ErrSessionCompleted, ErrAtomNotInSession
	// or ErrInvalidResponse as appropriate.
	SubmitResponse(ctx context.Context, sessionID uuid.UUID, in SubmitResponseInput) (*SubmitResult, error)

	// EndSession transitions an active session to completed and returns
	// summary statistics. Ending an already-completed session returns
	// ErrSessionCompleted.
	EndSession(ctx context.Context, sessionID uuid.UUID) (*SessionSummary, error)

	// GetSession returns the current state of a session.
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionState, error)
}
