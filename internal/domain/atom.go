package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Atom-specific validation errors
var (
	// ErrAtomIDEmpty is returned when an atom ID is empty or nil.
	ErrAtomIDEmpty = errors.New("atom ID cannot be empty")

	// ErrAtomUserIDEmpty is returned when an atom's user ID is empty or nil.
	ErrAtomUserIDEmpty = errors.New("atom user ID cannot be empty")

	// ErrAtomContentEmpty is returned when an atom's content is empty.
	ErrAtomContentEmpty = errors.New("atom content cannot be empty")

	// ErrInvalidImportanceScore is returned when an importance score is outside [0, 1].
	ErrInvalidImportanceScore = errors.New("importance score must be between 0 and 1")

	// ErrInvalidDifficultyScore is returned when a difficulty score is outside [0, 1].
	ErrInvalidDifficultyScore = errors.New("difficulty score must be between 0 and 1")
)

// ReviewSchedule validation errors
var (
	// ErrInvalidInterval is returned when a review interval is below one day.
	ErrInvalidInterval = errors.New("interval must be at least 1 day")

	// ErrInvalidEaseFactor is returned when an ease factor falls outside its bounds.
	ErrInvalidEaseFactor = errors.New("ease factor must be between 1.3 and 3.0")

	// ErrInvalidReviewCount is returned when a review count is negative.
	ErrInvalidReviewCount = errors.New("review count cannot be negative")
)

// Ease factor bounds and default for the scheduling algorithm.
// These are the only values ReviewSchedule enforces; the srs package owns
// how the ease factor moves inside them.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
)

// ReviewSchedule holds the spaced-repetition state embedded in an Atom.
// Its fields are only ever written by the interval calculator; everything
// else treats it as read-only.
type ReviewSchedule struct {
	IntervalDays int       `json:"interval_days"` // Current interval in days, >= 1
	EaseFactor   float64   `json:"ease_factor"`   // Bounded [1.3, 3.0]
	ReviewCount  int       `json:"review_count"`  // Total number of reviews
	NextReviewAt time.Time `json:"next_review_at"` // Zero time = never scheduled, always due
	LastReviewAt time.Time `json:"last_review_at"` // Zero time until first review
}

// NewReviewSchedule returns the schedule state for a freshly created atom:
// one-day interval, default ease factor, immediately due.
func NewReviewSchedule() ReviewSchedule {
	return ReviewSchedule{
		IntervalDays: 1,
		EaseFactor:   DefaultEaseFactor,
		ReviewCount:  0,
	}
}

// Validate checks if the ReviewSchedule has valid data.
func (s ReviewSchedule) Validate() error {
	if s.IntervalDays < 1 {
		return ErrInvalidInterval
	}
	if s.EaseFactor < MinEaseFactor || s.EaseFactor > MaxEaseFactor {
		return ErrInvalidEaseFactor
	}
	if s.ReviewCount < 0 {
		return ErrInvalidReviewCount
	}
	return nil
}

// IsDue reports whether the schedule calls for a review at the given time.
// A zero NextReviewAt means the atom has never been scheduled and is
// always due.
func (s ReviewSchedule) IsDue(now time.Time) bool {
	return s.NextReviewAt.IsZero() || !s.NextReviewAt.After(now)
}

// Atom represents an indivisible unit of knowledge extracted from a user's
// notes by the upstream processing pipeline. The review engine only mutates
// its Schedule and DifficultyScore fields.
type Atom struct {
	ID              uuid.UUID      `json:"id"`
	UserID          uuid.UUID      `json:"user_id"`
	NoteID          uuid.UUID      `json:"note_id"`
	Content         string         `json:"content"`
	Type            string         `json:"type"`
	Tags            []string       `json:"tags"`
	ImportanceScore float64        `json:"importance_score"`
	DifficultyScore float64        `json:"difficulty_score"`
	Schedule        ReviewSchedule `json:"schedule"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewAtom creates a new Atom with the given owner and content, scheduled
// for immediate review. Returns an error if validation fails.
func NewAtom(userID uuid.UUID, content string, importance, difficulty float64) (*Atom, error) {
	now := time.Now().UTC()
	atom := &Atom{
		ID:              uuid.New(),
		UserID:          userID,
		Content:         content,
		Type:            "concept",
		ImportanceScore: importance,
		DifficultyScore: difficulty,
		Schedule:        NewReviewSchedule(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := atom.Validate(); err != nil {
		return nil, err
	}

	return atom, nil
}

// Validate checks if the Atom has valid data.
// Returns an error if any field fails validation.
func (a *Atom) Validate() error {
	if a.ID == uuid.Nil {
		return ErrAtomIDEmpty
	}
	if a.UserID == uuid.Nil {
		return ErrAtomUserIDEmpty
	}
	if a.Content == "" {
		return ErrAtomContentEmpty
	}
	if a.ImportanceScore < 0 || a.ImportanceScore > 1 {
		return ErrInvalidImportanceScore
	}
	if a.DifficultyScore < 0 || a.DifficultyScore > 1 {
		return ErrInvalidDifficultyScore
	}
	return a.Schedule.Validate()
}

// EstimatedReviewMinutes returns the expected time to review this atom.
// Harder atoms take longer; atoms with more review history go faster,
// floored at half the base time.
func (a *Atom) EstimatedReviewMinutes() float64 {
	const baseMinutes = 1.5
	difficultyMultiplier := 1.0 + (a.DifficultyScore - 0.5)
	historyAdjustment := 1.0 - float64(a.Schedule.ReviewCount)*0.1
	if historyAdjustment < 0.5 {
		historyAdjustment = 0.5
	}
	return baseMinutes * difficultyMultiplier * historyAdjustment
}
