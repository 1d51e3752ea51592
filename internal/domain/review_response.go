package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PerformanceCategory classifies a single review answer by success rating.
type PerformanceCategory string

// Possible performance categories, from best to worst.
const (
	PerformanceExcellent   PerformanceCategory = "Excellent"
	PerformanceGood        PerformanceCategory = "Good"
	PerformanceFair        PerformanceCategory = "Fair"
	PerformanceNeedsReview PerformanceCategory = "Needs Review"
)

// Response-specific validation errors
var (
	ErrResponseIDEmpty        = errors.New("response ID cannot be empty")
	ErrResponseSessionIDEmpty = errors.New("response session ID cannot be empty")
	ErrResponseAtomIDEmpty    = errors.New("response atom ID cannot be empty")

	// ErrInvalidSuccessRating is returned when a success rating is outside [0, 1].
	ErrInvalidSuccessRating = errors.New("success rating must be between 0 and 1")

	// ErrInvalidResponseTime is returned when a response latency is negative.
	ErrInvalidResponseTime = errors.New("response time cannot be negative")
)

// ReviewResponse is an immutable record of one learner answer to one atom
// within one session, together with a snapshot of what the calculator
// decided for it. Created once per submission and never mutated.
type ReviewResponse struct {
	ID                  uuid.UUID `json:"id"`
	SessionID           uuid.UUID `json:"session_id"`
	AtomID              uuid.UUID `json:"atom_id"`
	IdempotencyKey      string    `json:"idempotency_key,omitempty"`
	SuccessRating       float64   `json:"success_rating"`
	ResponseTimeMs      int       `json:"response_time_ms"`
	ConfidenceLevel     float64   `json:"confidence_level"`
	DifficultyPerceived float64   `json:"difficulty_perceived"`
	ReviewMethod        string    `json:"review_method"`
	Notes               string    `json:"notes"`

	// Calculator output snapshot
	NewIntervalDays      int                 `json:"new_interval_days"`
	NewEaseFactor        float64             `json:"new_ease_factor"`
	PerformanceCategory  PerformanceCategory `json:"performance_category"`
	RetentionProbability float64             `json:"retention_probability"`
	AlgorithmVersion     string              `json:"algorithm_version"`

	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the ReviewResponse has valid data.
func (r *ReviewResponse) Validate() error {
	if r.ID == uuid.Nil {
		return ErrResponseIDEmpty
	}
	if r.SessionID == uuid.Nil {
		return ErrResponseSessionIDEmpty
	}
	if r.AtomID == uuid.Nil {
		return ErrResponseAtomIDEmpty
	}
	if r.SuccessRating < 0 || r.SuccessRating > 1 {
		return ErrInvalidSuccessRating
	}
	if r.ResponseTimeMs < 0 {
		return ErrInvalidResponseTime
	}
	return nil
}
