package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a review session.
type SessionStatus string

// A session is created active and transitions exactly once to completed.
// There are no other states.
const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session-specific validation errors
var (
	ErrSessionIDEmpty       = errors.New("session ID cannot be empty")
	ErrSessionUserIDEmpty   = errors.New("session user ID cannot be empty")
	ErrSessionNoAtoms       = errors.New("session must contain at least one atom")
	ErrInvalidSessionStatus = errors.New("invalid session status")
	ErrInvalidProgress      = errors.New("completed atoms must be between 0 and total atoms")
)

// SessionSettings holds the caller-supplied knobs for a review session.
// TimeLimitMinutes is stored and surfaced but not enforced by the engine;
// expiry is a caller concern.
type SessionSettings struct {
	MaxAtoms         int  `json:"max_atoms"`
	TimeLimitMinutes int  `json:"time_limit_minutes"`
	ShuffleOrder     bool `json:"shuffle_order"`
	ShowHints        bool `json:"show_hints"`
}

// ReviewSession is a bounded sequence of review interactions with a fixed
// atom list decided at start. CompletedAtoms only moves forward and never
// exceeds TotalAtoms.
type ReviewSession struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	SessionType    string          `json:"session_type"`
	Status         SessionStatus   `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	EndedAt        time.Time       `json:"ended_at"` // Zero time until completed
	AtomIDs        []uuid.UUID     `json:"atom_ids"`
	TotalAtoms     int             `json:"total_atoms"`
	CompletedAtoms int             `json:"completed_atoms"`
	Settings       SessionSettings `json:"settings"`
	ExpiresAt      time.Time       `json:"expires_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewReviewSession creates an active session over the given fixed atom list.
// The list is decided once at start and never recomputed. Returns an error
// if validation fails.
func NewReviewSession(
	userID uuid.UUID,
	sessionType string,
	atomIDs []uuid.UUID,
	settings SessionSettings,
	retention time.Duration,
) (*ReviewSession, error) {
	now := time.Now().UTC()
	if sessionType == "" {
		sessionType = "regular"
	}

	session := &ReviewSession{
		ID:             uuid.New(),
		UserID:         userID,
		SessionType:    sessionType,
		Status:         SessionStatusActive,
		StartedAt:      now,
		AtomIDs:        atomIDs,
		TotalAtoms:     len(atomIDs),
		CompletedAtoms: 0,
		Settings:       settings,
		ExpiresAt:      now.Add(retention),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the ReviewSession has valid data.
func (s *ReviewSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}
	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}
	if len(s.AtomIDs) == 0 || s.TotalAtoms == 0 {
		return ErrSessionNoAtoms
	}
	if s.Status != SessionStatusActive && s.Status != SessionStatusCompleted {
		return ErrInvalidSessionStatus
	}
	if s.CompletedAtoms < 0 || s.CompletedAtoms > s.TotalAtoms {
		return ErrInvalidProgress
	}
	return nil
}

// IsActive reports whether the session still accepts responses.
func (s *ReviewSession) IsActive() bool {
	return s.Status == SessionStatusActive
}

// ContainsAtom reports whether the given atom is part of this session's
// fixed review list.
func (s *ReviewSession) ContainsAtom(atomID uuid.UUID) bool {
	for _, id := range s.AtomIDs {
		if id == atomID {
			return true
		}
	}
	return false
}

// RemainingAtoms returns the number of atoms not yet completed.
func (s *ReviewSession) RemainingAtoms() int {
	return s.TotalAtoms - s.CompletedAtoms
}

// ProgressPercentage returns completion progress in the range [0, 100].
func (s *ReviewSession) ProgressPercentage() float64 {
	if s.TotalAtoms == 0 {
		return 0
	}
	return float64(s.CompletedAtoms) / float64(s.TotalAtoms) * 100
}
