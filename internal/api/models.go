package api

import (
	"time"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/domain/srs"
	"github.com/micronotes/review-api/internal/service/review"
)

// AtomResponse represents the response data for an atom and its schedule.
type AtomResponse struct {
	ID               string     `json:"id"`
	Content          string     `json:"content"`
	Type             string     `json:"type"`
	Tags             []string   `json:"tags,omitempty"`
	ImportanceScore  float64    `json:"importance_score"`
	DifficultyScore  float64    `json:"difficulty_score"`
	IntervalDays     int        `json:"interval_days"`
	EaseFactor       float64    `json:"ease_factor"`
	ReviewCount      int        `json:"review_count"`
	NextReviewAt     *time.Time `json:"next_review_at,omitempty"`
	LastReviewAt     *time.Time `json:"last_review_at,omitempty"`
	EstimatedMinutes float64    `json:"estimated_minutes"`
}

// DueItemResponse is one entry in the due review list.
type DueItemResponse struct {
	Atom     AtomResponse `json:"atom"`
	Urgency  float64      `json:"urgency"`
	Priority float64      `json:"priority"`
}

// DueReviewsResponse is the payload for the due review listing.
type DueReviewsResponse struct {
	Items                 []DueItemResponse `json:"items"`
	TotalCount            int               `json:"total_count"`
	TotalEstimatedMinutes float64           `json:"total_estimated_minutes"`
	ReviewLimitReached    bool              `json:"review_limit_reached"`
	NextReviewAt          *time.Time        `json:"next_review_at,omitempty"`
}

// CalculateIntervalRequest carries prior schedule state and a review
// outcome for a stateless interval calculation. SuccessRating is a pointer
// so a legitimate rating of zero survives the required check.
type CalculateIntervalRequest struct {
	IntervalDays    int      `json:"interval_days"     validate:"gte=0"`
	EaseFactor      float64  `json:"ease_factor"       validate:"gte=0"`
	ReviewCount     int      `json:"review_count"      validate:"gte=0"`
	SuccessRating   *float64 `json:"success_rating"    validate:"required"`
	ResponseTimeMs  int      `json:"response_time_ms"  validate:"gte=0"`
	DifficultyScore float64  `json:"difficulty_score"  validate:"gte=0,lte=1"`
}

// CalculateIntervalResponse is the payload for a stateless interval
// calculation.
type CalculateIntervalResponse struct {
	NewIntervalDays        int         `json:"new_interval_days"`
	NewEaseFactor          float64     `json:"new_ease_factor"`
	NextReviewAt           time.Time   `json:"next_review_at"`
	PerformanceCategory    string      `json:"performance_category"`
	RetentionProbability   float64     `json:"retention_probability"`
	NewDifficultyScore     float64     `json:"new_difficulty_score"`
	AlgorithmVersion       string      `json:"algorithm_version"`
	CalculationDetails     srs.Details `json:"calculation_details"`
	ImprovementSuggestions []string    `json:"improvement_suggestions"`
}

// StartSessionRequest carries the knobs for creating a review session.
type StartSessionRequest struct {
	UserID           string `json:"user_id"            validate:"required,uuid"`
	SessionType      string `json:"session_type"       validate:"omitempty,oneof=regular quick focus"`
	MaxAtoms         int    `json:"max_atoms"          validate:"gte=0"`
	TimeLimitMinutes int    `json:"time_limit_minutes" validate:"gte=0,lte=480"`
	ShuffleOrder     *bool  `json:"shuffle_order"`
	ShowHints        bool   `json:"show_hints"`
}

// SessionResponse represents the response data for a review session.
type SessionResponse struct {
	ID                 string                 `json:"id"`
	UserID             string                 `json:"user_id"`
	SessionType        string                 `json:"session_type"`
	Status             string                 `json:"status"`
	StartedAt          time.Time              `json:"started_at"`
	EndedAt            *time.Time             `json:"ended_at,omitempty"`
	TotalAtoms         int                    `json:"total_atoms"`
	CompletedAtoms     int                    `json:"completed_atoms"`
	ProgressPercentage float64                `json:"progress_percentage"`
	Settings           domain.SessionSettings `json:"settings"`
}

// StartSessionResponse is the payload for a newly started session.
type StartSessionResponse struct {
	Session               SessionResponse `json:"session"`
	Atoms                 []AtomResponse  `json:"atoms"`
	TotalEstimatedMinutes float64         `json:"total_estimated_minutes"`
}

// SubmitResponseRequest carries one learner answer for an atom in a session.
type SubmitResponseRequest struct {
	AtomID              string   `json:"atom_id"              validate:"required,uuid"`
	IdempotencyKey      string   `json:"idempotency_key"      validate:"omitempty,max=128"`
	SuccessRating       *float64 `json:"success_rating"       validate:"required"`
	ResponseTimeMs      int      `json:"response_time_ms"     validate:"gte=0"`
	ConfidenceLevel     float64  `json:"confidence_level"     validate:"gte=0,lte=1"`
	DifficultyPerceived float64  `json:"difficulty_perceived" validate:"gte=0,lte=1"`
	ReviewMethod        string   `json:"review_method"        validate:"omitempty,max=64"`
	Notes               string   `json:"notes"                validate:"omitempty,max=2048"`
}

// SessionProgress reports how far through a session the learner is.
type SessionProgress struct {
	CompletedAtoms     int     `json:"completed_atoms"`
	TotalAtoms         int     `json:"total_atoms"`
	RemainingAtoms     int     `json:"remaining_atoms"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsComplete         bool    `json:"is_complete"`
}

// SubmitResponseResponse is the payload returned after recording an answer.
// CalculationDetails is only present for fresh submissions; a replayed
// idempotency key returns the stored snapshot, which does not retain the
// calculation inputs.
type SubmitResponseResponse struct {
	ResponseID             string          `json:"response_id"`
	AtomID                 string          `json:"atom_id"`
	PerformanceCategory    string          `json:"performance_category"`
	SuccessRating          float64         `json:"success_rating"`
	NewIntervalDays        int             `json:"new_interval_days"`
	NewEaseFactor          float64         `json:"new_ease_factor"`
	NextReviewAt           time.Time       `json:"next_review_at"`
	RetentionProbability   float64         `json:"retention_probability"`
	AlgorithmVersion       string          `json:"algorithm_version"`
	CalculationDetails     *srs.Details    `json:"calculation_details,omitempty"`
	ImprovementSuggestions []string        `json:"improvement_suggestions"`
	SessionProgress        SessionProgress `json:"session_progress"`
	Replayed               bool            `json:"replayed,omitempty"`
}

// EndSessionResponse is the payload for a completed session summary.
type EndSessionResponse struct {
	Session                SessionResponse           `json:"session"`
	SessionDurationMinutes int                       `json:"session_duration_minutes"`
	Statistics             *review.SessionStatistics `json:"statistics"`
	NextReviewSuggestion   string                    `json:"next_review_suggestion"`
}

// SessionStateResponse is the payload for session status polling.
type SessionStateResponse struct {
	Session            SessionResponse `json:"session"`
	ResponsesSubmitted int             `json:"responses_submitted"`
	RemainingAtoms     int             `json:"remaining_atoms"`
}

func atomToResponse(atom *domain.Atom) AtomResponse {
	resp := AtomResponse{
		ID:               atom.ID.String(),
		Content:          atom.Content,
		Type:             atom.Type,
		Tags:             atom.Tags,
		ImportanceScore:  atom.ImportanceScore,
		DifficultyScore:  atom.DifficultyScore,
		IntervalDays:     atom.Schedule.IntervalDays,
		EaseFactor:       atom.Schedule.EaseFactor,
		ReviewCount:      atom.Schedule.ReviewCount,
		EstimatedMinutes: atom.EstimatedReviewMinutes(),
	}
	if !atom.Schedule.NextReviewAt.IsZero() {
		t := atom.Schedule.NextReviewAt
		resp.NextReviewAt = &t
	}
	if !atom.Schedule.LastReviewAt.IsZero() {
		t := atom.Schedule.LastReviewAt
		resp.LastReviewAt = &t
	}
	return resp
}

func sessionToResponse(session *domain.ReviewSession) SessionResponse {
	resp := SessionResponse{
		ID:                 session.ID.String(),
		UserID:             session.UserID.String(),
		SessionType:        session.SessionType,
		Status:             string(session.Status),
		StartedAt:          session.StartedAt,
		TotalAtoms:         session.TotalAtoms,
		CompletedAtoms:     session.CompletedAtoms,
		ProgressPercentage: session.ProgressPercentage(),
		Settings:           session.Settings,
	}
	if !session.EndedAt.IsZero() {
		t := session.EndedAt
		resp.EndedAt = &t
	}
	return resp
}

func submitResultToResponse(result *review.SubmitResult) SubmitResponseResponse {
	r := result.Response
	progress := 0.0
	if result.TotalAtoms > 0 {
		progress = float64(result.CompletedAtoms) / float64(result.TotalAtoms) * 100
	}
	isComplete := result.TotalAtoms > 0 && result.CompletedAtoms == result.TotalAtoms

	var details *srs.Details
	if !result.Replayed {
		d := result.Details
		details = &d
	}

	return SubmitResponseResponse{
		ResponseID:             r.ID.String(),
		AtomID:                 r.AtomID.String(),
		PerformanceCategory:    string(r.PerformanceCategory),
		SuccessRating:          r.SuccessRating,
		NewIntervalDays:        r.NewIntervalDays,
		NewEaseFactor:          r.NewEaseFactor,
		NextReviewAt:           r.CreatedAt.AddDate(0, 0, r.NewIntervalDays),
		RetentionProbability:   r.RetentionProbability,
		AlgorithmVersion:       r.AlgorithmVersion,
		ImprovementSuggestions: review.ImprovementSuggestions(r.PerformanceCategory),
		CalculationDetails:     details,
		SessionProgress: SessionProgress{
			CompletedAtoms:     result.CompletedAtoms,
			TotalAtoms:         result.TotalAtoms,
			RemainingAtoms:     result.TotalAtoms - result.CompletedAtoms,
			ProgressPercentage: progress,
			IsComplete:         isComplete,
		},
		Replayed: result.Replayed,
	}
}
