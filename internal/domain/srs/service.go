package srs

import (
	"errors"
	"time"

	"github.com/micronotes/review-api/internal/domain"
)

// Common errors
var (
	ErrInvalidRating       = errors.New("success rating must be between 0 and 1")
	ErrInvalidResponseTime = errors.New("response time cannot be negative")
)

// Input carries the prior schedule state and the review outcome into a
// calculation. IntervalDays and EaseFactor fall back to their defaults
// (1 day, 2.5) when unset, matching atoms that have never been scheduled.
type Input struct {
	IntervalDays    int
	EaseFactor      float64
	ReviewCount     int
	SuccessRating   float64
	ResponseTimeMs  int
	DifficultyScore float64
}

// Details records the inputs and reporting factors of one calculation so
// callers can surface them alongside the result.
type Details struct {
	PreviousIntervalDays int     `json:"previous_interval_days"`
	PreviousEaseFactor   float64 `json:"previous_ease_factor"`
	SuccessRating        float64 `json:"success_rating"`
	ResponseTimeMs       int     `json:"response_time_ms"`
	ReviewCount          int     `json:"review_count"`
	SpeedBonus           float64 `json:"speed_bonus"`
	DifficultyAdjustment float64 `json:"difficulty_adjustment"`
	ConsistencyBonus     float64 `json:"consistency_bonus"`
}

// Result is the full output of one interval calculation.
type Result struct {
	IntervalDays         int
	EaseFactor           float64
	NextReviewAt         time.Time
	PerformanceCategory  domain.PerformanceCategory
	RetentionProbability float64
	DifficultyScore      float64
	Details              Details
}

// Service defines the interface for interval calculations.
type Service interface {
	// Calculate computes the next schedule state for an atom from its
	// prior state and the learner's response. It is pure: the only
	// time dependence is the caller-supplied now.
	Calculate(in Input, now time.Time) (*Result, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a calculator with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a calculator with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// Calculate implements the Service interface.
func (s *defaultService) Calculate(in Input, now time.Time) (*Result, error) {
	if in.SuccessRating < 0 || in.SuccessRating > 1 {
		return nil, ErrInvalidRating
	}
	if in.ResponseTimeMs < 0 {
		return nil, ErrInvalidResponseTime
	}

	// Unscheduled atoms arrive with zero state; normalize to the
	// algorithm's starting point.
	priorInterval := in.IntervalDays
	if priorInterval < 1 {
		priorInterval = 1
	}
	priorEase := in.EaseFactor
	if priorEase <= 0 {
		priorEase = domain.DefaultEaseFactor
	}
	difficulty := clamp(in.DifficultyScore, 0, 1)

	category := classifyPerformance(in.SuccessRating, s.params)

	newInterval, newEase := calculateBase(priorInterval, priorEase, in.ReviewCount, in.SuccessRating, s.params)

	// The reset branch skips enhancement multipliers: a failed recall
	// always comes back in exactly the minimum interval.
	if category != domain.PerformanceNeedsReview {
		newInterval = applyEnhancements(
			newInterval, in.SuccessRating, in.ResponseTimeMs, difficulty, in.ReviewCount, s.params)
	}

	if newInterval < s.params.MinIntervalDays {
		newInterval = s.params.MinIntervalDays
	}
	if newInterval > s.params.MaxIntervalDays {
		newInterval = s.params.MaxIntervalDays
	}

	return &Result{
		IntervalDays:         newInterval,
		EaseFactor:           newEase,
		NextReviewAt:         now.AddDate(0, 0, newInterval),
		PerformanceCategory:  category,
		RetentionProbability: calculateRetention(in.SuccessRating, in.ResponseTimeMs, in.ReviewCount),
		DifficultyScore:      updateDifficulty(difficulty, in.SuccessRating, in.ResponseTimeMs),
		Details: Details{
			PreviousIntervalDays: priorInterval,
			PreviousEaseFactor:   priorEase,
			SuccessRating:        in.SuccessRating,
			ResponseTimeMs:       in.ResponseTimeMs,
			ReviewCount:          in.ReviewCount + 1,
			SpeedBonus:           speedBonusFactor(in.ResponseTimeMs),
			DifficultyAdjustment: difficultyAdjustmentFactor(difficulty),
			ConsistencyBonus:     consistencyBonusFactor(in.ReviewCount, in.SuccessRating, s.params),
		},
	}, nil
}
