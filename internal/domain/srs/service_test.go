package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micronotes/review-api/internal/domain"
)

func TestCalculateValidation(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now()

	testCases := []struct {
		name        string
		input       Input
		expectedErr error
	}{
		{
			name:        "rating above one",
			input:       Input{SuccessRating: 1.5},
			expectedErr: ErrInvalidRating,
		},
		{
			name:        "negative rating",
			input:       Input{SuccessRating: -0.1},
			expectedErr: ErrInvalidRating,
		},
		{
			name:        "negative response time",
			input:       Input{SuccessRating: 0.5, ResponseTimeMs: -100},
			expectedErr: ErrInvalidResponseTime,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := svc.Calculate(tc.input, now)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}

	t.Run("boundary ratings are valid", func(t *testing.T) {
		for _, rating := range []float64{0.0, 1.0} {
			result, err := svc.Calculate(Input{SuccessRating: rating}, now)
			require.NoError(t, err)
			require.NotNil(t, result)
		}
	})
}

func TestCalculateFailedRecall(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	result, err := svc.Calculate(Input{
		IntervalDays:    30,
		EaseFactor:      2.5,
		ReviewCount:     8,
		SuccessRating:   0.2,
		ResponseTimeMs:  1000, // fast, but a failed recall earns no bonuses
		DifficultyScore: 0.5,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, result.IntervalDays)
	assert.InDelta(t, 2.3, result.EaseFactor, 1e-9)
	assert.Equal(t, domain.PerformanceNeedsReview, result.PerformanceCategory)
	assert.Equal(t, now.AddDate(0, 0, 1), result.NextReviewAt)
}

func TestCalculateExcellentReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	result, err := svc.Calculate(Input{
		IntervalDays:    6,
		EaseFactor:      2.5,
		ReviewCount:     2,
		SuccessRating:   0.95,
		ResponseTimeMs:  2000,
		DifficultyScore: 0.3,
	}, now)
	require.NoError(t, err)

	// base ceil(6 * 2.5) = 15, then speed, difficulty and excellence
	// bonuses stretch it to 18
	assert.Equal(t, 18, result.IntervalDays)
	assert.InDelta(t, 2.58, result.EaseFactor, 1e-9)
	assert.Equal(t, domain.PerformanceExcellent, result.PerformanceCategory)
	assert.InDelta(t, 1.0, result.RetentionProbability, 1e-9)
	assert.InDelta(t, 0.24, result.DifficultyScore, 1e-9)
	assert.Equal(t, now.AddDate(0, 0, 18), result.NextReviewAt)

	assert.Equal(t, 6, result.Details.PreviousIntervalDays)
	assert.InDelta(t, 2.5, result.Details.PreviousEaseFactor, 1e-9)
	assert.Equal(t, 3, result.Details.ReviewCount)
	assert.InDelta(t, 0.06, result.Details.SpeedBonus, 1e-9)
	assert.InDelta(t, 0.07, result.Details.DifficultyAdjustment, 1e-9)
	assert.InDelta(t, 0.02, result.Details.ConsistencyBonus, 1e-9)
}

func TestCalculateNormalizesUnscheduledState(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now()

	result, err := svc.Calculate(Input{
		IntervalDays:    0, // never scheduled
		EaseFactor:      0,
		ReviewCount:     0,
		SuccessRating:   0.7,
		DifficultyScore: 1.0,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 1, result.IntervalDays)
	assert.Equal(t, 1, result.Details.PreviousIntervalDays)
	assert.InDelta(t, domain.DefaultEaseFactor, result.Details.PreviousEaseFactor, 1e-9)
}

func TestCalculateIntervalCeiling(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now()

	result, err := svc.Calculate(Input{
		IntervalDays:    300,
		EaseFactor:      3.0,
		ReviewCount:     20,
		SuccessRating:   1.0,
		ResponseTimeMs:  500,
		DifficultyScore: 0.1,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, 365, result.IntervalDays)
	assert.InDelta(t, 3.0, result.EaseFactor, 1e-9)
}

// TestCalculateBounds sweeps the input space and checks the published
// invariants hold everywhere: interval in [1, 365], ease in [1.3, 3.0],
// retention in [0, 1], difficulty in [0.1, 1.0].
func TestCalculateBounds(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	now := time.Now()

	ratings := []float64{0.0, 0.29, 0.3, 0.59, 0.6, 0.89, 0.9, 1.0}
	intervals := []int{0, 1, 6, 30, 365, 1000}
	eases := []float64{0, 1.3, 2.5, 3.0}
	counts := []int{0, 1, 2, 3, 10, 100}
	times := []int{0, 500, 3000, 15000}

	for _, rating := range ratings {
		for _, interval := range intervals {
			for _, ease := range eases {
				for _, count := range counts {
					for _, responseTime := range times {
						result, err := svc.Calculate(Input{
							IntervalDays:    interval,
							EaseFactor:      ease,
							ReviewCount:     count,
							SuccessRating:   rating,
							ResponseTimeMs:  responseTime,
							DifficultyScore: 0.5,
						}, now)
						require.NoError(t, err)

						assert.GreaterOrEqual(t, result.IntervalDays, 1)
						assert.LessOrEqual(t, result.IntervalDays, 365)
						assert.GreaterOrEqual(t, result.EaseFactor, 1.3)
						assert.LessOrEqual(t, result.EaseFactor, 3.0)
						assert.GreaterOrEqual(t, result.RetentionProbability, 0.0)
						assert.LessOrEqual(t, result.RetentionProbability, 1.0)
						assert.GreaterOrEqual(t, result.DifficultyScore, 0.1)
						assert.LessOrEqual(t, result.DifficultyScore, 1.0)

						if rating < 0.3 {
							assert.Equal(t, 1, result.IntervalDays,
								"failed recall must reset to one day")
						}
					}
				}
			}
		}
	}
}
