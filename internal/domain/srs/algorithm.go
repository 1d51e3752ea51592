package srs

import (
	"math"

	"github.com/micronotes/review-api/internal/domain"
)

// classifyPerformance buckets a continuous success rating into one of the
// four performance categories.
func classifyPerformance(successRating float64, params *Params) domain.PerformanceCategory {
	switch {
	case successRating >= params.ExcellentThreshold:
		return domain.PerformanceExcellent
	case successRating >= params.GoodThreshold:
		return domain.PerformanceGood
	case successRating >= params.PoorThreshold:
		return domain.PerformanceFair
	default:
		return domain.PerformanceNeedsReview
	}
}

// calculateBase applies the SuperMemo-2 core update: a new base interval
// and ease factor from the prior schedule state and the review outcome.
//
// Three regimes, by success rating:
//   - below PoorThreshold: almost no recall, reset the interval to the
//     minimum and penalize ease by 0.2
//   - below GoodThreshold: partial recall, shrink the interval to 60% and
//     penalize ease by 0.15
//   - otherwise: successful recall; the canonical SM-2 ladder (1 day, then
//     6 days, then interval x ease) with an ease adjustment scaled by how
//     close the rating was to perfect
func calculateBase(
	priorInterval int,
	priorEase float64,
	reviewCount int,
	successRating float64,
	params *Params,
) (newInterval int, newEase float64) {
	switch {
	case successRating < params.PoorThreshold:
		newInterval = params.MinIntervalDays
		newEase = math.Max(params.MinEaseFactor, priorEase-0.2)

	case successRating < params.GoodThreshold:
		newInterval = int(math.Round(float64(priorInterval) * 0.6))
		if newInterval < params.MinIntervalDays {
			newInterval = params.MinIntervalDays
		}
		newEase = math.Max(params.MinEaseFactor, priorEase-0.15)

	default:
		switch reviewCount {
		case 0:
			newInterval = 1
		case 1:
			newInterval = 6
		default:
			newInterval = int(math.Ceil(float64(priorInterval) * priorEase))
		}

		// The classic SM-2 ease formula maps our [0,1] rating onto its
		// 0-5 quality scale: perfect recall earns the full bonus, lower
		// ratings an increasing penalty.
		easeAdjustment := params.EaseBonus - (5.0-5.0*successRating)*params.EasePenaltyMultiplier
		newEase = clamp(priorEase+easeAdjustment, params.MinEaseFactor, params.MaxEaseFactor)
	}

	return newInterval, newEase
}

// applyEnhancements stretches the base interval with the multiplicative
// bonuses layered on top of plain SM-2: speed, atom difficulty,
// consistency, and excellence, in that order. The result is ceiled to
// whole days.
func applyEnhancements(
	baseInterval int,
	successRating float64,
	responseTimeMs int,
	difficultyScore float64,
	reviewCount int,
	params *Params,
) int {
	adjusted := float64(baseInterval)

	// Speed bonus: responses under the cutoff earn up to +10%, decaying
	// linearly to zero at the cutoff.
	if responseTimeMs > 0 && responseTimeMs < params.SpeedBonusCutoffMs {
		speedBonus := float64(params.SpeedBonusCutoffMs-responseTimeMs) / params.SpeedBonusDivisor
		adjusted *= 1.0 + speedBonus
	}

	// Difficulty multiplier: easier atoms get gently longer intervals.
	// (2 - difficulty) ranges 1.0-2.0; the small exponent keeps it subtle.
	difficultyMultiplier := 2.0 - difficultyScore
	adjusted *= math.Pow(difficultyMultiplier, params.DifficultyExponent)

	// Consistency bonus: a run of successful reviews earns up to +20%.
	if successRating >= params.GoodThreshold && reviewCount >= params.ConsistencyMinReviews {
		consistencyBonus := math.Min(params.ConsistencyCap, float64(reviewCount)*params.ConsistencyPerReview)
		adjusted *= 1.0 + consistencyBonus
	}

	// Excellence bonus: flat +10% for near-perfect recall.
	if successRating >= params.ExcellentThreshold {
		adjusted *= 1.0 + params.ExcellenceBonus
	}

	return int(math.Ceil(adjusted))
}

// calculateRetention estimates the probability the learner still recalls
// the atom at review time. The success rating anchors the estimate; fast
// responses (confidence) and a long review history (stability) each add up
// to 0.1, and the result is clamped to [0, 1].
func calculateRetention(successRating float64, responseTimeMs, reviewCount int) float64 {
	timeBonus := 0.0
	if responseTimeMs > 0 {
		timeBonus = math.Max(0, float64(10000-responseTimeMs)/10000.0*0.1)
	}

	historyBonus := math.Min(0.1, float64(reviewCount)*0.01)

	return clamp(successRating+timeBonus+historyBonus, 0, 1)
}

// updateDifficulty drifts the atom's difficulty score after a review:
// good performance makes the atom look easier, slow responses make it look
// harder. The result stays within [0.1, 1.0] so no atom ever becomes
// trivially easy or impossibly hard.
func updateDifficulty(currentDifficulty, successRating float64, responseTimeMs int) float64 {
	adjustment := -(successRating - 0.5) * 0.1

	if responseTimeMs > 0 {
		normalizedTime := math.Min(1.0, float64(responseTimeMs)/10000.0)
		adjustment += (normalizedTime - 0.5) * 0.05
	}

	return clamp(currentDifficulty+adjustment, 0.1, 1.0)
}

// Reporting-only factors surfaced in calculation details. These use their
// own scales (historical quirk of the original reporting) and do not feed
// back into the interval.

func speedBonusFactor(responseTimeMs int) float64 {
	if responseTimeMs <= 0 {
		return 0
	}
	return math.Max(0, float64(5000-responseTimeMs)/50000.0)
}

func difficultyAdjustmentFactor(difficultyScore float64) float64 {
	return (1.0 - difficultyScore) * 0.1
}

func consistencyBonusFactor(reviewCount int, successRating float64, params *Params) float64 {
	if reviewCount < 2 || successRating < params.GoodThreshold {
		return 0
	}
	return math.Min(0.15, float64(reviewCount)*0.01)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
