package srs

// AlgorithmVersion identifies the calculation these parameters drive.
// It is recorded on every response snapshot so stored results can be
// traced back to the algorithm revision that produced them.
const AlgorithmVersion = "SuperMemo-2-Enhanced-v1.0"

// Params defines all configurable parameters for the enhanced SuperMemo-2
// algorithm.
type Params struct {
	// Performance thresholds on the continuous success rating.
	ExcellentThreshold float64
	GoodThreshold      float64
	PoorThreshold      float64

	// Ease factor limits and adjustments.
	MinEaseFactor         float64
	MaxEaseFactor         float64
	EaseBonus             float64
	EasePenaltyMultiplier float64

	// Interval bounds in days.
	MinIntervalDays int
	MaxIntervalDays int

	// Enhancement multipliers.
	SpeedBonusCutoffMs    int     // Responses faster than this earn a speed bonus
	SpeedBonusDivisor     float64 // Scales the bonus; cutoff/divisor = max bonus
	DifficultyExponent    float64 // Gentle exponent on the (2 - difficulty) multiplier
	ConsistencyMinReviews int     // Review count needed before consistency pays out
	ConsistencyPerReview  float64 // Bonus per review
	ConsistencyCap        float64 // Upper bound on the consistency bonus
	ExcellenceBonus       float64 // Flat bonus for near-perfect recall
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		ExcellentThreshold: 0.9,
		GoodThreshold:      0.6,
		PoorThreshold:      0.3,

		MinEaseFactor:         1.3,
		MaxEaseFactor:         3.0,
		EaseBonus:             0.1,
		EasePenaltyMultiplier: 0.08,

		MinIntervalDays: 1,
		MaxIntervalDays: 365,

		SpeedBonusCutoffMs:    3000,
		SpeedBonusDivisor:     30000,
		DifficultyExponent:    0.1,
		ConsistencyMinReviews: 3,
		ConsistencyPerReview:  0.02,
		ConsistencyCap:        0.2,
		ExcellenceBonus:       0.1,
	}
}
