package review

import (
	"fmt"

	"github.com/micronotes/review-api/internal/domain"
)

// SessionStatistics aggregates everything answered during one session.
// A session with no responses yields the zero value with grade "F" and
// the baseline recommendation, never an error.
type SessionStatistics struct {
	TotalResponses        int                             `json:"total_responses"`
	AverageSuccessRating  float64                         `json:"average_success_rating"`
	AverageResponseTimeMs float64                         `json:"average_response_time_ms"`
	FastestResponseMs     int                             `json:"fastest_response_ms"`
	SlowestResponseMs     int                             `json:"slowest_response_ms"`
	AverageRetention      float64                         `json:"average_retention"`
	CategoryCounts        map[domain.PerformanceCategory]int `json:"category_counts"`
	Grade                 string                          `json:"grade"`
	Strengths             []string                        `json:"strengths"`
	Improvements          []string                        `json:"improvements"`
	Recommendation        string                          `json:"recommendation"`
}

// SummarizeResponses computes session statistics from the recorded
// responses. It is pure and order-insensitive.
func SummarizeResponses(responses []*domain.ReviewResponse) *SessionStatistics {
	stats := &SessionStatistics{
		CategoryCounts: make(map[domain.PerformanceCategory]int),
	}

	if len(responses) == 0 {
		stats.Grade = gradeFor(0)
		stats.Recommendation = recommendationFor(stats)
		return stats
	}

	var (
		ratingSum    float64
		timeSum      float64
		retentionSum float64
	)
	stats.FastestResponseMs = responses[0].ResponseTimeMs
	stats.SlowestResponseMs = responses[0].ResponseTimeMs

	for _, r := range responses {
		ratingSum += r.SuccessRating
		timeSum += float64(r.ResponseTimeMs)
		retentionSum += r.RetentionProbability
		stats.CategoryCounts[r.PerformanceCategory]++

		if r.ResponseTimeMs < stats.FastestResponseMs {
			stats.FastestResponseMs = r.ResponseTimeMs
		}
		if r.ResponseTimeMs > stats.SlowestResponseMs {
			stats.SlowestResponseMs = r.ResponseTimeMs
		}
	}

	n := float64(len(responses))
	stats.TotalResponses = len(responses)
	stats.AverageSuccessRating = ratingSum / n
	stats.AverageResponseTimeMs = timeSum / n
	stats.AverageRetention = retentionSum / n
	stats.Grade = gradeFor(stats.AverageSuccessRating)
	stats.Strengths = strengthsFor(stats)
	stats.Improvements = improvementsFor(stats)
	stats.Recommendation = recommendationFor(stats)

	return stats
}

// gradeEpsilon absorbs float64 accumulation error in the rating average,
// so a session sitting exactly on a threshold (e.g. ratings 0.95 and 0.85
// averaging to 0.8999999999999999) grades as the threshold.
const gradeEpsilon = 1e-9

// gradeFor maps an average success rating to a letter grade.
func gradeFor(averageRating float64) string {
	switch {
	case averageRating >= 0.9-gradeEpsilon:
		return "A"
	case averageRating >= 0.8-gradeEpsilon:
		return "B"
	case averageRating >= 0.7-gradeEpsilon:
		return "C"
	case averageRating >= 0.6-gradeEpsilon:
		return "D"
	default:
		return "F"
	}
}

func strengthsFor(stats *SessionStatistics) []string {
	var strengths []string

	if stats.AverageSuccessRating >= 0.8 {
		strengths = append(strengths, "Strong recall accuracy across the session")
	}
	if stats.AverageResponseTimeMs > 0 && stats.AverageResponseTimeMs < 3000 {
		strengths = append(strengths, "Quick, confident responses")
	}
	if excellent := stats.CategoryCounts[domain.PerformanceExcellent]; excellent > 0 &&
		excellent*2 >= stats.TotalResponses {
		strengths = append(strengths, "Excellent recall on at least half of reviewed atoms")
	}
	if stats.AverageRetention >= 0.85 {
		strengths = append(strengths, "High estimated retention")
	}

	return strengths
}

func improvementsFor(stats *SessionStatistics) []string {
	var improvements []string

	if needsReview := stats.CategoryCounts[domain.PerformanceNeedsReview]; needsReview > 0 {
		improvements = append(improvements, fmt.Sprintf(
			"%d atom(s) need another pass soon; schedule a short follow-up session", needsReview))
	}
	if stats.AverageResponseTimeMs > 8000 {
		improvements = append(improvements,
			"Responses were slow on average; try recalling before re-reading the material")
	}
	if fair := stats.CategoryCounts[domain.PerformanceFair]; fair > 0 &&
		fair*3 >= stats.TotalResponses {
		improvements = append(improvements,
			"Many partial recalls; rewriting these atoms in your own words may help")
	}

	return improvements
}

func recommendationFor(stats *SessionStatistics) string {
	switch stats.Grade {
	case "A":
		return "Outstanding session. Keep the current review cadence."
	case "B":
		return "Solid session. A quick revisit of the weaker atoms will lock them in."
	case "C":
		return "Decent session. Shorten your review intervals for the atoms you missed."
	case "D":
		return "Recall is slipping. Review the struggling atoms again within a day."
	default:
		return "Start with a short session focused on a handful of atoms to rebuild momentum."
	}
}
