package review

import "github.com/micronotes/review-api/internal/domain"

// ImprovementSuggestions returns per-answer study advice for the given
// performance category. Surfaced alongside each recorded response so the
// client can show immediate feedback.
func ImprovementSuggestions(category domain.PerformanceCategory) []string {
	switch category {
	case domain.PerformanceExcellent:
		return []string{
			"Great recall. This atom will come back after a longer break.",
		}
	case domain.PerformanceGood:
		return []string{
			"Good work. Try to answer a little faster next time to strengthen the memory.",
		}
	case domain.PerformanceFair:
		return []string{
			"Partial recall. Re-read the source note and restate the idea in your own words.",
			"Connecting this atom to something you already know well makes it stick.",
		}
	case domain.PerformanceNeedsReview:
		return []string{
			"This one needs attention. It will come back tomorrow.",
			"Break the idea into smaller pieces if it keeps slipping.",
		}
	default:
		return nil
	}
}
