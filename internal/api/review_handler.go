package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/api/shared"
	"github.com/micronotes/review-api/internal/domain/srs"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/service/review"
)

// ReviewHandler handles the stateless review endpoints: listing due atoms
// and running one-off interval calculations.
type ReviewHandler struct {
	selector   review.Selector
	srsService srs.Service
	logger     *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(
	selector review.Selector,
	srsService srs.Service,
	logger *slog.Logger,
) *ReviewHandler {
	if selector == nil {
		panic("selector cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewHandler{
		selector:   selector,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "review_handler")),
	}
}

// GetDueReviews handles GET /reviews/due requests.
// It returns the atoms most worth reviewing right now for a user, in
// priority order. An empty list is a success, not an error.
func (h *ReviewHandler) GetDueReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid or missing user_id")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	due, err := h.selector.SelectDueItems(r.Context(), userID, limit, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to load due reviews", err)
		return
	}

	items := make([]DueItemResponse, len(due.Items))
	for i, item := range due.Items {
		items[i] = DueItemResponse{
			Atom:     atomToResponse(item.Atom),
			Urgency:  item.Urgency,
			Priority: item.Priority,
		}
	}

	payload := DueReviewsResponse{
		Items:                 items,
		TotalCount:            len(items),
		TotalEstimatedMinutes: due.TotalEstimatedMinutes,
		ReviewLimitReached:    due.ReviewLimitReached,
	}
	if !due.NextReviewAt.IsZero() {
		t := due.NextReviewAt
		payload.NextReviewAt = &t
	}

	message := ""
	if len(items) == 0 {
		message = "No atoms due for review"
	}

	log.Debug("due reviews listed",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	shared.RespondWithSuccess(w, r, http.StatusOK, payload, message)
}

// CalculateInterval handles POST /reviews/calculate_interval requests.
// It runs the scheduling algorithm over caller-supplied state without
// touching storage; useful for previews and for clients that keep their
// own schedule state.
func (h *ReviewHandler) CalculateInterval(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CalculateIntervalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.srsService.Calculate(srs.Input{
		IntervalDays:    req.IntervalDays,
		EaseFactor:      req.EaseFactor,
		ReviewCount:     req.ReviewCount,
		SuccessRating:   *req.SuccessRating,
		ResponseTimeMs:  req.ResponseTimeMs,
		DifficultyScore: req.DifficultyScore,
	}, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("interval calculated",
		slog.Float64("success_rating", *req.SuccessRating),
		slog.Int("new_interval_days", result.IntervalDays),
		slog.String("category", string(result.PerformanceCategory)))

	shared.RespondWithSuccess(w, r, http.StatusOK, CalculateIntervalResponse{
		NewIntervalDays:        result.IntervalDays,
		NewEaseFactor:          result.EaseFactor,
		NextReviewAt:           result.NextReviewAt,
		PerformanceCategory:    string(result.PerformanceCategory),
		RetentionProbability:   result.RetentionProbability,
		NewDifficultyScore:     result.DifficultyScore,
		AlgorithmVersion:       srs.AlgorithmVersion,
		CalculationDetails:     result.Details,
		ImprovementSuggestions: review.ImprovementSuggestions(result.PerformanceCategory),
	}, "")
}
