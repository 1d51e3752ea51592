package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/api/shared"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/service/review"
)

// SessionHandler handles the review session lifecycle endpoints.
type SessionHandler struct {
	sessions review.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions review.SessionService, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// StartSession handles POST /reviews/sessions requests.
// When the user has nothing due, the response is still a success: null
// data with an explanatory message, so clients need no special error path.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user_id")
		return
	}

	// Shuffle defaults to on; the request can opt out explicitly.
	shuffle := true
	if req.ShuffleOrder != nil {
		shuffle = *req.ShuffleOrder
	}

	started, err := h.sessions.StartSession(r.Context(), review.StartSessionInput{
		UserID:           userID,
		SessionType:      req.SessionType,
		MaxAtoms:         req.MaxAtoms,
		TimeLimitMinutes: req.TimeLimitMinutes,
		ShuffleOrder:     shuffle,
		ShowHints:        req.ShowHints,
	})
	if errors.Is(err, review.ErrNoAtomsDue) {
		log.Debug("no atoms due, returning null session",
			slog.String("user_id", userID.String()))
		shared.RespondWithSuccess(w, r, http.StatusOK, nil, "No atoms due for review")
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to start review session", err)
		return
	}

	atoms := make([]AtomResponse, len(started.Atoms))
	for i, atom := range started.Atoms {
		atoms[i] = atomToResponse(atom)
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, StartSessionResponse{
		Session:               sessionToResponse(started.Session),
		Atoms:                 atoms,
		TotalEstimatedMinutes: started.TotalEstimatedMinutes,
	}, "")
}

// SubmitResponse handles POST /reviews/sessions/{sessionID}/responses requests.
func (h *SessionHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromURL(w, r)
	if !ok {
		return
	}

	var req SubmitResponseRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	atomID, err := uuid.Parse(req.AtomID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid atom_id")
		return
	}

	result, err := h.sessions.SubmitResponse(r.Context(), sessionID, review.SubmitResponseInput{
		AtomID:              atomID,
		IdempotencyKey:      req.IdempotencyKey,
		SuccessRating:       *req.SuccessRating,
		ResponseTimeMs:      req.ResponseTimeMs,
		ConfidenceLevel:     req.ConfidenceLevel,
		DifficultyPerceived: req.DifficultyPerceived,
		ReviewMethod:        req.ReviewMethod,
		Notes:               req.Notes,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, submitResultToResponse(result), "")
}

// EndSession handles PUT /reviews/sessions/{sessionID}/end requests.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromURL(w, r)
	if !ok {
		return
	}

	summary, err := h.sessions.EndSession(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	duration := 0
	if !summary.Session.EndedAt.IsZero() {
		duration = int(summary.Session.EndedAt.Sub(summary.Session.StartedAt).Minutes())
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, EndSessionResponse{
		Session:                sessionToResponse(summary.Session),
		SessionDurationMinutes: duration,
		Statistics:             summary.Statistics,
		NextReviewSuggestion:   summary.NextReviewSuggestion,
	}, "")
}

// GetSession handles GET /reviews/sessions/{sessionID} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionIDFromURL(w, r)
	if !ok {
		return
	}

	state, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, SessionStateResponse{
		Session:            sessionToResponse(state.Session),
		ResponsesSubmitted: state.ResponsesSubmitted,
		RemainingAtoms:     state.Session.RemainingAtoms(),
	}, "")
}

// sessionIDFromURL parses the session ID path parameter, responding with
// 400 on malformed IDs.
func (h *SessionHandler) sessionIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return sessionID, true
}
