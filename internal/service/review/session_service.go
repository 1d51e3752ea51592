package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/domain/srs"
	"github.com/micronotes/review-api/internal/platform/logger"
	"github.com/micronotes/review-api/internal/store"
)

// Verify interface compliance at compile time
var _ SessionService = (*sessionServiceImpl)(nil)

const defaultTimeLimitMinutes = 30

// sessionServiceImpl implements the SessionService interface.
type sessionServiceImpl struct {
	db                *sql.DB
	atoms             store.AtomStore
	sessions          store.SessionStore
	responses         store.ResponseStore
	selector          Selector
	srsService        srs.Service
	sessionRetention  time.Duration
	responseRetention time.Duration
	logger            *slog.Logger

	// runTx wraps store.RunInTransaction so tests can substitute a
	// pass-through runner.
	runTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewSessionService creates a new SessionService implementation.
// The db handle is used to open the transaction that makes response
// submission atomic across the three stores.
func NewSessionService(
	db *sql.DB,
	atoms store.AtomStore,
	sessions store.SessionStore,
	responses store.ResponseStore,
	selector Selector,
	srsService srs.Service,
	sessionRetention time.Duration,
	responseRetention time.Duration,
	logger *slog.Logger,
) SessionService {
	if db == nil {
		panic("db cannot be nil")
	}
	if atoms == nil {
		panic("atoms cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if responses == nil {
		panic("responses cannot be nil")
	}
	if selector == nil {
		panic("selector cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		db:                db,
		atoms:             atoms,
		sessions:          sessions,
		responses:         responses,
		selector:          selector,
		srsService:        srsService,
		sessionRetention:  sessionRetention,
		responseRetention: responseRetention,
		logger:            logger.With(slog.String("component", "session_service")),
		runTx:             store.RunInTransaction,
	}
}

// StartSession implements SessionService.StartSession.
// The atom list is decided here, once, from the due-item selector; the
// session never recomputes it.
func (s *sessionServiceImpl) StartSession(
	ctx context.Context,
	in StartSessionInput,
) (*StartedSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	due, err := s.selector.SelectDueItems(ctx, in.UserID, in.MaxAtoms, now)
	if err != nil {
		return nil, fmt.Errorf("failed to select session atoms: %w", err)
	}
	if len(due.Items) == 0 {
		log.Debug("no atoms due, session not created",
			slog.String("user_id", in.UserID.String()))
		return nil, ErrNoAtomsDue
	}

	atoms := make([]*domain.Atom, len(due.Items))
	for i, item := range due.Items {
		atoms[i] = item.Atom
	}
	if in.ShuffleOrder {
		rand.Shuffle(len(atoms), func(i, j int) {
			atoms[i], atoms[j] = atoms[j], atoms[i]
		})
	}

	atomIDs := make([]uuid.UUID, len(atoms))
	for i, atom := range atoms {
		atomIDs[i] = atom.ID
	}

	timeLimit := in.TimeLimitMinutes
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimitMinutes
	}

	session, err := domain.NewReviewSession(in.UserID, in.SessionType, atomIDs, domain.SessionSettings{
		MaxAtoms:         len(atomIDs),
		TimeLimitMinutes: timeLimit,
		ShuffleOrder:     in.ShuffleOrder,
		ShowHints:        in.ShowHints,
	}, s.sessionRetention)
	if err != nil {
		return nil, fmt.Errorf("failed to build session: %w", err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to persist session",
			slog.String("error", err.Error()),
			slog.String("user_id", in.UserID.String()))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("review session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", in.UserID.String()),
		slog.Int("total_atoms", session.TotalAtoms),
		slog.Bool("shuffled", in.ShuffleOrder))

	return &StartedSession{
		Session:               session,
		Atoms:                 atoms,
		TotalEstimatedMinutes: due.TotalEstimatedMinutes,
	}, nil
}

// SubmitResponse implements SessionService.SubmitResponse.
// The response insert, the atom schedule update, and the session progress
// increment commit or roll back as one unit. A repeated idempotency key
// returns the originally stored response instead of writing again.
func (s *sessionServiceImpl) SubmitResponse(
	ctx context.Context,
	sessionID uuid.UUID,
	in SubmitResponseInput,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	if in.SuccessRating < 0 || in.SuccessRating > 1 {
		return nil, fmt.Errorf("%w: success rating must be between 0 and 1", ErrInvalidResponse)
	}
	if in.ResponseTimeMs < 0 {
		return nil, fmt.Errorf("%w: response time cannot be negative", ErrInvalidResponse)
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		log.Warn("response submitted to completed session",
			slog.String("session_id", sessionID.String()))
		return nil, ErrSessionCompleted
	}
	if !session.ContainsAtom(in.AtomID) {
		log.Warn("response for atom outside session",
			slog.String("session_id", sessionID.String()),
			slog.String("atom_id", in.AtomID.String()))
		return nil, ErrAtomNotInSession
	}

	if in.IdempotencyKey != "" {
		if replay, err := s.replayResponse(ctx, session, in.IdempotencyKey); err != nil {
			return nil, err
		} else if replay != nil {
			return replay, nil
		}
	}

	atom, err := s.atoms.GetByID(ctx, in.AtomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrAtomNotFound
		}
		return nil, fmt.Errorf("failed to load atom: %w", err)
	}

	result, err := s.srsService.Calculate(srs.Input{
		IntervalDays:    atom.Schedule.IntervalDays,
		EaseFactor:      atom.Schedule.EaseFactor,
		ReviewCount:     atom.Schedule.ReviewCount,
		SuccessRating:   in.SuccessRating,
		ResponseTimeMs:  in.ResponseTimeMs,
		DifficultyScore: atom.DifficultyScore,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	response := &domain.ReviewResponse{
		ID:                   uuid.New(),
		SessionID:            sessionID,
		AtomID:               in.AtomID,
		IdempotencyKey:       in.IdempotencyKey,
		SuccessRating:        in.SuccessRating,
		ResponseTimeMs:       in.ResponseTimeMs,
		ConfidenceLevel:      in.ConfidenceLevel,
		DifficultyPerceived:  in.DifficultyPerceived,
		ReviewMethod:         in.ReviewMethod,
		Notes:                in.Notes,
		NewIntervalDays:      result.IntervalDays,
		NewEaseFactor:        result.EaseFactor,
		PerformanceCategory:  result.PerformanceCategory,
		RetentionProbability: result.RetentionProbability,
		AlgorithmVersion:     srs.AlgorithmVersion,
		ExpiresAt:            now.Add(s.responseRetention),
		CreatedAt:            now,
	}

	newSchedule := domain.ReviewSchedule{
		IntervalDays: result.IntervalDays,
		EaseFactor:   result.EaseFactor,
		ReviewCount:  atom.Schedule.ReviewCount + 1,
		NextReviewAt: result.NextReviewAt,
		LastReviewAt: now,
	}

	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.responses.WithTxResponseStore(tx).Create(ctx, response); err != nil {
			return err
		}
		if err := s.atoms.WithTxAtomStore(tx).UpdateSchedule(
			ctx, atom.ID, newSchedule, result.DifficultyScore,
		); err != nil {
			return err
		}
		return s.sessions.WithTxSessionStore(tx).IncrementProgress(ctx, sessionID)
	})
	if err != nil {
		// A concurrent submission with the same key can win the race
		// between our replay check and the insert; hand back its result.
		if errors.Is(err, store.ErrDuplicateResponse) && in.IdempotencyKey != "" {
			if replay, replayErr := s.replayResponse(ctx, session, in.IdempotencyKey); replayErr == nil &&
				replay != nil {
				return replay, nil
			}
		}
		if errors.Is(err, store.ErrSessionNotFound) {
			// The progress guard found no active session with capacity:
			// the session completed underneath us.
			return nil, ErrSessionCompleted
		}
		log.Error("failed to record response",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()),
			slog.String("atom_id", in.AtomID.String()))
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	updated, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	log.Info("response recorded",
		slog.String("session_id", sessionID.String()),
		slog.String("atom_id", in.AtomID.String()),
		slog.String("category", string(result.PerformanceCategory)),
		slog.Int("new_interval_days", result.IntervalDays),
		slog.Int("completed_atoms", updated.CompletedAtoms))

	return &SubmitResult{
		Response:       response,
		Details:        result.Details,
		CompletedAtoms: updated.CompletedAtoms,
		TotalAtoms:     updated.TotalAtoms,
	}, nil
}

// EndSession implements SessionService.EndSession.
func (s *sessionServiceImpl) EndSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, ErrSessionCompleted
	}

	if err := s.sessions.MarkCompleted(ctx, sessionID, now); err != nil {
		if errors.Is(err, store.ErrUpdateFailed) {
			// Lost the race against a concurrent end call.
			return nil, ErrSessionCompleted
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Error("failed to complete session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	session.Status = domain.SessionStatusCompleted
	session.EndedAt = now

	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session responses: %w", err)
	}

	stats := SummarizeResponses(responses)

	log.Info("review session ended",
		slog.String("session_id", sessionID.String()),
		slog.Int("total_responses", stats.TotalResponses),
		slog.String("grade", stats.Grade))

	return &SessionSummary{
		Session:              session,
		Statistics:           stats,
		NextReviewSuggestion: s.nextReviewSuggestion(ctx, session.UserID, now),
	}, nil
}

// nextReviewSuggestion checks whether the user already has more atoms due
// and phrases the result for the session summary. Selector failures fall
// back to the neutral message rather than failing the end call.
func (s *sessionServiceImpl) nextReviewSuggestion(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) string {
	due, err := s.selector.SelectDueItems(ctx, userID, 1, now)
	if err == nil && len(due.Items) > 0 {
		return "More atoms are already due. Start another session to keep your streak going."
	}
	return "You're all caught up. Check back later for your next review."
}

// GetSession implements SessionService.GetSession.
func (s *sessionServiceImpl) GetSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*SessionState, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responses.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session responses: %w", err)
	}

	return &SessionState{
		Session:            session,
		ResponsesSubmitted: len(responses),
	}, nil
}

// loadSession fetches a session, mapping store errors to service errors.
func (s *sessionServiceImpl) loadSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.ReviewSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// replayResponse returns the stored result for an idempotency key, or nil
// when the key has not been used in this session.
func (s *sessionServiceImpl) replayResponse(
	ctx context.Context,
	session *domain.ReviewSession,
	key string,
) (*SubmitResult, error) {
	existing, err := s.responses.GetByIdempotencyKey(ctx, session.ID, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	return &SubmitResult{
		Response:       existing,
		CompletedAtoms: session.CompletedAtoms,
		TotalAtoms:     session.TotalAtoms,
		Replayed:       true,
	}, nil
}
