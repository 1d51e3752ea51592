package review

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/domain/srs"
	"github.com/micronotes/review-api/internal/store"
)

func newTestService(
	atoms *MockAtomStore,
	sessions *MockSessionStore,
	responses *MockResponseStore,
	selector Selector,
) *sessionServiceImpl {
	return &sessionServiceImpl{
		atoms:             atoms,
		sessions:          sessions,
		responses:         responses,
		selector:          selector,
		srsService:        srs.NewDefaultService(),
		sessionRetention:  7 * 24 * time.Hour,
		responseRetention: 90 * 24 * time.Hour,
		logger:            slog.Default(),
		runTx:             passthroughTx,
	}
}

func activeSession(t *testing.T, atomIDs []uuid.UUID) *domain.ReviewSession {
	t.Helper()
	session, err := domain.NewReviewSession(
		uuid.New(), "regular", atomIDs, domain.SessionSettings{MaxAtoms: len(atomIDs)}, 7*24*time.Hour)
	require.NoError(t, err)
	return session
}

func TestStartSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("creates session over selected atoms", func(t *testing.T) {
		atomA := dueAtom(0.9, time.Hour, time.Now().UTC())
		atomB := dueAtom(0.5, time.Hour, time.Now().UTC())

		selector := new(MockSelector)
		selector.On("SelectDueItems", mock.Anything, userID, 10, mock.Anything).
			Return(&DueItems{
				Items: []DueItem{
					{Atom: atomA, EstimatedMinutes: 1.5},
					{Atom: atomB, EstimatedMinutes: 1.5},
				},
				TotalEstimatedMinutes: 3.0,
			}, nil)

		sessions := new(MockSessionStore)
		var created *domain.ReviewSession
		sessions.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewSession")).
			Run(func(args mock.Arguments) {
				created = args.Get(1).(*domain.ReviewSession)
			}).
			Return(nil)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), selector)
		started, err := svc.StartSession(context.Background(), StartSessionInput{
			UserID:   userID,
			MaxAtoms: 10,
		})
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.Equal(t, domain.SessionStatusActive, created.Status)
		assert.Equal(t, 2, created.TotalAtoms)
		assert.Equal(t, "regular", created.SessionType)
		assert.Equal(t, defaultTimeLimitMinutes, created.Settings.TimeLimitMinutes)

		require.Len(t, started.Atoms, 2)
		assert.Equal(t, atomA.ID, started.Atoms[0].ID)
		assert.Equal(t, atomB.ID, started.Atoms[1].ID)
		assert.InDelta(t, 3.0, started.TotalEstimatedMinutes, 1e-9)
		sessions.AssertExpectations(t)
	})

	t.Run("nothing due returns ErrNoAtomsDue", func(t *testing.T) {
		selector := new(MockSelector)
		selector.On("SelectDueItems", mock.Anything, userID, 0, mock.Anything).
			Return(&DueItems{}, nil)

		svc := newTestService(new(MockAtomStore), new(MockSessionStore), new(MockResponseStore), selector)
		started, err := svc.StartSession(context.Background(), StartSessionInput{UserID: userID})

		assert.ErrorIs(t, err, ErrNoAtomsDue)
		assert.Nil(t, started)
	})
}

func TestSubmitResponse(t *testing.T) {
	t.Parallel()

	atom := &domain.Atom{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		Content:         "test atom",
		Type:            "concept",
		ImportanceScore: 0.5,
		DifficultyScore: 0.3,
		Schedule: domain.ReviewSchedule{
			IntervalDays: 6,
			EaseFactor:   2.5,
			ReviewCount:  2,
		},
	}

	t.Run("records response and advances progress", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{atom.ID})
		updated := *session
		updated.CompletedAtoms = 1

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil).Once()
		sessions.On("IncrementProgress", mock.Anything, session.ID).Return(nil)
		sessions.On("GetByID", mock.Anything, session.ID).Return(&updated, nil).Once()

		atoms := new(MockAtomStore)
		atoms.On("GetByID", mock.Anything, atom.ID).Return(atom, nil)
		atoms.On("UpdateSchedule", mock.Anything, atom.ID,
			mock.AnythingOfType("domain.ReviewSchedule"), mock.AnythingOfType("float64")).
			Return(nil)

		responses := new(MockResponseStore)
		var recorded *domain.ReviewResponse
		responses.On("Create", mock.Anything, mock.AnythingOfType("*domain.ReviewResponse")).
			Run(func(args mock.Arguments) {
				recorded = args.Get(1).(*domain.ReviewResponse)
			}).
			Return(nil)

		svc := newTestService(atoms, sessions, responses, new(MockSelector))
		result, err := svc.SubmitResponse(context.Background(), session.ID, SubmitResponseInput{
			AtomID:         atom.ID,
			SuccessRating:  0.95,
			ResponseTimeMs: 2000,
		})
		require.NoError(t, err)

		require.NotNil(t, recorded)
		assert.Equal(t, 18, recorded.NewIntervalDays)
		assert.InDelta(t, 2.58, recorded.NewEaseFactor, 1e-9)
		assert.Equal(t, domain.PerformanceExcellent, recorded.PerformanceCategory)
		assert.Equal(t, srs.AlgorithmVersion, recorded.AlgorithmVersion)
		assert.False(t, recorded.ExpiresAt.IsZero())

		assert.Equal(t, 1, result.CompletedAtoms)
		assert.Equal(t, session.TotalAtoms, result.TotalAtoms)
		assert.False(t, result.Replayed)
		assert.Equal(t, 3, result.Details.ReviewCount)

		sessions.AssertExpectations(t)
		atoms.AssertExpectations(t)
		responses.AssertExpectations(t)
	})

	t.Run("completed session rejects responses", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{atom.ID})
		session.Status = domain.SessionStatusCompleted

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), new(MockSelector))
		_, err := svc.SubmitResponse(context.Background(), session.ID, SubmitResponseInput{
			AtomID:        atom.ID,
			SuccessRating: 0.5,
		})

		assert.ErrorIs(t, err, ErrSessionCompleted)
	})

	t.Run("atom outside session is rejected", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{uuid.New()})

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), new(MockSelector))
		_, err := svc.SubmitResponse(context.Background(), session.ID, SubmitResponseInput{
			AtomID:        atom.ID,
			SuccessRating: 0.5,
		})

		assert.ErrorIs(t, err, ErrAtomNotInSession)
	})

	t.Run("invalid rating is rejected before any load", func(t *testing.T) {
		svc := newTestService(new(MockAtomStore), new(MockSessionStore), new(MockResponseStore), new(MockSelector))
		_, err := svc.SubmitResponse(context.Background(), uuid.New(), SubmitResponseInput{
			AtomID:        atom.ID,
			SuccessRating: 1.5,
		})

		assert.ErrorIs(t, err, ErrInvalidResponse)
	})

	t.Run("unknown session returns ErrSessionNotFound", func(t *testing.T) {
		sessionID := uuid.New()
		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, sessionID).Return(nil, store.ErrSessionNotFound)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), new(MockSelector))
		_, err := svc.SubmitResponse(context.Background(), sessionID, SubmitResponseInput{
			AtomID:        atom.ID,
			SuccessRating: 0.5,
		})

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("repeated idempotency key replays stored result", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{atom.ID})
		session.CompletedAtoms = 1

		existing := &domain.ReviewResponse{
			ID:                  uuid.New(),
			SessionID:           session.ID,
			AtomID:              atom.ID,
			IdempotencyKey:      "client-key-1",
			SuccessRating:       0.95,
			NewIntervalDays:     18,
			PerformanceCategory: domain.PerformanceExcellent,
		}

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		responses := new(MockResponseStore)
		responses.On("GetByIdempotencyKey", mock.Anything, session.ID, "client-key-1").
			Return(existing, nil)

		svc := newTestService(new(MockAtomStore), sessions, responses, new(MockSelector))
		result, err := svc.SubmitResponse(context.Background(), session.ID, SubmitResponseInput{
			AtomID:         atom.ID,
			IdempotencyKey: "client-key-1",
			SuccessRating:  0.95,
		})
		require.NoError(t, err)

		assert.True(t, result.Replayed)
		assert.Equal(t, existing.ID, result.Response.ID)
		assert.Equal(t, 1, result.CompletedAtoms)
		responses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestEndSession(t *testing.T) {
	t.Parallel()

	t.Run("completes session and summarizes responses", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{uuid.New(), uuid.New()})
		session.CompletedAtoms = 2

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		sessions.On("MarkCompleted", mock.Anything, session.ID, mock.AnythingOfType("time.Time")).
			Return(nil)

		responses := new(MockResponseStore)
		responses.On("ListBySession", mock.Anything, session.ID).
			Return([]*domain.ReviewResponse{
				response(0.95, 1500, domain.PerformanceExcellent, 1.0),
				response(0.85, 2500, domain.PerformanceGood, 0.9),
			}, nil)

		selector := new(MockSelector)
		selector.On("SelectDueItems", mock.Anything, session.UserID, 1, mock.AnythingOfType("time.Time")).
			Return(&DueItems{}, nil)

		svc := newTestService(new(MockAtomStore), sessions, responses, selector)
		summary, err := svc.EndSession(context.Background(), session.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.SessionStatusCompleted, summary.Session.Status)
		assert.False(t, summary.Session.EndedAt.IsZero())
		assert.Equal(t, 2, summary.Statistics.TotalResponses)
		assert.Equal(t, "A", summary.Statistics.Grade)
		assert.Contains(t, summary.NextReviewSuggestion, "caught up")
	})

	t.Run("suggests another session when more atoms are due", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{uuid.New()})
		session.CompletedAtoms = 1

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		sessions.On("MarkCompleted", mock.Anything, session.ID, mock.AnythingOfType("time.Time")).
			Return(nil)

		responses := new(MockResponseStore)
		responses.On("ListBySession", mock.Anything, session.ID).
			Return([]*domain.ReviewResponse{
				response(0.7, 3000, domain.PerformanceGood, 0.8),
			}, nil)

		selector := new(MockSelector)
		selector.On("SelectDueItems", mock.Anything, session.UserID, 1, mock.AnythingOfType("time.Time")).
			Return(&DueItems{Items: []DueItem{{}}}, nil)

		svc := newTestService(new(MockAtomStore), sessions, responses, selector)
		summary, err := svc.EndSession(context.Background(), session.ID)
		require.NoError(t, err)

		assert.Contains(t, summary.NextReviewSuggestion, "More atoms are already due")
	})

	t.Run("ending twice returns ErrSessionCompleted", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{uuid.New()})
		session.Status = domain.SessionStatusCompleted

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), new(MockSelector))
		_, err := svc.EndSession(context.Background(), session.ID)

		assert.ErrorIs(t, err, ErrSessionCompleted)
	})

	t.Run("concurrent end loses gracefully", func(t *testing.T) {
		session := activeSession(t, []uuid.UUID{uuid.New()})

		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)
		sessions.On("MarkCompleted", mock.Anything, session.ID, mock.AnythingOfType("time.Time")).
			Return(store.ErrUpdateFailed)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), new(MockSelector))
		_, err := svc.EndSession(context.Background(), session.ID)

		assert.ErrorIs(t, err, ErrSessionCompleted)
	})

	t.Run("unknown session returns ErrSessionNotFound", func(t *testing.T) {
		sessionID := uuid.New()
		sessions := new(MockSessionStore)
		sessions.On("GetByID", mock.Anything, sessionID).Return(nil, store.ErrSessionNotFound)

		svc := newTestService(new(MockAtomStore), sessions, new(MockResponseStore), new(MockSelector))
		_, err := svc.EndSession(context.Background(), sessionID)

		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	session := activeSession(t, []uuid.UUID{uuid.New(), uuid.New()})
	session.CompletedAtoms = 1

	sessions := new(MockSessionStore)
	sessions.On("GetByID", mock.Anything, session.ID).Return(session, nil)

	responses := new(MockResponseStore)
	responses.On("ListBySession", mock.Anything, session.ID).
		Return([]*domain.ReviewResponse{
			response(0.8, 2000, domain.PerformanceGood, 0.9),
		}, nil)

	svc := newTestService(new(MockAtomStore), sessions, responses, new(MockSelector))
	state, err := svc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, state.Session.ID)
	assert.Equal(t, 1, state.ResponsesSubmitted)
	assert.InDelta(t, 50.0, state.Session.ProgressPercentage(), 1e-9)
}
