package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/micronotes/review-api/internal/service/review"
)

// MockSelector mocks the review.Selector interface
type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectDueItems(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	now time.Time,
) (*review.DueItems, error) {
	args := m.Called(ctx, userID, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.DueItems), args.Error(1)
}

// MockSessionService mocks the review.SessionService interface
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) StartSession(
	ctx context.Context,
	in review.StartSessionInput,
) (*review.StartedSession, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.StartedSession), args.Error(1)
}

func (m *MockSessionService) SubmitResponse(
	ctx context.Context,
	sessionID uuid.UUID,
	in review.SubmitResponseInput,
) (*review.SubmitResult, error) {
	args := m.Called(ctx, sessionID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.SubmitResult), args.Error(1)
}

func (m *MockSessionService) EndSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*review.SessionSummary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.SessionSummary), args.Error(1)
}

func (m *MockSessionService) GetSession(
	ctx context.Context,
	sessionID uuid.UUID,
) (*review.SessionState, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.SessionState), args.Error(1)
}
