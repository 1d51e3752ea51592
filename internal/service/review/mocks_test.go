package review

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/micronotes/review-api/internal/domain"
	"github.com/micronotes/review-api/internal/store"
)

// passthroughTx substitutes the real transaction runner in unit tests:
// it invokes the function with a nil transaction, and the mock stores'
// WithTx methods hand back the mock itself.
func passthroughTx(ctx context.Context, _ *sql.DB, fn store.TxFn) error {
	return fn(ctx, nil)
}

// MockAtomStore mocks the store.AtomStore interface
type MockAtomStore struct {
	mock.Mock
}

func (m *MockAtomStore) Create(ctx context.Context, atom *domain.Atom) error {
	args := m.Called(ctx, atom)
	return args.Error(0)
}

func (m *MockAtomStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Atom, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Atom), args.Error(1)
}

func (m *MockAtomStore) GetMultiple(ctx context.Context, ids []uuid.UUID) ([]*domain.Atom, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Atom), args.Error(1)
}

func (m *MockAtomStore) FindDueCandidates(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.Atom, error) {
	args := m.Called(ctx, userID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Atom), args.Error(1)
}

func (m *MockAtomStore) UpdateSchedule(
	ctx context.Context,
	id uuid.UUID,
	schedule domain.ReviewSchedule,
	difficulty float64,
) error {
	args := m.Called(ctx, id, schedule, difficulty)
	return args.Error(0)
}

func (m *MockAtomStore) WithTxAtomStore(tx *sql.Tx) store.AtomStore {
	return m
}

// MockSessionStore mocks the store.SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, session *domain.ReviewSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSession), args.Error(1)
}

func (m *MockSessionStore) IncrementProgress(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) MarkCompleted(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	args := m.Called(ctx, id, endedAt)
	return args.Error(0)
}

func (m *MockSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionStore) WithTxSessionStore(tx *sql.Tx) store.SessionStore {
	return m
}

// MockResponseStore mocks the store.ResponseStore interface
type MockResponseStore struct {
	mock.Mock
}

func (m *MockResponseStore) Create(ctx context.Context, response *domain.ReviewResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseStore) GetByIdempotencyKey(
	ctx context.Context,
	sessionID uuid.UUID,
	key string,
) (*domain.ReviewResponse, error) {
	args := m.Called(ctx, sessionID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewResponse), args.Error(1)
}

func (m *MockResponseStore) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
) ([]*domain.ReviewResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ReviewResponse), args.Error(1)
}

func (m *MockResponseStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseStore) WithTxResponseStore(tx *sql.Tx) store.ResponseStore {
	return m
}

// MockSelector mocks the Selector interface
type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectDueItems(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	now time.Time,
) (*DueItems, error) {
	args := m.Called(ctx, userID, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DueItems), args.Error(1)
}
