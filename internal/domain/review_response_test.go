package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReviewResponseValidate(t *testing.T) {
	t.Parallel()

	valid := func() ReviewResponse {
		return ReviewResponse{
			ID:                  uuid.New(),
			SessionID:           uuid.New(),
			AtomID:              uuid.New(),
			SuccessRating:       0.8,
			ResponseTimeMs:      2500,
			ReviewMethod:        "flashcard",
			NewIntervalDays:     6,
			NewEaseFactor:       2.52,
			PerformanceCategory: PerformanceGood,
		}
	}

	testCases := []struct {
		name        string
		mutate      func(*ReviewResponse)
		expectedErr error
	}{
		{"valid response", func(*ReviewResponse) {}, nil},
		{"nil ID", func(r *ReviewResponse) { r.ID = uuid.Nil }, ErrResponseIDEmpty},
		{"nil session ID", func(r *ReviewResponse) { r.SessionID = uuid.Nil }, ErrResponseSessionIDEmpty},
		{"nil atom ID", func(r *ReviewResponse) { r.AtomID = uuid.Nil }, ErrResponseAtomIDEmpty},
		{"rating above one", func(r *ReviewResponse) { r.SuccessRating = 1.01 }, ErrInvalidSuccessRating},
		{"negative rating", func(r *ReviewResponse) { r.SuccessRating = -0.5 }, ErrInvalidSuccessRating},
		{"negative latency", func(r *ReviewResponse) { r.ResponseTimeMs = -1 }, ErrInvalidResponseTime},
		{"boundary rating zero", func(r *ReviewResponse) { r.SuccessRating = 0 }, nil},
		{"boundary rating one", func(r *ReviewResponse) { r.SuccessRating = 1 }, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			response := valid()
			tc.mutate(&response)

			err := response.Validate()
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
