package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/micronotes/review-api/internal/store"
)

// TestErrorDefinitions ensures that the entity-specific errors wrap their
// generic counterparts and can be detected with errors.Is.
func TestErrorDefinitions(t *testing.T) {
	t.Parallel()

	t.Run("ErrAtomNotFound", func(t *testing.T) {
		t.Parallel()

		err := store.ErrAtomNotFound

		assert.True(t, errors.Is(err, store.ErrAtomNotFound))
		assert.True(t, errors.Is(err, store.ErrNotFound))
		assert.False(t, errors.Is(err, store.ErrSessionNotFound))
		assert.Equal(t, "entity not found: atom", err.Error())
	})

	t.Run("ErrSessionNotFound", func(t *testing.T) {
		t.Parallel()

		err := store.ErrSessionNotFound

		assert.True(t, errors.Is(err, store.ErrSessionNotFound))
		assert.True(t, errors.Is(err, store.ErrNotFound))
		assert.False(t, errors.Is(err, store.ErrAtomNotFound))
	})

	t.Run("ErrDuplicateResponse", func(t *testing.T) {
		t.Parallel()

		err := store.ErrDuplicateResponse

		assert.True(t, errors.Is(err, store.ErrDuplicate))
		assert.False(t, errors.Is(err, store.ErrNotFound))
	})

	t.Run("wrapped errors stay detectable", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("loading session: %w", store.ErrSessionNotFound)

		assert.True(t, store.IsNotFoundError(err))
		assert.True(t, errors.Is(err, store.ErrSessionNotFound))
	})
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrAtomNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrResponseNotFound))
	assert.False(t, store.IsNotFoundError(store.ErrDuplicate))
	assert.False(t, store.IsNotFoundError(errors.New("something else")))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsDuplicateError(store.ErrDuplicate))
	assert.True(t, store.IsDuplicateError(store.ErrDuplicateResponse))
	assert.False(t, store.IsDuplicateError(store.ErrNotFound))
	assert.False(t, store.IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("with wrapped error", func(t *testing.T) {
		t.Parallel()

		inner := errors.New("connection reset")
		err := store.NewStoreError("atom", "update", "schedule write failed", inner)

		assert.Equal(t,
			"update operation on atom failed: schedule write failed: connection reset",
			err.Error())
		assert.True(t, errors.Is(err, inner))
	})

	t.Run("without wrapped error", func(t *testing.T) {
		t.Parallel()

		err := store.NewStoreError("review session", "create", "missing atom list", nil)

		assert.Equal(t,
			"create operation on review session failed: missing atom list",
			err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}
