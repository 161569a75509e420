package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := ErrNotFound("course", "c-1")
	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Error(), "course not found: c-1")
}

func TestAppError_WithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ErrDatabase(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrap(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "ignored"))
	})

	t.Run("plain error", func(t *testing.T) {
		err := Wrap(fmt.Errorf("boom"), "saving user")
		require.NotNil(t, err)
		assert.Equal(t, CodeInternal, err.Code)
		assert.Equal(t, http.StatusInternalServerError, err.Status)
	})

	t.Run("already an AppError", func(t *testing.T) {
		original := ErrConflict("taken")
		wrapped := Wrap(fmt.Errorf("outer: %w", original), "ignored")
		assert.Equal(t, CodeConflict, wrapped.Code)
	})
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(ErrUserNotFound("u-1")))
	assert.False(t, IsNotFound(ErrEmailTaken("a@b.edu")))
	assert.True(t, IsConflict(ErrCourseFull("c-1")))
	assert.True(t, IsUnauthorized(ErrInvalidCredentials()))
	assert.False(t, IsNotFound(fmt.Errorf("plain")))
}

func TestErrRateLimitExceeded_Metadata(t *testing.T) {
	err := ErrRateLimitExceeded(42)
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, 42, err.Metadata["retry_after"])
}
