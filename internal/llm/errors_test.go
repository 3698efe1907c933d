package llm_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/llm"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{0, true},
		{http.StatusTooManyRequests, true},
		{http.StatusRequestTimeout, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.retryable, llm.ClassifyStatus(tc.status))
		})
	}
}

func TestProviderError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("tier primary: %w", llm.NewProviderError("openai", http.StatusTooManyRequests, cause))

	assert.ErrorIs(t, err, itinerary.ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.True(t, llm.IsTransient(err))
	assert.False(t, llm.IsFatal(err))
	assert.Contains(t, err.Error(), "openai: status 429: quota exceeded")

	fatal := llm.NewProviderError("gemini", http.StatusUnauthorized, errors.New("bad key"))
	assert.True(t, llm.IsFatal(fatal))
	assert.False(t, llm.IsTransient(fatal))
}

func TestIsTransient_Deadline(t *testing.T) {
	assert.True(t, llm.IsTransient(fmt.Errorf("waiting: %w", context.DeadlineExceeded)))
	assert.False(t, llm.IsTransient(errors.New("plain")))
	assert.False(t, llm.IsFatal(errors.New("plain")))
}
