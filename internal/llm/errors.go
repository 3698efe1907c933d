package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tripmate/tripmate/internal/itinerary"
)

// ErrEmptyResponse is returned when a provider answers without any content.
var ErrEmptyResponse = errors.New("empty response")

// ProviderError is a failed call to an AI provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes provider errors match itinerary.ErrProviderUnavailable.
func (e *ProviderError) Is(target error) bool {
	return target == itinerary.ErrProviderUnavailable
}

// NewProviderError classifies err by HTTP status. A zero status means the
// request never got a response.
func NewProviderError(provider string, status int, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Retryable:  ClassifyStatus(status),
		Err:        err,
	}
}

// ClassifyStatus reports whether a response status is worth retrying:
// rate limits, timeouts and server errors are; auth and request errors are not.
func ClassifyStatus(status int) bool {
	switch {
	case status == 0:
		return true
	case status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		return true
	case status >= 500:
		return true
	default:
		return false
	}
}

// IsTransient returns true if the error may succeed on a later attempt.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// IsFatal returns true if the provider rejected the request outright.
func IsFatal(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && !pe.Retryable
}
