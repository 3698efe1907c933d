package itinerary

import (
	"errors"
	"strings"
)

// Plan generation errors.
var (
	// ErrProviderUnavailable indicates an AI or geo provider failed or timed out.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrInvalidModelOutput indicates a provider responded with output that is
	// not a valid plan.
	ErrInvalidModelOutput = errors.New("invalid model output")

	// ErrInvalidInput indicates a malformed plan request.
	ErrInvalidInput = errors.New("invalid plan request")

	// ErrNotFound indicates a destination could not be resolved.
	ErrNotFound = errors.New("not found")

	// ErrGenerationFailed indicates every generation strategy failed.
	ErrGenerationFailed = errors.New("plan generation failed")
)

// FieldError describes a validation problem on a single request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationError is returned for requests that fail validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrInvalidInput) hold.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
