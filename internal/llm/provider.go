// Package llm defines the interface AI plan generators implement and the
// prompt they are given.
package llm

import "context"

// Provider generates raw plan text from a prompt.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai", "gemini").
	Name() string

	// Generate returns the model's raw response. The text is expected to
	// contain a JSON plan but is not validated here.
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is a system instruction plus the user message.
type Prompt struct {
	System string
	User   string
}
