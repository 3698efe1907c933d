// Package gemini implements llm.Provider with the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tripmate/tripmate/internal/llm"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "gemini"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-1.5-flash"
)

// generator is the part of genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the model name (default: gemini-1.5-flash).
	Model string

	Logger zerolog.Logger
}

// Client generates plans with Gemini.
type Client struct {
	client *genai.Client
	model  generator
	logger zerolog.Logger
}

// NewClient creates a new Gemini client. Close it when done.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.2)
	m.SetTopP(0.5)
	m.SetTopK(20)

	return &Client{client: client, model: m, logger: cfg.Logger}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Generate asks the model for a JSON plan. The system instruction is sent
// ahead of the user prompt in the same turn.
func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt.System), genai.Text(prompt.User))
	if err != nil {
		return "", classify(err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &llm.ProviderError{Provider: ProviderName, Err: llm.ErrEmptyResponse}
	}

	c.logger.Debug().
		Str("provider", ProviderName).
		Int("length", len(text)).
		Msg("content generated")
	return text, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &llm.ProviderError{Provider: ProviderName, Retryable: true, Err: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &llm.ProviderError{Provider: ProviderName, Err: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(ProviderName, apiErr.Code, err)
	}

	return llm.NewProviderError(ProviderName, 0, err)
}
