// Package openai implements llm.Provider with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/tripmate/tripmate/internal/llm"
	"github.com/tripmate/tripmate/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider.
	ProviderName = "openai"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o-mini"

	defaultTemperature = 0.4
)

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// Model is the chat model name (default: gpt-4o-mini).
	Model string

	// BaseURL overrides the API base URL, e.g. for a compatible gateway.
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client generates plans with OpenAI chat completions.
type Client struct {
	api    *goopenai.Client
	model  string
	logger zerolog.Logger
}

// NewClient creates a new OpenAI client.
func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.HTTPClient = httpClient
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		api:    goopenai.NewClientWithConfig(apiCfg),
		model:  model,
		logger: cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Generate asks the model for a JSON plan.
func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt.User},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", classify(err)
	}

	c.logger.Debug().
		Str("provider", ProviderName).
		Str("model", resp.Model).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion finished")

	if len(resp.Choices) == 0 {
		return "", &llm.ProviderError{Provider: ProviderName, Err: llm.ErrEmptyResponse}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &llm.ProviderError{Provider: ProviderName, Err: llm.ErrEmptyResponse}
	}
	return content, nil
}

// classify maps go-openai errors onto llm.ProviderError.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &llm.ProviderError{Provider: ProviderName, Retryable: true, Err: err}
	}

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(ProviderName, apiErr.HTTPStatusCode, err)
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewProviderError(ProviderName, reqErr.HTTPStatusCode, err)
	}

	return llm.NewProviderError(ProviderName, 0, err)
}
