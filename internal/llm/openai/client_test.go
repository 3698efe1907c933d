package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/llm"
	"github.com/tripmate/tripmate/internal/llm/openai"
	"github.com/tripmate/tripmate/internal/provider/resilience"
)

func newTestClient(serverURL string) *openai.Client {
	cfg := resilience.DefaultClientConfig("openai-test")
	cfg.NoRetry = true
	return openai.NewClient(openai.ClientConfig{
		APIKey:     "sk-test",
		Model:      "gpt-test",
		BaseURL:    serverURL + "/v1",
		HTTPClient: resilience.NewClient(cfg),
	})
}

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		assert.Equal(t, "json_object", body.ResponseFormat.Type)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "be terse", body.Messages[0].Content)
			assert.Equal(t, "user", body.Messages[1].Role)
			assert.Equal(t, "plan Goa", body.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"destination\":\"Goa\"}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).Generate(context.Background(), llm.Prompt{System: "be terse", User: "plan Goa"})
	require.NoError(t, err)
	assert.Equal(t, `{"destination":"Goa"}`, out)
}

func TestClient_GenerateEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Generate(context.Background(), llm.Prompt{User: "plan"})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	assert.ErrorIs(t, err, itinerary.ErrProviderUnavailable)
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
		{"rate limited", http.StatusTooManyRequests, true},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "invalid_request_error", "code": "x"}}`))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Generate(context.Background(), llm.Prompt{User: "plan"})
			require.Error(t, err)

			var pe *llm.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, openai.ProviderName, pe.Provider)
			assert.Equal(t, tc.status, pe.StatusCode)
			assert.Equal(t, tc.retryable, pe.Retryable)
		})
	}
}

func TestClient_Name(t *testing.T) {
	var p llm.Provider = openai.NewClient(openai.ClientConfig{APIKey: "k"})
	assert.Equal(t, "openai", p.Name())
}
