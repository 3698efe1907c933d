package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/tripmate/tripmate/internal/itinerary"
	"github.com/tripmate/tripmate/internal/llm"
)

type fakeGenerator struct {
	mu    sync.Mutex
	resp  *genai.GenerateContentResponse
	err   error
	calls int
	parts []genai.Part
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.parts = parts
	return f.resp, f.err
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func newTestClient(gen generator) *Client {
	return &Client{model: gen, logger: zerolog.Nop()}
}

func TestClient_Generate(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(genai.Text(`{"destination":`), genai.Text(`"Goa"}`))}

	out, err := newTestClient(gen).Generate(context.Background(), llm.Prompt{System: "sys", User: "plan Goa"})
	require.NoError(t, err)
	assert.Equal(t, `{"destination":"Goa"}`, out)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []genai.Part{genai.Text("sys"), genai.Text("plan Goa")}, gen.parts)
}

func TestClient_GenerateEmpty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"blank text", textResponse(genai.Text("  "))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestClient(&fakeGenerator{resp: tc.resp}).Generate(context.Background(), llm.Prompt{User: "plan"})
			assert.ErrorIs(t, err, llm.ErrEmptyResponse)
			assert.ErrorIs(t, err, itinerary.ErrProviderUnavailable)
		})
	}
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		retryable bool
	}{
		{"quota", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}, http.StatusTooManyRequests, true},
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden, Message: "key"}, http.StatusForbidden, false},
		{"blocked", &genai.BlockedError{}, 0, false},
		{"deadline", context.DeadlineExceeded, 0, true},
		{"network", errors.New("connection reset"), 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestClient(&fakeGenerator{err: tc.err}).Generate(context.Background(), llm.Prompt{User: "plan"})

			var pe *llm.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, ProviderName, pe.Provider)
			assert.Equal(t, tc.status, pe.StatusCode)
			assert.Equal(t, tc.retryable, pe.Retryable)
		})
	}
}

func TestClient_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, newTestClient(&fakeGenerator{}).Close())
	assert.Equal(t, "gemini", newTestClient(&fakeGenerator{}).Name())
}
