package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tripmate/tripmate/internal/api/middleware"
	"github.com/tripmate/tripmate/internal/api/models"
	"github.com/tripmate/tripmate/internal/api/response"
)

// requestWithContext creates an HTTP request that has been processed by the RequestID middleware
// to populate the context with a request ID.
func requestWithContext(t *testing.T, method, path string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)

	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	return processedReq, httptest.NewRecorder()
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/test")

	response.JSON(rec, req, http.StatusOK, map[string]string{"message": "hello"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("X-Request-Id"), "req_") {
		t.Errorf("expected X-Request-Id header to be set, got %q", rec.Header().Get("X-Request-Id"))
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
}

func TestJSON_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, nil)

	if requestID := rec.Header().Get("X-Request-Id"); requestID != "" {
		t.Errorf("expected no X-Request-Id header when not in context, got %q", requestID)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got %q", rec.Body.String())
	}
}

func TestLocationResponses(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter, r *http.Request)
		status int
	}{
		{
			name: "created",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.Created(w, r, "/v1/plans/plan_123", map[string]string{"id": "plan_123"})
			},
			status: http.StatusCreated,
		},
		{
			name: "accepted",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.Accepted(w, r, "/v1/plans/plan_123", map[string]string{"id": "plan_123"})
			},
			status: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := requestWithContext(t, http.MethodPost, "/v1/plans:generate")
			tt.write(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if loc := rec.Header().Get("Location"); loc != "/v1/plans/plan_123" {
				t.Errorf("expected Location /v1/plans/plan_123, got %q", loc)
			}
			if rec.Header().Get("X-Request-Id") == "" {
				t.Error("expected X-Request-Id header to be set")
			}
		})
	}
}

func TestNoContent_IncludesRequestID(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPut, "/v1/admin/feature-flags")

	response.NoContent(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}

func TestProblemResponses(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter, r *http.Request)
		status      int
		problemType string
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			response.BadRequest(w, r, "invalid", []models.FieldError{{Field: "days", Message: "required"}})
		}, http.StatusBadRequest, models.ProblemTypeValidation},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			response.Unauthorized(w, r, "no token")
		}, http.StatusUnauthorized, models.ProblemTypeUnauthorized},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			response.NotFound(w, r, "plan not found")
		}, http.StatusNotFound, models.ProblemTypeNotFound},
		{"too many requests", func(w http.ResponseWriter, r *http.Request) {
			response.TooManyRequests(w, r, "slow down")
		}, http.StatusTooManyRequests, models.ProblemTypeTooManyRequests},
		{"internal", func(w http.ResponseWriter, r *http.Request) {
			response.InternalError(w, r, "boom")
		}, http.StatusInternalServerError, models.ProblemTypeInternal},
		{"generation failed", func(w http.ResponseWriter, r *http.Request) {
			response.GenerationFailed(w, r, "no strategy succeeded")
		}, http.StatusServiceUnavailable, models.ProblemTypeGenerationFailed},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) {
			response.ServiceUnavailable(w, r, "store down")
		}, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := requestWithContext(t, http.MethodGet, "/v1/plans/plan_123")
			tt.write(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("expected problem content type, got %q", ct)
			}

			var problem models.Problem
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("failed to decode problem: %v", err)
			}
			if problem.Type != tt.problemType {
				t.Errorf("expected type %q, got %q", tt.problemType, problem.Type)
			}
			if problem.Instance != "/v1/plans/plan_123" {
				t.Errorf("expected instance /v1/plans/plan_123, got %q", problem.Instance)
			}
			if problem.TraceID == "" || problem.TraceID != rec.Header().Get("X-Request-Id") {
				t.Errorf("expected traceId to match X-Request-Id, got %q", problem.TraceID)
			}
		})
	}
}
