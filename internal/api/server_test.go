// internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/assistant/scheduler"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
	classifyintent "assistant-workers/internal/workers/assistant/classify-intent"
	planoptions "assistant-workers/internal/workers/assistant/plan-options"
)

type stubRouter struct{}

func (stubRouter) Classify(_ context.Context, text string) models.Classification {
	return models.Classification{Intent: models.IntentRestaurantBooking, Confidence: 0.9, Strategy: "keyword", Reasoning: text}
}

type stubPlanner struct {
	plan scheduler.Plan
}

func (p stubPlanner) Plan(context.Context, scheduler.Request) scheduler.Plan {
	return p.plan
}

func newTestServer(t *testing.T, plan scheduler.Plan, checks map[string]ReadinessCheck) *Server {
	log := logger.NewTestLogger(t)
	return NewServer(Handlers{
		Classify: classifyintent.NewHandler(classifyintent.LoadConfig(), stubRouter{}, log),
		Plan:     planoptions.NewHandler(planoptions.LoadConfig(), stubPlanner{plan: plan}, nil, log),
	}, checks, log)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, scheduler.Plan{}, nil)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]ReadinessCheck
		wantStatus int
	}{
		{
			name:       "all ok",
			checks:     map[string]ReadinessCheck{"zeebe": func(context.Context) error { return nil }},
			wantStatus: http.StatusOK,
		},
		{
			name: "one failing",
			checks: map[string]ReadinessCheck{
				"zeebe": func(context.Context) error { return nil },
				"redis": func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, scheduler.Plan{}, tt.checks), http.MethodGet, "/ready", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	rec := do(t, newTestServer(t, scheduler.Plan{}, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Classify(t *testing.T) {
	s := newTestServer(t, scheduler.Plan{}, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/classify", `{"message":"book a table"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out classifyintent.Output
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "RESTAURANT_BOOKING", out.Intent)

	rec = do(t, s, http.MethodPost, "/api/v1/classify", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "INPUT_VALIDATION_FAILED", errResp.Error.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/classify", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Plan(t *testing.T) {
	tests := []struct {
		name       string
		plan       scheduler.Plan
		wantStatus int
		wantCode   string
	}{
		{
			name: "no options is still a 200",
			plan: scheduler.Plan{
				Status:         scheduler.StatusNoOptions,
				Classification: models.Classification{Intent: models.IntentRestaurantBooking},
				Reason:         "no restaurants found",
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "restaurant source failure",
			plan: scheduler.Plan{
				Status:         scheduler.StatusSourceFailed,
				Classification: models.Classification{Intent: models.IntentRestaurantBooking},
				Reason:         "places unavailable",
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   "RESTAURANT_SOURCE_FAILED",
		},
		{
			name: "calendar source failure",
			plan: scheduler.Plan{
				Status:         scheduler.StatusSourceFailed,
				Classification: models.Classification{Intent: models.IntentCalendarScheduling},
				Reason:         "calendar unavailable",
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   "AVAILABILITY_SOURCE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t, tt.plan, nil), http.MethodPost, "/api/v1/plan", `{"message":"team dinner tomorrow"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode == "" {
				var out planoptions.Output
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
				assert.Equal(t, "NO_OPTIONS", out.Status)
				return
			}
			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, tt.wantCode, errResp.Error.Code)
		})
	}
}

func TestServer_UnregisteredRoutes(t *testing.T) {
	rec := do(t, newTestServer(t, scheduler.Plan{}, nil), http.MethodPost, "/api/v1/confirm", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
