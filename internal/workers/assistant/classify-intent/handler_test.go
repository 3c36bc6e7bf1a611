// internal/workers/assistant/classify-intent/handler_test.go
package classifyintent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/assistant/intent"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

type MockRouter struct {
	ClassifyFunc func(ctx context.Context, text string) models.Classification
	lastText     string
}

func (m *MockRouter) Classify(ctx context.Context, text string) models.Classification {
	m.lastText = text
	return m.ClassifyFunc(ctx, text)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_KeywordRouting(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		intent     models.Intent
		confidence float64
	}{
		{"party outranks email", "send an email about the team party", models.IntentRestaurantBooking, 0.9},
		{"plain email", "email the report to finance", models.IntentEmailCommunication, 0.8},
		{"calendar", "check calendar availability for friday", models.IntentCalendarScheduling, 0.7},
		{"general", "what is the weather like", models.IntentGeneralTask, 0.6},
	}

	log := logger.NewTestLogger(t)
	handler := NewHandler(createTestConfig(), intent.NewRouter(nil, log), log)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &Input{Message: tt.message})
			require.NoError(t, err)
			assert.Equal(t, string(tt.intent), output.Intent)
			assert.Equal(t, tt.confidence, output.Confidence)
			assert.Equal(t, intent.StrategyKeyword, output.Strategy)
			assert.NotEmpty(t, output.Reasoning)
		})
	}
}

func TestHandler_Execute_PassesThroughRouterResult(t *testing.T) {
	router := &MockRouter{
		ClassifyFunc: func(ctx context.Context, text string) models.Classification {
			return models.Classification{
				Intent:     models.IntentEventPlanning,
				Confidence: 0.95,
				Reasoning:  "birthday celebration",
				Entities:   []string{"location: Mumbai"},
				Strategy:   intent.StrategyLLM,
			}
		},
	}
	handler := NewHandler(createTestConfig(), router, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "  plan a birthday in Mumbai  "})
	require.NoError(t, err)

	assert.Equal(t, "plan a birthday in Mumbai", router.lastText)
	assert.Equal(t, "EVENT_PLANNING", output.Intent)
	assert.Equal(t, []string{"location: Mumbai"}, output.Entities)
	assert.Equal(t, "llm", output.Strategy)
}

// ==========================
// Validation Tests
// ==========================

func TestHandler_Execute_RejectsEmptyMessage(t *testing.T) {
	router := &MockRouter{
		ClassifyFunc: func(ctx context.Context, text string) models.Classification {
			t.Fatal("router must not be called")
			return models.Classification{}
		},
	}
	handler := NewHandler(createTestConfig(), router, nil)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := handler.Execute(context.Background(), &Input{Message: msg})
		assert.True(t, errors.Is(err, ErrInputValidation), "message %q", msg)
	}
}
