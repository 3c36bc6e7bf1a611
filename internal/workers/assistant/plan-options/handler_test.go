// internal/workers/assistant/plan-options/handler_test.go
package planoptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/assistant/intent"
	"assistant-workers/internal/assistant/scheduler"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
	"assistant-workers/internal/sinks"
	"assistant-workers/internal/sources/calendar"
	"assistant-workers/internal/sources/restaurants"
)

// ==========================
// Mocks
// ==========================

type MockPlanner struct {
	PlanFunc func(ctx context.Context, req scheduler.Request) scheduler.Plan
	requests []scheduler.Request
}

func (m *MockPlanner) Plan(ctx context.Context, req scheduler.Request) scheduler.Plan {
	m.requests = append(m.requests, req)
	return m.PlanFunc(ctx, req)
}

type MockPublisher struct {
	PublishFunc func(ctx context.Context, payload sinks.OptionsGeneratedPayload) (string, error)
	payloads    []sinks.OptionsGeneratedPayload
}

func (m *MockPublisher) PublishOptionsGenerated(ctx context.Context, payload sinks.OptionsGeneratedPayload) (string, error) {
	m.payloads = append(m.payloads, payload)
	return m.PublishFunc(ctx, payload)
}

// ==========================
// Test Helper Functions
// ==========================

// Wednesday.
var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func testOptions() []models.Option {
	return []models.Option{
		{
			Restaurant:         models.RestaurantCandidate{Name: "Truffles", Rating: 4.5},
			Date:               "2026-10-15",
			Time:               "19:00",
			AvailableAttendees: 5,
			TotalAttendees:     6,
		},
	}
}

func optionsPlan() scheduler.Plan {
	return scheduler.Plan{
		Status:         scheduler.StatusOptions,
		Classification: models.Classification{Intent: models.IntentRestaurantBooking, Confidence: 0.9},
		Request:        models.ExtractedRequest{Location: "Bangalore", Cuisines: []string{"indian"}, PartySize: 6, Date: "2026-10-15"},
		Options:        testOptions(),
		Summary:        "Found 1 unique restaurants in Bangalore with team availability",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Options(t *testing.T) {
	planner := &MockPlanner{PlanFunc: func(context.Context, scheduler.Request) scheduler.Plan { return optionsPlan() }}
	publisher := &MockPublisher{PublishFunc: func(context.Context, sinks.OptionsGeneratedPayload) (string, error) {
		return "evt-1", nil
	}}
	handler := NewHandler(createTestConfig(), planner, publisher, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Message:         " team dinner in Bangalore tomorrow ",
		SessionDefaults: &models.SessionDefaults{TeamSize: 8},
		TargetCount:     4,
	})
	require.NoError(t, err)

	assert.Equal(t, "OPTIONS", output.Status)
	assert.Equal(t, "RESTAURANT_BOOKING", output.Intent)
	assert.Equal(t, 1, output.OptionCount)
	assert.Equal(t, "Bangalore", output.Location)
	assert.Equal(t, "2026-10-15", output.Date)
	assert.Equal(t, "evt-1", output.EventID)

	require.Len(t, planner.requests, 1)
	req := planner.requests[0]
	assert.Equal(t, "team dinner in Bangalore tomorrow", req.Message)
	assert.Equal(t, 4, req.TargetCount)
	assert.Equal(t, 8, req.Defaults.TeamSize)
	assert.Len(t, req.Defaults.TeamMembers, 6)

	require.Len(t, publisher.payloads, 1)
	assert.Equal(t, "Bangalore", publisher.payloads[0].Location)
}

func TestHandler_Execute_CompletesNonOptionOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		plan   scheduler.Plan
		status string
	}{
		{
			name: "no options",
			plan: scheduler.Plan{
				Status:         scheduler.StatusNoOptions,
				Classification: models.Classification{Intent: models.IntentRestaurantBooking},
				Request:        models.ExtractedRequest{Location: "Goa"},
				Reason:         "No restaurants found in Goa. Try a different location or cuisine.",
			},
			status: "NO_OPTIONS",
		},
		{
			name: "help",
			plan: scheduler.Plan{
				Status:         scheduler.StatusHelp,
				Classification: models.Classification{Intent: models.IntentEmailCommunication},
				Message:        "I can help you send emails",
			},
			status: "HELP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &MockPlanner{PlanFunc: func(context.Context, scheduler.Request) scheduler.Plan { return tt.plan }}
			publisher := &MockPublisher{PublishFunc: func(context.Context, sinks.OptionsGeneratedPayload) (string, error) {
				t.Fatal("only option plans are published")
				return "", nil
			}}
			handler := NewHandler(createTestConfig(), planner, publisher, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), &Input{Message: "anything"})
			require.NoError(t, err)
			assert.Equal(t, tt.status, output.Status)
			assert.Equal(t, tt.plan.Reason, output.Reason)
			assert.Equal(t, tt.plan.Message, output.Message)
			assert.Empty(t, output.EventID)
		})
	}
}

func TestHandler_Execute_PublishFailureIsNotFatal(t *testing.T) {
	planner := &MockPlanner{PlanFunc: func(context.Context, scheduler.Request) scheduler.Plan { return optionsPlan() }}
	publisher := &MockPublisher{PublishFunc: func(context.Context, sinks.OptionsGeneratedPayload) (string, error) {
		return "", sinks.ErrEventPublishFailed
	}}
	handler := NewHandler(createTestConfig(), planner, publisher, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Message: "team dinner"})
	require.NoError(t, err)
	assert.Equal(t, "OPTIONS", output.Status)
	assert.Empty(t, output.EventID)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_SourceFailures(t *testing.T) {
	tests := []struct {
		name   string
		intent models.Intent
		want   error
	}{
		{"restaurant source", models.IntentRestaurantBooking, ErrRestaurantSourceFailed},
		{"calendar source", models.IntentCalendarScheduling, ErrAvailabilitySourceFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &MockPlanner{PlanFunc: func(context.Context, scheduler.Request) scheduler.Plan {
				return scheduler.Plan{
					Status:         scheduler.StatusSourceFailed,
					Classification: models.Classification{Intent: tt.intent},
					Reason:         "upstream unavailable",
				}
			}}
			handler := NewHandler(createTestConfig(), planner, nil, nil)

			_, err := handler.Execute(context.Background(), &Input{Message: "team dinner"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Contains(t, err.Error(), "upstream unavailable")
		})
	}
}

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
	}{
		{"empty message", &Input{Message: ""}},
		{"negative target", &Input{Message: "dinner", TargetCount: -1}},
		{"target above max", &Input{Message: "dinner", TargetCount: 21}},
		{"bad roster", &Input{Message: "dinner", SessionDefaults: &models.SessionDefaults{TeamMembers: []string{"bob"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planner := &MockPlanner{PlanFunc: func(context.Context, scheduler.Request) scheduler.Plan {
				t.Fatal("planner must not be called")
				return scheduler.Plan{}
			}}
			handler := NewHandler(createTestConfig(), planner, nil, nil)

			_, err := handler.Execute(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrInputValidation)
		})
	}
}

// ==========================
// Integration Tests
// ==========================

func TestHandler_Execute_WithFixtureAndStubCalendar(t *testing.T) {
	log := logger.NewTestLogger(t)
	clock := func() time.Time { return fixedNow }
	s := scheduler.New(
		intent.NewRouter(nil, log),
		restaurants.NewFixtureSource(restaurants.DefaultCatalogue()),
		calendar.NewStubCalendar(calendar.WithClock(clock)),
		scheduler.Config{MaxRanked: 8},
		scheduler.WithClock(clock),
		scheduler.WithLogger(log),
	)
	handler := NewHandler(createTestConfig(), s, nil, log)

	output, err := handler.Execute(context.Background(), &Input{Message: "team dinner in Hyderabad tomorrow"})
	require.NoError(t, err)

	require.Equal(t, "OPTIONS", output.Status, output.Reason)
	assert.Equal(t, "Hyderabad", output.Location)
	assert.Equal(t, "2026-10-15", output.Date)
	require.NotEmpty(t, output.Options)
	assert.LessOrEqual(t, len(output.Options), 6)

	seen := map[string]bool{}
	for _, o := range output.Options {
		assert.False(t, seen[o.CombinationKey()], "duplicate %s", o.CombinationKey())
		seen[o.CombinationKey()] = true
		assert.LessOrEqual(t, o.AvailableAttendees, o.TotalAttendees)
		assert.Equal(t, 6, o.TotalAttendees)
	}
}
