package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-workers/internal/assistant/intent"
	"assistant-workers/internal/assistant/match"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

// ==========================
// Fakes
// ==========================

type fakeRestaurants struct {
	candidates  []models.RestaurantCandidate
	err         error
	gotLocation string
	gotCuisines []string
}

func (f *fakeRestaurants) Search(_ context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	f.gotLocation = location
	f.gotCuisines = cuisineHints
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

type fakeCalendar struct {
	mu    sync.Mutex
	slots []models.TimeSlot
	fail  map[string]bool
	calls []string
}

func (f *fakeCalendar) GetAvailability(_ context.Context, date string, attendees []string) (models.AvailabilityWindow, error) {
	f.mu.Lock()
	f.calls = append(f.calls, date)
	f.mu.Unlock()

	if f.fail[date] {
		return models.AvailabilityWindow{}, errors.New("calendar unavailable")
	}
	slots := make([]models.TimeSlot, len(f.slots))
	copy(slots, f.slots)
	return models.AvailabilityWindow{Date: date, TimeSlots: slots}, nil
}

func fixedNow() time.Time {
	// Wednesday
	return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
}

func candidates(n int) []models.RestaurantCandidate {
	out := make([]models.RestaurantCandidate, n)
	for i := range out {
		out[i] = models.RestaurantCandidate{
			Name:           fmt.Sprintf("Restaurant %02d", i),
			Rating:         4.8 - float64(i)*0.1,
			ReviewCount:    600,
			Cuisines:       []string{"indian"},
			BusinessStatus: models.BusinessStatusOperational,
		}
	}
	return out
}

func eveningSlots() []models.TimeSlot {
	return []models.TimeSlot{
		{Time: "18:00", AvailableAttendees: 0, TotalAttendees: 6},
		{Time: "18:30", AvailableAttendees: 3, TotalAttendees: 6},
		{Time: "19:00", AvailableAttendees: 4, TotalAttendees: 6},
		{Time: "19:30", AvailableAttendees: 6, TotalAttendees: 6},
	}
}

func createTestScheduler(t *testing.T, restaurants RestaurantSource, calendar AvailabilitySource, cfg Config) *Scheduler {
	t.Helper()
	log := logger.NewTestLogger(t)
	return New(intent.NewRouter(nil, log), restaurants, calendar, cfg,
		WithClock(fixedNow),
		WithLogger(log),
	)
}

// ==========================
// Restaurant flow
// ==========================

func TestPlan_RestaurantFlow(t *testing.T) {
	restaurants := &fakeRestaurants{candidates: candidates(10)}
	calendar := &fakeCalendar{slots: eveningSlots()}
	s := createTestScheduler(t, restaurants, calendar, Config{})

	plan := s.Plan(context.Background(), Request{Message: "team dinner in Bangalore tomorrow"})

	require.Equal(t, StatusOptions, plan.Status, plan.Reason)
	assert.Equal(t, models.IntentRestaurantBooking, plan.Classification.Intent)
	assert.Equal(t, "Bangalore", plan.Request.Location)
	assert.Equal(t, "2026-10-15", plan.Request.Date)
	assert.Equal(t, 6, plan.Request.PartySize)
	assert.Equal(t, "Bangalore", restaurants.gotLocation)
	assert.Equal(t, []string{"indian"}, restaurants.gotCuisines)
	assert.ElementsMatch(t, []string{"2026-10-15", "2026-10-16", "2026-10-17"}, calendar.calls)

	require.Len(t, plan.Options, 6)
	assert.Equal(t, 6, plan.DiversityHits)
	assert.Equal(t, 0, plan.BackfillHits)
	assert.Equal(t, "Found 6 unique restaurants in Bangalore with team availability", plan.Summary)
	assert.False(t, plan.EventContext)
	for _, o := range plan.Options {
		assert.Equal(t, "19:30", o.Time)
	}
}

func TestPlan_EventContext(t *testing.T) {
	s := createTestScheduler(t, &fakeRestaurants{candidates: candidates(3)}, &fakeCalendar{slots: eveningSlots()}, Config{})

	plan := s.Plan(context.Background(), Request{Message: "organize a birthday party for the team in Delhi"})

	require.Equal(t, StatusOptions, plan.Status)
	assert.True(t, plan.EventContext)
	assert.True(t, strings.HasSuffix(plan.Summary, "Perfect venues for your celebration!"))
	assert.Contains(t, plan.Summary, "in Delhi")
}

func TestPlan_DefaultLocation(t *testing.T) {
	tests := []struct {
		name     string
		defaults models.SessionDefaults
		want     string
	}{
		{"package default", models.SessionDefaults{}, models.DefaultLocation},
		{"session default", models.SessionDefaults{DefaultLocation: "Mumbai"}, "Mumbai"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restaurants := &fakeRestaurants{}
			s := createTestScheduler(t, restaurants, &fakeCalendar{slots: eveningSlots()}, Config{})

			plan := s.Plan(context.Background(), Request{Message: "find a restaurant", Defaults: tt.defaults})

			assert.Equal(t, StatusNoOptions, plan.Status)
			assert.Equal(t, tt.want, restaurants.gotLocation)
			assert.Equal(t, fmt.Sprintf("No restaurants found in %s. Try a different location or cuisine.", tt.want), plan.Reason)
			assert.NotNil(t, plan.Options)
		})
	}
}

func TestPlan_RestaurantSourceFailure(t *testing.T) {
	s := createTestScheduler(t, &fakeRestaurants{err: errors.New("places api down")}, &fakeCalendar{slots: eveningSlots()}, Config{})

	plan := s.Plan(context.Background(), Request{Message: "dinner in Mumbai"})

	assert.Equal(t, StatusSourceFailed, plan.Status)
	assert.Contains(t, plan.Reason, "places api down")
	assert.Empty(t, plan.Options)
}

func TestPlan_AvailabilityFailures(t *testing.T) {
	t.Run("every date fails", func(t *testing.T) {
		calendar := &fakeCalendar{fail: map[string]bool{"2026-10-15": true, "2026-10-16": true, "2026-10-17": true}}
		s := createTestScheduler(t, &fakeRestaurants{candidates: candidates(4)}, calendar, Config{})

		plan := s.Plan(context.Background(), Request{Message: "dinner in Delhi"})

		assert.Equal(t, StatusNoOptions, plan.Status)
		assert.Contains(t, plan.Reason, match.NoOptionsMessage)
		assert.Equal(t, []string{"2026-10-15", "2026-10-16", "2026-10-17"}, plan.FailedDates)
	})

	t.Run("one date fails", func(t *testing.T) {
		calendar := &fakeCalendar{slots: eveningSlots(), fail: map[string]bool{"2026-10-16": true}}
		s := createTestScheduler(t, &fakeRestaurants{candidates: candidates(2)}, calendar, Config{})

		plan := s.Plan(context.Background(), Request{Message: "dinner in Delhi"})

		require.Equal(t, StatusOptions, plan.Status)
		assert.Equal(t, []string{"2026-10-16"}, plan.FailedDates)
		assert.Len(t, plan.Options, 4)
		for _, o := range plan.Options {
			assert.NotEqual(t, "2026-10-16", o.Date)
		}
	})
}

func TestPlan_TargetAndRankLimits(t *testing.T) {
	t.Run("request target overrides config", func(t *testing.T) {
		s := createTestScheduler(t, &fakeRestaurants{candidates: candidates(10)}, &fakeCalendar{slots: eveningSlots()}, Config{TargetCount: 6})
		plan := s.Plan(context.Background(), Request{Message: "dinner in Delhi", TargetCount: 2})
		assert.Len(t, plan.Options, 2)
	})

	t.Run("max ranked restaurants", func(t *testing.T) {
		s := createTestScheduler(t, &fakeRestaurants{candidates: candidates(10)}, &fakeCalendar{slots: eveningSlots()}, Config{MaxRanked: 2})
		plan := s.Plan(context.Background(), Request{Message: "dinner in Delhi"})

		require.Len(t, plan.Options, 6)
		names := make(map[string]bool)
		for _, o := range plan.Options {
			names[o.Restaurant.Name] = true
		}
		assert.Len(t, names, 2)
		assert.Equal(t, 2, plan.DiversityHits)
		assert.Equal(t, 4, plan.BackfillHits)
	})
}

func TestFetchAvailability_DropsInvalidSlots(t *testing.T) {
	calendar := &fakeCalendar{slots: []models.TimeSlot{
		{Time: "18:00", AvailableAttendees: 9, TotalAttendees: 6},
		{Time: "7pm", AvailableAttendees: 2, TotalAttendees: 6},
		{Time: "19:30", AvailableAttendees: 5, TotalAttendees: 6},
	}}
	s := createTestScheduler(t, &fakeRestaurants{}, calendar, Config{})

	windows, failed := s.FetchAvailability(context.Background(), []string{"2026-10-15", "2026-10-16"}, models.DefaultTeamMembers)

	assert.Empty(t, failed)
	require.Len(t, windows, 2)
	assert.Equal(t, "2026-10-15", windows[0].Date)
	assert.Equal(t, "2026-10-16", windows[1].Date)
	require.Len(t, windows[0].TimeSlots, 1)
	assert.Equal(t, "19:30", windows[0].TimeSlots[0].Time)
}

// ==========================
// Other flows
// ==========================

func TestPlan_CalendarFlow(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantDate string
	}{
		{"named weekday", "schedule a meeting on friday", "2026-10-16"},
		{"defaults to tomorrow", "schedule a meeting", "2026-10-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calendar := &fakeCalendar{slots: eveningSlots()}
			s := createTestScheduler(t, &fakeRestaurants{}, calendar, Config{})

			plan := s.Plan(context.Background(), Request{Message: tt.message})

			require.Equal(t, StatusAvailability, plan.Status)
			assert.Equal(t, models.IntentCalendarScheduling, plan.Classification.Intent)
			require.NotNil(t, plan.Availability)
			assert.Equal(t, tt.wantDate, plan.Availability.Date)
			assert.Equal(t, []string{"18:30", "19:00"}, plan.Availability.BestTimes)
			assert.Equal(t, 6, plan.Availability.AvailableAttendees)
			assert.Equal(t, 6, plan.Availability.TotalAttendees)
			assert.Contains(t, plan.Message, "Best times: 18:30, 19:00")
			assert.Equal(t, []string{tt.wantDate}, calendar.calls)
		})
	}
}

func TestPlan_CalendarFailure(t *testing.T) {
	calendar := &fakeCalendar{fail: map[string]bool{"2026-10-15": true}}
	s := createTestScheduler(t, &fakeRestaurants{}, calendar, Config{})

	plan := s.Plan(context.Background(), Request{Message: "check the calendar"})

	assert.Equal(t, StatusSourceFailed, plan.Status)
	assert.Contains(t, plan.Reason, "2026-10-15")
}

func TestPlan_HelpFlows(t *testing.T) {
	tests := []struct {
		message    string
		wantIntent models.Intent
	}{
		{"send an email to bob", models.IntentEmailCommunication},
		{"what is the weather", models.IntentGeneralTask},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			restaurants := &fakeRestaurants{}
			calendar := &fakeCalendar{}
			s := createTestScheduler(t, restaurants, calendar, Config{})

			plan := s.Plan(context.Background(), Request{Message: tt.message})

			assert.Equal(t, StatusHelp, plan.Status)
			assert.Equal(t, tt.wantIntent, plan.Classification.Intent)
			assert.NotEmpty(t, plan.Message)
			assert.Empty(t, restaurants.gotLocation)
			assert.Empty(t, calendar.calls)
		})
	}
}

func TestLookaheadDates(t *testing.T) {
	tests := []struct {
		name      string
		lookahead int
		requested string
		want      []string
	}{
		{"from tomorrow", 0, "", []string{"2026-10-15", "2026-10-16", "2026-10-17"}},
		{"from requested date", 2, "2026-10-24", []string{"2026-10-24", "2026-10-25"}},
		{"unparseable date falls back", 1, "soon", []string{"2026-10-15"}},
		{"crosses month end", 3, "2026-10-31", []string{"2026-10-31", "2026-11-01", "2026-11-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := createTestScheduler(t, &fakeRestaurants{}, &fakeCalendar{}, Config{LookaheadDays: tt.lookahead})
			assert.Equal(t, tt.want, s.LookaheadDates(tt.requested))
		})
	}
}
