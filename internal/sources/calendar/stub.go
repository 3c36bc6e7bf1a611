// Package calendar provides team availability sources: a deterministic stub
// calendar and a Redis cache that can sit in front of any source.
package calendar

import (
	"context"
	"fmt"
	"time"

	"assistant-workers/internal/models"
)

const dateLayout = "2006-01-02"

var dinnerSlots = []string{"18:00", "18:30", "19:00", "19:30", "20:00", "20:30"}

// edgeSlots lose one attendee to early finishes and late commitments.
var edgeSlots = map[string]bool{"18:00": true, "20:30": true}

// StubCalendar derives availability from how far the date is from today, so the same
// date and roster always give the same window.
type StubCalendar struct {
	now func() time.Time
}

type StubOption func(*StubCalendar)

func WithClock(now func() time.Time) StubOption {
	return func(c *StubCalendar) { c.now = now }
}

func NewStubCalendar(opts ...StubOption) *StubCalendar {
	c := &StubCalendar{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAvailability falls back to the default roster when attendees is empty.
func (c *StubCalendar) GetAvailability(_ context.Context, date string, attendees []string) (models.AvailabilityWindow, error) {
	target, err := time.Parse(dateLayout, date)
	if err != nil {
		return models.AvailabilityWindow{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	total := len(attendees)
	if total == 0 {
		total = len(models.DefaultTeamMembers)
	}

	// Both dates are UTC midnights so the difference is whole days.
	now := c.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(target.Sub(today) / (24 * time.Hour))
	available := availableOnDay(days, total)

	window := models.AvailabilityWindow{
		Date:      date,
		TimeSlots: make([]models.TimeSlot, 0, len(dinnerSlots)),
	}
	for _, slot := range dinnerSlots {
		n := available
		if edgeSlots[slot] && n > 0 {
			n = max(1, n-1)
		}
		status := models.SlotStatusLimited
		if n >= total/2 {
			status = models.SlotStatusAvailable
		}
		window.TimeSlots = append(window.TimeSlots, models.TimeSlot{
			Time:               slot,
			AvailableAttendees: n,
			TotalAttendees:     total,
			Status:             status,
		})
	}
	return window, nil
}

// availableOnDay is the attendee count for a date daysAhead from today, capped at total.
func availableOnDay(daysAhead, total int) int {
	var n int
	switch {
	case daysAhead < 0:
		n = 0
	case daysAhead == 0:
		n = max(1, total-2)
	case daysAhead <= 3:
		n = max(2, total-1)
	case daysAhead <= 7:
		n = total
	default:
		n = max(3, total-2)
	}
	return min(n, total)
}
