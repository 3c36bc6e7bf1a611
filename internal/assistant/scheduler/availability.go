package scheduler

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
)

// FetchAvailability queries every date concurrently and returns the windows in date order.
// Dates whose lookup fails are listed in failed and contribute no window. Slots that break
// 0 <= available <= total are dropped.
func (s *Scheduler) FetchAvailability(ctx context.Context, dates []string, attendees []string) (windows []models.AvailabilityWindow, failed []string) {
	ctx, span := observability.StartSpan(ctx, "scheduler.fetch_availability", attribute.Int("dates", len(dates)))
	defer span.End()

	results := make([]*models.AvailabilityWindow, len(dates))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i, date := range dates {
		wg.Add(1)
		go func(i int, date string) {
			defer wg.Done()

			window, err := s.availability.GetAvailability(ctx, date, attendees)
			if err != nil {
				metrics.SourceFailures.WithLabelValues("availability").Inc()
				s.logger.Warn("Availability lookup failed", map[string]interface{}{
					"date":  date,
					"error": err.Error(),
				})
				mu.Lock()
				failed = append(failed, date)
				mu.Unlock()
				return
			}

			window.Date = date
			window.TimeSlots = s.validSlots(date, window.TimeSlots)
			results[i] = &window
		}(i, date)
	}
	wg.Wait()

	windows = make([]models.AvailabilityWindow, 0, len(dates))
	for _, w := range results {
		if w != nil {
			windows = append(windows, *w)
		}
	}
	failed = orderLike(dates, failed)

	span.SetAttributes(attribute.Int("windows", len(windows)), attribute.Int("failed", len(failed)))
	return windows, failed
}

func (s *Scheduler) validSlots(date string, slots []models.TimeSlot) []models.TimeSlot {
	valid := make([]models.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if err := validation.ValidateStruct(slot); err != nil {
			s.logger.Warn("Dropping invalid time slot", map[string]interface{}{
				"date":  date,
				"time":  slot.Time,
				"error": err.Error(),
			})
			continue
		}
		valid = append(valid, slot)
	}
	return valid
}

// orderLike returns the members of subset in the order they appear in all.
func orderLike(all, subset []string) []string {
	if len(subset) == 0 {
		return nil
	}
	in := make(map[string]bool, len(subset))
	for _, d := range subset {
		in[d] = true
	}
	ordered := make([]string, 0, len(subset))
	for _, d := range all {
		if in[d] {
			ordered = append(ordered, d)
		}
	}
	return ordered
}
