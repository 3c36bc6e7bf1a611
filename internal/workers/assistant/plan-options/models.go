// internal/workers/assistant/plan-options/models.go
package planoptions

import (
	"assistant-workers/internal/assistant/scheduler"
	"assistant-workers/internal/models"
)

type Input struct {
	Message         string                  `json:"message"`
	SessionDefaults *models.SessionDefaults `json:"sessionDefaults,omitempty"`
	TargetCount     int                     `json:"targetCount,omitempty"`
}

// Output is completed for OPTIONS, NO_OPTIONS, AVAILABILITY and HELP so the process can branch on status.
type Output struct {
	Status       string                          `json:"status"`
	Intent       string                          `json:"intent"`
	Options      []models.Option                 `json:"options"`
	OptionCount  int                             `json:"optionCount"`
	Summary      string                          `json:"summary,omitempty"`
	EventContext bool                            `json:"eventContext"`
	Reason       string                          `json:"reason,omitempty"`
	Message      string                          `json:"message,omitempty"`
	Location     string                          `json:"location,omitempty"`
	Date         string                          `json:"date,omitempty"`
	FailedDates  []string                        `json:"failedDates,omitempty"`
	Availability *scheduler.CalendarAvailability `json:"availability,omitempty"`
	EventID      string                          `json:"eventId,omitempty"`
}
