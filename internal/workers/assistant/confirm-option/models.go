// internal/workers/assistant/confirm-option/models.go
package confirmoption

import "assistant-workers/internal/models"

type Input struct {
	Option         models.Option `json:"option"`
	AttendeeEmails []string      `json:"attendeeEmails,omitempty"`
	OrganiserPhone string        `json:"organiserPhone,omitempty"`
}

type Output struct {
	ConfirmationID string       `json:"confirmationId"`
	Success        bool         `json:"success"`
	Status         string       `json:"status"`
	Instructions   string       `json:"instructions"`
	EventTitle     string       `json:"eventTitle"`
	CalendarLink   string       `json:"calendarLink"`
	Notified       Notification `json:"notified"`
	EventID        string       `json:"eventId,omitempty"`
}

type Notification struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
}
