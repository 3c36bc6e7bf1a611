package sinks

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
)

const (
	StatusPendingConfirmation = "pending_confirmation"
	ReservationMethodManual   = "manual"

	EventDuration = 2 * time.Hour

	calendarTemplateURL = "https://calendar.google.com/calendar/render"
	calendarStampLayout = "20060102T150405Z"
	maxDetailsLength    = 500
)

var ErrInvalidOption = errors.New("OPTION_CONFIRMATION_FAILED")

// Confirmation is the outcome of confirming one option. Reservations are manual:
// the restaurant still has to be called, so the status stays pending.
type Confirmation struct {
	ConfirmationID string    `json:"confirmationId"`
	Status         string    `json:"status"`
	Method         string    `json:"method"`
	Instructions   string    `json:"instructions"`
	EventTitle     string    `json:"eventTitle"`
	Description    string    `json:"description"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	CalendarLink   string    `json:"calendarLink"`
	Attendees      []string  `json:"attendees,omitempty"`
}

type Booker struct {
	now func() time.Time
}

func NewBooker(now func() time.Time) *Booker {
	if now == nil {
		now = time.Now
	}
	return &Booker{now: now}
}

// Confirm validates the option and builds the confirmation id, the calendar event
// and its template link. Option dates and times are read as UTC.
func (b *Booker) Confirm(option models.Option, attendees []string) (*Confirmation, error) {
	if err := validation.ValidateStruct(option); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	start, err := time.Parse("2006-01-02 15:04", option.Date+" "+option.Time)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	end := start.Add(EventDuration)

	id := ConfirmationID(b.now())
	title := "Team Dinner at " + option.Restaurant.Name
	description := describeEvent(id, option, attendees)

	phone := option.Restaurant.Phone
	if phone == "" {
		phone = "the restaurant"
	}

	return &Confirmation{
		ConfirmationID: id,
		Status:         StatusPendingConfirmation,
		Method:         ReservationMethodManual,
		Instructions:   fmt.Sprintf("Call %s to confirm reservation", phone),
		EventTitle:     title,
		Description:    description,
		Start:          start,
		End:            end,
		CalendarLink:   CalendarLink(title, description, start, end),
		Attendees:      append([]string(nil), attendees...),
	}, nil
}

// ConfirmationID formats t as BOOK_YYYYMMDDHHMMSS.
func ConfirmationID(t time.Time) string {
	return "BOOK_" + t.Format("20060102150405")
}

// CalendarLink builds a Google Calendar "add event" template URL.
func CalendarLink(title, details string, start, end time.Time) string {
	details = strings.ReplaceAll(details, "\n", " ")
	if len(details) > maxDetailsLength {
		details = details[:maxDetailsLength]
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", start.UTC().Format(calendarStampLayout)+"/"+end.UTC().Format(calendarStampLayout))
	q.Set("details", details)
	q.Set("sf", "true")
	q.Set("output", "xml")
	return calendarTemplateURL + "?" + q.Encode()
}

func describeEvent(id string, option models.Option, attendees []string) string {
	r := option.Restaurant
	var sb strings.Builder
	fmt.Fprintf(&sb, "Team Dinner Booking - %s\n\n", id)
	fmt.Fprintf(&sb, "Restaurant: %s\n", r.Name)
	fmt.Fprintf(&sb, "Address: %s\n", orNA(r.Address))
	fmt.Fprintf(&sb, "Phone: %s\n", orNA(r.Phone))
	fmt.Fprintf(&sb, "Rating: %.1f (%d reviews)\n", r.Rating, r.ReviewCount)
	fmt.Fprintf(&sb, "Available: %d of %d attendees\n", option.AvailableAttendees, option.TotalAttendees)
	if len(attendees) > 0 {
		sb.WriteString("\nTeam Members Invited:\n")
		for _, a := range attendees {
			sb.WriteString("- " + a + "\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
