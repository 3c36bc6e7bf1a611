package models

const (
	SlotStatusAvailable = "available"
	SlotStatusLimited   = "limited"
)

type TimeSlot struct {
	Time               string `json:"time" validate:"required,hhmm"`
	AvailableAttendees int    `json:"availableAttendees" validate:"gte=0,ltefield=TotalAttendees"`
	TotalAttendees     int    `json:"totalAttendees" validate:"gte=0"`
	Status             string `json:"status,omitempty"`
}

// Ratio is the share of attendees free in this slot, 0 when nobody is invited.
func (s TimeSlot) Ratio() float64 {
	if s.TotalAttendees <= 0 {
		return 0
	}
	return float64(s.AvailableAttendees) / float64(s.TotalAttendees)
}

// AvailabilityWindow is the team availability for one calendar date.
type AvailabilityWindow struct {
	Date      string     `json:"date" validate:"required,isodate"`
	TimeSlots []TimeSlot `json:"timeSlots" validate:"dive"`
}

// BestSlot returns the slot with the most available attendees, first occurrence on ties.
func (w AvailabilityWindow) BestSlot() (TimeSlot, bool) {
	if len(w.TimeSlots) == 0 {
		return TimeSlot{}, false
	}
	best := w.TimeSlots[0]
	for _, s := range w.TimeSlots[1:] {
		if s.AvailableAttendees > best.AvailableAttendees {
			best = s
		}
	}
	return best, true
}
