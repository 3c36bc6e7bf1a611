package models

type Intent string

const (
	IntentRestaurantBooking  Intent = "RESTAURANT_BOOKING"
	IntentEmailCommunication Intent = "EMAIL_COMMUNICATION"
	IntentCalendarScheduling Intent = "CALENDAR_SCHEDULING"
	IntentEventPlanning      Intent = "EVENT_PLANNING"
	IntentGeneralTask        Intent = "GENERAL_TASK"
)

var AllIntents = []Intent{
	IntentRestaurantBooking,
	IntentEmailCommunication,
	IntentCalendarScheduling,
	IntentEventPlanning,
	IntentGeneralTask,
}

func (i Intent) Valid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Classification is the result of routing one message.
type Classification struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Entities   []string `json:"entities,omitempty"`
	Strategy   string   `json:"strategy"`
}
