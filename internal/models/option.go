package models

// Option is one (restaurant, date, time) proposal. Its CombinationKey is unique within a result set.
type Option struct {
	Restaurant         RestaurantCandidate `json:"restaurant" validate:"required"`
	Date               string              `json:"date" validate:"required,isodate"`
	Time               string              `json:"time" validate:"required,hhmm"`
	AvailableAttendees int                 `json:"availableAttendees" validate:"gte=0,ltefield=TotalAttendees"`
	TotalAttendees     int                 `json:"totalAttendees" validate:"gte=0"`
}

func (o Option) AvailabilityRatio() float64 {
	if o.TotalAttendees <= 0 {
		return 0
	}
	return float64(o.AvailableAttendees) / float64(o.TotalAttendees)
}

func (o Option) CombinationKey() string {
	return CombinationKey(o.Restaurant.Name, o.Date)
}

func CombinationKey(restaurantName, date string) string {
	return NormalizeName(restaurantName) + "|" + date
}
