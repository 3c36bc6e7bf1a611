package models

// ExtractedRequest holds the structured fields pulled out of one user message.
// Location and Date are empty when nothing matched.
type ExtractedRequest struct {
	Location  string   `json:"location,omitempty"`
	Cuisines  []string `json:"cuisines" validate:"min=1,dive,required"`
	PartySize int      `json:"partySize" validate:"gte=1"`
	Date      string   `json:"date,omitempty" validate:"omitempty,isodate"`
}

func (r ExtractedRequest) HasLocation() bool { return r.Location != "" }

func (r ExtractedRequest) HasDate() bool { return r.Date != "" }
