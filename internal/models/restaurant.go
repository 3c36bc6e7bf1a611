package models

import "strings"

const BusinessStatusOperational = "OPERATIONAL"

// RestaurantCandidate is a restaurant returned by a restaurant source.
// Two candidates with the same NormalizedName are the same restaurant.
type RestaurantCandidate struct {
	Name           string   `json:"name" db:"name" validate:"required"`
	Rating         float64  `json:"rating" db:"rating" validate:"gte=0,lte=5"`
	ReviewCount    int      `json:"reviewCount" db:"review_count" validate:"gte=0"`
	Cuisines       []string `json:"cuisines" db:"cuisines"`
	Address        string   `json:"address,omitempty" db:"address"`
	Phone          string   `json:"phone,omitempty" db:"phone"`
	Website        string   `json:"website,omitempty" db:"website"`
	OpenNow        *bool    `json:"openNow,omitempty" db:"open_now"`
	BusinessStatus string   `json:"businessStatus" db:"business_status"`
	Source         string   `json:"source,omitempty"`
	Score          float64  `json:"score,omitempty"`
}

// NormalizedName is the dedup key: lowercased and trimmed.
func (r RestaurantCandidate) NormalizedName() string {
	return NormalizeName(r.Name)
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r RestaurantCandidate) IsOpenNow() bool {
	return r.OpenNow != nil && *r.OpenNow
}

// HasCuisine reports a case-insensitive membership match.
func (r RestaurantCandidate) HasCuisine(cuisine string) bool {
	want := strings.ToLower(strings.TrimSpace(cuisine))
	for _, c := range r.Cuisines {
		if strings.ToLower(strings.TrimSpace(c)) == want {
			return true
		}
	}
	return false
}

func BoolPtr(b bool) *bool { return &b }
