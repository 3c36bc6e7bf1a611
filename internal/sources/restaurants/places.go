package restaurants

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "assistant-workers/internal/common/http"
	"assistant-workers/internal/models"
)

const (
	placesSearchPath  = "/maps/api/place/textsearch/json"
	maxPlacesResults  = 8
	maxPlacesCuisines = 3
)

var ErrPlacesStatus = errors.New("places search returned a non-OK status")

// ignoredPlaceTypes are generic place types that say nothing about the food.
var ignoredPlaceTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
}

type PlacesConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// PlacesSource queries a places text-search API.
type PlacesSource struct {
	config *PlacesConfig
	http   *httpclient.Client
}

type placesResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
	BusinessStatus   string   `json:"business_status"`
	OpeningHours     *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
}

func NewPlacesSource(config *PlacesConfig) *PlacesSource {
	return &PlacesSource{
		config: config,
		http:   httpclient.NewClient(config.Timeout, httpclient.WithMaxRetries(config.MaxRetries)),
	}
}

func (s *PlacesSource) Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	params := url.Values{}
	params.Set("query", placesQuery(location, cuisineHints))
	params.Set("key", s.config.APIKey)
	params.Set("type", "restaurant")
	params.Set("region", "in")

	endpoint := strings.TrimRight(s.config.BaseURL, "/") + placesSearchPath + "?" + params.Encode()

	var resp placesResponse
	if err := s.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []models.RestaurantCandidate{}, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrPlacesStatus, resp.Status, resp.ErrorMessage)
	}

	seen := make(map[string]bool, len(resp.Results))
	out := make([]models.RestaurantCandidate, 0, maxPlacesResults)
	for _, p := range resp.Results {
		if len(out) >= maxPlacesResults {
			break
		}
		if p.PlaceID != "" {
			if seen[p.PlaceID] {
				continue
			}
			seen[p.PlaceID] = true
		}
		out = append(out, p.candidate())
	}
	return dedupe(out), nil
}

func (p placeResult) candidate() models.RestaurantCandidate {
	c := models.RestaurantCandidate{
		Name:           p.Name,
		Address:        p.FormattedAddress,
		Rating:         p.Rating,
		ReviewCount:    p.UserRatingsTotal,
		BusinessStatus: p.BusinessStatus,
		Source:         SourcePlaces,
	}
	if p.OpeningHours != nil {
		c.OpenNow = models.BoolPtr(p.OpeningHours.OpenNow)
	}
	for _, t := range p.Types {
		if ignoredPlaceTypes[t] {
			continue
		}
		c.Cuisines = append(c.Cuisines, strings.ReplaceAll(t, "_", " "))
		if len(c.Cuisines) == maxPlacesCuisines {
			break
		}
	}
	if len(c.Cuisines) == 0 {
		c.Cuisines = []string{"restaurant"}
	}
	return c
}

func placesQuery(location string, cuisineHints []string) string {
	if wantsCuisineFilter(cuisineHints) {
		return fmt.Sprintf("%s restaurants in %s", strings.Join(cuisineHints, " "), location)
	}
	return "restaurants in " + location
}
