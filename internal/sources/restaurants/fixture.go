package restaurants

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"assistant-workers/internal/models"
)

const fallbackCity = "hyderabad"

//go:embed catalogue.yaml
var defaultCatalogueYAML []byte

// Catalogue maps a lowercase city name to its restaurants.
type Catalogue map[string][]models.RestaurantCandidate

type fixtureEntry struct {
	Name        string   `yaml:"name"`
	Address     string   `yaml:"address"`
	Rating      float64  `yaml:"rating"`
	ReviewCount int      `yaml:"review_count"`
	Cuisines    []string `yaml:"cuisines"`
	Phone       string   `yaml:"phone"`
	Website     string   `yaml:"website"`
	OpenNow     *bool    `yaml:"open_now"`
}

// LoadCatalogue reads a YAML file of the form {city: [restaurant, ...]}.
func LoadCatalogue(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

func ParseCatalogue(data []byte) (Catalogue, error) {
	var raw map[string][]fixtureEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixture catalogue: %w", err)
	}

	catalogue := make(Catalogue, len(raw))
	for city, entries := range raw {
		list := make([]models.RestaurantCandidate, 0, len(entries))
		for _, e := range entries {
			list = append(list, models.RestaurantCandidate{
				Name:        e.Name,
				Address:     e.Address,
				Rating:      e.Rating,
				ReviewCount: e.ReviewCount,
				Cuisines:    e.Cuisines,
				Phone:       e.Phone,
				Website:     e.Website,
				OpenNow:     e.OpenNow,
			})
		}
		catalogue[strings.ToLower(strings.TrimSpace(city))] = list
	}
	return catalogue, nil
}

// FixtureSource serves restaurants from an in-memory catalogue. Unknown cities get the
// Hyderabad list with the city name substituted into each address.
type FixtureSource struct {
	catalogue Catalogue
}

// NewFixtureSource uses DefaultCatalogue when catalogue is nil. A catalogue without
// Hyderabad still falls back to the default Hyderabad list.
func NewFixtureSource(catalogue Catalogue) *FixtureSource {
	if catalogue == nil {
		catalogue = DefaultCatalogue()
	}
	if _, ok := catalogue[fallbackCity]; !ok {
		catalogue[fallbackCity] = DefaultCatalogue()[fallbackCity]
	}
	return &FixtureSource{catalogue: catalogue}
}

func (s *FixtureSource) Search(_ context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	key := strings.ToLower(strings.TrimSpace(location))

	list, ok := s.catalogue[key]
	substitute := ""
	if !ok || len(list) == 0 {
		list = s.catalogue[fallbackCity]
		if key != "" && key != fallbackCity {
			substitute = strings.TrimSpace(location)
		}
	}

	out := make([]models.RestaurantCandidate, 0, len(list))
	for _, r := range list {
		r.Cuisines = append([]string(nil), r.Cuisines...)
		if r.OpenNow != nil {
			r.OpenNow = models.BoolPtr(*r.OpenNow)
		}
		if substitute != "" {
			r.Address = strings.ReplaceAll(r.Address, "Hyderabad", substitute)
		}
		r.BusinessStatus = models.BusinessStatusOperational
		r.Source = SourceFixture
		out = append(out, r)
	}

	return dedupe(filterByCuisine(out, cuisineHints)), nil
}

// DefaultCatalogue returns a fresh copy of the built-in restaurants.
func DefaultCatalogue() Catalogue {
	catalogue, err := ParseCatalogue(defaultCatalogueYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in restaurant catalogue: %v", err))
	}
	return catalogue
}
