// Package restaurants provides the restaurant sources behind the planner:
// a built-in fixture catalogue, a places text-search API, a PostgreSQL table,
// an Elasticsearch index, a Redis cache in front of any of them, and
// combinators that fan out across several sources.
package restaurants

import (
	"context"
	"errors"
	"strings"

	"assistant-workers/internal/models"
)

const (
	SourceFixture       = "fixture"
	SourcePlaces        = "places"
	SourcePostgres      = "postgres"
	SourceElasticsearch = "elasticsearch"
	SourceMulti         = "multi"
)

var (
	ErrUnknownSource  = errors.New("unknown restaurant source")
	ErrSourceNotReady = errors.New("restaurant source dependency not configured")
)

// Source finds restaurant candidates for a location. cuisineHints may be empty.
type Source interface {
	Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error)
}

// wantsCuisineFilter is false for the default ["indian"] hint, which every catalogue satisfies.
func wantsCuisineFilter(hints []string) bool {
	if len(hints) == 0 {
		return false
	}
	return !(len(hints) == 1 && strings.EqualFold(hints[0], "indian"))
}

// filterByCuisine keeps candidates whose cuisine list mentions any hint. When nothing
// matches the input is returned unchanged.
func filterByCuisine(candidates []models.RestaurantCandidate, hints []string) []models.RestaurantCandidate {
	if !wantsCuisineFilter(hints) {
		return candidates
	}

	filtered := make([]models.RestaurantCandidate, 0, len(candidates))
	for _, c := range candidates {
		joined := strings.ToLower(strings.Join(c.Cuisines, " "))
		for _, h := range hints {
			if strings.Contains(joined, strings.ToLower(strings.TrimSpace(h))) {
				filtered = append(filtered, c)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return candidates
	}
	return filtered
}

// dedupe keeps the first candidate for each normalized name and drops nameless ones.
func dedupe(candidates []models.RestaurantCandidate) []models.RestaurantCandidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]models.RestaurantCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.NormalizedName()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
