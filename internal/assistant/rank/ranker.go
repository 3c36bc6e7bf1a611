// Package rank scores restaurant candidates against the requested cuisines and
// deduplicates them by normalized name.
package rank

import (
	"math"
	"sort"
	"strings"

	"assistant-workers/internal/models"
)

const (
	ratingWeight      = 0.40
	cuisineMatchValue = 0.10
	cuisineMaxWeight  = 0.25
	operationalWeight = 0.10
	openNowWeight     = 0.05
)

// reviewBands is checked top down; the first band whose floor is exceeded applies.
var reviewBands = []struct {
	above  int
	weight float64
}{
	{1000, 0.20},
	{500, 0.15},
	{100, 0.10},
	{50, 0.05},
}

// cuisineCrossMap lets a preferred cuisine match a broader one on the candidate.
var cuisineCrossMap = map[string]string{
	"biryani": "indian",
}

type Ranker struct{}

func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank scores every candidate, sorts by score descending (stable on ties) and keeps the
// first occurrence of each normalized name. partySize is accepted for sources that
// filter by capacity; scoring does not use it.
func (r *Ranker) Rank(candidates []models.RestaurantCandidate, preferredCuisines []string, partySize int) []models.RestaurantCandidate {
	scored := make([]models.RestaurantCandidate, len(candidates))
	for i, c := range candidates {
		c.Score = Score(c, preferredCuisines)
		scored[i] = c
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	seen := make(map[string]bool, len(scored))
	out := make([]models.RestaurantCandidate, 0, len(scored))
	for _, c := range scored {
		key := c.NormalizedName()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// Score returns the weighted score of c in [0, 1].
func Score(c models.RestaurantCandidate, preferredCuisines []string) float64 {
	score := 0.0

	if c.Rating > 0 {
		score += (math.Min(c.Rating, 5) / 5.0) * ratingWeight
	}

	matches := CuisineMatches(c, preferredCuisines)
	score += math.Min(cuisineMaxWeight, float64(matches)*cuisineMatchValue)

	for _, band := range reviewBands {
		if c.ReviewCount > band.above {
			score += band.weight
			break
		}
	}

	if strings.EqualFold(c.BusinessStatus, models.BusinessStatusOperational) {
		score += operationalWeight
	}
	if c.IsOpenNow() {
		score += openNowWeight
	}

	// Round away float noise so a perfect candidate scores exactly 1.0.
	score = math.Round(score*1e9) / 1e9
	return math.Max(0, math.Min(1, score))
}

// CuisineMatches counts preferred cuisines present on c, case-insensitively.
func CuisineMatches(c models.RestaurantCandidate, preferredCuisines []string) int {
	matches := 0
	for _, pref := range preferredCuisines {
		p := strings.ToLower(strings.TrimSpace(pref))
		if p == "" {
			continue
		}
		if c.HasCuisine(p) {
			matches++
			continue
		}
		if broader, ok := cuisineCrossMap[p]; ok && c.HasCuisine(broader) {
			matches++
		}
	}
	return matches
}
