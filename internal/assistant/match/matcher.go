// Package match pairs ranked restaurants with team availability windows.
//
// Matching runs in two passes. The diversity pass gives each of the top
// restaurants at most one option, on the window that best balances
// availability against how soon the date is. The backfill pass then fills the
// remaining slots from every restaurant and window in order. No two options
// share a (normalized restaurant name, date) combination.
package match

import (
	"sort"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

type Status string

const (
	StatusOK        Status = "ok"
	StatusNoOptions Status = "no_options"
)

const (
	DefaultDiversityLimit = 8
	NoOptionsMessage      = "No suitable restaurant and time combinations found. Please try adjusting your preferences."
)

// Result is either a populated option list or an explicit no-options outcome.
type Result struct {
	Status        Status          `json:"status"`
	Options       []models.Option `json:"options"`
	Reason        string          `json:"reason,omitempty"`
	DiversityHits int             `json:"diversityHits"`
	BackfillHits  int             `json:"backfillHits"`
}

func (r Result) HasOptions() bool {
	return r.Status == StatusOK && len(r.Options) > 0
}

type Matcher struct {
	diversityLimit int
	logger         logger.Logger
}

func NewMatcher(diversityLimit int, log logger.Logger) *Matcher {
	if diversityLimit <= 0 {
		diversityLimit = DefaultDiversityLimit
	}
	return &Matcher{
		diversityLimit: diversityLimit,
		logger:         logger.OrNoOp(log),
	}
}

// matchState tracks what the passes have produced so far.
type matchState struct {
	options []models.Option
	used    map[string]bool
}

func (s *matchState) add(r models.RestaurantCandidate, date string, slot models.TimeSlot) {
	s.options = append(s.options, models.Option{
		Restaurant:         r,
		Date:               date,
		Time:               slot.Time,
		AvailableAttendees: slot.AvailableAttendees,
		TotalAttendees:     slot.TotalAttendees,
	})
	s.used[models.CombinationKey(r.Name, date)] = true
}

// Match builds up to targetCount options. targetCount <= 0 means models.DefaultTargetCount.
func (m *Matcher) Match(restaurants []models.RestaurantCandidate, windows []models.AvailabilityWindow, targetCount int) Result {
	if targetCount <= 0 {
		targetCount = models.DefaultTargetCount
	}

	state := &matchState{used: make(map[string]bool)}

	m.diversityPass(state, restaurants, windows, targetCount)
	diversityHits := len(state.options)

	if len(state.options) < targetCount {
		m.backfillPass(state, restaurants, windows, targetCount)
	}
	backfillHits := len(state.options) - diversityHits

	options := state.options
	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Restaurant.Rating != options[j].Restaurant.Rating {
			return options[i].Restaurant.Rating > options[j].Restaurant.Rating
		}
		return options[i].AvailabilityRatio() > options[j].AvailabilityRatio()
	})
	if len(options) > targetCount {
		options = options[:targetCount]
	}

	m.logger.Debug("Matched options", map[string]interface{}{
		"restaurants":   len(restaurants),
		"windows":       len(windows),
		"diversityHits": diversityHits,
		"backfillHits":  backfillHits,
	})

	if len(options) == 0 {
		return Result{
			Status:  StatusNoOptions,
			Options: []models.Option{},
			Reason:  noOptionsReason(restaurants, windows),
		}
	}

	return Result{
		Status:        StatusOK,
		Options:       options,
		DiversityHits: diversityHits,
		BackfillHits:  backfillHits,
	}
}

// diversityPass emits one option per restaurant among the first diversityLimit,
// choosing the window with the best availability ratio plus 1/(windowIndex+1).
func (m *Matcher) diversityPass(state *matchState, restaurants []models.RestaurantCandidate, windows []models.AvailabilityWindow, targetCount int) {
	limit := m.diversityLimit
	if limit > len(restaurants) {
		limit = len(restaurants)
	}

	seenRestaurants := make(map[string]bool, limit)
	for _, r := range restaurants[:limit] {
		if len(state.options) >= targetCount {
			return
		}
		name := r.NormalizedName()
		if seenRestaurants[name] {
			continue
		}

		bestScore := -1.0
		var bestDate string
		var bestSlot models.TimeSlot
		for windowIndex, w := range windows {
			if state.used[models.CombinationKey(r.Name, w.Date)] {
				continue
			}
			slot, ok := w.BestSlot()
			if !ok {
				continue
			}
			score := slot.Ratio() + 1.0/float64(windowIndex+1)
			if score > bestScore {
				bestScore = score
				bestDate = w.Date
				bestSlot = slot
			}
		}

		if bestScore >= 0 {
			seenRestaurants[name] = true
			state.add(r, bestDate, bestSlot)
		}
	}
}

// backfillPass walks every restaurant and window in order and takes the best slot of
// each unused combination until targetCount is reached.
func (m *Matcher) backfillPass(state *matchState, restaurants []models.RestaurantCandidate, windows []models.AvailabilityWindow, targetCount int) {
	for _, r := range restaurants {
		for _, w := range windows {
			if len(state.options) >= targetCount {
				return
			}
			if state.used[models.CombinationKey(r.Name, w.Date)] {
				continue
			}
			slot, ok := w.BestSlot()
			if !ok {
				continue
			}
			state.add(r, w.Date, slot)
		}
	}
}

func noOptionsReason(restaurants []models.RestaurantCandidate, windows []models.AvailabilityWindow) string {
	switch {
	case len(restaurants) == 0:
		return NoOptionsMessage + " No restaurants were found."
	case len(windows) == 0:
		return NoOptionsMessage + " No team availability was found."
	default:
		return NoOptionsMessage + " No time slots were available."
	}
}
