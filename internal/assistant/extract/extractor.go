// Package extract turns a free-text request into location, cuisines, party size and date.
// Extraction never fails: anything not found falls back to session or hard defaults.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

const (
	familyPartySize      = 4
	couplePartySize      = 2
	celebrationPartySize = 8
	maxLiteralPartySize  = 50
)

var DefaultCuisines = []string{"indian"}

var (
	locationPhrase = regexp.MustCompile(`\b(?:in|near|at|around)\s+([a-zA-Z\s]+?)(?:\s|$|,|\.)`)
	integerLiteral = regexp.MustCompile(`\b(\d+)\b`)
	clockTime      = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
)

// partyRule maps keywords to a party size. Rules are tried in order and the first hit wins.
type partyRule struct {
	name     string
	keywords *regexp.Regexp
	size     func(teamSize int) int
}

var partyRules = []partyRule{
	{
		name:     "team",
		keywords: regexp.MustCompile(`\b(?:team|group|colleagues)\b`),
		size:     func(teamSize int) int { return teamSize },
	},
	{
		name:     "family",
		keywords: regexp.MustCompile(`\b(?:family|relatives)\b`),
		size:     func(int) int { return familyPartySize },
	},
	{
		name:     "couple",
		keywords: regexp.MustCompile(`\b(?:couple|two|romantic)\b`),
		size:     func(int) int { return couplePartySize },
	},
	{
		name:     "celebration",
		keywords: regexp.MustCompile(`\b(?:large group|celebration|party)\b`),
		size: func(teamSize int) int {
			if teamSize > celebrationPartySize {
				return teamSize
			}
			return celebrationPartySize
		},
	},
}

type Extractor struct {
	now    func() time.Time
	logger logger.Logger
}

type Option func(*Extractor)

// WithClock fixes the reference time used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

func WithLogger(log logger.Logger) Option {
	return func(e *Extractor) { e.logger = log }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logger.OrNoOp(e.logger)
	return e
}

// Extract builds an ExtractedRequest from text. The team size and default location
// come from defaults; a missing location stays empty when defaults has none.
func (e *Extractor) Extract(text string, defaults models.SessionDefaults) models.ExtractedRequest {
	teamSize := defaults.TeamSize
	if teamSize <= 0 {
		teamSize = len(defaults.TeamMembers)
	}
	if teamSize <= 0 {
		teamSize = len(models.DefaultTeamMembers)
	}

	location := ExtractLocation(text)
	if location == "" {
		location = defaults.DefaultLocation
	}

	req := models.ExtractedRequest{
		Location:  location,
		Cuisines:  ExtractCuisines(text),
		PartySize: ExtractPartySize(text, teamSize),
		Date:      ExtractDate(text, e.now()),
	}

	e.logger.Debug("Extracted request", map[string]interface{}{
		"location":  req.Location,
		"cuisines":  req.Cuisines,
		"partySize": req.PartySize,
		"date":      req.Date,
	})
	return req
}

// ExtractLocation returns the canonical name of the first gazetteer place found in text,
// then falls back to a place named inside an "in/near/at/around <words>" phrase.
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)

	for _, p := range gazetteer {
		if p.pattern.MatchString(lower) {
			return p.canonical
		}
	}

	for _, m := range locationPhrase.FindAllStringSubmatch(lower, -1) {
		phrase := strings.TrimSpace(m[1])
		if phrase == "" {
			continue
		}
		for _, p := range gazetteer {
			if strings.Contains(phrase, p.name) {
				return p.canonical
			}
		}
	}
	return ""
}

// ExtractCuisines collects every vocabulary term in text, longest terms first.
// A matched span is blanked out so "north indian" does not also yield "indian".
func ExtractCuisines(text string) []string {
	work := []byte(strings.ToLower(text))
	found := make([]string, 0, 2)
	seen := make(map[string]bool)

	for _, term := range cuisines {
		locs := term.pattern.FindAllIndex(work, -1)
		if len(locs) == 0 {
			continue
		}
		for _, loc := range locs {
			for i := loc[0]; i < loc[1]; i++ {
				work[i] = ' '
			}
		}
		if !seen[term.name] {
			seen[term.name] = true
			found = append(found, term.name)
		}
	}

	if len(found) == 0 {
		return append([]string(nil), DefaultCuisines...)
	}
	return found
}

// ExtractPartySize applies the keyword rules in order, then the first integer in
// [1, 50], then teamSize.
func ExtractPartySize(text string, teamSize int) int {
	lower := strings.ToLower(text)

	for _, rule := range partyRules {
		if rule.keywords.MatchString(lower) {
			return rule.size(teamSize)
		}
	}

	// Numbers inside dates and clock times are not party sizes.
	stripped := maskExplicitDates(lower)
	stripped = clockTime.ReplaceAllString(stripped, " ")
	for _, m := range integerLiteral.FindAllStringSubmatch(stripped, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n >= 1 && n <= maxLiteralPartySize {
			return n
		}
	}

	return teamSize
}
