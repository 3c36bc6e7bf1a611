// Package scheduler sequences the planning pipeline for one user message:
// classify, extract, fetch restaurants and availability, rank and match.
//
// Collaborator failures never escape Plan. A failed restaurant search yields
// StatusSourceFailed, a failed availability date contributes no window, and
// an empty match yields StatusNoOptions with a reason.
package scheduler

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"assistant-workers/internal/assistant/extract"
	"assistant-workers/internal/assistant/match"
	"assistant-workers/internal/assistant/rank"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/models"
)

const (
	DefaultLookaheadDays = 3
	calendarBestTimes    = 3
	dateLayout           = "2006-01-02"
)

type RestaurantSource interface {
	Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error)
}

// AvailabilitySource returns the team's slots for one date. No slots is an empty window, not an error.
type AvailabilitySource interface {
	GetAvailability(ctx context.Context, date string, attendees []string) (models.AvailabilityWindow, error)
}

type IntentRouter interface {
	Classify(ctx context.Context, text string) models.Classification
}

type Status string

const (
	StatusOptions      Status = "OPTIONS"
	StatusNoOptions    Status = "NO_OPTIONS"
	StatusSourceFailed Status = "SOURCE_FAILED"
	StatusAvailability Status = "AVAILABILITY"
	StatusHelp         Status = "HELP"
)

type Config struct {
	TargetCount    int
	LookaheadDays  int
	MaxRanked      int // 0 keeps every ranked restaurant
	DiversityLimit int
}

type Request struct {
	Message     string
	Defaults    models.SessionDefaults
	TargetCount int // overrides Config.TargetCount when > 0
}

// CalendarAvailability answers a calendar-scheduling message.
type CalendarAvailability struct {
	Date               string                    `json:"date"`
	AvailableAttendees int                       `json:"availableAttendees"`
	TotalAttendees     int                       `json:"totalAttendees"`
	BestTimes          []string                  `json:"bestTimes"`
	Window             models.AvailabilityWindow `json:"window"`
}

type Plan struct {
	Status         Status                  `json:"status"`
	Classification models.Classification   `json:"classification"`
	Request        models.ExtractedRequest `json:"request"`
	Options        []models.Option         `json:"options"`
	Summary        string                  `json:"summary,omitempty"`
	EventContext   bool                    `json:"eventContext"`
	Reason         string                  `json:"reason,omitempty"`
	Message        string                  `json:"message,omitempty"`
	Availability   *CalendarAvailability   `json:"availability,omitempty"`
	FailedDates    []string                `json:"failedDates,omitempty"`
	DiversityHits  int                     `json:"diversityHits"`
	BackfillHits   int                     `json:"backfillHits"`
}

var eventWords = regexp.MustCompile(`\b(?:birthday|party|celebration|organi[sz]e)`)

type Scheduler struct {
	router       IntentRouter
	extractor    *extract.Extractor
	ranker       *rank.Ranker
	matcher      *match.Matcher
	restaurants  RestaurantSource
	availability AvailabilitySource
	cfg          Config
	now          func() time.Time
	logger       logger.Logger
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(log logger.Logger) Option {
	return func(s *Scheduler) { s.logger = log }
}

func New(router IntentRouter, restaurants RestaurantSource, availability AvailabilitySource, cfg Config, opts ...Option) *Scheduler {
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = models.DefaultTargetCount
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = DefaultLookaheadDays
	}

	s := &Scheduler{
		router:       router,
		restaurants:  restaurants,
		availability: availability,
		cfg:          cfg,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNoOp(s.logger).WithFields(map[string]interface{}{"component": "scheduler"})
	s.extractor = extract.New(extract.WithClock(s.now), extract.WithLogger(s.logger))
	s.ranker = rank.NewRanker()
	s.matcher = match.NewMatcher(cfg.DiversityLimit, s.logger)
	return s
}

// Plan classifies the message and runs the flow for its intent.
func (s *Scheduler) Plan(ctx context.Context, req Request) Plan {
	ctx, span := observability.StartSpan(ctx, "scheduler.plan")
	defer span.End()

	defaults := req.Defaults.WithFallbacks()

	_, classifySpan := observability.StartSpan(ctx, "scheduler.classify")
	classification := s.router.Classify(ctx, req.Message)
	classifySpan.SetAttributes(
		attribute.String("intent", string(classification.Intent)),
		attribute.String("strategy", classification.Strategy),
	)
	classifySpan.End()

	var plan Plan
	switch classification.Intent {
	case models.IntentRestaurantBooking, models.IntentEventPlanning:
		plan = s.planRestaurants(ctx, req, defaults)
	case models.IntentCalendarScheduling:
		plan = s.planCalendar(ctx, req.Message, defaults)
	case models.IntentEmailCommunication:
		plan = Plan{Status: StatusHelp, Message: emailHelp}
	default:
		plan = Plan{Status: StatusHelp, Message: generalHelp(req.Message)}
	}
	plan.Classification = classification
	if plan.Options == nil {
		plan.Options = []models.Option{}
	}

	span.SetAttributes(attribute.String("status", string(plan.Status)), attribute.Int("options", len(plan.Options)))
	return plan
}

// PlanRestaurants runs the restaurant flow without classifying the message first.
func (s *Scheduler) PlanRestaurants(ctx context.Context, req Request) Plan {
	plan := s.planRestaurants(ctx, req, req.Defaults.WithFallbacks())
	if plan.Options == nil {
		plan.Options = []models.Option{}
	}
	return plan
}

func (s *Scheduler) planRestaurants(ctx context.Context, req Request, defaults models.SessionDefaults) Plan {
	extracted := s.extractor.Extract(req.Message, defaults)
	plan := Plan{
		Request:      extracted,
		EventContext: eventWords.MatchString(strings.ToLower(req.Message)),
	}

	candidates, err := s.searchRestaurants(ctx, extracted)
	if err != nil {
		plan.Status = StatusSourceFailed
		plan.Reason = fmt.Sprintf("Restaurant search failed: %v", err)
		return plan
	}
	if len(candidates) == 0 {
		plan.Status = StatusNoOptions
		plan.Reason = fmt.Sprintf("No restaurants found in %s. Try a different location or cuisine.", extracted.Location)
		return plan
	}

	windows, failed := s.FetchAvailability(ctx, s.LookaheadDates(extracted.Date), defaults.TeamMembers)
	plan.FailedDates = failed

	_, rankSpan := observability.StartSpan(ctx, "scheduler.rank", attribute.Int("candidates", len(candidates)))
	ranked := s.ranker.Rank(candidates, extracted.Cuisines, extracted.PartySize)
	if s.cfg.MaxRanked > 0 && len(ranked) > s.cfg.MaxRanked {
		ranked = ranked[:s.cfg.MaxRanked]
	}
	rankSpan.End()

	target := s.cfg.TargetCount
	if req.TargetCount > 0 {
		target = req.TargetCount
	}

	_, matchSpan := observability.StartSpan(ctx, "scheduler.match",
		attribute.Int("restaurants", len(ranked)),
		attribute.Int("windows", len(windows)),
	)
	result := s.matcher.Match(ranked, windows, target)
	matchSpan.SetAttributes(attribute.Int("options", len(result.Options)))
	matchSpan.End()

	metrics.OptionsGenerated.Observe(float64(len(result.Options)))

	plan.DiversityHits = result.DiversityHits
	plan.BackfillHits = result.BackfillHits
	if !result.HasOptions() {
		plan.Status = StatusNoOptions
		plan.Reason = result.Reason
		return plan
	}

	plan.Status = StatusOptions
	plan.Options = result.Options
	plan.Summary = summarize(result.Options, extracted.Location, plan.EventContext)

	s.logger.Info("Plan ready", map[string]interface{}{
		"location":    extracted.Location,
		"optionCount": len(result.Options),
		"failedDates": len(failed),
	})
	return plan
}

func (s *Scheduler) searchRestaurants(ctx context.Context, req models.ExtractedRequest) ([]models.RestaurantCandidate, error) {
	ctx, span := observability.StartSpan(ctx, "scheduler.fetch_restaurants",
		attribute.String("location", req.Location),
		attribute.StringSlice("cuisines", req.Cuisines),
	)
	defer span.End()

	candidates, err := s.restaurants.Search(ctx, req.Location, req.Cuisines)
	if err != nil {
		metrics.SourceFailures.WithLabelValues("restaurants").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "restaurant search failed")
		s.logger.Error("Restaurant search failed", map[string]interface{}{
			"location": req.Location,
			"error":    err.Error(),
		})
		return nil, err
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	return candidates, nil
}

func (s *Scheduler) planCalendar(ctx context.Context, text string, defaults models.SessionDefaults) Plan {
	date := extract.ExtractDate(text, s.now())
	if date == "" {
		date = s.today().AddDate(0, 0, 1).Format(dateLayout)
	}

	windows, failed := s.FetchAvailability(ctx, []string{date}, defaults.TeamMembers)
	if len(failed) > 0 {
		return Plan{
			Status:      StatusSourceFailed,
			Reason:      fmt.Sprintf("Could not check team availability for %s", date),
			FailedDates: failed,
		}
	}

	window := windows[0]
	availability := &CalendarAvailability{
		Date:      date,
		BestTimes: bestTimes(window),
		Window:    window,
	}
	if best, ok := window.BestSlot(); ok {
		availability.AvailableAttendees = best.AvailableAttendees
		availability.TotalAttendees = best.TotalAttendees
	}

	message := fmt.Sprintf("Team availability for %s: %d/%d team members available.",
		date, availability.AvailableAttendees, availability.TotalAttendees)
	if len(availability.BestTimes) > 0 {
		message += " Best times: " + strings.Join(availability.BestTimes, ", ")
	} else {
		message += " No availability."
	}

	return Plan{
		Status:       StatusAvailability,
		Message:      message,
		Availability: availability,
	}
}

// bestTimes keeps the slots among the first few that have anyone available.
func bestTimes(w models.AvailabilityWindow) []string {
	slots := w.TimeSlots
	if len(slots) > calendarBestTimes {
		slots = slots[:calendarBestTimes]
	}
	times := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.AvailableAttendees > 0 {
			times = append(times, slot.Time)
		}
	}
	return times
}

// LookaheadDates lists the dates to check. With a requested date the window starts there,
// otherwise it starts tomorrow.
func (s *Scheduler) LookaheadDates(requested string) []string {
	start := s.today().AddDate(0, 0, 1)
	if requested != "" {
		if d, err := time.ParseInLocation(dateLayout, requested, start.Location()); err == nil {
			start = d
		}
	}

	dates := make([]string, s.cfg.LookaheadDays)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i).Format(dateLayout)
	}
	return dates
}

func (s *Scheduler) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func summarize(options []models.Option, location string, eventContext bool) string {
	restaurants := make(map[string]bool, len(options))
	for _, o := range options {
		restaurants[o.Restaurant.NormalizedName()] = true
	}
	summary := fmt.Sprintf("Found %d unique restaurants in %s with team availability", len(restaurants), location)
	if eventContext {
		summary += " - Perfect venues for your celebration!"
	}
	return summary
}

const emailHelp = "Email request detected. Option summaries are sent by email once a plan is selected. " +
	`Try "Organize a birthday party for my team in Delhi tomorrow".`

func generalHelp(message string) string {
	return fmt.Sprintf("I understood: %q. I can find restaurants (\"Find restaurants in Delhi\"), "+
		"plan events (\"Organize birthday party for team\") and check team availability "+
		"(\"Check team availability for next Tuesday\").", message)
}
