package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"assistant-workers/internal/models"
)

var emailKeywords = []string{
	"mail", "email", "send message", "birthday wishes", "wishes", "message to",
	"email to", "send to", "notify", "inform", "tell",
}

// restaurantKeywords covers dining and event vocabulary so party language routes to booking.
var restaurantKeywords = []string{
	"organize", "birthday party", "celebration", "party", "event", "plan", "celebrate",
	"restaurant", "dinner", "lunch", "food", "eat", "dining", "great food", "vibes",
	"ambiance", "place", "venue", "delhi", "mumbai", "hyderabad", "bangalore",
	"cannaught place", "connaught place", "cp", "near office", "team", "group", "people",
	"6-person", "colleagues", "go somewhere", "book", "reservation",
}

var calendarKeywords = []string{"meeting", "schedule", "availability", "calendar", "appointment"}

// keywordSet counts how many of its keywords start a word in the text.
type keywordSet []*regexp.Regexp

func newKeywordSet(words []string) keywordSet {
	set := make(keywordSet, len(words))
	for i, w := range words {
		set[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w))
	}
	return set
}

func (s keywordSet) score(lower string) int {
	n := 0
	for _, p := range s {
		if p.MatchString(lower) {
			n++
		}
	}
	return n
}

// KeywordClassifier is the deterministic strategy. Restaurant and event vocabulary
// outranks email vocabulary: "email about the team party" is a booking.
type KeywordClassifier struct {
	email      keywordSet
	restaurant keywordSet
	calendar   keywordSet
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		email:      newKeywordSet(emailKeywords),
		restaurant: newKeywordSet(restaurantKeywords),
		calendar:   newKeywordSet(calendarKeywords),
	}
}

// Scores returns the email, restaurant and calendar hit counts for text.
func (k *KeywordClassifier) Scores(text string) (email, restaurant, calendar int) {
	lower := strings.ToLower(text)
	return k.email.score(lower), k.restaurant.score(lower), k.calendar.score(lower)
}

func (k *KeywordClassifier) Classify(_ context.Context, text string) (models.Classification, error) {
	email, restaurant, calendar := k.Scores(text)

	result := models.Classification{Strategy: StrategyKeyword}
	switch {
	case email >= 1 && restaurant == 0:
		result.Intent = models.IntentEmailCommunication
		result.Confidence = 0.8
		result.Reasoning = fmt.Sprintf("Email keywords detected (score: %d)", email)
	case restaurant >= 1:
		result.Intent = models.IntentRestaurantBooking
		result.Confidence = 0.9
		result.Reasoning = fmt.Sprintf("Restaurant/event keywords detected (score: %d)", restaurant)
	case calendar >= 1:
		result.Intent = models.IntentCalendarScheduling
		result.Confidence = 0.7
		result.Reasoning = fmt.Sprintf("Calendar keywords detected (score: %d)", calendar)
	default:
		result.Intent = models.IntentGeneralTask
		result.Confidence = 0.6
		result.Reasoning = "No specific intent detected"
	}
	return result, nil
}
