package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"assistant-workers/internal/models"
)

var (
	ErrEmptyResponse   = errors.New("empty language model response")
	ErrInvalidJSON     = errors.New("language model response is not valid JSON")
	ErrUnknownIntent   = errors.New("language model returned an unknown intent")
	ErrGeneratorFailed = errors.New("language model call failed")
)

// Generator is the language-model collaborator: prompt in, raw text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type LLMClassifier struct {
	generator Generator
	now       func() time.Time
}

func NewLLMClassifier(generator Generator) *LLMClassifier {
	return &LLMClassifier{generator: generator, now: time.Now}
}

type llmResponse struct {
	Intent     string          `json:"intent"`
	Confidence *float64        `json:"confidence"`
	Entities   json.RawMessage `json:"entities"`
	Reasoning  string          `json:"reasoning"`
}

func (l *LLMClassifier) Classify(ctx context.Context, text string) (models.Classification, error) {
	raw, err := l.generator.Generate(ctx, BuildPrompt(text, l.now()))
	if err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrGeneratorFailed, err)
	}
	return ParseResponse(raw)
}

// BuildPrompt renders the fixed classification prompt for text.
func BuildPrompt(text string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Time: %s\n\n", now.Format(time.RFC3339))
	b.WriteString("Classify this user request into the most appropriate category.\n\n")
	fmt.Fprintf(&b, "User Input: %q\n\n", text)
	b.WriteString("Intent Categories:\n")
	b.WriteString("1. RESTAURANT_BOOKING - Finding restaurants, booking tables, dining plans\n")
	b.WriteString("   Examples: \"book restaurant\", \"find dinner place\", \"team dinner\"\n")
	b.WriteString("2. EMAIL_COMMUNICATION - Sending emails, messages, birthday wishes, notifications\n")
	b.WriteString("   Examples: \"mail the team\", \"send birthday wishes\", \"email team\"\n")
	b.WriteString("3. CALENDAR_SCHEDULING - Meetings, appointments, checking availability\n")
	b.WriteString("   Examples: \"schedule meeting\", \"check availability\", \"book meeting room\"\n")
	b.WriteString("4. EVENT_PLANNING - Parties, celebrations, organizing events\n")
	b.WriteString("   Examples: \"plan birthday party\", \"organize celebration\", \"team event\"\n")
	b.WriteString("5. GENERAL_TASK - Reminders, notes, other tasks\n")
	b.WriteString("   Examples: \"remind me\", \"create note\", \"set alarm\"\n\n")
	b.WriteString("Return ONLY JSON:\n")
	b.WriteString(`{"intent": "CATEGORY_NAME", "confidence": 0.95, "entities": ["key", "entities"], "reasoning": "Brief explanation"}`)
	b.WriteString("\n")
	return b.String()
}

// ParseResponse decodes a model reply, tolerating ``` or ```json fences around the object.
func ParseResponse(raw string) (models.Classification, error) {
	body := stripFences(raw)
	if body == "" {
		return models.Classification{}, ErrEmptyResponse
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return models.Classification{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	intent := models.Intent(strings.ToUpper(strings.TrimSpace(resp.Intent)))
	if !intent.Valid() {
		return models.Classification{}, fmt.Errorf("%w: %q", ErrUnknownIntent, resp.Intent)
	}

	confidence := 0.5
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.Classification{
		Intent:     intent,
		Confidence: confidence,
		Reasoning:  resp.Reasoning,
		Entities:   decodeEntities(resp.Entities),
		Strategy:   StrategyLLM,
	}, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if start := strings.Index(s, "```"); start >= 0 {
		rest := s[start+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && !strings.Contains(rest[:nl], "{") {
			rest = rest[nl+1:]
		} else {
			rest = strings.TrimPrefix(rest, "json")
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}
	// Prose around the object is dropped.
	if start, end := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}'); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// decodeEntities accepts either a list of strings or an object of key/value pairs.
func decodeEntities(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil {
		out := make([]string, 0, len(obj))
		for k, v := range obj {
			out = append(out, fmt.Sprintf("%s: %v", k, v))
		}
		sort.Strings(out)
		return out
	}
	return nil
}
