// Package intent routes a user message to one of the assistant's intents.
//
// A Router composes a primary Classifier (usually the LLM strategy) with the
// deterministic KeywordClassifier. Any primary failure falls through to the
// keyword strategy, so routing never fails.
package intent

import (
	"context"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

const (
	StrategyLLM     = "llm"
	StrategyKeyword = "keyword"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (models.Classification, error)
}

// Observer is notified of every routing decision.
type Observer func(result models.Classification, primaryErr error)

type Router struct {
	primary  Classifier
	fallback *KeywordClassifier
	logger   logger.Logger
	observe  Observer
}

// NewRouter builds a router. primary may be nil, in which case only keywords are used.
func NewRouter(primary Classifier, log logger.Logger) *Router {
	return &Router{
		primary:  primary,
		fallback: NewKeywordClassifier(),
		logger:   logger.OrNoOp(log),
	}
}

func (r *Router) WithObserver(o Observer) *Router {
	r.observe = o
	return r
}

func (r *Router) Classify(ctx context.Context, text string) models.Classification {
	var primaryErr error

	if r.primary != nil {
		result, err := r.primary.Classify(ctx, text)
		if err == nil {
			r.notify(result, nil)
			return result
		}
		primaryErr = err
		r.logger.Warn("Primary classification failed, using keyword fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result, _ := r.fallback.Classify(ctx, text)
	r.notify(result, primaryErr)
	return result
}

func (r *Router) notify(result models.Classification, primaryErr error) {
	r.logger.Info("Intent classified", map[string]interface{}{
		"intent":     string(result.Intent),
		"confidence": result.Confidence,
		"strategy":   result.Strategy,
	})
	if r.observe != nil {
		r.observe(result, primaryErr)
	}
}
