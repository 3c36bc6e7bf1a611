package restaurants

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"
)

var ErrAllSourcesFailed = errors.New("all restaurant sources failed")

type NamedSource struct {
	Name   string
	Source Source
}

// MultiSource queries every source concurrently and merges the results in source order.
// It fails only when every source fails.
type MultiSource struct {
	sources []NamedSource
	logger  logger.Logger
}

func NewMultiSource(log logger.Logger, sources ...NamedSource) *MultiSource {
	return &MultiSource{sources: sources, logger: logger.OrNoOp(log)}
}

func (s *MultiSource) Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	results := make([][]models.RestaurantCandidate, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src NamedSource) {
			defer wg.Done()
			results[i], errs[i] = src.Source.Search(ctx, location, cuisineHints)
		}(i, src)
	}
	wg.Wait()

	var merged []models.RestaurantCandidate
	failures := 0
	for i, src := range s.sources {
		if errs[i] != nil {
			failures++
			metrics.SourceFailures.WithLabelValues(src.Name).Inc()
			s.logger.Warn("Restaurant source failed", map[string]interface{}{
				"source":   src.Name,
				"location": location,
				"error":    errs[i].Error(),
			})
			continue
		}
		merged = append(merged, results[i]...)
	}

	if len(s.sources) > 0 && failures == len(s.sources) {
		return nil, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
	}
	return dedupe(merged), nil
}

// FallbackSource uses fallback when primary fails or finds nothing.
type FallbackSource struct {
	primary  NamedSource
	fallback NamedSource
	logger   logger.Logger
}

func NewFallbackSource(primary, fallback NamedSource, log logger.Logger) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback, logger: logger.OrNoOp(log)}
}

func (s *FallbackSource) Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	candidates, err := s.primary.Source.Search(ctx, location, cuisineHints)
	if err == nil && len(candidates) > 0 {
		return candidates, nil
	}

	fields := map[string]interface{}{
		"primary":  s.primary.Name,
		"fallback": s.fallback.Name,
		"location": location,
	}
	if err != nil {
		metrics.SourceFailures.WithLabelValues(s.primary.Name).Inc()
		fields["error"] = err.Error()
	}
	s.logger.Warn("Using fallback restaurant source", fields)

	return s.fallback.Source.Search(ctx, location, cuisineHints)
}
