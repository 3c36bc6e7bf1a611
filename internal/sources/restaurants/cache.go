package restaurants

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
)

const (
	cacheKeyPrefix  = "assistant:restaurants:"
	DefaultCacheTTL = 15 * time.Minute
)

// CachedSource is a cache-aside decorator. Cache failures are logged and never fail a search.
type CachedSource struct {
	next   Source
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next Source, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSource{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.OrNoOp(log),
	}
}

func (s *CachedSource) Search(ctx context.Context, location string, cuisineHints []string) ([]models.RestaurantCandidate, error) {
	key := CacheKey(location, cuisineHints)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []models.RestaurantCandidate
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		s.logger.Warn("Discarding unreadable cache entry", map[string]interface{}{"key": key})
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Restaurant cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	candidates, err := s.next.Search(ctx, location, cuisineHints)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(candidates); jsonErr == nil {
		if setErr := s.rdb.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
			s.logger.Warn("Restaurant cache write failed", map[string]interface{}{
				"key":   key,
				"error": setErr.Error(),
			})
		}
	}
	return candidates, nil
}

// CacheKey is independent of hint order and case.
func CacheKey(location string, cuisineHints []string) string {
	hints := make([]string, 0, len(cuisineHints))
	for _, h := range cuisineHints {
		hints = append(hints, strings.ToLower(strings.TrimSpace(h)))
	}
	sort.Strings(hints)
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(location)) + ":" + strings.Join(hints, ",")
}
