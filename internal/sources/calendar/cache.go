package calendar

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
	cacheKeyPrefix  = "assistant:availability:"
	DefaultCacheTTL = 5 * time.Minute
)

type Source interface {
	GetAvailability(ctx context.Context, date string, attendees []string) (models.AvailabilityWindow, error)
}

// CachedSource caches windows per date and roster. Redis errors are logged and skipped.
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
	return &CachedSource{next: next, rdb: rdb, ttl: ttl, logger: logger.OrNoOp(log)}
}

func (s *CachedSource) GetAvailability(ctx context.Context, date string, attendees []string) (models.AvailabilityWindow, error) {
	key := CacheKey(date, attendees)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var window models.AvailabilityWindow
		if jsonErr := json.Unmarshal(raw, &window); jsonErr == nil {
			return window, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("Availability cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	window, err := s.next.GetAvailability(ctx, date, attendees)
	if err != nil {
		return models.AvailabilityWindow{}, err
	}

	if payload, jsonErr := json.Marshal(window); jsonErr == nil {
		if setErr := s.rdb.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
			s.logger.Warn("Availability cache write failed", map[string]interface{}{
				"key":   key,
				"error": setErr.Error(),
			})
		}
	}
	return window, nil
}

// CacheKey is independent of attendee order and case.
func CacheKey(date string, attendees []string) string {
	roster := make([]string, 0, len(attendees))
	for _, a := range attendees {
		roster = append(roster, strings.ToLower(strings.TrimSpace(a)))
	}
	sort.Strings(roster)
	return cacheKeyPrefix + date + ":" + strings.Join(roster, ",")
}
