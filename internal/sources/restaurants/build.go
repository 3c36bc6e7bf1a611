package restaurants

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
)

// Dependencies are the clients a configured source may need. Nil clients are only an
// error when the selected source requires them.
type Dependencies struct {
	Postgres      *database.PostgresClient
	Elasticsearch *database.ElasticsearchClient
	Redis         redis.Cmdable
	Logger        logger.Logger
}

// FromConfig builds the restaurant source named by cfg.Assistant.RestaurantSource. The
// places source always falls back to the fixture catalogue, and a Redis client adds caching.
func FromConfig(cfg *config.Config, deps Dependencies) (Source, error) {
	fixture, err := fixtureFromConfig(cfg.Assistant)
	if err != nil {
		return nil, err
	}
	named := func(name string, s Source) NamedSource { return NamedSource{Name: name, Source: s} }

	var src Source
	switch kind := strings.ToLower(cfg.Assistant.RestaurantSource); kind {
	case "", SourceFixture:
		src = fixture
	case SourcePlaces:
		src = NewFallbackSource(named(SourcePlaces, placesFromConfig(cfg.APIs.Places)), named(SourceFixture, fixture), deps.Logger)
	case SourcePostgres:
		if deps.Postgres == nil {
			return nil, fmt.Errorf("%w: postgres", ErrSourceNotReady)
		}
		src = NewPostgresSource(deps.Postgres, cfg.Assistant.MaxRankedRestaurants)
	case SourceElasticsearch:
		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("%w: elasticsearch", ErrSourceNotReady)
		}
		src = NewElasticsearchSource(deps.Elasticsearch, cfg.Assistant.MaxRankedRestaurants)
	case SourceMulti:
		sources := []NamedSource{named(SourceFixture, fixture)}
		if cfg.APIs.Places.BaseURL != "" {
			sources = append(sources, named(SourcePlaces, placesFromConfig(cfg.APIs.Places)))
		}
		if deps.Postgres != nil {
			sources = append(sources, named(SourcePostgres, NewPostgresSource(deps.Postgres, cfg.Assistant.MaxRankedRestaurants)))
		}
		if deps.Elasticsearch != nil {
			sources = append(sources, named(SourceElasticsearch, NewElasticsearchSource(deps.Elasticsearch, cfg.Assistant.MaxRankedRestaurants)))
		}
		src = NewMultiSource(deps.Logger, sources...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}

	if deps.Redis != nil {
		ttl := time.Duration(cfg.Assistant.RestaurantCacheTTL) * time.Second
		src = NewCachedSource(src, deps.Redis, ttl, deps.Logger)
	}
	return src, nil
}

func fixtureFromConfig(a config.AssistantConfig) (*FixtureSource, error) {
	if a.FixturePath == "" {
		return NewFixtureSource(nil), nil
	}
	catalogue, err := LoadCatalogue(a.FixturePath)
	if err != nil {
		return nil, err
	}
	return NewFixtureSource(catalogue), nil
}

func placesFromConfig(p config.PlacesConfig) *PlacesSource {
	return NewPlacesSource(&PlacesConfig{
		BaseURL:    p.BaseURL,
		APIKey:     p.APIKey,
		Timeout:    config.GetDuration(p.Timeout),
		MaxRetries: p.MaxRetries,
	})
}
