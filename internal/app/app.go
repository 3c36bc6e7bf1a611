// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"assistant-workers/internal/assistant/extract"
	"assistant-workers/internal/assistant/intent"
	"assistant-workers/internal/assistant/scheduler"
	awsclient "assistant-workers/internal/common/aws"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/genai"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"
	"assistant-workers/internal/sinks"
	"assistant-workers/internal/sources/calendar"
	"assistant-workers/internal/sources/restaurants"
)

// Options tune how much infrastructure Build connects to.
type Options struct {
	// Offline skips Redis, Kafka and AWS; only the restaurant backend named in config is dialled.
	Offline bool
	// Now overrides the clock of the extractor, calendar stub, scheduler and booker.
	Now func() time.Time
}

// App holds the assembled core and its infrastructure. Optional sinks are nil when disabled.
type App struct {
	Config *config.Config
	Logger logger.Logger

	Postgres      *database.PostgresClient
	Elasticsearch *database.ElasticsearchClient
	Redis         *database.RedisClient

	Router    *intent.Router
	Extractor *extract.Extractor
	Scheduler *scheduler.Scheduler
	Booker    *sinks.Booker
	Email     *sinks.EmailSender
	SMS       *sinks.SMSSender
	Events    *sinks.EventPublisher
}

func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	log = logger.OrNoOp(log)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	a := &App{Config: cfg, Logger: log}

	if err := a.connectStores(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}

	var rdb redis.Cmdable
	if a.Redis != nil {
		rdb = a.Redis.Client
	}

	restaurantSource, err := restaurants.FromConfig(cfg, restaurants.Dependencies{
		Postgres:      a.Postgres,
		Elasticsearch: a.Elasticsearch,
		Redis:         rdb,
		Logger:        log,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("restaurant source: %w", err)
	}

	var availability calendar.Source = calendar.NewStubCalendar(calendar.WithClock(now))
	if rdb != nil {
		ttl := time.Duration(cfg.Assistant.AvailabilityCacheTTL) * time.Second
		availability = calendar.NewCachedSource(availability, rdb, ttl, log)
	}

	a.Router = intent.NewRouter(a.primaryClassifier(), log).WithObserver(func(c models.Classification, _ error) {
		metrics.IntentsClassified.WithLabelValues(string(c.Intent), c.Strategy).Inc()
	})
	a.Extractor = extract.New(extract.WithClock(now), extract.WithLogger(log))
	a.Scheduler = scheduler.New(a.Router, restaurantSource, availability, scheduler.Config{
		TargetCount:   cfg.Assistant.TargetOptionCount,
		LookaheadDays: cfg.Assistant.LookaheadDays,
		MaxRanked:     cfg.Assistant.MaxRankedRestaurants,
	}, scheduler.WithClock(now), scheduler.WithLogger(log))
	a.Booker = sinks.NewBooker(now)

	if !opts.Offline {
		if err := a.buildSinks(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) primaryClassifier() intent.Classifier {
	g := a.Config.APIs.GenAI
	if !g.Enabled {
		return nil
	}
	return intent.NewLLMClassifier(genai.NewClient(&genai.Config{
		BaseURL:     g.BaseURL,
		APIKey:      g.APIKey,
		Timeout:     config.GetDuration(g.Timeout),
		MaxRetries:  g.MaxRetries,
		MaxTokens:   500,
		Temperature: 0.2,
	}))
}

// connectStores dials only the stores the configured restaurant source needs.
// Redis is optional: an unreachable cache is logged and skipped.
func (a *App) connectStores(ctx context.Context, opts Options) error {
	cfg := a.Config
	source := cfg.Assistant.RestaurantSource

	if source == restaurants.SourcePostgres || source == restaurants.SourceMulti {
		err := RetryWithBackoff(ctx, func() error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				pg.Close()
				return err
			}
			a.Postgres = pg
			return nil
		}, 5, 2*time.Second, a.Logger, "PostgreSQL connection")
		if err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err).WithMetadata("store", "postgres")
		}
	}

	if source == restaurants.SourceElasticsearch || source == restaurants.SourceMulti {
		err := RetryWithBackoff(ctx, func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			a.Elasticsearch = es
			return nil
		}, 5, 2*time.Second, a.Logger, "Elasticsearch connection")
		if err != nil {
			return apperrors.NewDatabaseConnectionFailedError(err).WithMetadata("store", "elasticsearch")
		}
	}

	if !opts.Offline && cfg.Database.Redis.Address != "" {
		rdb := database.NewRedis(cfg.Database.Redis)
		if err := rdb.Ping(ctx); err != nil {
			a.Logger.Warn("Redis unavailable, caching disabled", map[string]interface{}{
				"address": cfg.Database.Redis.Address,
				"error":   err.Error(),
			})
			rdb.Close()
		} else {
			a.Redis = rdb
		}
	}
	return nil
}

func (a *App) buildSinks(ctx context.Context) error {
	cfg := a.Config
	awsCfg := cfg.Integrations.AWS

	if awsCfg.SES.Enabled || awsCfg.SNS.Enabled {
		sdkCfg, err := awsclient.LoadConfig(ctx, awsCfg.Region)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		if awsCfg.SES.Enabled {
			a.Email = sinks.NewEmailSender(awsclient.NewSESClient(sdkCfg, awsCfg.Endpoint), awsCfg.SES.FromEmail, a.Logger)
		}
		if awsCfg.SNS.Enabled {
			a.SMS = sinks.NewSMSSender(awsclient.NewSNSClient(sdkCfg, awsCfg.Endpoint), awsCfg.SNS.SenderID, a.Logger)
		}
	}

	if cfg.Kafka.Enabled {
		a.Events = sinks.NewEventPublisher(
			sinks.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.OptionsTopic),
			sinks.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.ConfirmedTopic),
			a.Logger,
		)
	}
	return nil
}

// ReadinessChecks returns a ping per connected store.
func (a *App) ReadinessChecks() map[string]func(context.Context) error {
	checks := make(map[string]func(context.Context) error)
	if a.Postgres != nil {
		checks["postgres"] = a.Postgres.Ping
	}
	if a.Elasticsearch != nil {
		checks["elasticsearch"] = a.Elasticsearch.Ping
	}
	if a.Redis != nil {
		checks["redis"] = a.Redis.Ping
	}
	return checks
}

func (a *App) Close() error {
	var errs []error
	if a.Events != nil {
		errs = append(errs, a.Events.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Postgres != nil {
		errs = append(errs, a.Postgres.Close())
	}
	return errors.Join(errs...)
}

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay between attempts.
func RetryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}
		if i == maxRetries-1 {
			break
		}

		log.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxRetries":  maxRetries,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
