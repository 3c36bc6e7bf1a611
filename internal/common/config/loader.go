// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"assistant-workers/internal/models"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and defaults, then validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return decode(v)
}

// LoadFromFile reads a single YAML file without environment-specific merging.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.APIs.GenAI.APIKey, "GENAI_API_KEY")
	setIfEmpty(&cfg.APIs.Places.APIKey, "PLACES_API_KEY")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Integrations.AWS.SES.FromEmail, "SES_FROM_EMAIL")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "restaurants"
	}
	if cfg.Database.Redis.PoolSize == 0 {
		cfg.Database.Redis.PoolSize = 10
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 30000
	}
	if cfg.APIs.GenAI.MaxRetries == 0 {
		cfg.APIs.GenAI.MaxRetries = 2
	}
	if cfg.APIs.Places.Timeout == 0 {
		cfg.APIs.Places.Timeout = 10000
	}
	if cfg.APIs.Places.MaxRetries == 0 {
		cfg.APIs.Places.MaxRetries = 3
	}

	if cfg.Kafka.OptionsTopic == "" {
		cfg.Kafka.OptionsTopic = "assistant.options.generated"
	}
	if cfg.Kafka.ConfirmedTopic == "" {
		cfg.Kafka.ConfirmedTopic = "assistant.option.confirmed"
	}

	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "us-east-1"
	}

	a := &cfg.Assistant
	if len(a.TeamMembers) == 0 {
		a.TeamMembers = append([]string(nil), models.DefaultTeamMembers...)
	}
	if a.TeamSize == 0 {
		a.TeamSize = len(a.TeamMembers)
	}
	if a.DefaultLocation == "" {
		a.DefaultLocation = models.DefaultLocation
	}
	if a.TargetOptionCount == 0 {
		a.TargetOptionCount = models.DefaultTargetCount
	}
	if a.MaxRankedRestaurants == 0 {
		a.MaxRankedRestaurants = 8
	}
	if a.LookaheadDays == 0 {
		a.LookaheadDays = 3
	}
	if a.RestaurantSource == "" {
		a.RestaurantSource = "fixture"
	}
	if a.RegistryPath == "" {
		a.RegistryPath = "configs/activity-registry.json"
	}
	if a.RestaurantCacheTTL == 0 {
		a.RestaurantCacheTTL = 3600
	}
	if a.AvailabilityCacheTTL == 0 {
		a.AvailabilityCacheTTL = 300
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Assistant.RestaurantSource {
	case "fixture":
	case "places":
		if cfg.APIs.Places.BaseURL == "" {
			return fmt.Errorf("apis.places.base_url is required for the places restaurant source")
		}
	case "postgres":
		if err := validatePostgres(cfg.Database.Postgres); err != nil {
			return err
		}
	case "elasticsearch":
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses is required for the elasticsearch restaurant source")
		}
	case "multi":
		if err := validatePostgres(cfg.Database.Postgres); err != nil {
			return err
		}
		if len(cfg.Database.Elasticsearch.Addresses) == 0 {
			return fmt.Errorf("database.elasticsearch.addresses is required for the multi restaurant source")
		}
	default:
		return fmt.Errorf("assistant.restaurant_source %q is not supported", cfg.Assistant.RestaurantSource)
	}

	if cfg.APIs.GenAI.Enabled && cfg.APIs.GenAI.BaseURL == "" {
		return fmt.Errorf("apis.genai.base_url is required when genai is enabled")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if cfg.Assistant.TeamSize < 1 {
		return fmt.Errorf("assistant.team_size must be at least 1")
	}
	return nil
}

func validatePostgres(p PostgresConfig) error {
	if p.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if p.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if p.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	return nil
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}

// Defaults returns a configuration with every default applied and no file read.
// It is not validated; callers that never reach Zeebe use it as is.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
