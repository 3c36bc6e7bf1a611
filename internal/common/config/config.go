// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"assistant-workers/internal/models"
)

type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	APIs         APIsConfig              `mapstructure:"apis"`
	Kafka        KafkaConfig             `mapstructure:"kafka"`
	Assistant    AssistantConfig         `mapstructure:"assistant"`
	Server       ServerConfig            `mapstructure:"server"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Tracing      TracingConfig           `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type IntegrationConfig struct {
	AWS AWSConfig `mapstructure:"aws"`
}

type AWSConfig struct {
	Region   string    `mapstructure:"region"`
	Endpoint string    `mapstructure:"endpoint"`
	SES      SESConfig `mapstructure:"ses"`
	SNS      SNSConfig `mapstructure:"sns"`
}

type SESConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	FromEmail string `mapstructure:"from_email"`
}

type SNSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SenderID string `mapstructure:"sender_id"`
}

type APIsConfig struct {
	GenAI  GenAIConfig  `mapstructure:"genai"`
	Places PlacesConfig `mapstructure:"places"`
}

type GenAIConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type PlacesConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type KafkaConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Brokers        []string `mapstructure:"brokers"`
	OptionsTopic   string   `mapstructure:"options_topic"`
	ConfirmedTopic string   `mapstructure:"confirmed_topic"`
}

// AssistantConfig holds the planning defaults and the choice of restaurant backend.
type AssistantConfig struct {
	TeamMembers          []string `mapstructure:"team_members"`
	TeamSize             int      `mapstructure:"team_size"`
	DefaultLocation      string   `mapstructure:"default_location"`
	TargetOptionCount    int      `mapstructure:"target_option_count"`
	MaxRankedRestaurants int      `mapstructure:"max_ranked_restaurants"`
	LookaheadDays        int      `mapstructure:"lookahead_days"`
	RestaurantSource     string   `mapstructure:"restaurant_source"` // fixture, places, postgres, elasticsearch, multi
	FixturePath          string   `mapstructure:"fixture_path"`
	RegistryPath         string   `mapstructure:"registry_path"`
	RestaurantCacheTTL   int      `mapstructure:"restaurant_cache_ttl"`   // seconds
	AvailabilityCacheTTL int      `mapstructure:"availability_cache_ttl"` // seconds
}

// SessionDefaults converts the configured planning defaults into the value handed to the core.
func (a AssistantConfig) SessionDefaults() models.SessionDefaults {
	members := make([]string, len(a.TeamMembers))
	copy(members, a.TeamMembers)
	return models.SessionDefaults{
		TeamMembers:     members,
		TeamSize:        a.TeamSize,
		DefaultLocation: a.DefaultLocation,
	}
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
