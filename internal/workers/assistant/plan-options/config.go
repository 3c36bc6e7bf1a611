// internal/workers/assistant/plan-options/config.go
package planoptions

import (
	"time"

	"assistant-workers/internal/models"
)

type Config struct {
	Timeout     time.Duration
	Defaults    models.SessionDefaults
	MaxTarget   int
	InputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		Defaults:  models.SessionDefaults{}.WithFallbacks(),
		MaxTarget: 20,
	}
}
