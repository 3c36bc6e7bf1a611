// internal/workers/assistant/extract-request/config.go
package extractrequest

import (
	"time"

	"assistant-workers/internal/models"
)

type Config struct {
	Timeout     time.Duration
	Defaults    models.SessionDefaults
	InputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		Defaults: models.SessionDefaults{}.WithFallbacks(),
	}
}
