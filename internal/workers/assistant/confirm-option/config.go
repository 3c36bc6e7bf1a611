// internal/workers/assistant/confirm-option/config.go
package confirmoption

import (
	"time"

	"assistant-workers/internal/models"
)

type Config struct {
	Timeout          time.Duration
	EmailEnabled     bool
	SMSEnabled       bool
	DefaultAttendees []string
	InputSchema      map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout:          15 * time.Second,
		DefaultAttendees: append([]string(nil), models.DefaultTeamMembers...),
	}
}
