// internal/workers/assistant/send-option-summary/config.go
package sendoptionsummary

import (
	"time"

	"assistant-workers/internal/models"
)

type Config struct {
	Timeout           time.Duration
	Enabled           bool
	DefaultRecipients []string
	InputSchema       map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           15 * time.Second,
		Enabled:           true,
		DefaultRecipients: append([]string(nil), models.DefaultTeamMembers...),
	}
}
