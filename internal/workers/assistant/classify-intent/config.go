// internal/workers/assistant/classify-intent/config.go
package classifyintent

import "time"

type Config struct {
	Timeout     time.Duration
	InputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
