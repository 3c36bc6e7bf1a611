// internal/common/genai/client.go
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httpclient "assistant-workers/internal/common/http"
)

var (
	ErrGenerationFailed = errors.New("GENERATION_FAILED")
	ErrTimeout          = errors.New("LLM_TIMEOUT")
)

type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxRetries  int
	MaxTokens   int
	Temperature float64
}

// Client calls the GenAI generate endpoint and returns the raw completion text.
type Client struct {
	config *Config
	http   *httpclient.Client
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func NewClient(config *Config) *Client {
	opts := []httpclient.ClientOption{httpclient.WithMaxRetries(config.MaxRetries)}
	if config.APIKey != "" {
		opts = append(opts, httpclient.WithHeader("Authorization", "Bearer "+config.APIKey))
	}
	return &Client{
		config: config,
		http:   httpclient.NewClient(config.Timeout, opts...),
	}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Prompt:      prompt,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 500
	}

	var resp generateResponse
	err := c.http.PostJSON(ctx, strings.TrimRight(c.config.BaseURL, "/")+"/api/ai/generate", req, &resp)
	if err != nil {
		if errors.Is(err, httpclient.ErrTimeout) {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return resp.Text, nil
}
