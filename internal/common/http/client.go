// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrTimeout = errors.New("request timed out")
)

// StatusError is returned when the server answers with a non-2xx status after all retries.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client is a JSON HTTP client with exponential backoff on 429, 5xx and transport errors.
type Client struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	headers    map[string]string
}

type ClientOption func(*Client)

func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithBaseDelay sets the first backoff delay; later attempts double it.
func WithBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.baseDelay = d }
}

func WithHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers[key] = value }
}

func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseDelay:  100 * time.Millisecond,
		headers:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends body as JSON and decodes a 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, url, payload, out)
}

// GetJSON issues a GET and decodes a 2xx response into out.
func (c *Client) GetJSON(ctx context.Context, url string, out interface{}) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrTimeout
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
				return ErrTimeout
			}
			lastErr = err
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(snippet)}
			if !statusErr.Retryable() {
				return statusErr
			}
			lastErr = statusErr
			continue
		}

		err = decode(resp, out)
		resp.Body.Close()
		return err
	}

	return lastErr
}

func decode(resp *http.Response, out interface{}) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
