// Package retry provides exponential backoff with jitter for calls to the
// generation service.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/dtnitsch/timeline-digest/pkg/llm"
)

// Config holds the retry policy.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultConfig is three retries starting at one second.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
	}
}

// WithBackoff runs op, retrying retryable failures with exponential backoff
// plus jitter. Non-retryable errors and context cancellation return
// immediately.
func WithBackoff(ctx context.Context, cfg Config, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			return fmt.Errorf("retry: giving up after %d attempts: %w", attempt+1, err)
		}

		delay := cfg.BaseDelay * time.Duration(1<<attempt)
		if cfg.BaseDelay > 0 {
			delay += time.Duration(rand.Int63n(int64(cfg.BaseDelay)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

// Retryable reports whether a failure is worth another attempt: server-side
// errors and rate limiting are, client errors and cancellation are not.
// Transport-level failures without a status code are retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}

	return true
}
