package task

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig controls the retry wrapper around a handler.
type RetryConfig struct {
	Attempts  int           // total tries, default 3
	BaseDelay time.Duration // delay before the second try, doubled per retry, default 500ms
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.Attempts < 1 {
		c.Attempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	return c
}

// WithRetry wraps a handler with exponential-backoff retries. The context is
// honored between attempts, so a cancelled caller stops retrying immediately.
func WithRetry(h Handler, cfg RetryConfig) Handler {
	cfg = cfg.withDefaults()

	return HandlerFunc(func(ctx context.Context, req Request) (Result, error) {
		var lastErr error
		delay := cfg.BaseDelay

		for attempt := 1; attempt <= cfg.Attempts; attempt++ {
			res, err := h.Handle(ctx, req)
			if err == nil {
				return res, nil
			}
			lastErr = err

			if attempt == cfg.Attempts {
				break
			}

			select {
			case <-ctx.Done():
				return Result{}, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		return Result{}, fmt.Errorf("task: %s handler failed after %d attempts: %w",
			req.Kind, cfg.Attempts, lastErr)
	})
}
