// File: internal/services/ai/retry.go
package ai

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// retry runs call until it succeeds, fails permanently, or the attempts
// configured in c are used up. Only transient AIErrors are retried.
func retry(ctx context.Context, c *Config, call func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(c.RetryDelay):
			}
		}

		err := call(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		var aiErr *AIError
		if ctx.Err() != nil || !errors.As(err, &aiErr) || !aiErr.Transient() {
			return err
		}
	}
	return lastErr
}
