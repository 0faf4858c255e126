package utils

import (
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
// Delay is fixed between attempts: local retries stay short and bounded,
// coarser backoff belongs to whatever schedules whole runs.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Logger      *Logger
}

// Do executes fn, retrying up to MaxAttempts times with a fixed delay.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("%s failed (attempt %d/%d): %v, retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, r.Delay)
			time.Sleep(r.Delay)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
