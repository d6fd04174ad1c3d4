// Package retry provides exponential backoff for platform API calls.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"clipcast/internal/model"
)

// Config controls retry behavior.
type Config struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig matches the uploader's backoff schedule (roughly 1s, 2s, 4s).
var DefaultConfig = Config{
	MaxRetries:  3,
	InitialWait: time.Second,
	MaxWait:     10 * time.Second,
	Multiplier:  2.0,
}

// ForAttempts returns DefaultConfig with MaxRetries set from config.
func ForAttempts(maxRetries int) Config {
	c := DefaultConfig
	if maxRetries >= 0 {
		c.MaxRetries = maxRetries
	}
	return c
}

// Do retries fn up to MaxRetries times with exponential backoff.
// Only errors classified retryable by model.Retryable are retried; it
// returns immediately on terminal errors or context cancellation.
func Do[T any](ctx context.Context, c Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !model.Retryable(err) {
			return zero, err
		}

		if attempt < c.MaxRetries {
			wait := time.Duration(float64(c.InitialWait) * math.Pow(c.Multiplier, float64(attempt)))
			if wait > c.MaxWait {
				wait = c.MaxWait
			}
			log.Debug().Int("attempt", attempt+1).Dur("wait", wait).Err(err).Msg("retrying")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
	}
	return zero, lastErr
}
