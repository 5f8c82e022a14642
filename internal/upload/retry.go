package upload

import (
	"context"
	"math/rand"
	"time"
)

// retry executes fn up to attempts times with jittered exponential backoff.
// The delay doubles after each failure with 0-50% random jitter added so
// parallel CI jobs do not hammer the API in lockstep.
func retry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var lastErr error
	delay := base
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if ctx.Err() != nil {
			return lastErr
		}
		jitter := time.Duration(rand.Int63n(int64(delay / 2)))
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay + jitter):
		}
		delay *= 2
	}
	return lastErr
}
