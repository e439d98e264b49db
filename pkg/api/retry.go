package api

import (
	"context"
	"math/rand"
	"time"
)

// Backoff retries transient failures with exponential backoff plus uniform
// random jitter. The jitter spreads out retries from parallel callers so
// they do not hammer a rate-limited endpoint in lockstep.
type Backoff struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	jitter      time.Duration
}

// NewBackoff creates a retry policy. maxAttempts counts the first call, so
// 5 means one call plus up to four retries.
func NewBackoff(maxAttempts int, baseDelay, maxDelay, jitter time.Duration) *Backoff {
	return &Backoff{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		jitter:      jitter,
	}
}

// DefaultBackoff matches the pipeline's production policy: 5 attempts,
// waits of 2s doubling up to 60s, plus 0-2s jitter.
func DefaultBackoff() *Backoff {
	return NewBackoff(5, 2*time.Second, 60*time.Second, 2*time.Second)
}

// Execute runs fn until it succeeds, returns a permanent error, or the
// attempt budget is spent. After exhaustion the last error is returned
// unchanged, not wrapped, so callers can still inspect the original
// failure.
func (b *Backoff) Execute(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if IsPermanent(err) {
			return err
		}

		if attempt == b.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.delay(attempt)):
		}
	}

	return lastErr
}

// delay computes the wait before the next attempt: baseDelay doubled per
// attempt, capped at maxDelay, plus uniform jitter.
func (b *Backoff) delay(attempt int) time.Duration {
	d := b.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.maxDelay {
			d = b.maxDelay
			break
		}
	}

	if b.jitter > 0 {
		d += time.Duration(rand.Int63n(int64(b.jitter)))
	}

	return d
}
