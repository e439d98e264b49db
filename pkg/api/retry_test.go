package api

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastBackoff(attempts int) *Backoff {
	return NewBackoff(attempts, time.Millisecond, 4*time.Millisecond, 0)
}

func TestBackoff_SuccessAfterTransient(t *testing.T) {
	backoff := fastBackoff(5)

	attempts := 0
	err := backoff.Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return transientf("rate limit")
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected success, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestBackoff_PermanentStopsImmediately(t *testing.T) {
	backoff := fastBackoff(5)

	attempts := 0
	err := backoff.Execute(context.Background(), func() error {
		attempts++
		return permanentf("invalid API key")
	})

	if !IsPermanent(err) {
		t.Errorf("Expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestBackoff_TransientExhaustsAllAttempts(t *testing.T) {
	backoff := fastBackoff(5)

	original := transientf("503 service unavailable")
	attempts := 0
	err := backoff.Execute(context.Background(), func() error {
		attempts++
		return original
	})

	if attempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", attempts)
	}
	// The last error must surface unchanged so callers can tell
	// retry exhaustion apart from a fresh failure.
	if !errors.Is(err, original) {
		t.Errorf("Expected the original error back, got %v", err)
	}
}

func TestBackoff_UnknownErrorsAreRetried(t *testing.T) {
	backoff := fastBackoff(3)

	attempts := 0
	err := backoff.Execute(context.Background(), func() error {
		attempts++
		return errors.New("connection reset by peer")
	})

	if err == nil {
		t.Error("Expected error, got nil")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestBackoff_ContextCancellation(t *testing.T) {
	backoff := NewBackoff(5, 100*time.Millisecond, time.Second, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := backoff.Execute(ctx, func() error {
		return transientf("timeout")
	})

	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBackoff_DelayDoublesAndCaps(t *testing.T) {
	backoff := NewBackoff(6, 2*time.Second, 60*time.Second, 0)

	expected := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
	}
	for i, want := range expected {
		if got := backoff.delay(i + 1); got != want {
			t.Errorf("delay(%d) = %v, want %v", i+1, got, want)
		}
	}

	if got := backoff.delay(10); got != 60*time.Second {
		t.Errorf("delay(10) = %v, want 60s cap", got)
	}
}

func TestBackoff_JitterStaysInRange(t *testing.T) {
	backoff := NewBackoff(5, 2*time.Second, 60*time.Second, 2*time.Second)

	for i := 0; i < 50; i++ {
		d := backoff.delay(1)
		if d < 2*time.Second || d >= 4*time.Second {
			t.Fatalf("delay(1) = %v, want [2s, 4s)", d)
		}
	}
}
