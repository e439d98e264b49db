package daterange

import (
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDateRange_StartEnd(t *testing.T) {
	dr := Months(6)
	dr.now = fixedClock(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC))

	if got := dr.End(); got != "2026-02-10" {
		t.Errorf("End() = %q, want 2026-02-10", got)
	}
	if got := dr.Start(); got != "2025-08-10" {
		t.Errorf("Start() = %q, want 2025-08-10", got)
	}
	if got := dr.QueryString(); got != "2025-08-10 2026-02-10" {
		t.Errorf("QueryString() = %q", got)
	}
}

func TestDateRange_RecomputedPerCall(t *testing.T) {
	dr := Months(1)

	current := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dr.now = func() time.Time { return current }

	first := dr.End()
	current = current.AddDate(0, 0, 1)
	second := dr.End()

	if first == second {
		t.Errorf("End() cached across calls: %q == %q", first, second)
	}
	if second != "2026-03-02" {
		t.Errorf("End() = %q after clock advance, want 2026-03-02", second)
	}
}

func TestDateRange_DayOffset(t *testing.T) {
	dr := New(0, 0, 30)
	dr.now = fixedClock(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))

	if got := dr.Start(); got != "2026-01-01" {
		t.Errorf("Start() = %q, want 2026-01-01", got)
	}
}
