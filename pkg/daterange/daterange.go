package daterange

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateRange is a rolling window anchored to "now". Only the offset is
// stored; Start and End are recomputed from the clock on every call so a
// long-lived process never serves a stale window.
type DateRange struct {
	years  int
	months int
	days   int
	now    func() time.Time
}

func New(years, months, days int) *DateRange {
	return &DateRange{
		years:  years,
		months: months,
		days:   days,
		now:    time.Now,
	}
}

// Months returns a window reaching the given number of months back from now.
func Months(months int) *DateRange {
	return New(0, months, 0)
}

// End returns today's date formatted as YYYY-MM-DD.
func (d *DateRange) End() string {
	return d.now().Format(dateLayout)
}

// Start returns today minus the stored offset, formatted as YYYY-MM-DD.
func (d *DateRange) Start() string {
	return d.now().AddDate(-d.years, -d.months, -d.days).Format(dateLayout)
}

// QueryString formats the window for the trends API date parameter:
// "YYYY-MM-DD YYYY-MM-DD", start first.
func (d *DateRange) QueryString() string {
	return fmt.Sprintf("%s %s", d.Start(), d.End())
}
