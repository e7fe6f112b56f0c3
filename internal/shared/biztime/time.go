// Package biztime provides business timezone calculations and civil dates.
//
// Billing works on calendar dates: a due date, an expiration date or "today"
// is a civil date in the business timezone. Civil dates are carried as
// time.Time values at midnight UTC so they compare, add and persist without
// any implicit Local timezone.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "America/Sao_Paulo"

	dateLayout   = "2006-01-02"
	periodLayout = "2006-01"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// Location returns the business timezone location, falling back to UTC when
// the configured zone could not be loaded.
func Location() *time.Location {
	if err := Init(""); err != nil || bizLocation == nil {
		return time.UTC
	}
	return bizLocation
}

// Clock yields the current instant and the current business date.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) Today() time.Time {
	return DateOf(time.Now().In(Location()))
}

// FixedClock always reports the same business date. Used by the CLI --date
// flag and by tests.
type FixedClock struct {
	Date time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Date.UTC()
}

func (c FixedClock) Today() time.Time {
	return DateOf(c.Date)
}

// DateOf drops the clock part of t, keeping its calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays moves a civil date by n calendar days.
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// AddMonths moves a civil date by n calendar months, clamping to the last
// day of the target month (Jan 31 + 1 month is Feb 28 or 29).
func AddMonths(date time.Time, n int) time.Time {
	y, m, d := DateOf(date).Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(date time.Time) string {
	return date.Format(dateLayout)
}

// YearMonth renders the reference period (YYYY-MM) a civil date falls in.
func YearMonth(date time.Time) string {
	return date.Format(periodLayout)
}

// ParseYearMonth validates a YYYY-MM reference period.
func ParseYearMonth(s string) (time.Time, error) {
	t, err := time.ParseInLocation(periodLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reference period %q: %w", s, err)
	}
	return t, nil
}
