// ABOUTME: Whole-day date and HH:MM time-of-day helpers.
// ABOUTME: Dates are UTC midnights; text format is DD-MM-YYYY.
package health

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the user-facing date format (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// ParseDate parses a DD-MM-YYYY string into a UTC midnight.
//
// A day past the end of its month resolves to the month's last day, so
// "31-02-2024" becomes 29 February 2024. Validation only range-checks the
// day against 1..31, and parsing has to accept whatever it lets through.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, Invalidf("date %q is not DD-MM-YYYY", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, Invalidf("date %q has a non-numeric day", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, Invalidf("date %q has a non-numeric month", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, Invalidf("date %q has a non-numeric year", s)
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, Invalidf("date %q is out of range", s)
	}

	if last := daysIn(time.Month(month), year); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current date as a UTC midnight.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (negative when b is before a).
// Counted on Unix seconds so spans beyond time.Duration's range stay exact.
func DaysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TimeOfDay is a wall-clock time stored as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, Invalidf("time %q is not HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, Invalidf("time %q has non-numeric hours", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, Invalidf("time %q has non-numeric minutes", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, Invalidf("time %q is out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
