// internal/models/time.go
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day normalized once at the boundary from the wire
// formats "HH:MM" and "HH:MM:SS". Ordering and equality match lexical
// comparison of the zero-padded strings, so "23:00" and "23:00:00" are equal.
type ClockTime struct {
	seconds int
}

// ParseClockTime parses a 24-hour "HH:MM" or "HH:MM:SS" string.
// "24:00" is accepted as an end-of-day marker.
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ClockTime{}, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", raw)
	}

	fields := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 {
			return ClockTime{}, fmt.Errorf("invalid time %q: fields must be zero-padded", raw)
		}
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return ClockTime{}, fmt.Errorf("invalid time %q", raw)
		}
		fields[i] = value
	}

	hour, minute, second := fields[0], fields[1], fields[2]
	if hour > 24 || minute > 59 || second > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q: out of range", raw)
	}
	if hour == 24 && (minute != 0 || second != 0) {
		return ClockTime{}, fmt.Errorf("invalid time %q: only 24:00 is allowed past 23:59", raw)
	}

	return ClockTime{seconds: hour*3600 + minute*60 + second}, nil
}

// MustClockTime is a test and constant helper; it panics on invalid input.
func MustClockTime(raw string) ClockTime {
	ct, err := ParseClockTime(raw)
	if err != nil {
		panic(err)
	}
	return ct
}

// ClockTimeOf builds a ClockTime from numeric components.
func ClockTimeOf(hour, minute, second int) ClockTime {
	return ClockTime{seconds: hour*3600 + minute*60 + second}
}

func (c ClockTime) Hour() int   { return c.seconds / 3600 }
func (c ClockTime) Minute() int { return (c.seconds % 3600) / 60 }
func (c ClockTime) Second() int { return c.seconds % 60 }

// Before reports whether c is strictly earlier than other.
func (c ClockTime) Before(other ClockTime) bool { return c.seconds < other.seconds }

// Compare returns -1, 0 or 1, matching lexical comparison of the
// zero-padded wire strings.
func (c ClockTime) Compare(other ClockTime) int {
	switch {
	case c.seconds < other.seconds:
		return -1
	case c.seconds > other.seconds:
		return 1
	default:
		return 0
	}
}

// IsMidnight reports whether c is 00:00 or the 24:00 end-of-day marker.
func (c ClockTime) IsMidnight() bool { return c.seconds == 0 || c.seconds == 24*3600 }

// String renders "HH:MM", or "HH:MM:SS" when the time carries seconds.
func (c ClockTime) String() string {
	if c.Second() == 0 {
		return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// Date is a calendar date without a timezone, wire format "YYYY-MM-DD".
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return Date{t: t}, nil
}

// MustDate is a test helper; it panics on invalid input.
func MustDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf builds a Date from numeric components.
func DateOf(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Weekday returns the day of week in the 0=Sunday..6=Saturday convention
// used by schedule templates.
func (d Date) Weekday() int { return int(d.t.Weekday()) }

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t) / (24 * time.Hour))
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string { return d.t.Format(dateLayout) }

// At combines the date with a time of day in the given location, producing
// the single instant used for booking timestamps. A 24:00 clock time maps
// to midnight of the following day.
func (d Date) At(ct ClockTime, loc *time.Location) time.Time {
	day := d.t
	hour := ct.Hour()
	if hour == 24 {
		day = day.AddDate(0, 0, 1)
		hour = 0
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, ct.Minute(), ct.Second(), 0, loc)
}
