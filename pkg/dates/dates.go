// Package dates normalizes user-supplied date boundaries and entry
// durations. All range math resolves against an explicit IANA location so
// date-only boundaries land on the caller's calendar days, not the server's.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DurationRunning is the stored sentinel for an entry whose timer has not
// been stopped. It is never a real duration and must not enter any sum.
const DurationRunning int64 = -1

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006/01"
)

var ErrInvalidRange = errors.New("invalid_date_range")

// Duration returns elapsed whole seconds for a closed interval, or
// DurationRunning when end is absent. A closed interval never yields a
// negative value.
func Duration(start time.Time, end *time.Time) int64 {
	if end == nil {
		return DurationRunning
	}
	seconds := int64(end.Sub(start) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

// MonthBucket returns the "YYYY/MM" index key for t in its own location.
func MonthBucket(t time.Time) string {
	return t.Format(monthLayout)
}

// Location resolves an IANA zone name, defaulting to UTC for empty input.
func Location(name string) (*time.Location, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(trimmed)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", trimmed, err)
	}
	return loc, nil
}

// RangeBounds converts inclusive date-only boundaries into absolute
// instants in loc. The upper bound is normalized to the end of its calendar
// day so the whole last day is covered.
func RangeBounds(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDay(startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDay(endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return start, EndOfDay(end), nil
}

// ParseDay parses a "YYYY-MM-DD" value as midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, ErrInvalidRange
	}
	return parsed, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// DayKey formats an instant as its calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// DayCount returns the number of calendar days covered by [start, end]
// inclusive, both interpreted in start's location.
func DayCount(start, end time.Time) int {
	s := StartOfDay(start)
	e := StartOfDay(end.In(start.Location()))
	if e.Before(s) {
		return 0
	}
	count := 1
	for cursor := s; cursor.Before(e); cursor = cursor.AddDate(0, 0, 1) {
		count++
	}
	return count
}

// MonthWindow returns the absolute bounds of now's calendar month in loc.
func MonthWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	last := start.AddDate(0, 1, -1)
	return start, EndOfDay(last)
}
