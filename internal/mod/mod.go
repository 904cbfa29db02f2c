package mod

import (
	"errors"
	"fmt"
	"time"
)

// TimeLayout is the portal's release timestamp format. Only millisecond
// precision is significant; the trailing three digits are always zero.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// ErrInvalidTime is returned by ParseTime for values it cannot read.
var ErrInvalidTime = errors.New("invalid time")

// Release is one published version of a mod.
type Release struct {
	Version    string
	ReleasedAt time.Time
}

// Info is the release history of a mod as returned by the portal.
type Info struct {
	Name     string
	Releases []Release
}

// Window bounds release times. Both bounds are exclusive.
type Window struct {
	After  time.Time
	Before time.Time
}

// DefaultWindow returns the window used when no bounds are given:
// everything after the first millisecond of the Unix epoch and before
// one year from now.
func DefaultWindow(now time.Time) Window {
	return Window{
		After:  time.UnixMilli(1).UTC(),
		Before: now.AddDate(1, 0, 0),
	}
}

// Contains reports whether t lies strictly inside the window.
func (w Window) Contains(t time.Time) bool {
	return t.After(w.After) && t.Before(w.Before)
}

// ParseTime reads a timestamp in TimeLayout. Any RFC 3339 value is
// accepted as well; values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05.000000", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: expected format %s", ErrInvalidTime, s, TimeLayout)
}

// FormatTime renders t in TimeLayout, in UTC, at millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(TimeLayout)
}

// Match pairs a mod name with the release that satisfied the window.
type Match struct {
	Name    string
	Release Release
}
