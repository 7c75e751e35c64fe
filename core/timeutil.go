package core

import (
	"time"

	"github.com/pkg/errors"
)

const (
	DateLayout = "2006-01-02" // yyyy-MM-dd
	TimeLayout = "15:04"      // HH:mm
)

// NowFunc returns the current wall-clock time. Services take one so tests can pin the clock.
type NowFunc func() time.Time

// FormatDate formats `t` as a calendar day in its own location.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTime formats `t` as a zero-padded HH:mm clock time in its own location.
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }

// IsValidTime reports whether `s` is a zero-padded 24h HH:mm time.
// Zero padding matters: window checks compare these strings lexicographically.
func IsValidTime(s string) bool {
	return hhmmRegex.MatchString(s)
}

// IsValidDate reports whether `s` is an existing calendar day formatted as yyyy-MM-dd.
func IsValidDate(s string) bool {
	if !isoDateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// MinutesBetween returns the number of minutes from `start` to `end` (both HH:mm).
// The result is negative when `end` is earlier than `start`.
func MinutesBetween(start, end string) (int, error) {
	s, err := time.Parse(TimeLayout, start)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing start time %q", start)
	}
	e, err := time.Parse(TimeLayout, end)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing end time %q", end)
	}
	return int(e.Sub(s) / time.Minute), nil
}
