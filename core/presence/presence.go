// Package presence decides whether attendance may be recorded for a session at a given instant.
package presence

import (
	"context"
	"time"

	"github.com/trezcool/presence/core"
)

// DefaultWindow is used until an administrator configures another one.
var DefaultWindow = Window{Start: "07:30", End: "08:00"}

// Window is the daily interval, in local HH:mm, during which attendance may be recorded.
// Both bounds are inclusive.
type Window struct {
	Start string `json:"presenceStartTime" validate:"required,hhmm"`
	End   string `json:"presenceEndTime" validate:"required,hhmm"`
}

// Validate checks both bounds and that the window is not empty.
func (w Window) Validate() error {
	if err := core.ValidateStruct(w); err != nil {
		return err
	}
	if w.Start >= w.End {
		return core.NewFieldValidationError("presenceEndTime", "end time must be after start time")
	}
	return nil
}

// Contains reports whether the HH:mm time `hhmm` falls inside the window.
// Zero-padded HH:mm strings order lexicographically the way clock times do.
func (w Window) Contains(hhmm string) bool {
	return w.Start <= hhmm && hhmm <= w.End
}

// ExpiredError builds the error returned when a write happens outside the window.
func (w Window) ExpiredError() error {
	return &core.PresenceWindowExpiredError{Start: w.Start, End: w.End}
}

// CanMark reports whether attendance for a session held on `sessionDate` (yyyy-MM-dd)
// may be recorded at `now`: same local calendar day, and local time of day inside `w`.
func CanMark(sessionDate string, now time.Time, w Window) bool {
	if core.FormatDate(now) != sessionDate {
		return false
	}
	return w.Contains(core.FormatTime(now))
}

// Watch evaluates `check` immediately, then every `interval`, and sends its value on the
// returned channel whenever it changes. The channel is closed once `ctx` is done.
func Watch(ctx context.Context, interval time.Duration, check func() bool) <-chan bool {
	ch := make(chan bool, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := check()
		ch <- last
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if v := check(); v != last {
					last = v
					select {
					case ch <- v:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch
}
