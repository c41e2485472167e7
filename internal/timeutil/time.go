package timeutil

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sobadon/cyberd/internal/errutil"
)

// ParseClock parses a daily send time given as "HH:MM" (24h).
func ParseClock(s string) (hour int, min int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, errors.Wrap(errutil.ErrTimeParse, err.Error())
	}
	return t.Hour(), t.Minute(), nil
}

// NextClock returns the next occurrence of hour:min strictly after now.
func NextClock(now time.Time, hour, min int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Greeting returns the salutation for mail composed at t.
func Greeting(t time.Time) string {
	switch {
	case t.Hour() < 12:
		return "Good morning"
	case t.Hour() < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// FormatClock renders hour:min back to the "HH:MM" config form.
func FormatClock(hour, min int) string {
	return fmt.Sprintf("%02d:%02d", hour, min)
}
