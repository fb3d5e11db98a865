// Package schedule computes service-visit windows on the fixed
// business-hour grid.
package schedule

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Business hours are Monday through Friday, UTC hours 11 through 21
// inclusive. The range is a fixed-offset encoding of 08:00-18:00 BRT;
// offset or DST changes are not tracked.
const (
	openHour  = 11
	closeHour = 21
)

// IsBusinessHour reports whether t falls inside the scheduling window.
func IsBusinessHour(t time.Time) bool {
	u := t.UTC()
	switch u.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := u.Hour()
	return h >= openHour && h <= closeHour
}

// NextSlot returns the first instant at or after now that falls inside the
// scheduling window, with seconds zeroed. The walk advances whole hours and
// the window covers part of every week, so it terminates within 168 steps.
func NextSlot(now time.Time) time.Time {
	t := now.UTC().Truncate(time.Minute)
	for !IsBusinessHour(t) {
		t = t.Add(time.Hour)
	}
	return t
}

// ParseWindow combines the date and time parameters the platform extracted
// into a single UTC instant. A trailing "Z" on the time part is dropped
// before joining so mixed formats still concatenate cleanly.
func ParseWindow(dateStr, timeStr string) (time.Time, error) {
	s := dateStr + "T" + strings.TrimSuffix(timeStr, "Z")
	return dateparse.ParseIn(s, time.UTC)
}
