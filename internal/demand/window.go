package demand

import (
	"fmt"
	"time"

	"heatpump-economics/internal/model"
)

// WindowKind selects a display sub-range of a yearly series.
type WindowKind string

const (
	WindowFullWeek WindowKind = "full_week"
	WindowWeekend  WindowKind = "weekend"
	WindowWeekday  WindowKind = "weekday"
)

// WindowBounds returns the inclusive [start, end] of the window:
// - full_week: the first Monday 00:00 through Sunday 23:45
// - weekend: the first Saturday 00:00 through Sunday 23:45
// - weekday: the first Tuesday, one day
func WindowBounds(times []time.Time, kind WindowKind) (time.Time, time.Time, error) {
	var weekday, days int
	switch kind {
	case WindowFullWeek, "":
		weekday, days = 0, 7
	case WindowWeekend:
		weekday, days = 5, 2
	case WindowWeekday:
		weekday, days = 1, 1
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown window %q", kind)
	}
	for _, ts := range times {
		if model.Weekday(ts) != weekday {
			continue
		}
		first := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
		last := first.AddDate(0, 0, days).Add(-Step)
		return first, last, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("series has no day matching window %q", kind)
}

// Window cuts the points falling into the selected window.
func Window(points []model.DemandPoint, kind WindowKind) ([]model.DemandPoint, error) {
	times := make([]time.Time, len(points))
	for i, p := range points {
		times[i] = p.Time
	}
	first, last, err := WindowBounds(times, kind)
	if err != nil {
		return nil, err
	}
	out := make([]model.DemandPoint, 0, StepsPerDay*7)
	for _, p := range points {
		if !p.Time.Before(first) && !p.Time.After(last) {
			out = append(out, p)
		}
	}
	return out, nil
}
