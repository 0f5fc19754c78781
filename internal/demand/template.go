// Package demand builds synthetic full-year heat demand profiles at
// quarter-hour resolution.
package demand

import (
	"errors"
	"fmt"
	"time"

	"heatpump-economics/internal/model"
)

const (
	// StepsPerHour is the template resolution (15 minutes).
	StepsPerHour = 4
	// StepsPerDay is the length of one daily pattern.
	StepsPerDay = 24 * StepsPerHour
	// Step is the spacing between template timestamps.
	Step = time.Hour / StepsPerHour

	// DefaultYear is the calendar year templates are laid on by default.
	DefaultYear = 2025
)

// Template is an empty full-year quarter-hour grid. Scale holds the per-step
// multiplier applied to a generated pattern: 1 on regular days and the weekend
// scale on Saturdays and Sundays when weekends are treated differently.
type Template struct {
	Year  int
	Times []time.Time
	Scale []float64
}

// NewTemplate lays out every quarter hour of year, Jan 1 00:00 through
// Dec 31 23:45 (UTC). weekendScale must be in [0, 1].
func NewTemplate(year int, weekendDifferent bool, weekendScale float64) (*Template, error) {
	if year < 1 {
		return nil, fmt.Errorf("invalid year %d", year)
	}
	if weekendDifferent && (weekendScale < 0 || weekendScale > 1) {
		return nil, errors.New("weekend scale must be in [0, 1]")
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	n := int(end.Sub(start) / Step)

	tpl := &Template{
		Year:  year,
		Times: make([]time.Time, n),
		Scale: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * Step)
		tpl.Times[i] = ts
		tpl.Scale[i] = 1
		if weekendDifferent && model.IsWeekend(ts) {
			tpl.Scale[i] = weekendScale
		}
	}
	return tpl, nil
}

// Len is the number of steps in the template.
func (t *Template) Len() int { return len(t.Times) }

// Days is the number of whole days covered.
func (t *Template) Days() int { return len(t.Times) / StepsPerDay }

// Generate repeats the process's daily pattern over every day of the template
// and applies the per-step scale. The pattern ignores the weekday; weekend
// handling happens only through the template scale.
func Generate(tpl *Template, proc Process) ([]model.DemandPoint, error) {
	if tpl == nil {
		return nil, errors.New("template is nil")
	}
	if proc == nil {
		return nil, errors.New("process is nil")
	}
	day, err := proc.DayPattern()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", proc.Name(), err)
	}
	if len(day) != StepsPerDay {
		return nil, fmt.Errorf("%s: day pattern has %d steps, want %d", proc.Name(), len(day), StepsPerDay)
	}

	out := make([]model.DemandPoint, tpl.Len())
	for i, ts := range tpl.Times {
		out[i] = model.DemandPoint{
			Time:   ts,
			Demand: day[i%StepsPerDay] * tpl.Scale[i],
		}
	}
	return out, nil
}
