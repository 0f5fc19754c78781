// Package price fits a log-price decomposition (trend, weekly cycle, daily
// cycle by season and weekend) to an hourly wholesale price series and
// synthesises scaled price profiles from the fitted components.
package price

import (
	"fmt"
	"time"

	"heatpump-economics/internal/model"
)

// Season is a calendar quarter grouping of months.
type Season int

const (
	Winter Season = iota // Dec, Jan, Feb
	Spring               // Mar, Apr, May
	Summer               // Jun, Jul, Aug
	Autumn               // Sep, Oct, Nov
)

var seasonNames = [...]string{"winter", "spring", "summer", "autumn"}

func (s Season) String() string {
	if s < Winter || s > Autumn {
		return "unknown"
	}
	return seasonNames[s]
}

// ParseSeason is the inverse of Season.String.
func ParseSeason(name string) (Season, error) {
	for i, n := range seasonNames {
		if n == name {
			return Season(i), nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", name)
}

// SeasonOf maps a month onto its season.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.December, time.January, time.February:
		return Winter
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	default:
		return Autumn
	}
}

// Features are the calendar columns attached to every hourly step.
// Index is the zero-based position within the annotated series.
type Features struct {
	Time    time.Time  `json:"datetime"`
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Weekday int        `json:"weekday"`
	Day     int        `json:"day"`
	Hour    int        `json:"hour"`
	Index   int        `json:"int_time_step"`
	Season  Season     `json:"-"`
	Weekend bool       `json:"weekend"`
	Winter  bool       `json:"winter"`
	Spring  bool       `json:"spring"`
	Summer  bool       `json:"summer"`
	Autumn  bool       `json:"autumn"`
}

// CycleKey identifies one cell of the daily cycle table.
type CycleKey struct {
	Season  Season
	Weekend bool
	Hour    int
}

// Key returns the daily cycle cell the step belongs to.
func (f Features) Key() CycleKey {
	return CycleKey{Season: f.Season, Weekend: f.Weekend, Hour: f.Hour}
}

// Annotate computes Features for each timestamp, numbering them in order.
func Annotate(times []time.Time) []Features {
	out := make([]Features, len(times))
	for i, ts := range times {
		s := SeasonOf(ts.Month())
		out[i] = Features{
			Time:    ts,
			Year:    ts.Year(),
			Month:   ts.Month(),
			Weekday: model.Weekday(ts),
			Day:     ts.Day(),
			Hour:    ts.Hour(),
			Index:   i,
			Season:  s,
			Weekend: model.IsWeekend(ts),
			Winter:  s == Winter,
			Spring:  s == Spring,
			Summer:  s == Summer,
			Autumn:  s == Autumn,
		}
	}
	return out
}

// HourlyGrid returns every hour of year from Jan 1 00:00 to Dec 31 23:00 UTC.
func HourlyGrid(year int) []time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	n := int(end.Sub(start) / time.Hour)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}
