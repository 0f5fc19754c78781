package price

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"heatpump-economics/internal/model"
)

const (
	// PriceFloor replaces non-positive prices before taking the logarithm.
	PriceFloor = 0.01
	// HoursPerWeek is the period of the weekly cycle.
	HoursPerWeek = 168
)

var (
	ErrNoData       = errors.New("price series is empty")
	ErrYearNotFound = errors.New("price series has no data for the requested year")
)

// TrendParams is the linear drift of log price over the time index.
type TrendParams struct {
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
}

// At evaluates the trend at time index i.
func (p TrendParams) At(i int) float64 {
	return p.Intercept + p.Slope*float64(i)
}

// WeeklyParams describe intercept + amplitude*|sin(i*pi/168 - phase)|.
type WeeklyParams struct {
	Intercept  float64 `json:"intercept"`
	Amplitude  float64 `json:"amplitude"`
	PhaseShift float64 `json:"phase_shift"`
}

// At evaluates the weekly cycle at time index i.
func (p WeeklyParams) At(i int) float64 {
	return p.Intercept + p.Amplitude*weeklyRegressor(i, p.PhaseShift)
}

func weeklyRegressor(i int, phase float64) float64 {
	return math.Abs(math.Sin(float64(i)*math.Pi/HoursPerWeek - phase))
}

// DailyCycle is the mean log-price residual per (season, weekend, hour).
// It is built once by Fit and read-only afterwards.
type DailyCycle struct {
	means  map[CycleKey]float64
	byHour map[int]float64
}

// DailyCycleEntry is the exported form of one table cell.
type DailyCycleEntry struct {
	Season  string  `json:"season"`
	Weekend bool    `json:"weekend"`
	Hour    int     `json:"hour"`
	Mean    float64 `json:"hourly_cycle_log"`
}

func newDailyCycle(means map[CycleKey]float64) DailyCycle {
	sums := map[int]float64{}
	counts := map[int]int{}
	for k, v := range means {
		sums[k.Hour] += v
		counts[k.Hour]++
	}
	byHour := make(map[int]float64, len(sums))
	for h, s := range sums {
		byHour[h] = s / float64(counts[h])
	}
	return DailyCycle{means: means, byHour: byHour}
}

// Lookup returns the fitted cell for k.
func (d DailyCycle) Lookup(k CycleKey) (float64, bool) {
	v, ok := d.means[k]
	return v, ok
}

// Resolve returns the cell for k, falling back to the mean of all cells with
// the same hour and then to zero. fallback reports whether k was missing.
func (d DailyCycle) Resolve(k CycleKey) (v float64, fallback bool) {
	if v, ok := d.means[k]; ok {
		return v, false
	}
	if v, ok := d.byHour[k.Hour]; ok {
		return v, true
	}
	return 0, true
}

// Len is the number of fitted cells.
func (d DailyCycle) Len() int { return len(d.means) }

// Entries lists the cells ordered by season, weekend flag and hour.
func (d DailyCycle) Entries() []DailyCycleEntry {
	keys := make([]CycleKey, 0, len(d.means))
	for k := range d.means {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Weekend != b.Weekend {
			return !a.Weekend
		}
		return a.Hour < b.Hour
	})
	out := make([]DailyCycleEntry, len(keys))
	for i, k := range keys {
		out[i] = DailyCycleEntry{Season: k.Season.String(), Weekend: k.Weekend, Hour: k.Hour, Mean: d.means[k]}
	}
	return out
}

func (d DailyCycle) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Entries())
}

func (d *DailyCycle) UnmarshalJSON(b []byte) error {
	var entries []DailyCycleEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	means := make(map[CycleKey]float64, len(entries))
	for _, e := range entries {
		season, err := ParseSeason(e.Season)
		if err != nil {
			return err
		}
		means[CycleKey{Season: season, Weekend: e.Weekend, Hour: e.Hour}] = e.Mean
	}
	*d = newDailyCycle(means)
	return nil
}

// Params is the full fitted decomposition.
type Params struct {
	Trend  TrendParams  `json:"trend"`
	Weekly WeeklyParams `json:"weekly_cycle"`
	Daily  DailyCycle   `json:"hourly_cycle"`
}

// FittedRow carries the per-hour decomposition of the source series.
// Price is NaN where the source value was missing; such rows are excluded
// from every estimate.
type FittedRow struct {
	Features
	Price      float64 `json:"p"`
	LogPrice   float64 `json:"log_p"`
	Trend      float64 `json:"trend"`
	Weekly     float64 `json:"weekly_cycle"`
	HourlyMean float64 `json:"hourly_mean"`
	Residual   float64 `json:"log_p_randomness"`
	CycleOnly  float64 `json:"p_cycle_only"`
}

// FitResult is the outcome of Fit for one source series and year.
type FitResult struct {
	Year   int         `json:"year"`
	Params Params      `json:"params"`
	Rows   []FittedRow `json:"-"`
}

// Fit decomposes the log of an hourly price series restricted to year (0 uses
// the whole series):
//  1. prices <= 0 are floored to PriceFloor and logged
//  2. OLS of log price on the time index gives the trend
//  3. the (weekday, hour) with the lowest mean detrended log price sets the
//     weekly phase shift
//  4. OLS of the detrended log price on |sin(i*pi/168 - phase)| gives the
//     weekly cycle
//  5. the remaining residual averaged by (season, weekend, hour) gives the
//     daily cycle
func Fit(points []model.PricePoint, year int) (*FitResult, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	sel := selectYear(points, year)
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}

	times := make([]time.Time, len(sel))
	for i, p := range sel {
		times[i] = p.Time
	}
	feats := Annotate(times)

	rows := make([]FittedRow, len(sel))
	var xs, ys []float64
	valid := make([]int, 0, len(sel))
	for i, p := range sel {
		rows[i] = FittedRow{Features: feats[i], Price: p.Price, LogPrice: math.NaN()}
		if math.IsNaN(p.Price) {
			continue
		}
		v := p.Price
		if v <= 0 {
			v = PriceFloor
		}
		rows[i].LogPrice = math.Log(v)
		valid = append(valid, i)
		xs = append(xs, float64(i))
		ys = append(ys, rows[i].LogPrice)
	}
	if len(valid) < 2 {
		return nil, fmt.Errorf("need at least 2 valid prices to fit, got %d", len(valid))
	}

	var params Params
	params.Trend.Intercept, params.Trend.Slope = stat.LinearRegression(xs, ys, nil, false)

	detrended := make([]float64, len(rows))
	for i := range rows {
		rows[i].Trend = params.Trend.At(i)
		detrended[i] = rows[i].LogPrice - rows[i].Trend
	}

	params.Weekly.PhaseShift = phaseShift(rows, detrended, valid)
	wx := make([]float64, len(valid))
	wy := make([]float64, len(valid))
	for j, i := range valid {
		wx[j] = weeklyRegressor(i, params.Weekly.PhaseShift)
		wy[j] = detrended[i]
	}
	params.Weekly.Intercept, params.Weekly.Amplitude = stat.LinearRegression(wx, wy, nil, false)

	residual := make([]float64, len(rows))
	sums := map[CycleKey]float64{}
	counts := map[CycleKey]int{}
	for i := range rows {
		rows[i].Weekly = params.Weekly.At(i)
		residual[i] = detrended[i] - rows[i].Weekly
	}
	for _, i := range valid {
		k := rows[i].Key()
		sums[k] += residual[i]
		counts[k]++
	}
	means := make(map[CycleKey]float64, len(sums))
	for k, s := range sums {
		means[k] = s / float64(counts[k])
	}
	params.Daily = newDailyCycle(means)

	for i := range rows {
		hm, _ := params.Daily.Resolve(rows[i].Key())
		rows[i].HourlyMean = hm
		rows[i].Residual = residual[i] - hm
		rows[i].CycleOnly = math.Exp(hm + rows[i].Weekly + rows[i].Trend)
	}

	return &FitResult{Year: year, Params: params, Rows: rows}, nil
}

// phaseShift finds the (weekday, hour) cell with the lowest mean detrended log
// price and converts the first time index falling into it to a phase angle.
func phaseShift(rows []FittedRow, detrended []float64, valid []int) float64 {
	var sums [7][24]float64
	var counts [7][24]int
	for _, i := range valid {
		sums[rows[i].Weekday][rows[i].Hour] += detrended[i]
		counts[rows[i].Weekday][rows[i].Hour]++
	}
	bestDay, bestHour := -1, -1
	best := math.Inf(1)
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			if counts[d][h] == 0 {
				continue
			}
			if m := sums[d][h] / float64(counts[d][h]); m < best {
				best, bestDay, bestHour = m, d, h
			}
		}
	}
	for _, r := range rows {
		if r.Weekday == bestDay && r.Hour == bestHour {
			return float64(r.Index) * math.Pi / HoursPerWeek
		}
	}
	return 0
}

// selectYear returns the points of year ordered by time; year 0 keeps all.
func selectYear(points []model.PricePoint, year int) []model.PricePoint {
	out := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if year == 0 || p.Time.Year() == year {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
