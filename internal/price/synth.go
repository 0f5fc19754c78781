package price

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"heatpump-economics/internal/model"
)

// ScalingFactors stretch the fitted components of a synthetic profile.
// Overall scales the spread around the target mean, not the level.
type ScalingFactors struct {
	Trend   float64 `json:"trend" yaml:"trend"`
	Weekly  float64 `json:"weekly" yaml:"weekly"`
	Daily   float64 `json:"daily" yaml:"daily"`
	Overall float64 `json:"overall" yaml:"overall"`
}

// DefaultFactors reproduces the fitted shape.
func DefaultFactors() ScalingFactors {
	return ScalingFactors{Trend: 1, Weekly: 1, Daily: 1, Overall: 1}
}

func (f ScalingFactors) Validate() error {
	for name, v := range map[string]float64{"trend": f.Trend, "weekly": f.Weekly, "daily": f.Daily, "overall": f.Overall} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s factor must be a finite value >= 0", name)
		}
	}
	return nil
}

// SynthRow is one hour of a synthetic profile.
type SynthRow struct {
	Features
	Price float64 `json:"p"`
}

// Synthesis is a generated hourly price profile.
// Fallbacks counts hours whose daily cycle cell was absent from the fit.
type Synthesis struct {
	Year      int            `json:"year"`
	Mean      float64        `json:"mean"`
	Factors   ScalingFactors `json:"scaling_factors"`
	Rows      []SynthRow     `json:"rows"`
	Fallbacks int            `json:"daily_cycle_fallbacks"`
}

// Points returns the profile as price points.
func (s *Synthesis) Points() []model.PricePoint {
	out := make([]model.PricePoint, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = model.PricePoint{Time: r.Time, Price: r.Price}
	}
	return out
}

// Values returns the bare hourly prices.
func (s *Synthesis) Values() []float64 {
	out := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = r.Price
	}
	return out
}

// Synthesize builds an hourly profile for year from fitted params:
//
//	log p = trend*f.Trend + weekly*f.Weekly + daily*f.Daily
//	p     = (exp(log p) - mean(exp(log p))) * f.Overall + mean
//
// so the profile mean equals mean whatever the factors are.
func Synthesize(params Params, mean float64, f ScalingFactors, year int) (*Synthesis, error) {
	if year < 1 {
		return nil, fmt.Errorf("invalid year %d", year)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if params.Daily.Len() == 0 {
		return nil, errors.New("params have an empty daily cycle")
	}

	feats := Annotate(HourlyGrid(year))
	levels := make([]float64, len(feats))
	fallbacks := 0
	for i, ft := range feats {
		trend := params.Trend.At(ft.Index) * f.Trend
		weekly := params.Weekly.At(ft.Index) * f.Weekly
		daily, fb := params.Daily.Resolve(ft.Key())
		if fb {
			fallbacks++
		}
		levels[i] = math.Exp(trend + weekly + daily*f.Daily)
	}

	avg := stat.Mean(levels, nil)
	out := &Synthesis{
		Year:      year,
		Mean:      mean,
		Factors:   f,
		Rows:      make([]SynthRow, len(feats)),
		Fallbacks: fallbacks,
	}
	for i, ft := range feats {
		out.Rows[i] = SynthRow{Features: ft, Price: (levels[i]-avg)*f.Overall + mean}
	}
	return out, nil
}
