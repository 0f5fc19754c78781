package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PriceStats summarises a price series. NaN values are counted in Missing
// and excluded from every other field.
type PriceStats struct {
	Count   int `json:"count"`
	Missing int `json:"missing"`

	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`
}

// Summarize computes the statistics of values. Percentiles interpolate
// linearly on the empirical distribution (stat.LinInterp).
func Summarize(values []float64) PriceStats {
	s := PriceStats{}
	vals := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			s.Missing++
			continue
		}
		vals = append(vals, v)
	}
	s.Count = len(vals)
	if len(vals) == 0 {
		return s
	}

	sort.Float64s(vals)
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	s.Mean = stat.Mean(vals, nil)
	s.P05 = stat.Quantile(0.05, stat.LinInterp, vals, nil)
	s.P95 = stat.Quantile(0.95, stat.LinInterp, vals, nil)
	s.SpreadP95P05 = s.P95 - s.P05
	return s
}
