package demand

import (
	"errors"
	"fmt"
	"math"

	"heatpump-economics/internal/model"
)

// FromPrebuilt lays a measured demand series onto the template. Values are
// normalised by their maximum, the last value is repeated once to close the
// year, and the result is cut (or padded with the last value) to the template
// length. The template scale is not applied. Blank, negative or non-finite
// values are rejected.
func FromPrebuilt(tpl *Template, values []float64) ([]model.DemandPoint, error) {
	if tpl == nil {
		return nil, errors.New("template is nil")
	}
	if len(values) == 0 {
		return nil, errors.New("prebuilt profile is empty")
	}
	peak := math.Inf(-1)
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("prebuilt profile value %d must be a finite value >= 0, got %v", i, v)
		}
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 || math.IsInf(peak, -1) {
		return nil, errors.New("prebuilt profile has no positive demand")
	}

	extended := make([]float64, 0, len(values)+1)
	for _, v := range values {
		extended = append(extended, v/peak)
	}
	last := extended[len(extended)-1]
	extended = append(extended, last)

	out := make([]model.DemandPoint, tpl.Len())
	for i, ts := range tpl.Times {
		v := last
		if i < len(extended) {
			v = extended[i]
		}
		out[i] = model.DemandPoint{Time: ts, Demand: v}
	}
	return out, nil
}
