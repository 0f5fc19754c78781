package price

import "math"

// Expand brings a coarse series to a finer resolution by repeating every
// value repeat times (no interpolation) and multiplying by factor.
func Expand(values []float64, repeat int, factor float64) []float64 {
	if repeat < 1 {
		repeat = 1
	}
	out := make([]float64, 0, len(values)*repeat)
	for _, v := range values {
		for j := 0; j < repeat; j++ {
			out = append(out, v*factor)
		}
	}
	return out
}

// Series is an electricity price series in currency/MWh paired with a demand
// profile: either one constant value broadcast over every step or a profile
// at the demand resolution.
type Series struct {
	constant   float64
	values     []float64
	isConstant bool
}

// Constant broadcasts v over any number of steps.
func Constant(v float64) Series {
	return Series{constant: v, isConstant: true}
}

// Profile wraps per-step values.
func Profile(values []float64) Series {
	return Series{values: values}
}

func (s Series) IsConstant() bool { return s.isConstant }

// Len is the number of steps the series can supply; -1 means unbounded.
func (s Series) Len() int {
	if s.isConstant {
		return -1
	}
	return len(s.values)
}

// MissingCount is the number of NaN values in the series.
func (s Series) MissingCount() int {
	if s.isConstant {
		if math.IsNaN(s.constant) {
			return 1
		}
		return 0
	}
	n := 0
	for _, v := range s.values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Align pairs the series with n demand steps. Pairing is zip-to-shortest: a
// profile shorter than n supplies only its own length, and the caller must
// drop the unpaired demand steps. The returned slice has the paired length.
func (s Series) Align(n int) []float64 {
	if s.isConstant {
		out := make([]float64, n)
		for i := range out {
			out[i] = s.constant
		}
		return out
	}
	if len(s.values) < n {
		n = len(s.values)
	}
	return s.values[:n]
}

// Values returns a copy of the per-step values of a profile, or nil for a constant.
func (s Series) Values() []float64 {
	if s.isConstant {
		return nil
	}
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}
