package demand

import (
	"errors"
	"fmt"
	"math"
)

// Process produces one day of quarter-hour demand fractions.
type Process interface {
	Name() string
	DayPattern() ([]float64, error)
}

// BatchProcess runs fixed on/off cycles inside a daily window:
// - no demand before HourOn
// - as many whole LengthOn+LengthOff cycles as fit into [HourOn, HourOff)
// - no demand for the rest of the day (a partial trailing cycle is dropped)
//
// All values are hours and may be fractional in quarter-hour steps.
type BatchProcess struct {
	HourOn    float64 `json:"hour_on" yaml:"hour_on"`
	HourOff   float64 `json:"hour_off" yaml:"hour_off"`
	LengthOn  float64 `json:"length_on" yaml:"length_on"`
	LengthOff float64 `json:"length_off" yaml:"length_off"`
}

func (b BatchProcess) Name() string { return "batch" }

func (b BatchProcess) Validate() error {
	if b.HourOn < 0 || b.HourOn > 24 || b.HourOff < 0 || b.HourOff > 24 {
		return errors.New("hour_on and hour_off must be in [0, 24]")
	}
	if b.LengthOn < 0 || b.LengthOff < 0 {
		return errors.New("length_on and length_off must be >= 0")
	}
	if b.LengthOn+b.LengthOff <= 0 {
		return errors.New("length_on + length_off must be > 0")
	}
	return nil
}

// BatchesPerDay is the number of whole cycles that fit into the window.
// A window shorter than one cycle (or an inverted window) fits none.
func (b BatchProcess) BatchesPerDay() int {
	n := math.Floor((b.HourOff - b.HourOn) / (b.LengthOn + b.LengthOff))
	if n < 0 {
		return 0
	}
	return int(n)
}

func (b BatchProcess) DayPattern() ([]float64, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	on := int(b.LengthOn * StepsPerHour)
	off := int(b.LengthOff * StepsPerHour)

	day := make([]float64, int(b.HourOn*StepsPerHour), StepsPerDay)
	for i := 0; i < b.BatchesPerDay(); i++ {
		for j := 0; j < on; j++ {
			day = append(day, 1)
		}
		for j := 0; j < off; j++ {
			day = append(day, 0)
		}
	}
	if len(day) > StepsPerDay {
		return nil, fmt.Errorf("batch cycles overrun the day (%d steps)", len(day))
	}
	for len(day) < StepsPerDay {
		day = append(day, 0)
	}
	return day, nil
}

// ContinuousProcess runs all day with a per-hour demand fraction.
type ContinuousProcess struct {
	HourlyDemand []float64 `json:"hourly_demand" yaml:"hourly_demand"`
}

// ConstantProcess is a continuous process at full load around the clock.
func ConstantProcess() ContinuousProcess {
	h := make([]float64, 24)
	for i := range h {
		h[i] = 1
	}
	return ContinuousProcess{HourlyDemand: h}
}

func (c ContinuousProcess) Name() string { return "continuous" }

func (c ContinuousProcess) Validate() error {
	if len(c.HourlyDemand) != 24 {
		return fmt.Errorf("hourly_demand needs 24 values, got %d", len(c.HourlyDemand))
	}
	for h, v := range c.HourlyDemand {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("hourly_demand[%d]=%v must be in [0, 1]", h, v)
		}
	}
	return nil
}

func (c ContinuousProcess) DayPattern() ([]float64, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	day := make([]float64, 0, StepsPerDay)
	for _, v := range c.HourlyDemand {
		for j := 0; j < StepsPerHour; j++ {
			day = append(day, v)
		}
	}
	return day, nil
}
