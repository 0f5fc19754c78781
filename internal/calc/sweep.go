package calc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultSweepPoints is the resolution used for sensitivity curves.
const DefaultSweepPoints = 200

// Variable names one input of AllowableInvestmentPerKW that can be swept.
type Variable string

const (
	VarElectricityPrice    Variable = "electricity_price"
	VarHeatPrice           Variable = "heat_price"
	VarSinkTemperature     Variable = "sink_temperature"
	VarSourceTemperature   Variable = "source_temperature"
	VarOperatingHours      Variable = "operating_hours"
	VarInterestRate        Variable = "interest_rate"
	VarLifetime            Variable = "lifetime"
	VarExergeticEfficiency Variable = "exergetic_efficiency"
)

// Variables lists every sweepable input in display order.
var Variables = []Variable{
	VarElectricityPrice,
	VarHeatPrice,
	VarSinkTemperature,
	VarSourceTemperature,
	VarOperatingHours,
	VarInterestRate,
	VarLifetime,
	VarExergeticEfficiency,
}

// Inputs is the current operating point of a sensitivity analysis.
type Inputs struct {
	SourceC             float64
	SinkC               float64
	OperatingHours      float64
	HeatPricePerMWh     float64
	ElecPricePerMWh     float64
	InterestRate        float64
	LifetimeYears       float64
	ExergeticEfficiency float64
}

// AllowableInvestment evaluates AllowableInvestmentPerKW at this point.
func (in Inputs) AllowableInvestment() float64 {
	return AllowableInvestmentPerKW(in.SourceC, in.SinkC, in.OperatingHours, in.HeatPricePerMWh,
		in.ElecPricePerMWh, in.InterestRate, in.LifetimeYears, in.ExergeticEfficiency)
}

// Point is one (x, y) sample of a sweep.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SweepResult is a sensitivity curve plus the current operating point on it.
type SweepResult struct {
	Variable Variable `json:"variable"`
	Points   []Point  `json:"points"`
	Current  Point    `json:"current"`
}

// Range returns the default x range for sweeping v around in.
func (in Inputs) Range(v Variable) (lo, hi, current float64, err error) {
	switch v {
	case VarElectricityPrice:
		return in.ElecPricePerMWh - 50, in.ElecPricePerMWh + 50, in.ElecPricePerMWh, nil
	case VarHeatPrice:
		return in.HeatPricePerMWh - 50, in.HeatPricePerMWh + 50, in.HeatPricePerMWh, nil
	case VarSinkTemperature:
		return math.Trunc(in.SourceC) + 20, 250, in.SinkC, nil
	case VarSourceTemperature:
		return -10, math.Trunc(in.SinkC) - 20, in.SourceC, nil
	case VarOperatingHours:
		return in.OperatingHours - 1000, in.OperatingHours + 1000, in.OperatingHours, nil
	case VarInterestRate:
		return in.InterestRate - 0.001, in.InterestRate + 0.001, in.InterestRate, nil
	case VarLifetime:
		return in.LifetimeYears - 10, in.LifetimeYears + 10, in.LifetimeYears, nil
	case VarExergeticEfficiency:
		return 0, 1, in.ExergeticEfficiency, nil
	default:
		return 0, 0, 0, fmt.Errorf("unsupported sweep variable: %q", v)
	}
}

// With returns a copy of in with v set to x.
func (in Inputs) With(v Variable, x float64) Inputs {
	out := in
	switch v {
	case VarElectricityPrice:
		out.ElecPricePerMWh = x
	case VarHeatPrice:
		out.HeatPricePerMWh = x
	case VarSinkTemperature:
		out.SinkC = x
	case VarSourceTemperature:
		out.SourceC = x
	case VarOperatingHours:
		out.OperatingHours = x
	case VarInterestRate:
		out.InterestRate = x
	case VarLifetime:
		out.LifetimeYears = x
	case VarExergeticEfficiency:
		out.ExergeticEfficiency = x
	}
	return out
}

// Sweep evaluates the allowable investment over n evenly spaced values of v.
// Points where the swept input leaves the valid domain (e.g. a non-positive
// interest rate) are still returned; their y may be non-finite.
func Sweep(in Inputs, v Variable, n int) (*SweepResult, error) {
	lo, hi, current, err := in.Range(v)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		n = DefaultSweepPoints
	}
	xs := floats.Span(make([]float64, n), lo, hi)
	res := &SweepResult{
		Variable: v,
		Points:   make([]Point, 0, n),
		Current:  Point{X: current, Y: in.AllowableInvestment()},
	}
	for _, x := range xs {
		res.Points = append(res.Points, Point{X: x, Y: in.With(v, x).AllowableInvestment()})
	}
	return res, nil
}

// SweepRelativePrice traces the break-even relative price over the sink or the
// source temperature while the other temperature stays fixed.
func SweepRelativePrice(in Inputs, v Variable, n int) (*SweepResult, error) {
	if v != VarSinkTemperature && v != VarSourceTemperature {
		return nil, fmt.Errorf("relative price sweep supports %q and %q, got %q", VarSinkTemperature, VarSourceTemperature, v)
	}
	lo, hi, current, err := in.Range(v)
	if err != nil {
		return nil, err
	}
	if n < 2 {
		n = DefaultSweepPoints
	}
	res := &SweepResult{
		Variable: v,
		Points:   make([]Point, 0, n),
		Current:  Point{X: current, Y: ProfitableRelativePrice(in.SourceC, in.SinkC, in.ExergeticEfficiency)},
	}
	for _, x := range floats.Span(make([]float64, n), lo, hi) {
		p := in.With(v, x)
		res.Points = append(res.Points, Point{X: x, Y: ProfitableRelativePrice(p.SourceC, p.SinkC, p.ExergeticEfficiency)})
	}
	return res, nil
}
