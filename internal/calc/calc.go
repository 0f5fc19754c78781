// Package calc holds the closed-form heat pump economics used everywhere else:
// Carnot COP, annuity factor and the allowable investment per kW electric.
package calc

import "math"

// KelvinOffset converts Celsius to Kelvin. The models were calibrated with
// 273 rather than 273.15, so keep it.
const KelvinOffset = 273.0

// COP returns the coefficient of performance of a Carnot heat pump derated by
// the exergetic efficiency exEta. tl and th are source and sink in Celsius.
//
// The result is only meaningful for th > tl; callers validate the pair first
// (see model.TemperaturePair.Validate). For th == tl the result is +Inf and for
// th < tl it is negative.
func COP(tl, th, exEta float64) float64 {
	return 1 / (1 - (tl+KelvinOffset)/(th+KelvinOffset)) * exEta
}

// AnnuityFactor converts a level annual cash flow into its present value for
// interest rate r (decimal) and lifetime t (years). r must be > 0.
func AnnuityFactor(r, t float64) float64 {
	return (1 - 1/math.Pow(1+r, t)) / r
}

// AllowableInvestmentPerKW returns the upfront cost per kW electric whose
// annuity equals the annual savings against the alternative heat source.
//
// Units:
// - pTh, pEl: currency/MWh (converted to currency/kWh here)
// - h: full-load operating hours per year
// - r: decimal interest rate, t: lifetime in years
//
// A negative result means the heat pump does not pay off; it is not an error.
func AllowableInvestmentPerKW(tl, th, h, pTh, pEl, r, t, exEta float64) float64 {
	cop := COP(tl, th, exEta)
	f := AnnuityFactor(r, t)
	return (pTh*cop/1000 - pEl/1000) * h * f
}

// ProfitableRelativePrice is the electricity-to-alternative price ratio below
// which the heat pump is cheaper to operate. It equals the COP.
func ProfitableRelativePrice(tl, th, exEta float64) float64 {
	return COP(tl, th, exEta)
}

// BreakEvenHeatPrice is the alternative heat price at which the allowable
// investment is zero for the given electricity price.
func BreakEvenHeatPrice(tl, th, pEl, exEta float64) float64 {
	return pEl / COP(tl, th, exEta)
}
