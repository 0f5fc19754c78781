package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// DemandPoint is one step of a heat demand profile.
// Demand is a fraction of the nominal thermal capacity (0..1).
type DemandPoint struct {
	Time   time.Time `json:"datetime"`
	Demand float64   `json:"demand"`
}

// ValidateDemand checks that every demand value is finite and non-negative.
func ValidateDemand(points []DemandPoint) error {
	for i, p := range points {
		if p.Demand < 0 || math.IsNaN(p.Demand) || math.IsInf(p.Demand, 0) {
			return fmt.Errorf("demand at step %d (%s) must be a finite value >= 0, got %v",
				i, p.Time.Format(time.RFC3339), p.Demand)
		}
	}
	return nil
}

// PricePoint is one step of an electricity price series in currency/MWh.
// Missing source values are carried as NaN.
type PricePoint struct {
	Time  time.Time `json:"datetime"`
	Price float64   `json:"p"`
}

// NamedProfile is a demand profile saved under a user-chosen name together with
// the temperatures the heat pump would operate at for this process.
type NamedProfile struct {
	Name         string          `json:"name"`
	Temperatures TemperaturePair `json:"temperatures"`
	Points       []DemandPoint   `json:"profile"`
}

// Label is the display name used in comparison tables, e.g. "drying 30->90".
func (p NamedProfile) Label() string {
	return p.Name + " " + strconv.Itoa(int(p.Temperatures.SourceC)) + "->" + strconv.Itoa(int(p.Temperatures.SinkC))
}

// Demands returns the bare demand values.
func (p NamedProfile) Demands() []float64 {
	out := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		out[i] = pt.Demand
	}
	return out
}

// Weekday returns Monday=0 ... Sunday=6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return Weekday(t) >= 5
}
