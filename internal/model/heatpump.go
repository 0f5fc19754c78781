package model

import (
	"errors"
	"fmt"
)

// HoursPerYear is the upper bound for annual operating hours.
const HoursPerYear = 8760

// TemperaturePair holds heat source and heat sink temperatures in Celsius.
type TemperaturePair struct {
	SourceC float64 `json:"source_temp_c" yaml:"source_temp_c"`
	SinkC   float64 `json:"sink_temp_c" yaml:"sink_temp_c"`
}

// Validate rejects pairs for which the COP is undefined or negative.
func (p TemperaturePair) Validate() error {
	if p.SinkC <= p.SourceC {
		return fmt.Errorf("sink temperature (%.1f C) must be above source temperature (%.1f C)", p.SinkC, p.SourceC)
	}
	return nil
}

// Lift is the temperature difference the heat pump has to bridge.
func (p TemperaturePair) Lift() float64 {
	return p.SinkC - p.SourceC
}

// HeatPumpSpec is a Carnot heat pump derated by an exergetic efficiency.
type HeatPumpSpec struct {
	Temperatures        TemperaturePair
	ExergeticEfficiency float64
}

func (h HeatPumpSpec) Validate() error {
	if err := h.Temperatures.Validate(); err != nil {
		return err
	}
	if h.ExergeticEfficiency <= 0 || h.ExergeticEfficiency > 1 {
		return errors.New("ExergeticEfficiency must be in (0, 1]")
	}
	return nil
}

// EconomicParams defines the economic frame of an investment decision.
// Units:
// - InterestRate: decimal (0.05 = 5%)
// - LifetimeYears: years
// - HeatPricePerMWh, ElectricityPricePerMWh: currency/MWh
// - OperatingHours: full-load hours per year
type EconomicParams struct {
	InterestRate           float64
	LifetimeYears          float64
	HeatPricePerMWh        float64
	ElectricityPricePerMWh float64
	OperatingHours         float64
}

func (e EconomicParams) Validate() error {
	if e.InterestRate <= 0 {
		return errors.New("InterestRate must be > 0")
	}
	if e.LifetimeYears <= 0 {
		return errors.New("LifetimeYears must be > 0")
	}
	if e.HeatPricePerMWh < 0 {
		return errors.New("HeatPricePerMWh must be >= 0")
	}
	if e.ElectricityPricePerMWh < 0 {
		return errors.New("ElectricityPricePerMWh must be >= 0")
	}
	if e.OperatingHours < 0 || e.OperatingHours > HoursPerYear {
		return fmt.Errorf("OperatingHours must be in [0, %d]", HoursPerYear)
	}
	return nil
}
