package models

import (
	"heatpump-economics/internal/config"
	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/price"
)

// CopRequest is the body of POST /api/v1/cop.
type CopRequest struct {
	SourceTempC         float64 `json:"source_temp_c"`
	SinkTempC           float64 `json:"sink_temp_c"`
	ExergeticEfficiency float64 `json:"exergetic_efficiency" binding:"required"`
}

// InvestmentRequest is the body of POST /api/v1/investment.
type InvestmentRequest struct {
	SourceTempC            float64 `json:"source_temp_c"`
	SinkTempC              float64 `json:"sink_temp_c"`
	OperatingHours         float64 `json:"operating_hours"`
	HeatPricePerMWh        float64 `json:"heat_price_per_mwh"`
	ElectricityPricePerMWh float64 `json:"electricity_price_per_mwh"`
	InterestRate           float64 `json:"interest_rate" binding:"required"`
	LifetimeYears          float64 `json:"lifetime_years" binding:"required"`
	ExergeticEfficiency    float64 `json:"exergetic_efficiency" binding:"required"`
}

// SweepRequest varies one input of an investment request.
type SweepRequest struct {
	InvestmentRequest
	Variable string `json:"variable" binding:"required"`
	Points   int    `json:"points,omitempty"`
	// Relative sweeps the break-even relative price instead of the investment.
	Relative bool `json:"relative,omitempty"`
}

// DemandSpec describes how to build a demand profile.
type DemandSpec struct {
	Process          string              `json:"process" binding:"required"` // "batch", "continuous", "prebuilt"
	Year             int                 `json:"year,omitempty"`
	WeekendDifferent bool                `json:"weekend_different,omitempty"`
	WeekendScale     float64             `json:"weekend_scale,omitempty"`
	Batch            demand.BatchProcess `json:"batch,omitempty"`
	HourlyDemand     []float64           `json:"hourly_demand,omitempty"`
	PrebuiltProcess  string              `json:"prebuilt_process,omitempty"`
	PrebuiltLevel    string              `json:"prebuilt_level,omitempty"`
}

// ToConfig converts the request shape to the scenario shape with defaults applied.
func (d DemandSpec) ToConfig() config.DemandConfig {
	out := config.DemandConfig{
		Process:          d.Process,
		Year:             d.Year,
		WeekendDifferent: d.WeekendDifferent,
		WeekendScale:     d.WeekendScale,
		Batch:            d.Batch,
		HourlyDemand:     d.HourlyDemand,
		Prebuilt:         config.PrebuiltConfig{Process: d.PrebuiltProcess, Level: d.PrebuiltLevel},
	}
	if out.Year == 0 {
		out.Year = demand.DefaultYear
	}
	if !out.WeekendDifferent {
		out.WeekendScale = 1
	}
	return out
}

// ProfileRequest is the body of POST /api/v1/profiles and /profiles/preview.
type ProfileRequest struct {
	Name        string     `json:"name"`
	SourceTempC float64    `json:"source_temp_c"`
	SinkTempC   float64    `json:"sink_temp_c"`
	Demand      DemandSpec `json:"demand" binding:"required"`
	// Window limits the returned series: "full_week", "weekend", "weekday" or "all".
	Window string `json:"window,omitempty"`
}

// PriceSpec selects the electricity price series of an evaluation.
type PriceSpec struct {
	Mode       string               `json:"mode,omitempty"` // "constant" (default), "profile", "synthetic"
	PerMWh     float64              `json:"per_mwh,omitempty"`
	Country    string               `json:"country,omitempty"`
	Year       int                  `json:"year,omitempty"`
	Multiplier *float64              `json:"multiplier,omitempty"`
	MeanPerMWh *float64              `json:"mean_per_mwh,omitempty"`
	TargetYear int                   `json:"target_year,omitempty"`
	Factors    *price.ScalingFactors `json:"factors,omitempty"`
}

func (p PriceSpec) ToConfig() config.PriceConfig {
	mode := p.Mode
	if mode == "" {
		mode = config.PriceConstant
	}
	return config.PriceConfig{
		Mode:       mode,
		PerMWh:     p.PerMWh,
		Country:    p.Country,
		Year:       p.Year,
		Multiplier: p.Multiplier,
		Synthetic: config.SyntheticConfig{
			MeanPerMWh: p.MeanPerMWh,
			TargetYear: p.TargetYear,
			Factors:    p.Factors,
		},
	}
}

// SynthesizeRequest is the body of POST /api/v1/prices/synthesize.
type SynthesizeRequest struct {
	Country     string               `json:"country" binding:"required"`
	Year        int                  `json:"year" binding:"required"`
	MeanPerMWh  *float64              `json:"mean_per_mwh,omitempty"` // nil keeps the source mean
	TargetYear  int                   `json:"target_year,omitempty"`
	Factors     *price.ScalingFactors `json:"factors,omitempty"`
	IncludeFit  bool                  `json:"include_fit,omitempty"` // fitted hourly columns of the source year
	IncludeRows bool                  `json:"include_rows,omitempty"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate.
type EvaluateRequest struct {
	// Profiles names stored profiles to evaluate; empty means all.
	Profiles            []string  `json:"profiles,omitempty"`
	ExergeticEfficiency float64   `json:"exergetic_efficiency" binding:"required"`
	InterestRate        float64   `json:"interest_rate" binding:"required"`
	LifetimeYears       float64   `json:"lifetime_years" binding:"required"`
	HeatPricePerMWh     float64   `json:"heat_price_per_mwh"`
	Price               PriceSpec `json:"price"`
	IncludeLedger       bool      `json:"include_ledger,omitempty"`
}
