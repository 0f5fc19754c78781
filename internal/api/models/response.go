package models

import (
	"time"

	"heatpump-economics/internal/analysis"
	"heatpump-economics/internal/evaluate"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"
)

// CopResponse is the result of POST /api/v1/cop.
type CopResponse struct {
	COP  float64 `json:"cop"`
	Lift float64 `json:"lift_k"`
	// ProfitableRelativePrice is the electricity/alternative price ratio below
	// which the heat pump is cheaper to run.
	ProfitableRelativePrice float64 `json:"profitable_relative_price"`
}

// InvestmentResponse is the result of POST /api/v1/investment.
type InvestmentResponse struct {
	COP                      float64       `json:"cop"`
	AnnuityFactor            float64       `json:"annuity_factor"`
	AllowableInvestmentPerKW float64       `json:"allowable_investment_per_kw"`
	BreakEvenHeatPrice       float64       `json:"break_even_heat_price_per_mwh"`
	Verdict                  model.Verdict `json:"verdict"`
}

// RelativePriceRow is one country of the relative price table.
type RelativePriceRow struct {
	Country string    `json:"country"`
	Values  []float64 `json:"values"`
	// Profitable flags the periods whose ratio is below the heat pump COP.
	Profitable []bool `json:"profitable,omitempty"`
}

type RelativePricesResponse struct {
	Periods []string           `json:"periods"`
	Rows    []RelativePriceRow `json:"rows"`
	COP     float64            `json:"cop,omitempty"`
}

// ProfileSummary describes a stored or previewed profile.
type ProfileSummary struct {
	Name          string                `json:"name"`
	Label         string                `json:"label"`
	Temperatures  model.TemperaturePair `json:"temperatures"`
	Steps         int                   `json:"steps"`
	FullLoadHours float64               `json:"full_load_hours"`
	Start         time.Time             `json:"start"`
	End           time.Time             `json:"end"`
}

// ProfileResponse carries a profile summary and a window of its series.
type ProfileResponse struct {
	Profile ProfileSummary      `json:"profile"`
	Window  string              `json:"window"`
	Points  []model.DemandPoint `json:"points"`
}

// ProcessInfo describes a demand process type.
type ProcessInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a process parameter.
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "bool", "[]float"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// HeatPumpInfo is a heat pump preset file.
type HeatPumpInfo struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	File                string  `json:"file"`
	ExergeticEfficiency float64 `json:"exergetic_efficiency"`
}

// CountryInfo lists the full years of a country's wholesale prices.
type CountryInfo struct {
	Country   string `json:"country"`
	FullYears []int  `json:"full_years,omitempty"`
}

// SynthesizeResponse is the result of POST /api/v1/prices/synthesize.
type SynthesizeResponse struct {
	Country    string               `json:"country"`
	SourceYear int                  `json:"source_year"`
	TargetYear int                  `json:"target_year"`
	Mean       float64              `json:"mean"`
	Factors    price.ScalingFactors `json:"scaling_factors"`
	Params     price.Params         `json:"params"`
	Cached     bool                 `json:"cached"`
	Stats      analysis.PriceStats  `json:"stats"`
	Warnings   []string             `json:"warnings,omitempty"`
	Rows       []price.SynthRow     `json:"rows,omitempty"`
	Fit        []FitRow             `json:"fit,omitempty"`
}

// FitRow is the fitted decomposition of one source hour. Missing values are
// carried as null.
type FitRow struct {
	Time       time.Time `json:"datetime"`
	Price      *float64  `json:"p"`
	Trend      float64   `json:"trend"`
	Weekly     float64   `json:"weekly_cycle"`
	HourlyMean float64   `json:"hourly_mean"`
	Residual   *float64  `json:"log_p_randomness"`
	CycleOnly  float64   `json:"p_cycle_only"`
}

// EvaluateResponse is the result of POST /api/v1/evaluate.
type EvaluateResponse struct {
	ID         string                   `json:"id"`
	CreatedAt  time.Time                `json:"created_at"`
	Profiles   []evaluate.ProfileResult `json:"profiles"`
	Ranking    []analysis.RankedProfile `json:"ranking"`
	PriceStats *analysis.PriceStats     `json:"price_stats,omitempty"`
	Warnings   []string                 `json:"warnings,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
