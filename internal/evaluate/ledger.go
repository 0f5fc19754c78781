package evaluate

import (
	"time"

	"heatpump-economics/internal/model"
)

// LedgerRow is one demand step of one profile in an evaluation.
// Energies are per kW of thermal capacity; costs are in currency.
type LedgerRow struct {
	Index int       `json:"index"`
	Time  time.Time `json:"datetime"`

	Demand float64 `json:"demand"`
	Price  float64 `json:"price_per_mwh"`

	HeatKWh         float64 `json:"heat_kwh"`
	ElectricityKWh  float64 `json:"electricity_kwh"`
	ElectricityCost float64 `json:"electricity_cost"`
	CumCost         float64 `json:"cum_electricity_cost"`

	// Missing marks steps without a price. Their Price and ElectricityCost
	// are 0; heat and electricity energy are still counted.
	Missing bool `json:"missing"`
}

// ProfileResult is the allowable investment for one named demand profile.
type ProfileResult struct {
	Name  string `json:"name"`
	Label string `json:"label"`

	Temperatures model.TemperaturePair `json:"temperatures"`
	COP          float64               `json:"cop"`

	StepHours float64 `json:"step_hours"`
	Steps     int     `json:"steps"`
	// Truncated counts demand steps dropped because the price series was shorter.
	Truncated    int `json:"truncated_steps"`
	MissingSteps int `json:"missing_price_steps"`

	FullLoadHours   float64 `json:"full_load_hours"`
	HeatKWh         float64 `json:"heat_kwh"`
	ElectricityKWh  float64 `json:"electricity_kwh"`
	CostAlternative float64 `json:"cost_alternative"`
	CostHeatPump    float64 `json:"cost_heat_pump"`

	ElectricCapacityKW       float64       `json:"electric_capacity_kw"`
	AnnuityFactor            float64       `json:"annuity_factor"`
	AllowableInvestmentPerKW float64       `json:"allowable_investment_per_kw"`
	Verdict                  model.Verdict `json:"verdict"`

	Ledger []LedgerRow `json:"ledger,omitempty"`
}

// Result lists every evaluated profile in input order.
type Result struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Profiles  []ProfileResult `json:"profiles"`
	Warnings  []string        `json:"warnings,omitempty"`
}
