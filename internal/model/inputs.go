package model

// EvaluationInputs bundles everything the aggregate evaluator needs besides the
// price series: the stored profiles plus the shared efficiency and economics.
// Source and sink temperatures come from each profile.
type EvaluationInputs struct {
	Profiles            []NamedProfile
	ExergeticEfficiency float64
	InterestRate        float64
	LifetimeYears       float64
	HeatPricePerMWh     float64
}
