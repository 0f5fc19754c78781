// Package analysis derives comparison views from evaluation results and
// price series.
package analysis

import (
	"sort"

	"heatpump-economics/internal/evaluate"
	"heatpump-economics/internal/model"
)

// RankedProfile is one row of the comparison table.
type RankedProfile struct {
	Rank                     int           `json:"rank"`
	Label                    string        `json:"label"`
	COP                      float64       `json:"cop"`
	FullLoadHours            float64       `json:"full_load_hours"`
	AllowableInvestmentPerKW float64       `json:"allowable_investment_per_kw"`
	Verdict                  model.Verdict `json:"verdict"`
}

// RankByInvestment sorts profiles descending by allowable investment. Equal
// investments keep their evaluation order.
func RankByInvestment(profiles []evaluate.ProfileResult) []RankedProfile {
	out := make([]RankedProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, RankedProfile{
			Label:                    p.Label,
			COP:                      p.COP,
			FullLoadHours:            p.FullLoadHours,
			AllowableInvestmentPerKW: p.AllowableInvestmentPerKW,
			Verdict:                  p.Verdict,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AllowableInvestmentPerKW > out[j].AllowableInvestmentPerKW
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
