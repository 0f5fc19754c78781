// Package report renders an evaluation comparison as XLSX or PDF.
package report

import (
	"heatpump-economics/internal/analysis"
	"heatpump-economics/internal/evaluate"
)

// Comparison is everything a rendered report shows.
type Comparison struct {
	Result  *evaluate.Result
	Ranking []analysis.RankedProfile
	// Prices is nil for a constant electricity price.
	Prices *analysis.PriceStats
}

// NewComparison ranks the profiles of res.
func NewComparison(res *evaluate.Result, prices *analysis.PriceStats) Comparison {
	return Comparison{
		Result:  res,
		Ranking: analysis.RankByInvestment(res.Profiles),
		Prices:  prices,
	}
}
