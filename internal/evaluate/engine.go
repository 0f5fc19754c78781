// Package evaluate computes the aggregate allowable investment of a heat pump
// for a set of named demand profiles against one electricity price series.
package evaluate

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"heatpump-economics/internal/calc"
	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"
)

// Options tune what Run returns.
type Options struct {
	IncludeLedger bool
}

type Engine struct {
	log *logger.Entry
}

func New() *Engine {
	return &Engine{log: logger.WithComponent("evaluate")}
}

// Run evaluates every profile in in.Profiles against prices (currency/MWh).
//
// Per profile the electric capacity is 1/COP per kW thermal, and
//
//	investment = (heat*p_th - sum(elec_i*p_i)) / capacity * annuity
//
// A price profile shorter than a demand profile is paired zip-to-shortest:
// the trailing demand steps are dropped and reported in the warnings. Steps
// with a NaN price still deliver heat and draw electricity, but add nothing
// to the electricity cost; they are reported as well.
func (e *Engine) Run(in model.EvaluationInputs, prices price.Series, opts Options) (*Result, error) {
	if len(in.Profiles) == 0 {
		return nil, errors.New("no profiles to evaluate")
	}
	if in.ExergeticEfficiency <= 0 || in.ExergeticEfficiency > 1 {
		return nil, errors.New("exergetic efficiency must be in (0, 1]")
	}
	if in.InterestRate <= 0 {
		return nil, errors.New("interest rate must be > 0")
	}
	if in.LifetimeYears <= 0 {
		return nil, errors.New("lifetime must be > 0")
	}
	if in.HeatPricePerMWh < 0 {
		return nil, errors.New("heat price must be >= 0")
	}

	res := &Result{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Profiles:  make([]ProfileResult, 0, len(in.Profiles)),
	}
	f := calc.AnnuityFactor(in.InterestRate, in.LifetimeYears)

	for _, p := range in.Profiles {
		pr, err := e.runProfile(p, in, f, prices, opts)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if pr.Truncated > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s: price series covers %d of %d steps, the last %d demand steps were dropped",
				p.Name, pr.Steps, pr.Steps+pr.Truncated, pr.Truncated))
		}
		if pr.MissingSteps > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"%s: %d steps have no electricity price; their heat is counted but their electricity cost is not", p.Name, pr.MissingSteps))
		}
		res.Profiles = append(res.Profiles, pr)
	}

	for _, w := range res.Warnings {
		e.log.WithFields(logger.Fields{"evaluation_id": res.ID}).Warn(w)
	}
	return res, nil
}

func (e *Engine) runProfile(p model.NamedProfile, in model.EvaluationInputs, annuity float64, prices price.Series, opts Options) (ProfileResult, error) {
	if err := p.Temperatures.Validate(); err != nil {
		return ProfileResult{}, err
	}
	if len(p.Points) == 0 {
		return ProfileResult{}, errors.New("demand profile is empty")
	}
	if err := model.ValidateDemand(p.Points); err != nil {
		return ProfileResult{}, err
	}

	cop := calc.COP(p.Temperatures.SourceC, p.Temperatures.SinkC, in.ExergeticEfficiency)
	dt := ModalStepHours(p.Points)
	aligned := prices.Align(len(p.Points))
	n := len(aligned)

	pr := ProfileResult{
		Name:               p.Name,
		Label:              p.Label(),
		Temperatures:       p.Temperatures,
		COP:                cop,
		StepHours:          dt,
		Steps:              n,
		Truncated:          len(p.Points) - n,
		ElectricCapacityKW: 1 / cop,
		AnnuityFactor:      annuity,
	}
	if opts.IncludeLedger {
		pr.Ledger = make([]LedgerRow, 0, n)
	}

	for i := 0; i < n; i++ {
		pt := p.Points[i]
		pEl := aligned[i]
		row := LedgerRow{Index: i, Time: pt.Time, Demand: pt.Demand, Price: pEl}

		row.HeatKWh = pt.Demand * dt
		row.ElectricityKWh = pt.Demand / cop * dt
		if math.IsNaN(pEl) {
			pr.MissingSteps++
			row.Price = 0
			row.Missing = true
		} else {
			row.ElectricityCost = row.ElectricityKWh * pEl / 1000
		}

		pr.FullLoadHours += pt.Demand * dt
		pr.HeatKWh += row.HeatKWh
		pr.ElectricityKWh += row.ElectricityKWh
		pr.CostHeatPump += row.ElectricityCost
		row.CumCost = pr.CostHeatPump
		if opts.IncludeLedger {
			pr.Ledger = append(pr.Ledger, row)
		}
	}

	pr.CostAlternative = pr.HeatKWh * in.HeatPricePerMWh / 1000
	pr.AllowableInvestmentPerKW = (pr.CostAlternative - pr.CostHeatPump) / pr.ElectricCapacityKW * annuity
	pr.Verdict = model.VerdictFromInvestment(pr.AllowableInvestmentPerKW)
	return pr, nil
}

// ModalStepHours is the most frequent gap between consecutive timestamps in
// hours; ties go to the shorter gap. Profiles with fewer than two points use
// the generator's 15 minute step.
func ModalStepHours(points []model.DemandPoint) float64 {
	if len(points) < 2 {
		return demand.Step.Hours()
	}
	counts := map[time.Duration]int{}
	for i := 1; i < len(points); i++ {
		counts[points[i].Time.Sub(points[i-1].Time)]++
	}
	gaps := make([]time.Duration, 0, len(counts))
	for g := range counts {
		gaps = append(gaps, g)
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })

	best := gaps[0]
	for _, g := range gaps[1:] {
		if counts[g] > counts[best] {
			best = g
		}
	}
	return best.Hours()
}
