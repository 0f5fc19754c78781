package config

import (
	"fmt"
	"math"

	"heatpump-economics/internal/data"
	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"
)

// BuildProcess returns the generator process of a batch or continuous demand.
func (d DemandConfig) BuildProcess() (demand.Process, error) {
	switch d.Process {
	case ProcessBatch:
		if err := d.Batch.Validate(); err != nil {
			return nil, err
		}
		return d.Batch, nil
	case ProcessContinuous:
		c := demand.ContinuousProcess{HourlyDemand: d.HourlyDemand}
		if len(c.HourlyDemand) == 0 {
			c = demand.ConstantProcess()
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("demand process %q has no generator", d.Process)
	}
}

// BuildPoints generates the full-year demand series. Pre-built profiles are
// read from dataDir.
func (d DemandConfig) BuildPoints(dataDir string) ([]model.DemandPoint, error) {
	tpl, err := demand.NewTemplate(d.Year, d.WeekendDifferent, d.WeekendScale)
	if err != nil {
		return nil, err
	}
	if d.Process == ProcessPrebuilt {
		profiles, err := data.LoadDemandProfiles(dataDir, d.Prebuilt.Process)
		if err != nil {
			return nil, err
		}
		values, err := profiles.Level(d.Prebuilt.Level)
		if err != nil {
			return nil, err
		}
		return demand.FromPrebuilt(tpl, values)
	}
	proc, err := d.BuildProcess()
	if err != nil {
		return nil, err
	}
	return demand.Generate(tpl, proc)
}

// BuildProfiles generates every configured profile.
func (c *Config) BuildProfiles() ([]model.NamedProfile, error) {
	out := make([]model.NamedProfile, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		pts, err := p.Demand.BuildPoints(c.dataDir())
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", p.Name, err)
		}
		out = append(out, model.NamedProfile{
			Name:         p.Name,
			Temperatures: model.TemperaturePair{SourceC: p.SourceC, SinkC: p.SinkC},
			Points:       pts,
		})
	}
	return out, nil
}

// EvaluationInputs combines profiles with the scenario's heat pump and economics.
func (c *Config) EvaluationInputs(profiles []model.NamedProfile) model.EvaluationInputs {
	return model.EvaluationInputs{
		Profiles:            profiles,
		ExergeticEfficiency: c.HeatPump.ExergeticEfficiency,
		InterestRate:        c.Economics.InterestRate,
		LifetimeYears:       c.Economics.LifetimeYears,
		HeatPricePerMWh:     c.Economics.HeatPricePerMWh,
	}
}

// BuildPriceSeries builds the configured price series.
func (c *Config) BuildPriceSeries(cache *price.FitCache) (*PriceBuild, error) {
	return c.Price.Build(c.dataDir(), cache)
}

func (c *Config) dataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return data.DefaultDataDir()
}

// PriceBuild is a price series ready for evaluation at demand resolution.
// Hourly holds the underlying hourly prices for profile and synthetic modes.
type PriceBuild struct {
	Series    price.Series
	Hourly    []float64
	Synthesis *price.Synthesis
	Warnings  []string
}

// Build resolves the price series. Hourly source or synthetic prices are
// expanded to the quarter-hour demand grid and multiplied by Multiplier.
// A nil cache fits without memoization.
func (p PriceConfig) Build(dataDir string, cache *price.FitCache) (*PriceBuild, error) {
	if p.Mode == PriceConstant || p.Mode == "" {
		return &PriceBuild{Series: price.Constant(p.PerMWh)}, nil
	}

	all, err := data.LoadWholesalePrices(dataDir, p.Country)
	if err != nil {
		return nil, err
	}
	year, err := data.SelectYear(all, p.Year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Country, err)
	}
	out := &PriceBuild{}
	mult := p.MultiplierOrDefault()

	switch p.Mode {
	case PriceProfile:
		out.Hourly = data.PriceValues(year)
		if n := price.Profile(out.Hourly).MissingCount(); n > 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"electricity prices for %s %d contain %d missing values", p.Country, p.Year, n))
		}
	case PriceSynthetic:
		var fit *price.FitResult
		if cache != nil {
			fit, _, err = cache.Fit(year, p.Year)
		} else {
			fit, err = price.Fit(year, p.Year)
		}
		if err != nil {
			return nil, err
		}
		mean := meanIgnoringNaN(data.PriceValues(year))
		if p.Synthetic.MeanPerMWh != nil {
			mean = *p.Synthetic.MeanPerMWh
		}
		factors := p.Synthetic.FactorsOrDefault()
		target := p.Synthetic.TargetYear
		if target == 0 {
			target = demand.DefaultYear
		}
		syn, err := price.Synthesize(fit.Params, mean, factors, target)
		if err != nil {
			return nil, err
		}
		if syn.Fallbacks > 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf(
				"%d hours of %d had no fitted daily cycle value and used the hourly average", syn.Fallbacks, syn.Year))
		}
		out.Synthesis = syn
		out.Hourly = syn.Values()
	default:
		return nil, fmt.Errorf("unknown price mode %q", p.Mode)
	}

	out.Series = price.Profile(price.Expand(out.Hourly, demand.StepsPerHour, mult))
	return out, nil
}

func meanIgnoringNaN(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
