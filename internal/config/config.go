package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"

	"gopkg.in/yaml.v3"
)

// Price modes.
const (
	PriceConstant  = "constant"
	PriceProfile   = "profile"
	PriceSynthetic = "synthetic"
)

// Demand processes.
const (
	ProcessBatch      = "batch"
	ProcessContinuous = "continuous"
	ProcessPrebuilt   = "prebuilt"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	// Optional: load heat pump parameters from a separate YAML.
	// If both HeatPumpFile and HeatPump are provided, HeatPump overrides HeatPumpFile.
	HeatPumpFile string          `yaml:"heat_pump_file"`
	HeatPump     HeatPumpConfig  `yaml:"heat_pump"`
	Economics    EconomicsConfig `yaml:"economics"`
	Profiles     []ProfileConfig `yaml:"profiles"`
	Price        PriceConfig     `yaml:"price"`
	DataDir      string          `yaml:"data_dir"`
	Log          LogConfig       `yaml:"log"`
}

type HeatPumpConfig struct {
	Name                string  `yaml:"name"`
	ExergeticEfficiency float64 `yaml:"exergetic_efficiency"`
}

type EconomicsConfig struct {
	InterestRate           float64 `yaml:"interest_rate"`
	LifetimeYears          float64 `yaml:"lifetime_years"`
	HeatPricePerMWh        float64 `yaml:"heat_price_per_mwh"`
	ElectricityPricePerMWh float64 `yaml:"electricity_price_per_mwh"`
	OperatingHours         float64 `yaml:"operating_hours"`
}

// ProfileConfig describes one named demand profile of the scenario.
type ProfileConfig struct {
	Name    string       `yaml:"name"`
	SourceC float64      `yaml:"source_temp_c"`
	SinkC   float64      `yaml:"sink_temp_c"`
	Demand  DemandConfig `yaml:"demand"`
}

type DemandConfig struct {
	Process          string              `yaml:"process"`
	Year             int                 `yaml:"year"`
	WeekendDifferent bool                `yaml:"weekend_different"`
	WeekendScale     float64             `yaml:"weekend_scale"`
	Batch            demand.BatchProcess `yaml:"batch"`
	HourlyDemand     []float64           `yaml:"hourly_demand"`
	Prebuilt         PrebuiltConfig      `yaml:"prebuilt"`
}

type PrebuiltConfig struct {
	Process string `yaml:"process"`
	Level   string `yaml:"level"`
}

// PriceConfig selects the electricity price series of an evaluation.
// PerMWh is used by the constant mode; the other modes read the country's
// wholesale prices for Year and multiply them by Multiplier (nil means 1).
type PriceConfig struct {
	Mode       string          `yaml:"mode"`
	PerMWh     float64         `yaml:"per_mwh"`
	Country    string          `yaml:"country"`
	Year       int             `yaml:"year"`
	Multiplier *float64        `yaml:"multiplier"`
	Synthetic  SyntheticConfig `yaml:"synthetic"`
}

// MultiplierOrDefault returns Multiplier, or 1 when it is unset.
func (p PriceConfig) MultiplierOrDefault() float64 {
	if p.Multiplier == nil {
		return 1
	}
	return *p.Multiplier
}

// SyntheticConfig parameterizes the synthetic price mode. A nil MeanPerMWh
// keeps the mean of the source year; nil Factors reproduce the fitted shape.
type SyntheticConfig struct {
	MeanPerMWh *float64              `yaml:"mean_per_mwh"`
	TargetYear int                   `yaml:"target_year"`
	Factors    *price.ScalingFactors `yaml:"factors"`
}

// FactorsOrDefault returns Factors, or price.DefaultFactors when unset.
func (s SyntheticConfig) FactorsOrDefault() price.ScalingFactors {
	if s.Factors == nil {
		return price.DefaultFactors()
	}
	return *s.Factors
}

// Float returns a pointer to v, for optional numeric settings.
func Float(v float64) *float64 { return &v }

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.HeatPumpFile != "" {
		hpPath := c.HeatPumpFile
		if !filepath.IsAbs(hpPath) {
			// Relative to the scenario file first, then to the working directory.
			cand := filepath.Join(filepath.Dir(path), hpPath)
			if _, err := os.Stat(cand); err == nil {
				hpPath = cand
			}
		}
		loaded, err := LoadHeatPumpFile(hpPath)
		if err != nil {
			return nil, err
		}
		c.HeatPump = MergeHeatPump(loaded, c.HeatPump)
	}
	if c.DataDir != "" && !filepath.IsAbs(c.DataDir) {
		cand := filepath.Join(filepath.Dir(path), c.DataDir)
		if _, err := os.Stat(cand); err == nil {
			c.DataDir = cand
		}
	}
	return &c, nil
}

// ApplyDefaults fills fields whose zero value means "not set".
func (c *Config) ApplyDefaults() {
	if c.Price.Mode == "" {
		c.Price.Mode = PriceConstant
	}
	if c.Price.Multiplier == nil {
		c.Price.Multiplier = Float(1)
	}
	if c.Price.Synthetic.TargetYear == 0 {
		c.Price.Synthetic.TargetYear = demand.DefaultYear
	}
	if c.Price.Synthetic.Factors == nil {
		f := price.DefaultFactors()
		c.Price.Synthetic.Factors = &f
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	for i := range c.Profiles {
		d := &c.Profiles[i].Demand
		if d.Year == 0 {
			d.Year = demand.DefaultYear
		}
		if !d.WeekendDifferent {
			d.WeekendScale = 1
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.HeatPumpSpecCheck(); err != nil {
		return fmt.Errorf("heat_pump config invalid: %w", err)
	}
	if err := c.EconomicParams().Validate(); err != nil {
		return fmt.Errorf("economics config invalid: %w", err)
	}

	seen := map[string]bool{}
	for i, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profiles[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("profiles[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true
		if err := (model.TemperaturePair{SourceC: p.SourceC, SinkC: p.SinkC}).Validate(); err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}
		switch p.Demand.Process {
		case ProcessBatch, ProcessContinuous:
			if _, err := p.Demand.BuildProcess(); err != nil {
				return fmt.Errorf("profile %s: %w", p.Name, err)
			}
		case ProcessPrebuilt:
			if p.Demand.Prebuilt.Process == "" || p.Demand.Prebuilt.Level == "" {
				return fmt.Errorf("profile %s: prebuilt demand needs process and level", p.Name)
			}
		default:
			return fmt.Errorf("profile %s: unknown demand process %q", p.Name, p.Demand.Process)
		}
	}

	switch c.Price.Mode {
	case PriceConstant:
		if c.Price.PerMWh < 0 {
			return errors.New("price.per_mwh must be >= 0")
		}
	case PriceProfile, PriceSynthetic:
		if c.Price.Country == "" || c.Price.Year == 0 {
			return fmt.Errorf("price mode %s needs country and year", c.Price.Mode)
		}
		if m := c.Price.MultiplierOrDefault(); m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return errors.New("price.multiplier must be a finite value >= 0")
		}
		if c.Price.Mode == PriceSynthetic {
			if err := c.Price.Synthetic.Validate(); err != nil {
				return fmt.Errorf("price.synthetic: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown price mode %q", c.Price.Mode)
	}
	return nil
}

// Validate checks the optional mean and factors. Any finite mean is allowed,
// including zero and negative values.
func (s SyntheticConfig) Validate() error {
	if s.MeanPerMWh != nil && (math.IsNaN(*s.MeanPerMWh) || math.IsInf(*s.MeanPerMWh, 0)) {
		return errors.New("mean_per_mwh must be finite")
	}
	return s.FactorsOrDefault().Validate()
}

// HeatPumpSpecCheck validates the efficiency on its own; temperatures belong
// to the profiles.
func (c *Config) HeatPumpSpecCheck() error {
	e := c.HeatPump.ExergeticEfficiency
	if e <= 0 || e > 1 {
		return errors.New("exergetic_efficiency must be in (0, 1]")
	}
	return nil
}

func (c *Config) EconomicParams() model.EconomicParams {
	return model.EconomicParams{
		InterestRate:           c.Economics.InterestRate,
		LifetimeYears:          c.Economics.LifetimeYears,
		HeatPricePerMWh:        c.Economics.HeatPricePerMWh,
		ElectricityPricePerMWh: c.Economics.ElectricityPricePerMWh,
		OperatingHours:         c.Economics.OperatingHours,
	}
}

type heatPumpFileWrapper struct {
	HeatPump HeatPumpConfig `yaml:"heat_pump"`
}

// LoadHeatPumpFile reads the heat_pump section of a preset file.
func LoadHeatPumpFile(path string) (HeatPumpConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return HeatPumpConfig{}, err
	}
	var w heatPumpFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return HeatPumpConfig{}, err
	}
	return w.HeatPump, nil
}

// MergeHeatPump overlays non-zero fields from override onto base.
func MergeHeatPump(base, override HeatPumpConfig) HeatPumpConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.ExergeticEfficiency != 0 {
		out.ExergeticEfficiency = override.ExergeticEfficiency
	}
	return out
}
