package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"heatpump-economics/internal/analysis"
	"heatpump-economics/internal/calc"
	"heatpump-economics/internal/config"
	"heatpump-economics/internal/data"
	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/evaluate"
	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"
	"heatpump-economics/internal/report"

	"github.com/joho/godotenv"
)

var log = logger.WithComponent("cli")

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "cop":
		cmdCop(os.Args[2:])
	case "invest":
		cmdInvest(os.Args[2:])
	case "sweep":
		cmdSweep(os.Args[2:])
	case "relative":
		cmdRelative(os.Args[2:])
	case "demand":
		cmdDemand(os.Args[2:])
	case "price":
		cmdPrice(os.Args[2:])
	case "evaluate":
		cmdEvaluate(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli cop --source 30 --sink 90 --eff 0.6")
	fmt.Println("  cli invest --source 30 --sink 90 --hours 8000 --heat-price 50 --el-price 150")
	fmt.Println("  cli sweep --var electricity_price --points 20 [--relative] [--out results/sweep.csv]")
	fmt.Println("  cli relative --data-dir data [--source 30 --sink 90 --eff 0.6]")
	fmt.Println("  cli demand --process batch --hour-on 6 --hour-off 22 --on 2 --off 1 --out results/demand.csv")
	fmt.Println("  cli price --data-dir data --country DE --year 2021 --mean 120 --out results/prices.csv")
	fmt.Println("  cli evaluate --config examples/scenario.yaml --out results/ledger.csv [--xlsx r.xlsx] [--pdf r.pdf]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - prices are currency/MWh, temperatures Celsius, investments currency per kW electric")
	fmt.Println("  - evaluate writes one ledger row per profile and 15 minute step")
}

func must(err error) {
	if err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// heatPumpFlags registers the temperature and efficiency flags shared by
// the calculator commands.
func heatPumpFlags(fs *flag.FlagSet) (source, sink, eff *float64) {
	source = fs.Float64("source", 30, "Heat source temperature (C)")
	sink = fs.Float64("sink", 90, "Heat sink temperature (C)")
	eff = fs.Float64("eff", 0.6, "Exergetic efficiency (0, 1]")
	return
}

func investmentFlags(fs *flag.FlagSet) func() calc.Inputs {
	source, sink, eff := heatPumpFlags(fs)
	hours := fs.Float64("hours", 8000, "Full-load operating hours per year")
	heat := fs.Float64("heat-price", 50, "Alternative heat price (currency/MWh)")
	el := fs.Float64("el-price", 150, "Electricity price (currency/MWh)")
	rate := fs.Float64("rate", 0.05, "Interest rate (decimal)")
	life := fs.Float64("lifetime", 20, "Lifetime (years)")
	return func() calc.Inputs {
		return calc.Inputs{
			SourceC:             *source,
			SinkC:               *sink,
			OperatingHours:      *hours,
			HeatPricePerMWh:     *heat,
			ElecPricePerMWh:     *el,
			InterestRate:        *rate,
			LifetimeYears:       *life,
			ExergeticEfficiency: *eff,
		}
	}
}

func validateInputs(in calc.Inputs) error {
	spec := model.HeatPumpSpec{
		Temperatures:        model.TemperaturePair{SourceC: in.SourceC, SinkC: in.SinkC},
		ExergeticEfficiency: in.ExergeticEfficiency,
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	return model.EconomicParams{
		InterestRate:           in.InterestRate,
		LifetimeYears:          in.LifetimeYears,
		HeatPricePerMWh:        in.HeatPricePerMWh,
		ElectricityPricePerMWh: in.ElecPricePerMWh,
		OperatingHours:         in.OperatingHours,
	}.Validate()
}

func cmdCop(args []string) {
	fs := flag.NewFlagSet("cop", flag.ExitOnError)
	source, sink, eff := heatPumpFlags(fs)
	_ = fs.Parse(args)

	spec := model.HeatPumpSpec{
		Temperatures:        model.TemperaturePair{SourceC: *source, SinkC: *sink},
		ExergeticEfficiency: *eff,
	}
	must(spec.Validate())

	fmt.Printf("COP=%.3f lift=%.1f K\n", calc.COP(*source, *sink, *eff), spec.Temperatures.Lift())
	fmt.Printf("profitable below electricity/heat price ratio %.3f\n", calc.ProfitableRelativePrice(*source, *sink, *eff))
}

func cmdInvest(args []string) {
	fs := flag.NewFlagSet("invest", flag.ExitOnError)
	inputs := investmentFlags(fs)
	_ = fs.Parse(args)

	in := inputs()
	must(validateInputs(in))
	perKW := in.AllowableInvestment()
	fmt.Printf("COP=%.3f annuity=%.4f\n", calc.COP(in.SourceC, in.SinkC, in.ExergeticEfficiency), calc.AnnuityFactor(in.InterestRate, in.LifetimeYears))
	fmt.Printf("Allowable investment=%.2f per kW_el (%s)\n", perKW, model.VerdictFromInvestment(perKW))
	fmt.Printf("Break-even heat price=%.2f per MWh\n", calc.BreakEvenHeatPrice(in.SourceC, in.SinkC, in.ElecPricePerMWh, in.ExergeticEfficiency))
}

func cmdSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	inputs := investmentFlags(fs)
	variable := fs.String("var", string(calc.VarElectricityPrice), "Variable to sweep")
	points := fs.Int("points", 20, "Number of samples")
	relative := fs.Bool("relative", false, "Sweep the break-even price ratio (sink or source temperature only)")
	outPath := fs.String("out", "", "Optional CSV output path")
	_ = fs.Parse(args)

	in := inputs()
	must(validateInputs(in))
	var (
		res *calc.SweepResult
		err error
	)
	if *relative {
		res, err = calc.SweepRelativePrice(in, calc.Variable(*variable), *points)
	} else {
		res, err = calc.Sweep(in, calc.Variable(*variable), *points)
	}
	must(err)

	fmt.Printf("%-14s %-14s\n", res.Variable, "y")
	rows := make([][]string, 0, len(res.Points))
	for _, p := range res.Points {
		fmt.Printf("%-14.4f %-14.4f\n", p.X, p.Y)
		rows = append(rows, []string{fmtFloat(p.X), fmtFloat(p.Y)})
	}
	fmt.Printf("current: x=%.4f y=%.4f\n", res.Current.X, res.Current.Y)
	if *outPath != "" {
		must(writeCSV(*outPath, []string{string(res.Variable), "y"}, rows))
	}
}

func cmdRelative(args []string) {
	fs := flag.NewFlagSet("relative", flag.ExitOnError)
	dataDir := fs.String("data-dir", data.DefaultDataDir(), "Data directory")
	source, sink, eff := heatPumpFlags(fs)
	_ = fs.Parse(args)

	table, err := data.LoadRelativePrices(*dataDir)
	must(err)
	cop := calc.ProfitableRelativePrice(*source, *sink, *eff)

	fmt.Printf("%-8s", "country")
	for _, p := range table.Periods {
		fmt.Printf(" %-9s", p)
	}
	fmt.Println()
	for _, c := range table.Countries {
		fmt.Printf("%-8s", c)
		for _, v := range table.Values[c] {
			mark := " "
			if v < cop {
				mark = "*"
			}
			fmt.Printf(" %-8.2f%s", v, mark)
		}
		fmt.Println()
	}
	fmt.Printf("* ratio below COP %.3f\n", cop)
}

func cmdDemand(args []string) {
	fs := flag.NewFlagSet("demand", flag.ExitOnError)
	process := fs.String("process", config.ProcessBatch, "batch | continuous | prebuilt")
	year := fs.Int("year", demand.DefaultYear, "Calendar year of the profile")
	weekendScale := fs.Float64("weekend-scale", 1, "Weekend demand factor; 1 keeps weekends like weekdays")
	hourOn := fs.Float64("hour-on", 6, "Batch window opens (hour)")
	hourOff := fs.Float64("hour-off", 22, "Batch window closes (hour)")
	lengthOn := fs.Float64("on", 2, "Batch length (hours)")
	lengthOff := fs.Float64("off", 1, "Pause between batches (hours)")
	hourly := fs.String("hourly", "", "Continuous: 24 comma-separated demand values (empty = full load)")
	dataDir := fs.String("data-dir", data.DefaultDataDir(), "Data directory for pre-built profiles")
	prebuilt := fs.String("prebuilt", "", "Pre-built process name")
	level := fs.String("level", "", "Pre-built temperature level")
	window := fs.String("window", "", "Optional window: full_week | weekend | weekday")
	outPath := fs.String("out", "results/demand.csv", "Output CSV path")
	_ = fs.Parse(args)

	cfg := config.DemandConfig{
		Process:          *process,
		Year:             *year,
		WeekendDifferent: *weekendScale != 1,
		WeekendScale:     *weekendScale,
		Batch:            demand.BatchProcess{HourOn: *hourOn, HourOff: *hourOff, LengthOn: *lengthOn, LengthOff: *lengthOff},
		Prebuilt:         config.PrebuiltConfig{Process: *prebuilt, Level: *level},
	}
	if *hourly != "" {
		vals, err := parseFloats(*hourly)
		must(err)
		cfg.HourlyDemand = vals
	}
	points, err := cfg.BuildPoints(*dataDir)
	must(err)
	if *window != "" {
		points, err = demand.Window(points, demand.WindowKind(*window))
		must(err)
	}

	rows := make([][]string, len(points))
	flh := 0.0
	for i, p := range points {
		rows[i] = []string{p.Time.Format(time.RFC3339), fmtFloat(p.Demand)}
		flh += p.Demand * demand.Step.Hours()
	}
	must(writeCSV(*outPath, []string{"datetime", "demand"}, rows))
	fmt.Printf("Wrote %d rows to %s\n", len(rows), *outPath)
	fmt.Printf("Full-load hours=%.1f\n", flh)
}

func cmdPrice(args []string) {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	dataDir := fs.String("data-dir", data.DefaultDataDir(), "Data directory")
	country := fs.String("country", "", "Wholesale price country")
	year := fs.Int("year", 0, "Source year to fit (must be a full year)")
	mean := fs.Float64("mean", 0, "Target mean price (default: source mean)")
	target := fs.Int("target-year", demand.DefaultYear, "Calendar year of the synthetic profile")
	trend := fs.Float64("trend", 1, "Trend scaling factor")
	weekly := fs.Float64("weekly", 1, "Weekly cycle scaling factor")
	daily := fs.Float64("daily", 1, "Daily cycle scaling factor")
	overall := fs.Float64("overall", 1, "Overall spread scaling factor")
	outPath := fs.String("out", "", "Optional CSV output path for the hourly profile")
	_ = fs.Parse(args)

	if *country == "" {
		all, err := data.ListCountries(*dataDir)
		must(err)
		for _, c := range all {
			points, err := data.LoadWholesalePrices(*dataDir, c)
			if err != nil {
				log.WithError(err).WithFields(logger.Fields{"country": c}).Warn("skipping unreadable price file")
				continue
			}
			fmt.Printf("%-8s full years: %v\n", c, data.FullYears(points))
		}
		return
	}

	pc := config.PriceConfig{
		Mode:    config.PriceSynthetic,
		Country: *country,
		Year:    *year,
		Synthetic: config.SyntheticConfig{
			TargetYear: *target,
			Factors:    &price.ScalingFactors{Trend: *trend, Weekly: *weekly, Daily: *daily, Overall: *overall},
		},
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "mean" {
			pc.Synthetic.MeanPerMWh = mean
		}
	})
	must(pc.Synthetic.Validate())
	start := time.Now()
	built, err := pc.Build(*dataDir, nil)
	must(err)
	logger.LogDuration(log, "price synthesis", time.Since(start), logger.Fields{"country": *country, "year": *year})
	for _, w := range built.Warnings {
		log.Warn(w)
	}

	printStats(analysis.Summarize(built.Hourly))
	if *outPath != "" {
		rows := make([][]string, len(built.Synthesis.Rows))
		for i, r := range built.Synthesis.Rows {
			rows[i] = []string{r.Time.Format(time.RFC3339), fmtFloat(r.Price)}
		}
		must(writeCSV(*outPath, []string{"datetime", "p"}, rows))
		fmt.Printf("Wrote %d rows to %s\n", len(rows), *outPath)
	}
}

func cmdEvaluate(args []string) {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to scenario YAML")
	outPath := fs.String("out", "results/ledger.csv", "Ledger CSV output path")
	xlsxPath := fs.String("xlsx", "", "Optional XLSX report path")
	pdfPath := fs.String("pdf", "", "Optional PDF report path")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	must(err)
	must(logger.GetLogger().Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxAgeDays))

	profiles, err := cfg.BuildProfiles()
	must(err)
	prices, err := cfg.BuildPriceSeries(price.NewFitCache())
	must(err)
	for _, w := range prices.Warnings {
		log.Warn(w)
	}

	res, err := evaluate.New().Run(cfg.EvaluationInputs(profiles), prices.Series, evaluate.Options{IncludeLedger: true})
	must(err)

	// ensure output dir exists
	must(os.MkdirAll(filepath.Dir(*outPath), 0o755))
	must(evaluate.WriteLedgerCSV(*outPath, res))

	var stats *analysis.PriceStats
	if !prices.Series.IsConstant() {
		s := analysis.Summarize(prices.Series.Values())
		stats = &s
		printStats(s)
	}
	cmp := report.NewComparison(res, stats)
	if *xlsxPath != "" {
		body, err := report.BuildXLSX(cmp)
		must(err)
		must(writeFile(*xlsxPath, body))
	}
	if *pdfPath != "" {
		body, err := report.BuildPDF(cmp)
		must(err)
		must(writeFile(*pdfPath, body))
	}

	fmt.Printf("Evaluation %s: wrote ledger to %s\n", res.ID, *outPath)
	fmt.Printf("%-4s %-28s %-8s %-10s %-14s %-12s\n", "rank", "profile", "COP", "FLH", "invest/kW_el", "verdict")
	for _, r := range cmp.Ranking {
		fmt.Printf("%-4d %-28s %-8.3f %-10.1f %-14.2f %-12s\n",
			r.Rank, r.Label, r.COP, r.FullLoadHours, r.AllowableInvestmentPerKW, r.Verdict)
	}
}

func printStats(s analysis.PriceStats) {
	fmt.Printf("prices: n=%d missing=%d mean=%.2f min=%.2f max=%.2f p95-p05=%.2f\n",
		s.Count, s.Missing, s.Mean, s.Min, s.Max, s.SpreadP95P05)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func writeFile(path string, body []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
