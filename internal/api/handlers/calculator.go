package handlers

import (
	"math"
	"net/http"
	"strconv"

	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/calc"
	"heatpump-economics/internal/data"
	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/model"

	"github.com/gin-gonic/gin"
)

// CalculatorHandler serves the closed-form economics.
type CalculatorHandler struct {
	dataDir string
	log     *logger.Entry
}

// NewCalculatorHandler creates a calculator handler reading price tables from dataDir.
func NewCalculatorHandler(dataDir string) *CalculatorHandler {
	return &CalculatorHandler{dataDir: dataDir, log: logger.WithComponent("calculator")}
}

// Cop handles POST /api/v1/cop
func (h *CalculatorHandler) Cop(c *gin.Context) {
	var req models.CopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	spec := model.HeatPumpSpec{
		Temperatures:        model.TemperaturePair{SourceC: req.SourceTempC, SinkC: req.SinkTempC},
		ExergeticEfficiency: req.ExergeticEfficiency,
	}
	if err := spec.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_HEAT_PUMP", err.Error())
		return
	}

	cop := calc.COP(req.SourceTempC, req.SinkTempC, req.ExergeticEfficiency)
	c.JSON(http.StatusOK, models.CopResponse{
		COP:                     cop,
		Lift:                    spec.Temperatures.Lift(),
		ProfitableRelativePrice: calc.ProfitableRelativePrice(req.SourceTempC, req.SinkTempC, req.ExergeticEfficiency),
	})
}

// Investment handles POST /api/v1/investment
func (h *CalculatorHandler) Investment(c *gin.Context) {
	var req models.InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if code, err := validateInvestment(req); err != nil {
		abort(c, http.StatusBadRequest, code, err.Error())
		return
	}

	in := sweepInputs(req)
	perKW := in.AllowableInvestment()
	c.JSON(http.StatusOK, models.InvestmentResponse{
		COP:                      calc.COP(in.SourceC, in.SinkC, in.ExergeticEfficiency),
		AnnuityFactor:            calc.AnnuityFactor(in.InterestRate, in.LifetimeYears),
		AllowableInvestmentPerKW: perKW,
		BreakEvenHeatPrice:       calc.BreakEvenHeatPrice(in.SourceC, in.SinkC, in.ElecPricePerMWh, in.ExergeticEfficiency),
		Verdict:                  model.VerdictFromInvestment(perKW),
	})
}

// Sweep handles POST /api/v1/sweep
func (h *CalculatorHandler) Sweep(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if code, err := validateInvestment(req.InvestmentRequest); err != nil {
		abort(c, http.StatusBadRequest, code, err.Error())
		return
	}

	in := sweepInputs(req.InvestmentRequest)
	v := calc.Variable(req.Variable)
	var (
		res *calc.SweepResult
		err error
	)
	if req.Relative {
		res, err = calc.SweepRelativePrice(in, v, req.Points)
	} else {
		res, err = calc.Sweep(in, v, req.Points)
	}
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_VARIABLE", err.Error())
		return
	}
	res.Points = finitePoints(res.Points)
	c.JSON(http.StatusOK, res)
}

// RelativePrices handles GET /api/v1/relative-prices
//
// With source_temp_c, sink_temp_c and exergetic_efficiency in the query every
// period is also flagged profitable when its ratio is below the COP.
func (h *CalculatorHandler) RelativePrices(c *gin.Context) {
	table, err := data.LoadRelativePrices(h.dataDir)
	if err != nil {
		h.log.WithError(err).Error("failed to load industrial price tables")
		abort(c, http.StatusInternalServerError, "DATA_LOAD_ERROR", err.Error())
		return
	}

	var cop float64
	if c.Query("exergetic_efficiency") != "" {
		spec, err := heatPumpFromQuery(c)
		if err != nil {
			abort(c, http.StatusBadRequest, "INVALID_HEAT_PUMP", err.Error())
			return
		}
		cop = calc.ProfitableRelativePrice(spec.Temperatures.SourceC, spec.Temperatures.SinkC, spec.ExergeticEfficiency)
	}

	resp := models.RelativePricesResponse{
		Periods: table.Periods,
		Rows:    make([]models.RelativePriceRow, 0, len(table.Countries)),
		COP:     cop,
	}
	for _, country := range table.Countries {
		row := models.RelativePriceRow{Country: country, Values: table.Values[country]}
		if cop > 0 {
			row.Profitable = make([]bool, len(row.Values))
			for i, v := range row.Values {
				row.Profitable[i] = v < cop
			}
		}
		resp.Rows = append(resp.Rows, row)
	}
	c.JSON(http.StatusOK, resp)
}

// finitePoints drops samples outside the valid domain, which JSON cannot carry.
func finitePoints(pts []calc.Point) []calc.Point {
	out := pts[:0]
	for _, p := range pts {
		if !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) {
			out = append(out, p)
		}
	}
	return out
}

func heatPumpFromQuery(c *gin.Context) (model.HeatPumpSpec, error) {
	var spec model.HeatPumpSpec
	vals := map[string]*float64{
		"source_temp_c":        &spec.Temperatures.SourceC,
		"sink_temp_c":          &spec.Temperatures.SinkC,
		"exergetic_efficiency": &spec.ExergeticEfficiency,
	}
	for key, dst := range vals {
		v, err := strconv.ParseFloat(c.Query(key), 64)
		if err != nil {
			return spec, &queryError{key: key}
		}
		*dst = v
	}
	return spec, spec.Validate()
}

type queryError struct{ key string }

func (e *queryError) Error() string { return e.key + " must be a number" }

func validateInvestment(req models.InvestmentRequest) (string, error) {
	spec := model.HeatPumpSpec{
		Temperatures:        model.TemperaturePair{SourceC: req.SourceTempC, SinkC: req.SinkTempC},
		ExergeticEfficiency: req.ExergeticEfficiency,
	}
	if err := spec.Validate(); err != nil {
		return "INVALID_HEAT_PUMP", err
	}
	econ := model.EconomicParams{
		InterestRate:           req.InterestRate,
		LifetimeYears:          req.LifetimeYears,
		HeatPricePerMWh:        req.HeatPricePerMWh,
		ElectricityPricePerMWh: req.ElectricityPricePerMWh,
		OperatingHours:         req.OperatingHours,
	}
	if err := econ.Validate(); err != nil {
		return "INVALID_ECONOMICS", err
	}
	return "", nil
}

func sweepInputs(req models.InvestmentRequest) calc.Inputs {
	return calc.Inputs{
		SourceC:             req.SourceTempC,
		SinkC:               req.SinkTempC,
		OperatingHours:      req.OperatingHours,
		HeatPricePerMWh:     req.HeatPricePerMWh,
		ElecPricePerMWh:     req.ElectricityPricePerMWh,
		InterestRate:        req.InterestRate,
		LifetimeYears:       req.LifetimeYears,
		ExergeticEfficiency: req.ExergeticEfficiency,
	}
}
