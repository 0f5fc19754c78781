package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"

	"heatpump-economics/internal/analysis"
	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/config"
	"heatpump-economics/internal/evaluate"
	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/metrics"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"
	"heatpump-economics/internal/report"
	"heatpump-economics/internal/store"

	"github.com/gin-gonic/gin"
)

// Export formats of POST /api/v1/evaluate/export.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var exportContentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

// EvaluationHandler compares stored profiles against one price series.
type EvaluationHandler struct {
	store   *store.ProfileStore
	dataDir string
	cache   *price.FitCache
	engine  *evaluate.Engine
	log     *logger.Entry
}

// NewEvaluationHandler creates an evaluation handler over the profiles in s.
func NewEvaluationHandler(s *store.ProfileStore, dataDir string, cache *price.FitCache) *EvaluationHandler {
	return &EvaluationHandler{
		store:   s,
		dataDir: dataDir,
		cache:   cache,
		engine:  evaluate.New(),
		log:     logger.WithComponent("evaluate"),
	}
}

// Evaluate handles POST /api/v1/evaluate
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	cmp, warnings, ok := h.run(c, req, req.IncludeLedger)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.EvaluateResponse{
		ID:         cmp.Result.ID,
		CreatedAt:  cmp.Result.CreatedAt,
		Profiles:   cmp.Result.Profiles,
		Ranking:    cmp.Ranking,
		PriceStats: cmp.Prices,
		Warnings:   warnings,
	})
}

// Export handles POST /api/v1/evaluate/export?format=xlsx|pdf|csv
func (h *EvaluationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", FormatXLSX)
	contentType, known := exportContentTypes[format]
	if !known {
		abort(c, http.StatusBadRequest, "INVALID_FORMAT", fmt.Sprintf("unsupported export format %q", format))
		return
	}
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	cmp, _, ok := h.run(c, req, format != FormatPDF)
	if !ok {
		return
	}

	var (
		body []byte
		err  error
	)
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		err = evaluate.EncodeLedgerCSV(&buf, cmp.Result)
		body = buf.Bytes()
	case FormatXLSX:
		body, err = report.BuildXLSX(cmp)
	case FormatPDF:
		body, err = report.BuildPDF(cmp)
	}
	if err != nil {
		metrics.IncExport(format, metrics.ResultError)
		h.log.WithError(err).WithFields(logger.Fields{"format": format}).Error("export failed")
		abort(c, http.StatusInternalServerError, "EXPORT_FAILED", err.Error())
		return
	}
	metrics.IncExport(format, metrics.ResultSuccess)

	filename := fmt.Sprintf("evaluation-%s.%s", cmp.Result.ID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

// run resolves profiles and prices, evaluates them and ranks the results.
// It writes the error response itself and reports ok=false on failure.
func (h *EvaluationHandler) run(c *gin.Context, req models.EvaluateRequest, ledger bool) (report.Comparison, []string, bool) {
	profiles, err := h.selectProfiles(req.Profiles)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			abort(c, http.StatusNotFound, "PROFILE_NOT_FOUND", err.Error())
		} else {
			abort(c, http.StatusBadRequest, "NO_PROFILES", err.Error())
		}
		return report.Comparison{}, nil, false
	}

	pc := req.Price.ToConfig()
	if code, err := validatePrice(pc); err != nil {
		abort(c, http.StatusBadRequest, code, err.Error())
		return report.Comparison{}, nil, false
	}
	prices, err := pc.Build(h.dataDir, h.cache)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			abort(c, http.StatusNotFound, "COUNTRY_NOT_FOUND", err.Error())
		} else {
			abort(c, http.StatusBadRequest, "INVALID_PRICE", err.Error())
		}
		return report.Comparison{}, nil, false
	}

	in := model.EvaluationInputs{
		Profiles:            profiles,
		ExergeticEfficiency: req.ExergeticEfficiency,
		InterestRate:        req.InterestRate,
		LifetimeYears:       req.LifetimeYears,
		HeatPricePerMWh:     req.HeatPricePerMWh,
	}
	res, err := h.engine.Run(in, prices.Series, evaluate.Options{IncludeLedger: ledger})
	if err != nil {
		abort(c, http.StatusBadRequest, "INVALID_EVALUATION", err.Error())
		return report.Comparison{}, nil, false
	}
	metrics.IncEvaluation()

	var stats *analysis.PriceStats
	if !prices.Series.IsConstant() {
		s := analysis.Summarize(prices.Series.Values())
		stats = &s
	}
	warnings := append(append([]string{}, prices.Warnings...), res.Warnings...)
	res.Warnings = warnings

	h.log.WithFields(logger.Fields{
		"evaluation_id": res.ID,
		"profiles":      len(res.Profiles),
		"price_mode":    pc.Mode,
	}).Info("evaluation completed")
	return report.NewComparison(res, stats), warnings, true
}

func (h *EvaluationHandler) selectProfiles(names []string) ([]model.NamedProfile, error) {
	if len(names) == 0 {
		all := h.store.List()
		if len(all) == 0 {
			return nil, errors.New("no profiles have been saved")
		}
		return all, nil
	}
	out := make([]model.NamedProfile, 0, len(names))
	for _, name := range names {
		p, err := h.store.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func validatePrice(p config.PriceConfig) (string, error) {
	switch p.Mode {
	case config.PriceConstant:
		if p.PerMWh < 0 {
			return "INVALID_PRICE", errors.New("per_mwh must be >= 0")
		}
	case config.PriceProfile, config.PriceSynthetic:
		if p.Country == "" || p.Year == 0 {
			return "INVALID_PRICE", fmt.Errorf("price mode %s needs country and year", p.Mode)
		}
		if m := p.MultiplierOrDefault(); m < 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return "INVALID_PRICE", errors.New("multiplier must be a finite value >= 0")
		}
		if err := p.Synthetic.FactorsOrDefault().Validate(); err != nil {
			return "INVALID_FACTORS", err
		}
		if err := p.Synthetic.Validate(); err != nil {
			return "INVALID_PRICE", err
		}
	default:
		return "INVALID_PRICE", fmt.Errorf("unknown price mode %q", p.Mode)
	}
	return "", nil
}
