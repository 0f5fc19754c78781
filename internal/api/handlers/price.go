package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"

	"heatpump-economics/internal/analysis"
	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/config"
	"heatpump-economics/internal/data"
	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/metrics"
	"heatpump-economics/internal/price"

	"github.com/gin-gonic/gin"
)

// PriceHandler serves wholesale price data and synthetic profiles.
type PriceHandler struct {
	dataDir string
	cache   *price.FitCache
	log     *logger.Entry
}

// NewPriceHandler creates a price handler. Fits are memoized in cache.
func NewPriceHandler(dataDir string, cache *price.FitCache) *PriceHandler {
	return &PriceHandler{dataDir: dataDir, cache: cache, log: logger.WithComponent("prices")}
}

// Countries handles GET /api/v1/prices/countries
func (h *PriceHandler) Countries(c *gin.Context) {
	names, err := data.ListCountries(h.dataDir)
	if err != nil {
		h.log.WithError(err).Warn("no wholesale price directory")
		c.JSON(http.StatusOK, gin.H{"countries": []models.CountryInfo{}, "count": 0})
		return
	}

	countries := make([]models.CountryInfo, 0, len(names))
	for _, name := range names {
		info := models.CountryInfo{Country: name}
		points, err := data.LoadWholesalePrices(h.dataDir, name)
		if err != nil {
			h.log.WithError(err).WithFields(logger.Fields{"country": name}).Warn("skipping unreadable price file")
			continue
		}
		info.FullYears = data.FullYears(points)
		countries = append(countries, info)
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries, "count": len(countries)})
}

// Synthesize handles POST /api/v1/prices/synthesize
func (h *PriceHandler) Synthesize(c *gin.Context) {
	var req models.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	syntheticCfg := config.SyntheticConfig{MeanPerMWh: req.MeanPerMWh, Factors: req.Factors}
	factors := syntheticCfg.FactorsOrDefault()
	if err := factors.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_FACTORS", err.Error())
		return
	}
	if err := syntheticCfg.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_MEAN", err.Error())
		return
	}

	all, err := data.LoadWholesalePrices(h.dataDir, req.Country)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			abort(c, http.StatusNotFound, "COUNTRY_NOT_FOUND", err.Error())
		} else {
			abort(c, http.StatusBadRequest, "DATA_LOAD_ERROR", err.Error())
		}
		return
	}
	points, err := data.SelectYear(all, req.Year)
	if err != nil {
		abortWithDetails(c, http.StatusBadRequest, "YEAR_NOT_AVAILABLE", err.Error(),
			map[string]interface{}{"full_years": data.FullYears(all)})
		return
	}

	fit, cached, err := h.cache.Fit(points, req.Year)
	if err != nil {
		metrics.IncPriceFit(metrics.ResultError)
		abort(c, http.StatusUnprocessableEntity, "FIT_FAILED", err.Error())
		return
	}
	metrics.IncPriceFit(metrics.ResultSuccess)

	mean := analysis.Summarize(data.PriceValues(points)).Mean
	if req.MeanPerMWh != nil {
		mean = *req.MeanPerMWh
	}
	target := req.TargetYear
	if target == 0 {
		target = demand.DefaultYear
	}
	syn, err := price.Synthesize(fit.Params, mean, factors, target)
	if err != nil {
		abort(c, http.StatusBadRequest, "SYNTHESIS_FAILED", err.Error())
		return
	}

	resp := models.SynthesizeResponse{
		Country:    req.Country,
		SourceYear: req.Year,
		TargetYear: target,
		Mean:       mean,
		Factors:    factors,
		Params:     fit.Params,
		Cached:     cached,
		Stats:      analysis.Summarize(syn.Values()),
	}
	if missing := price.Profile(data.PriceValues(points)).MissingCount(); missing > 0 {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("%d source hours have no price and were left out of the fit", missing))
	}
	if syn.Fallbacks > 0 {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf(
			"%d hours had no fitted daily cycle value and used the hourly average", syn.Fallbacks))
	}
	if req.IncludeRows {
		resp.Rows = syn.Rows
	}
	if req.IncludeFit {
		resp.Fit = fitRows(fit.Rows)
	}

	h.log.WithFields(logger.Fields{
		"country":     req.Country,
		"source_year": req.Year,
		"target_year": target,
		"cached":      cached,
	}).Info("price profile synthesized")
	c.JSON(http.StatusOK, resp)
}

func fitRows(rows []price.FittedRow) []models.FitRow {
	out := make([]models.FitRow, len(rows))
	for i, r := range rows {
		out[i] = models.FitRow{
			Time:       r.Time,
			Price:      finiteOrNil(r.Price),
			Trend:      r.Trend,
			Weekly:     r.Weekly,
			HourlyMean: r.HourlyMean,
			Residual:   finiteOrNil(r.Residual),
			CycleOnly:  r.CycleOnly,
		}
	}
	return out
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
