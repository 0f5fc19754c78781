// Package metrics holds the Prometheus collectors of the API server.
// Every observe helper is a no-op until Init has run, so core packages and
// tests can call them unconditionally.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "hpe_"

	ResultSuccess = "success"
	ResultError   = "error"

	SaveCreated   = "created"
	SaveDuplicate = "duplicate"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	priceFits     *prometheus.CounterVec
	priceFitCache *prometheus.CounterVec

	evaluations   prometheus.Counter
	profilesSaved *prometheus.CounterVec

	exportTotal *prometheus.CounterVec
)

// Init registers the collectors with the default registry.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		priceFits = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_fit_total",
				Help: "Total price model fits by result",
			},
			[]string{"result"},
		)
		priceFitCache = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "price_fit_cache_total",
				Help: "Price fit cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		evaluations = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "evaluations_total",
				Help: "Total aggregate investment evaluations",
			},
		)
		profilesSaved = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "profiles_saved_total",
				Help: "Demand profile save attempts by result",
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Comparison exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			priceFits,
			priceFitCache,
			evaluations,
			profilesSaved,
			exportTotal,
		)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, status).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

// IncPriceFit counts a fit computation.
func IncPriceFit(result string) {
	if result == "" {
		result = ResultSuccess
	}
	if priceFits != nil {
		priceFits.WithLabelValues(result).Inc()
	}
}

// ObserveFitCache counts a fit cache lookup.
func ObserveFitCache(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	if priceFitCache != nil {
		priceFitCache.WithLabelValues(outcome).Inc()
	}
}

// IncEvaluation counts a finished evaluation.
func IncEvaluation() {
	if evaluations != nil {
		evaluations.Inc()
	}
}

// IncProfileSave counts a save attempt.
func IncProfileSave(result string) {
	if profilesSaved != nil {
		profilesSaved.WithLabelValues(result).Inc()
	}
}

// IncExport counts an export.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}
