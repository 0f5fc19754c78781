// Package api assembles the HTTP server: middleware, handlers and routes.
package api

import (
	"net/http"
	"os"
	"strings"

	"heatpump-economics/internal/api/handlers"
	"heatpump-economics/internal/api/middleware"
	"heatpump-economics/internal/metrics"
	"heatpump-economics/internal/price"
	"heatpump-economics/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the shared dependencies of the handlers.
type Options struct {
	DataDir     string
	HeatPumpDir string
	// StaticDir is served as a single page app when it exists.
	StaticDir string
	Store     *store.ProfileStore
	Cache     *price.FitCache
}

// NewRouter builds the gin engine. Nil Store and Cache are replaced by empty ones.
func NewRouter(opts Options) *gin.Engine {
	if opts.Store == nil {
		opts.Store = store.New()
	}
	if opts.Cache == nil {
		opts.Cache = price.NewFitCache()
	}
	if opts.Cache.OnLookup == nil {
		opts.Cache.OnLookup = metrics.ObserveFitCache
	}
	metrics.Init()

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	calculator := handlers.NewCalculatorHandler(opts.DataDir)
	profiles := handlers.NewProfileHandler(opts.Store, opts.DataDir)
	prices := handlers.NewPriceHandler(opts.DataDir, opts.Cache)
	evaluation := handlers.NewEvaluationHandler(opts.Store, opts.DataDir, opts.Cache)
	var heatPumps *handlers.HeatPumpHandler
	if opts.HeatPumpDir != "" {
		heatPumps = handlers.NewHeatPumpHandlerAt(opts.HeatPumpDir)
	} else {
		heatPumps = handlers.NewHeatPumpHandler()
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "profiles": opts.Store.Len(), "cached_fits": opts.Cache.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/cop", calculator.Cop)
		v1.POST("/investment", calculator.Investment)
		v1.POST("/sweep", calculator.Sweep)
		v1.GET("/relative-prices", calculator.RelativePrices)

		v1.GET("/processes", profiles.ListProcesses)
		v1.POST("/profiles/preview", profiles.Preview)
		v1.POST("/profiles", profiles.Save)
		v1.GET("/profiles", profiles.List)
		v1.GET("/profiles/:name/series", profiles.Series)

		v1.GET("/prices/countries", prices.Countries)
		v1.POST("/prices/synthesize", prices.Synthesize)

		v1.POST("/evaluate", evaluation.Evaluate)
		v1.POST("/evaluate/export", evaluation.Export)

		v1.GET("/heat-pumps", heatPumps.ListHeatPumps)
	}

	if opts.StaticDir != "" {
		serveStatic(router, opts.StaticDir)
	}
	return router
}

// serveStatic serves a built frontend and falls back to index.html for
// every non-API route.
func serveStatic(router *gin.Engine, dir string) {
	if _, err := os.Stat(dir); err != nil {
		return
	}
	router.Static("/assets", dir+"/assets")
	router.StaticFile("/favicon.ico", dir+"/favicon.ico")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(dir + "/index.html")
	})
}
