package main

import (
	"fmt"
	"os"
	"strconv"

	"heatpump-economics/internal/api"
	"heatpump-economics/internal/data"
	"heatpump-economics/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	log := logger.GetLogger()
	maxAge, _ := strconv.Atoi(os.Getenv("LOG_MAX_AGE_DAYS"))
	if err := log.Configure(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_OUTPUT"), maxAge); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	entry := log.WithComponent("main")

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	dataDir := data.DefaultDataDir()
	if _, err := os.Stat(dataDir); err != nil {
		entry.WithFields(logger.Fields{"data_dir": dataDir}).Warn("data directory not found, price and pre-built profile routes will fail")
	}

	router := api.NewRouter(api.Options{
		DataDir:     dataDir,
		HeatPumpDir: os.Getenv("HEAT_PUMP_DIR"),
		StaticDir:   staticDir,
	})

	addr := fmt.Sprintf(":%s", port)
	entry.WithFields(logger.Fields{"addr": addr, "data_dir": dataDir}).Info("starting API server")
	if err := router.Run(addr); err != nil {
		entry.WithError(err).Fatal("failed to start server")
	}
}
