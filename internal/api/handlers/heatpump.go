package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/config"
	"heatpump-economics/internal/logger"

	"github.com/gin-gonic/gin"
)

// HeatPumpHandler lists heat pump presets.
type HeatPumpHandler struct {
	dir string
	log *logger.Entry
}

// NewHeatPumpHandler reads presets from HEAT_PUMP_DIR, defaulting to
// ./examples/heatpumps.
func NewHeatPumpHandler() *HeatPumpHandler {
	dir := os.Getenv("HEAT_PUMP_DIR")
	if dir == "" {
		dir = filepath.Join("examples", "heatpumps")
	}
	return NewHeatPumpHandlerAt(dir)
}

// NewHeatPumpHandlerAt reads presets from dir.
func NewHeatPumpHandlerAt(dir string) *HeatPumpHandler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	h := &HeatPumpHandler{dir: dir, log: logger.WithComponent("heatpumps")}
	h.log.WithFields(logger.Fields{"dir": dir}).Debug("using heat pump directory")
	return h
}

// ListHeatPumps handles GET /api/v1/heat-pumps
func (h *HeatPumpHandler) ListHeatPumps(c *gin.Context) {
	heatPumps := []models.HeatPumpInfo{}

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		h.log.WithError(err).Warn("failed to read heat pump directory")
		c.JSON(http.StatusOK, gin.H{"heat_pumps": heatPumps})
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(h.dir, entry.Name())
		hp, err := config.LoadHeatPumpFile(path)
		if err != nil {
			h.log.WithError(err).WithFields(logger.Fields{"file": path}).Warn("skipping invalid heat pump file")
			continue
		}

		// "industrial.yaml" -> "industrial"
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		name := hp.Name
		if name == "" {
			name = id
		}
		heatPumps = append(heatPumps, models.HeatPumpInfo{
			ID:                  id,
			Name:                name,
			File:                path,
			ExergeticEfficiency: hp.ExergeticEfficiency,
		})
	}

	c.JSON(http.StatusOK, gin.H{"heat_pumps": heatPumps})
}
