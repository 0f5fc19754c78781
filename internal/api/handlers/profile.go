package handlers

import (
	"errors"
	"net/http"
	"os"

	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/config"
	"heatpump-economics/internal/data"
	"heatpump-economics/internal/demand"
	"heatpump-economics/internal/evaluate"
	"heatpump-economics/internal/logger"
	"heatpump-economics/internal/metrics"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/store"

	"github.com/gin-gonic/gin"
)

// windowAll returns the whole series instead of a display window.
const windowAll = "all"

// ProfileHandler generates demand profiles and keeps the saved ones.
type ProfileHandler struct {
	store   *store.ProfileStore
	dataDir string
	log     *logger.Entry
}

// NewProfileHandler creates a profile handler backed by s.
func NewProfileHandler(s *store.ProfileStore, dataDir string) *ProfileHandler {
	return &ProfileHandler{store: s, dataDir: dataDir, log: logger.WithComponent("profiles")}
}

// Preview handles POST /api/v1/profiles/preview
func (h *ProfileHandler) Preview(c *gin.Context) {
	p, window, ok := h.build(c)
	if !ok {
		return
	}
	h.respondSeries(c, p, c.DefaultQuery("window", window))
}

// Save handles POST /api/v1/profiles
func (h *ProfileHandler) Save(c *gin.Context) {
	p, _, ok := h.build(c)
	if !ok {
		return
	}
	if err := h.store.Save(p); err != nil {
		switch {
		case errors.Is(err, store.ErrProfileExists):
			metrics.IncProfileSave(metrics.SaveDuplicate)
			abortWithDetails(c, http.StatusConflict, "PROFILE_EXISTS", err.Error(),
				map[string]interface{}{"name": p.Name})
		default:
			abort(c, http.StatusBadRequest, "INVALID_PROFILE", err.Error())
		}
		return
	}
	metrics.IncProfileSave(metrics.SaveCreated)
	h.log.WithFields(logger.Fields{"profile": p.Name, "steps": len(p.Points)}).Info("profile saved")

	saved, _ := h.store.Get(p.Name)
	c.JSON(http.StatusCreated, gin.H{"profile": summarize(saved)})
}

// List handles GET /api/v1/profiles
func (h *ProfileHandler) List(c *gin.Context) {
	profiles := h.store.List()
	out := make([]models.ProfileSummary, len(profiles))
	for i, p := range profiles {
		out[i] = summarize(p)
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out, "count": len(out)})
}

// Series handles GET /api/v1/profiles/:name/series
func (h *ProfileHandler) Series(c *gin.Context) {
	p, err := h.store.Get(c.Param("name"))
	if err != nil {
		abort(c, http.StatusNotFound, "PROFILE_NOT_FOUND", err.Error())
		return
	}
	h.respondSeries(c, p, c.DefaultQuery("window", string(demand.WindowFullWeek)))
}

// ListProcesses handles GET /api/v1/processes
func (h *ProfileHandler) ListProcesses(c *gin.Context) {
	processes := []models.ProcessInfo{
		{
			Name:        config.ProcessBatch,
			Description: "Repeating on/off batches inside a daily operating window.",
			Parameters: []models.ParameterInfo{
				{Name: "hour_on", Type: "float", Description: "Hour the daily operating window opens", Default: 6.0},
				{Name: "hour_off", Type: "float", Description: "Hour the daily operating window closes", Default: 22.0},
				{Name: "length_on", Type: "float", Description: "Batch length in hours (quarter-hour steps)", Default: 2.0},
				{Name: "length_off", Type: "float", Description: "Pause between batches in hours", Default: 1.0},
			},
		},
		{
			Name:        config.ProcessContinuous,
			Description: "The same 24 hourly demand values every day.",
			Parameters: []models.ParameterInfo{
				{Name: "hourly_demand", Type: "[]float", Description: "24 demand fractions in [0, 1]; empty means constant full load"},
			},
		},
		{
			Name:        config.ProcessPrebuilt,
			Description: "A measured profile from the data directory, tiled onto the year.",
			Parameters: []models.ParameterInfo{
				{Name: "prebuilt_process", Type: "string", Description: "Process file name"},
				{Name: "prebuilt_level", Type: "string", Description: "Temperature level column"},
			},
		},
	}
	for i := range processes[:2] {
		processes[i].Parameters = append(processes[i].Parameters,
			models.ParameterInfo{Name: "weekend_different", Type: "bool", Description: "Scale Saturday and Sunday", Default: false},
			models.ParameterInfo{Name: "weekend_scale", Type: "float", Description: "Weekend demand factor in [0, 1]", Default: 1.0},
		)
	}

	prebuilt, err := data.ListProcesses(h.dataDir)
	if err != nil {
		h.log.WithError(err).Debug("no pre-built demand profiles")
		prebuilt = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"processes": processes, "prebuilt": prebuilt})
}

// build binds a ProfileRequest and generates its yearly series. It also
// returns the requested display window.
func (h *ProfileHandler) build(c *gin.Context) (model.NamedProfile, string, bool) {
	var req models.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return model.NamedProfile{}, "", false
	}

	temps := model.TemperaturePair{SourceC: req.SourceTempC, SinkC: req.SinkTempC}
	if err := temps.Validate(); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_TEMPERATURES", err.Error())
		return model.NamedProfile{}, "", false
	}
	points, err := req.Demand.ToConfig().BuildPoints(h.dataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			abort(c, http.StatusNotFound, "DATA_NOT_FOUND", err.Error())
		} else {
			abort(c, http.StatusBadRequest, "INVALID_DEMAND", err.Error())
		}
		return model.NamedProfile{}, "", false
	}
	return model.NamedProfile{Name: req.Name, Temperatures: temps, Points: points}, req.Window, true
}

func (h *ProfileHandler) respondSeries(c *gin.Context, p model.NamedProfile, window string) {
	points := p.Points
	if window != windowAll {
		var err error
		points, err = demand.Window(p.Points, demand.WindowKind(window))
		if err != nil {
			abort(c, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
			return
		}
	}
	if window == "" {
		window = string(demand.WindowFullWeek)
	}
	c.JSON(http.StatusOK, models.ProfileResponse{
		Profile: summarize(p),
		Window:  window,
		Points:  points,
	})
}

func summarize(p model.NamedProfile) models.ProfileSummary {
	s := models.ProfileSummary{
		Name:         p.Name,
		Label:        p.Label(),
		Temperatures: p.Temperatures,
		Steps:        len(p.Points),
	}
	if len(p.Points) > 0 {
		dt := evaluate.ModalStepHours(p.Points)
		for _, pt := range p.Points {
			s.FullLoadHours += pt.Demand * dt
		}
		s.Start = p.Points[0].Time
		s.End = p.Points[len(p.Points)-1].Time
	}
	return s
}
