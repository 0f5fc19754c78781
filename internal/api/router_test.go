package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heatpump-economics/internal/api/models"
	"heatpump-economics/internal/calc"
	"heatpump-economics/internal/data"
	"heatpump-economics/internal/model"
	"heatpump-economics/internal/price"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testDataDir lays out one country with a full 2021 and both industrial tables.
func testDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString("Datetime (Local),Price (EUR/MWhe)\n")
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8760; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&b, "%s,%d\n", ts.Format("2006-01-02 15:04:05"), 40+(i%24)*5)
	}
	writeFile(t, data.WholesalePath(dir, "DE"), b.String())

	writeFile(t, filepath.Join(dir, data.ElectricityTable), "country,2021-S1,2021-S2\nDE,0.10,0.12\n")
	writeFile(t, filepath.Join(dir, data.GasTable), "country,2021-S1,2021-S2\nDE,0.02,0.03\n")
	return dir
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hpDir := t.TempDir()
	writeFile(t, filepath.Join(hpDir, "industrial.yaml"), "heat_pump:\n  name: Industrial HTHP\n  exergetic_efficiency: 0.55\n")
	writeFile(t, filepath.Join(hpDir, "broken.yaml"), "heat_pump: [\n")
	return NewRouter(Options{DataDir: testDataDir(t), HeatPumpDir: hpDir})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e models.ErrorResponse
	decode(t, w, &e)
	return e.Error.Code
}

var continuousProfile = map[string]interface{}{
	"name":          "drying",
	"source_temp_c": 30,
	"sink_temp_c":   90,
	"demand":        map[string]interface{}{"process": "continuous"},
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hpe_http_requests_total")
}

func TestCop(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/cop", models.CopRequest{SourceTempC: 30, SinkTempC: 90, ExergeticEfficiency: 0.6})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CopResponse
	decode(t, w, &resp)
	assert.InDelta(t, 3.63, resp.COP, 1e-9)
	assert.Equal(t, 60.0, resp.Lift)
	assert.Equal(t, resp.COP, resp.ProfitableRelativePrice)

	w = do(t, r, http.MethodPost, "/api/v1/cop", models.CopRequest{SourceTempC: 90, SinkTempC: 30, ExergeticEfficiency: 0.6})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_HEAT_PUMP", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/cop", map[string]interface{}{"source_temp_c": 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func investmentRequest() models.InvestmentRequest {
	return models.InvestmentRequest{
		SourceTempC:            30,
		SinkTempC:              90,
		OperatingHours:         8000,
		HeatPricePerMWh:        50,
		ElectricityPricePerMWh: 150,
		InterestRate:           0.05,
		LifetimeYears:          20,
		ExergeticEfficiency:    0.6,
	}
}

func TestInvestment(t *testing.T) {
	r := newTestRouter(t)
	req := investmentRequest()
	w := do(t, r, http.MethodPost, "/api/v1/investment", req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.InvestmentResponse
	decode(t, w, &resp)
	want := calc.AllowableInvestmentPerKW(30, 90, 8000, 50, 150, 0.05, 20, 0.6)
	assert.InDelta(t, want, resp.AllowableInvestmentPerKW, 1e-9)
	assert.InDelta(t, 150/3.63, resp.BreakEvenHeatPrice, 1e-9)
	assert.Equal(t, model.VerdictProfitable, resp.Verdict)

	req.OperatingHours = 9000
	w = do(t, r, http.MethodPost, "/api/v1/investment", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ECONOMICS", errorCode(t, w))
}

func TestSweep(t *testing.T) {
	r := newTestRouter(t)
	req := models.SweepRequest{InvestmentRequest: investmentRequest(), Variable: "electricity_price", Points: 11}
	w := do(t, r, http.MethodPost, "/api/v1/sweep", req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp calc.SweepResult
	decode(t, w, &resp)
	require.Len(t, resp.Points, 11)
	assert.Equal(t, 100.0, resp.Points[0].X)
	assert.Equal(t, 200.0, resp.Points[10].X)
	// investment falls as electricity gets dearer
	assert.Greater(t, resp.Points[0].Y, resp.Points[10].Y)

	req.Variable = "sink_temperature"
	req.Relative = true
	w = do(t, r, http.MethodPost, "/api/v1/sweep", req)
	require.Equal(t, http.StatusOK, w.Code)

	req.Variable = "heat_price"
	w = do(t, r, http.MethodPost, "/api/v1/sweep", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_VARIABLE", errorCode(t, w))
}

func TestSweepDropsNonFinitePoints(t *testing.T) {
	r := newTestRouter(t)
	req := models.SweepRequest{InvestmentRequest: investmentRequest(), Variable: "interest_rate", Points: 3}
	req.InterestRate = 0.001
	w := do(t, r, http.MethodPost, "/api/v1/sweep", req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp calc.SweepResult
	decode(t, w, &resp)
	// r = 0 yields 0/0 and is left out
	assert.Len(t, resp.Points, 2)
}

func TestRelativePrices(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/relative-prices", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RelativePricesResponse
	decode(t, w, &resp)
	assert.Equal(t, []string{"2021-S1", "2021-S2"}, resp.Periods)
	require.Len(t, resp.Rows, 1)
	assert.InDeltaSlice(t, []float64{5, 4}, resp.Rows[0].Values, 1e-9)
	assert.Nil(t, resp.Rows[0].Profitable)

	// COP 30->90 at full efficiency is 6.05
	w = do(t, r, http.MethodGet, "/api/v1/relative-prices?source_temp_c=30&sink_temp_c=90&exergetic_efficiency=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, []bool{true, true}, resp.Rows[0].Profitable)

	w = do(t, r, http.MethodGet, "/api/v1/relative-prices?source_temp_c=30&exergetic_efficiency=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/profiles/preview", continuousProfile)
	require.Equal(t, http.StatusOK, w.Code)
	var preview models.ProfileResponse
	decode(t, w, &preview)
	assert.Equal(t, "full_week", preview.Window)
	assert.Len(t, preview.Points, 7*96)
	assert.Equal(t, 35040, preview.Profile.Steps)
	assert.InDelta(t, 8760.0, preview.Profile.FullLoadHours, 1e-6)

	w = do(t, r, http.MethodGet, "/api/v1/profiles", nil)
	assert.Contains(t, w.Body.String(), `"count":0`)

	w = do(t, r, http.MethodPost, "/api/v1/profiles", continuousProfile)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/profiles", continuousProfile)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "PROFILE_EXISTS", errorCode(t, w))

	w = do(t, r, http.MethodGet, "/api/v1/profiles", nil)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(t, r, http.MethodGet, "/api/v1/profiles/drying/series?window=weekend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var series models.ProfileResponse
	decode(t, w, &series)
	assert.Len(t, series.Points, 2*96)
	assert.True(t, model.IsWeekend(series.Points[0].Time))

	w = do(t, r, http.MethodGet, "/api/v1/profiles/drying/series?window=all", nil)
	decode(t, w, &series)
	assert.Len(t, series.Points, 35040)

	w = do(t, r, http.MethodGet, "/api/v1/profiles/drying/series?window=month", nil)
	assert.Equal(t, "INVALID_WINDOW", errorCode(t, w))

	w = do(t, r, http.MethodGet, "/api/v1/profiles/missing/series", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPrebuiltProfileWithBlankCell(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := testDataDir(t)
	writeFile(t, data.DemandProfilePath(dir, "paper"),
		"index,80C\nunit,kW\nsource,meter\nnote,-\n0,1\n1,0.5\n2,\n3,0.8\n")
	r := NewRouter(Options{DataDir: dir, HeatPumpDir: t.TempDir()})

	body := map[string]interface{}{
		"name": "paper", "source_temp_c": 30, "sink_temp_c": 80,
		"demand": map[string]interface{}{"process": "prebuilt", "prebuilt_process": "paper", "prebuilt_level": "80C"},
	}
	w := do(t, r, http.MethodPost, "/api/v1/profiles/preview", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DEMAND", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/profiles", body)
	assert.Equal(t, "INVALID_DEMAND", errorCode(t, w))
	w = do(t, r, http.MethodGet, "/api/v1/profiles", nil)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestProfileRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	bad := map[string]interface{}{"name": "x", "source_temp_c": 90, "sink_temp_c": 30, "demand": map[string]interface{}{"process": "continuous"}}
	w := do(t, r, http.MethodPost, "/api/v1/profiles", bad)
	assert.Equal(t, "INVALID_TEMPERATURES", errorCode(t, w))

	bad = map[string]interface{}{"name": "x", "source_temp_c": 30, "sink_temp_c": 90, "demand": map[string]interface{}{"process": "fermenting"}}
	w = do(t, r, http.MethodPost, "/api/v1/profiles", bad)
	assert.Equal(t, "INVALID_DEMAND", errorCode(t, w))

	bad = map[string]interface{}{"name": "x", "source_temp_c": 30, "sink_temp_c": 90,
		"demand": map[string]interface{}{"process": "prebuilt", "prebuilt_process": "paper", "prebuilt_level": "L1"}}
	w = do(t, r, http.MethodPost, "/api/v1/profiles", bad)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/profiles", map[string]interface{}{"name": " ", "source_temp_c": 30, "sink_temp_c": 90,
		"demand": map[string]interface{}{"process": "continuous"}})
	assert.Equal(t, "INVALID_PROFILE", errorCode(t, w))
}

func TestListProcessesAndHeatPumps(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/processes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var procs struct {
		Processes []models.ProcessInfo `json:"processes"`
		Prebuilt  []string             `json:"prebuilt"`
	}
	decode(t, w, &procs)
	require.Len(t, procs.Processes, 3)
	assert.Equal(t, "batch", procs.Processes[0].Name)
	assert.Empty(t, procs.Prebuilt)

	w = do(t, r, http.MethodGet, "/api/v1/heat-pumps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hps struct {
		HeatPumps []models.HeatPumpInfo `json:"heat_pumps"`
	}
	decode(t, w, &hps)
	require.Len(t, hps.HeatPumps, 1)
	assert.Equal(t, "industrial", hps.HeatPumps[0].ID)
	assert.Equal(t, "Industrial HTHP", hps.HeatPumps[0].Name)
	assert.Equal(t, 0.55, hps.HeatPumps[0].ExergeticEfficiency)
}

func TestPrices(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/prices/countries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var countries struct {
		Countries []models.CountryInfo `json:"countries"`
	}
	decode(t, w, &countries)
	require.Len(t, countries.Countries, 1)
	assert.Equal(t, []int{2021}, countries.Countries[0].FullYears)

	req := models.SynthesizeRequest{Country: "DE", Year: 2021, MeanPerMWh: floatPtr(100), IncludeRows: true, IncludeFit: true}
	w = do(t, r, http.MethodPost, "/api/v1/prices/synthesize", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.SynthesizeResponse
	decode(t, w, &resp)
	assert.False(t, resp.Cached)
	assert.Equal(t, 2025, resp.TargetYear)
	assert.Len(t, resp.Rows, 8760)
	assert.Len(t, resp.Fit, 8760)
	assert.InDelta(t, 100, resp.Stats.Mean, 1e-6)

	w = do(t, r, http.MethodPost, "/api/v1/prices/synthesize", req)
	decode(t, w, &resp)
	assert.True(t, resp.Cached)

	w = do(t, r, http.MethodPost, "/api/v1/prices/synthesize", models.SynthesizeRequest{Country: "DE", Year: 2019})
	assert.Equal(t, "YEAR_NOT_AVAILABLE", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/prices/synthesize", models.SynthesizeRequest{Country: "FR", Year: 2021})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func floatPtr(v float64) *float64 { return &v }

func TestSynthesizeTargetMean(t *testing.T) {
	r := newTestRouter(t)
	cases := map[string]struct {
		mean *float64
		want float64
	}{
		"source mean": {nil, 97.5},
		"zero":        {floatPtr(0), 0},
		"negative":    {floatPtr(-20), -20},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/prices/synthesize",
				models.SynthesizeRequest{Country: "DE", Year: 2021, MeanPerMWh: tc.mean})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var resp models.SynthesizeResponse
			decode(t, w, &resp)
			assert.InDelta(t, tc.want, resp.Mean, 1e-9)
			assert.InDelta(t, tc.want, resp.Stats.Mean, 1e-6)
		})
	}

	// all-zero factors flatten the profile instead of falling back to the defaults
	flat := price.ScalingFactors{}
	w := do(t, r, http.MethodPost, "/api/v1/prices/synthesize",
		models.SynthesizeRequest{Country: "DE", Year: 2021, MeanPerMWh: floatPtr(30), Factors: &flat})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.SynthesizeResponse
	decode(t, w, &resp)
	assert.InDelta(t, 30, resp.Stats.Min, 1e-9)
	assert.InDelta(t, 30, resp.Stats.Max, 1e-9)
}

func evaluateRequest() models.EvaluateRequest {
	return models.EvaluateRequest{
		ExergeticEfficiency: 0.6,
		InterestRate:        0.05,
		LifetimeYears:       20,
		HeatPricePerMWh:     50,
		Price:               models.PriceSpec{PerMWh: 150},
	}
}

func TestEvaluate(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/evaluate", evaluateRequest())
	assert.Equal(t, "NO_PROFILES", errorCode(t, w))

	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/profiles", continuousProfile).Code)
	batch := map[string]interface{}{
		"name": "washing", "source_temp_c": 40, "sink_temp_c": 120,
		"demand": map[string]interface{}{"process": "batch",
			"batch": map[string]interface{}{"hour_on": 6, "hour_off": 22, "length_on": 2, "length_off": 2}},
	}
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/profiles", batch).Code)

	w = do(t, r, http.MethodPost, "/api/v1/evaluate", evaluateRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp models.EvaluateResponse
	decode(t, w, &resp)
	require.Len(t, resp.Profiles, 2)
	assert.NotEmpty(t, resp.ID)
	assert.Nil(t, resp.PriceStats)
	assert.Empty(t, resp.Profiles[0].Ledger)
	require.Len(t, resp.Ranking, 2)
	assert.Equal(t, 1, resp.Ranking[0].Rank)
	assert.GreaterOrEqual(t, resp.Ranking[0].AllowableInvestmentPerKW, resp.Ranking[1].AllowableInvestmentPerKW)

	// the drying profile alone matches the closed form at 8760 full-load hours
	req := evaluateRequest()
	req.Profiles = []string{"drying"}
	w = do(t, r, http.MethodPost, "/api/v1/evaluate", req)
	decode(t, w, &resp)
	require.Len(t, resp.Profiles, 1)
	want := calc.AllowableInvestmentPerKW(30, 90, 8760, 50, 150, 0.05, 20, 0.6)
	assert.InDelta(t, want, resp.Profiles[0].AllowableInvestmentPerKW, 1e-6)

	req.Profiles = []string{"nope"}
	w = do(t, r, http.MethodPost, "/api/v1/evaluate", req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = evaluateRequest()
	req.Price = models.PriceSpec{Mode: "synthetic", Country: "DE", Year: 2021, MeanPerMWh: floatPtr(120)}
	req.IncludeLedger = true
	w = do(t, r, http.MethodPost, "/api/v1/evaluate", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &resp)
	require.NotNil(t, resp.PriceStats)
	assert.InDelta(t, 120, resp.PriceStats.Mean, 1e-6)
	assert.Len(t, resp.Profiles[0].Ledger, 35040)
	assert.Empty(t, resp.Warnings)

	req.Price = models.PriceSpec{Mode: "profile"}
	w = do(t, r, http.MethodPost, "/api/v1/evaluate", req)
	assert.Equal(t, "INVALID_PRICE", errorCode(t, w))
}

func TestEvaluateExport(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/profiles", continuousProfile).Code)

	w := do(t, r, http.MethodPost, "/api/v1/evaluate/export?format=csv", evaluateRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 35040+1)

	w = do(t, r, http.MethodPost, "/api/v1/evaluate/export?format=xlsx", evaluateRequest())
	require.Equal(t, http.StatusOK, w.Code)
	// xlsx is a zip archive
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = do(t, r, http.MethodPost, "/api/v1/evaluate/export?format=pdf", evaluateRequest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = do(t, r, http.MethodPost, "/api/v1/evaluate/export?format=docx", evaluateRequest())
	assert.Equal(t, "INVALID_FORMAT", errorCode(t, w))
}
