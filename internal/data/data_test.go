package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// wholesaleCSV writes hours hourly rows starting at start, price = hour index.
func wholesaleCSV(start time.Time, hours int) string {
	var b strings.Builder
	b.WriteString("Datetime (UTC),Datetime (Local),Price (EUR/MWhe)\n")
	for i := 0; i < hours; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&b, "%s,%s,%d\n", ts.Format("2006-01-02 15:04:05"), ts.Format("2006-01-02 15:04:05"), i%100)
	}
	return b.String()
}

func TestParseWholesalePrices(t *testing.T) {
	in := "Country,Datetime (Local),Price (EUR/MWhe)\n" +
		"Germany,2021-01-01 00:00:00,50.5\n" +
		"Germany,2021-01-01 01:00:00,\n" +
		"Germany,2021-01-01 02:00:00,-3\n"
	pts, err := ParseWholesalePrices(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), pts[0].Time)
	assert.Equal(t, 50.5, pts[0].Price)
	assert.True(t, math.IsNaN(pts[1].Price))
	assert.Equal(t, -3.0, pts[2].Price)
}

func TestParseWholesalePricesErrors(t *testing.T) {
	_, err := ParseWholesalePrices(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)

	_, err = ParseWholesalePrices(strings.NewReader("Datetime (Local),Price (EUR/MWhe)\nyesterday,4\n"))
	assert.Error(t, err)
}

func TestFullYearsAndSelect(t *testing.T) {
	dir := t.TempDir()
	// all of 2021 plus the first 100 hours of 2022
	writeFile(t, WholesalePath(dir, "DE"), wholesaleCSV(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), 8760+100))

	pts, err := LoadWholesalePrices(dir, "DE")
	require.NoError(t, err)
	assert.Equal(t, []int{2021}, FullYears(pts))

	year, err := SelectYear(pts, 2021)
	require.NoError(t, err)
	assert.Len(t, year, 8760)
	assert.Equal(t, 99.0, PriceValues(year)[99])

	_, err = SelectYear(pts, 2022)
	assert.ErrorIs(t, err, ErrNotFullYear)

	_, err = LoadWholesalePrices(dir, "../etc")
	assert.Error(t, err)
}

func TestListCountriesAndProcesses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, WholesalePath(dir, "FR"), "x")
	writeFile(t, WholesalePath(dir, "AT"), "x")
	writeFile(t, filepath.Join(dir, WholesaleDir, "notes.txt"), "x")
	writeFile(t, DemandProfilePath(dir, "paper"), "x")

	countries, err := ListCountries(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"AT", "FR"}, countries)

	procs, err := ListProcesses(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"paper"}, procs)

	_, err = ListCountries(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	assert.Equal(t, "./data", DefaultDataDir())
	t.Setenv("DATA_DIR", "/srv/hpe")
	assert.Equal(t, "/srv/hpe", DefaultDataDir())
}

const elTable = `country,2021-S1,2021-S2,2022-S1,empty
DE,0.10,0.12,0.20,:
FR,0.08,:,0.15,
IT,0.11,0.13,0.22,
`

const gasTable = `country,2021-S1,2021-S2,2022-S1
DE,0.02,0.03,0.05
IT,0.04,0.05,0
PL,0.03,0.03,0.04
`

func TestParsePriceTable(t *testing.T) {
	tbl, err := ParsePriceTable(strings.NewReader(elTable))
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-S1", "2021-S2", "2022-S1"}, tbl.Periods)
	// FR has a missing cell
	assert.Equal(t, []string{"DE", "IT"}, tbl.Countries)

	row, ok := tbl.Row("DE")
	require.True(t, ok)
	assert.Equal(t, []float64{0.10, 0.12, 0.20}, row)

	avg, ok := tbl.AnnualAverage("DE", 2021)
	require.True(t, ok)
	assert.InDelta(t, 0.11, avg, 1e-12)

	_, ok = tbl.AnnualAverage("DE", 2019)
	assert.False(t, ok)
	_, ok = tbl.AnnualAverage("FR", 2021)
	assert.False(t, ok)
}

func TestRelativePrices(t *testing.T) {
	el, err := ParsePriceTable(strings.NewReader(elTable))
	require.NoError(t, err)
	gas, err := ParsePriceTable(strings.NewReader(gasTable))
	require.NoError(t, err)

	rel := RelativePrices(el, gas)
	assert.Equal(t, []string{"2021-S1", "2021-S2", "2022-S1"}, rel.Periods)
	// IT divides by zero gas price
	assert.Equal(t, []string{"DE"}, rel.Countries)
	assert.InDelta(t, 5.0, rel.Values["DE"][0], 1e-9)
	assert.InDelta(t, 4.0, rel.Values["DE"][2], 1e-9)
}

func TestLoadRelativePrices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ElectricityTable), elTable)
	writeFile(t, filepath.Join(dir, GasTable), gasTable)

	rel, err := LoadRelativePrices(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"DE"}, rel.Countries)

	_, err = LoadRelativePrices(t.TempDir())
	assert.Error(t, err)
}

const demandCSV = `level,80C,120C
unit,kW,kW
source,measured,measured
note,,
2021-01-01 00:00,1,4
2021-01-01 00:15,2,x
2021-01-01 00:30,3,8
`

func TestLoadDemandProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, DemandProfilePath(dir, "paper"), demandCSV)

	d, err := LoadDemandProfiles(dir, "paper")
	require.NoError(t, err)
	assert.Equal(t, "paper", d.Process)
	assert.Equal(t, []string{"80C", "120C"}, d.Levels)

	low, err := d.Level("80C")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, low)

	high, err := d.Level("120C")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(high[1]))

	_, err = d.Level("200C")
	assert.Error(t, err)
}

func TestParseDemandProfilesTooShort(t *testing.T) {
	_, err := ParseDemandProfiles(strings.NewReader("a,b\nc,d\n"))
	assert.Error(t, err)
}
