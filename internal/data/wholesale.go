package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"heatpump-economics/internal/model"
)

// Column names of a wholesale price file.
const (
	ColDatetime = "Datetime (Local)"
	ColPrice    = "Price (EUR/MWhe)"
)

// ErrNotFullYear is returned when a year has fewer than 8760 hourly prices.
var ErrNotFullYear = errors.New("year does not have a full set of hourly prices")

var datetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// LoadWholesalePrices reads the hourly price file of country from dataDir.
func LoadWholesalePrices(dataDir, country string) ([]model.PricePoint, error) {
	if err := validName(country); err != nil {
		return nil, err
	}
	f, err := os.Open(WholesalePath(dataDir, country))
	if err != nil {
		return nil, fmt.Errorf("failed to open price file for %s: %w", country, err)
	}
	defer f.Close()
	return ParseWholesalePrices(f)
}

// ParseWholesalePrices parses a CSV with ColDatetime and ColPrice columns.
// Local timestamps are kept as wall-clock times in UTC. Empty or non-numeric
// prices become NaN.
func ParseWholesalePrices(r io.Reader) ([]model.PricePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	tCol, pCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case ColDatetime:
			tCol = i
		case ColPrice:
			pCol = i
		}
	}
	if tCol < 0 || pCol < 0 {
		return nil, fmt.Errorf("missing %q or %q column", ColDatetime, ColPrice)
	}

	var out []model.PricePoint
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if tCol >= len(rec) {
			return nil, fmt.Errorf("line %d: missing datetime", line)
		}
		ts, err := parseDatetime(rec[tCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		p := math.NaN()
		if pCol < len(rec) {
			p = parseNumber(rec[pCol])
		}
		out = append(out, model.PricePoint{Time: ts, Price: p})
	}
	return out, nil
}

// FullYears lists, in ascending order, the years with at least 8760 points.
func FullYears(points []model.PricePoint) []int {
	counts := map[int]int{}
	for _, p := range points {
		counts[p.Time.Year()]++
	}
	var out []int
	for y, n := range counts {
		if n >= model.HoursPerYear {
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

// SelectYear returns the points of a full year in file order.
func SelectYear(points []model.PricePoint, year int) ([]model.PricePoint, error) {
	var out []model.PricePoint
	for _, p := range points {
		if p.Time.Year() == year {
			out = append(out, p)
		}
	}
	if len(out) < model.HoursPerYear {
		return nil, fmt.Errorf("%w: %d has %d points", ErrNotFullYear, year, len(out))
	}
	return out, nil
}

// PriceValues returns the bare prices.
func PriceValues(points []model.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

func parseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}

func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
