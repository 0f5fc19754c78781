package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// PriceTable is a country x period table of industrial energy prices, as
// published half-yearly. Rows and columns keep their file order.
type PriceTable struct {
	Periods   []string             `json:"periods"`
	Countries []string             `json:"countries"`
	Values    map[string][]float64 `json:"values"`
}

var yearPattern = regexp.MustCompile(`(\d{4})`)

// LoadPriceTable reads and cleans a price table file.
func LoadPriceTable(path string) (*PriceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open price table: %w", err)
	}
	defer f.Close()
	return ParsePriceTable(f)
}

// ParsePriceTable parses a CSV whose first column is the country and whose
// remaining columns are periods. Non-numeric cells are treated as missing;
// periods with no value at all are dropped, then countries with any missing
// value are dropped.
func ParsePriceTable(r io.Reader) (*PriceTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read price table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("price table is empty")
	}

	periods := records[0][1:]
	rows := make([][]float64, 0, len(records)-1)
	countries := make([]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		vals := make([]float64, len(periods))
		for j := range periods {
			vals[j] = math.NaN()
			if j+1 < len(rec) {
				vals[j] = parseNumber(rec[j+1])
			}
		}
		countries = append(countries, strings.TrimSpace(rec[0]))
		rows = append(rows, vals)
	}

	keep := make([]int, 0, len(periods))
	for j := range periods {
		for _, vals := range rows {
			if !math.IsNaN(vals[j]) {
				keep = append(keep, j)
				break
			}
		}
	}

	t := &PriceTable{Values: map[string][]float64{}}
	for _, j := range keep {
		t.Periods = append(t.Periods, strings.TrimSpace(periods[j]))
	}
	for i, vals := range rows {
		kept := make([]float64, 0, len(keep))
		complete := true
		for _, j := range keep {
			if math.IsNaN(vals[j]) {
				complete = false
				break
			}
			kept = append(kept, vals[j])
		}
		if !complete {
			continue
		}
		t.Countries = append(t.Countries, countries[i])
		t.Values[countries[i]] = kept
	}
	return t, nil
}

// Row returns the prices of country by period.
func (t *PriceTable) Row(country string) ([]float64, bool) {
	v, ok := t.Values[country]
	return v, ok
}

// AnnualAverage averages the periods of country whose label contains year.
func (t *PriceTable) AnnualAverage(country string, year int) (float64, bool) {
	vals, ok := t.Values[country]
	if !ok {
		return 0, false
	}
	want := strconv.Itoa(year)
	sum, n := 0.0, 0
	for j, p := range t.Periods {
		if m := yearPattern.FindString(p); m == want {
			sum += vals[j]
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// RelativePrices divides el by gas cell by cell over the countries and periods
// both tables share. Countries with any missing or infinite ratio are dropped.
func RelativePrices(el, gas *PriceTable) *PriceTable {
	gasCol := map[string]int{}
	for j, p := range gas.Periods {
		gasCol[p] = j
	}
	type pair struct{ el, gas int }
	var cols []pair
	out := &PriceTable{Values: map[string][]float64{}}
	for j, p := range el.Periods {
		if g, ok := gasCol[p]; ok {
			cols = append(cols, pair{j, g})
			out.Periods = append(out.Periods, p)
		}
	}

	for _, c := range el.Countries {
		gv, ok := gas.Values[c]
		if !ok {
			continue
		}
		ev := el.Values[c]
		ratios := make([]float64, 0, len(cols))
		complete := true
		for _, col := range cols {
			r := ev[col.el] / gv[col.gas]
			if math.IsNaN(r) || math.IsInf(r, 0) {
				complete = false
				break
			}
			ratios = append(ratios, r)
		}
		if !complete {
			continue
		}
		out.Countries = append(out.Countries, c)
		out.Values[c] = ratios
	}
	return out
}

// LoadRelativePrices loads both industrial tables from dataDir and divides them.
func LoadRelativePrices(dataDir string) (*PriceTable, error) {
	el, err := LoadPriceTable(joinData(dataDir, ElectricityTable))
	if err != nil {
		return nil, err
	}
	gas, err := LoadPriceTable(joinData(dataDir, GasTable))
	if err != nil {
		return nil, err
	}
	return RelativePrices(el, gas), nil
}
