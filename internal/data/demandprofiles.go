package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// demandHeaderRows is the number of header rows of a pre-built profile file.
// Only the first one (the temperature level) is used.
const demandHeaderRows = 4

// DemandProfiles are the pre-built demand columns of one industrial process,
// keyed by temperature level.
type DemandProfiles struct {
	Process string               `json:"process"`
	Levels  []string             `json:"levels"`
	Values  map[string][]float64 `json:"-"`
}

// Level returns the raw demand column of a temperature level.
func (d *DemandProfiles) Level(level string) ([]float64, error) {
	v, ok := d.Values[level]
	if !ok {
		return nil, fmt.Errorf("process %s has no temperature level %q (have %s)",
			d.Process, level, strings.Join(d.Levels, ", "))
	}
	return v, nil
}

// LoadDemandProfiles reads the pre-built profile file of process from dataDir.
func LoadDemandProfiles(dataDir, process string) (*DemandProfiles, error) {
	if err := validName(process); err != nil {
		return nil, err
	}
	f, err := os.Open(DemandProfilePath(dataDir, process))
	if err != nil {
		return nil, fmt.Errorf("failed to open demand profile for %s: %w", process, err)
	}
	defer f.Close()

	d, err := ParseDemandProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("demand profile %s: %w", process, err)
	}
	d.Process = process
	return d, nil
}

// ParseDemandProfiles parses a CSV with an index column and four header rows.
// Non-numeric cells become NaN.
func ParseDemandProfiles(r io.Reader) (*DemandProfiles, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= demandHeaderRows {
		return nil, fmt.Errorf("expected %d header rows and data, got %d rows", demandHeaderRows, len(records))
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("no demand columns")
	}
	d := &DemandProfiles{Values: map[string][]float64{}}
	for _, h := range header[1:] {
		level := strings.TrimSpace(h)
		if _, dup := d.Values[level]; dup {
			return nil, fmt.Errorf("duplicate temperature level %q", level)
		}
		d.Levels = append(d.Levels, level)
		d.Values[level] = make([]float64, 0, len(records)-demandHeaderRows)
	}
	for _, rec := range records[demandHeaderRows:] {
		for j, level := range d.Levels {
			v := parseNumber("")
			if j+1 < len(rec) {
				v = parseNumber(rec[j+1])
			}
			d.Values[level] = append(d.Values[level], v)
		}
	}
	return d, nil
}

func joinData(dataDir, name string) string {
	return filepath.Join(dataDir, name)
}
