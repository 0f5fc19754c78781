// Package data loads the CSV inputs of the engine: hourly wholesale prices per
// country, industrial electricity and gas price tables, and pre-built
// industrial demand profiles.
package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Layout of a data directory.
const (
	WholesaleDir      = "wholesale"
	DemandProfilesDir = "demand_profiles"
	ElectricityTable  = "industrial_el_prices.csv"
	GasTable          = "industrial_gas_prices.csv"
)

// DefaultDataDir returns DATA_DIR or ./data.
func DefaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// ListCountries returns the countries with a wholesale price file under dataDir.
func ListCountries(dataDir string) ([]string, error) {
	return listCSV(filepath.Join(dataDir, WholesaleDir))
}

// ListProcesses returns the processes with a pre-built demand profile file.
func ListProcesses(dataDir string) ([]string, error) {
	return listCSV(filepath.Join(dataDir, DemandProfilesDir))
}

// WholesalePath is the price file of country.
func WholesalePath(dataDir, country string) string {
	return filepath.Join(dataDir, WholesaleDir, country+".csv")
}

// DemandProfilePath is the profile file of process.
func DemandProfilePath(dataDir, process string) string {
	return filepath.Join(dataDir, DemandProfilesDir, process+".csv")
}

// listCSV returns the sorted base names of the .csv files in dir.
func listCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(out)
	return out, nil
}

// validName rejects names that would escape the data directory.
func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
