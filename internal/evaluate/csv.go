package evaluate

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"profile",
	"index",
	"datetime",
	"demand",
	"price_per_mwh",
	"heat_kwh",
	"electricity_kwh",
	"electricity_cost",
	"cum_electricity_cost",
	"missing",
}

// WriteLedgerCSV writes the ledgers of every profile in res to path.
func WriteLedgerCSV(path string, res *Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeLedgerCSV(f, res)
}

// EncodeLedgerCSV writes the ledgers of every profile in res to w.
func EncodeLedgerCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader); err != nil {
		return err
	}

	for _, p := range res.Profiles {
		for _, r := range p.Ledger {
			row := []string{
				p.Name,
				strconv.Itoa(r.Index),
				fmtTime(r.Time),
				fmtFloat(r.Demand),
				fmtFloat(r.Price),
				fmtFloat(r.HeatKWh),
				fmtFloat(r.ElectricityKWh),
				fmtFloat(r.ElectricityCost),
				fmtFloat(r.CumCost),
				strconv.FormatBool(r.Missing),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
