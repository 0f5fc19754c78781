package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "summary"
	profilesSheet = "profiles"
	ledgerSheet   = "ledger"
)

// BuildXLSX renders the comparison as a workbook with a summary sheet, the
// ranked profile table and, if any profile carries one, the step ledger.
func BuildXLSX(cmp Comparison) ([]byte, error) {
	res := cmp.Result
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(profilesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Heat pump allowable investment")
	_ = f.SetCellValue(summarySheet, "A3", "Evaluation")
	_ = f.SetCellValue(summarySheet, "B3", res.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Created")
	_ = f.SetCellValue(summarySheet, "B4", res.CreatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A5", "Profiles")
	_ = f.SetCellValue(summarySheet, "B5", len(res.Profiles))
	row := 7
	if p := cmp.Prices; p != nil {
		for _, kv := range []struct {
			label string
			value float64
		}{
			{"Min electricity price (per MWh)", p.Min},
			{"Mean electricity price (per MWh)", p.Mean},
			{"Max electricity price (per MWh)", p.Max},
			{"P05 electricity price (per MWh)", p.P05},
			{"P95 electricity price (per MWh)", p.P95},
		} {
			_ = f.SetCellValue(summarySheet, cell("A", row), kv.label)
			_ = f.SetCellValue(summarySheet, cell("B", row), kv.value)
			row++
		}
		_ = f.SetCellValue(summarySheet, cell("A", row), "Missing prices")
		_ = f.SetCellValue(summarySheet, cell("B", row), p.Missing)
		row += 2
	}
	for _, w := range res.Warnings {
		_ = f.SetCellValue(summarySheet, cell("A", row), "Warning")
		_ = f.SetCellValue(summarySheet, cell("B", row), w)
		row++
	}

	headers := []string{"Rank", "Profile", "COP", "Full load hours", "Allowable investment (per kW el)", "Verdict"}
	for i, h := range headers {
		_ = f.SetCellValue(profilesSheet, cell(column(i), 1), h)
	}
	for i, r := range cmp.Ranking {
		n := i + 2
		_ = f.SetCellValue(profilesSheet, cell("A", n), r.Rank)
		_ = f.SetCellValue(profilesSheet, cell("B", n), r.Label)
		_ = f.SetCellValue(profilesSheet, cell("C", n), r.COP)
		_ = f.SetCellValue(profilesSheet, cell("D", n), r.FullLoadHours)
		_ = f.SetCellValue(profilesSheet, cell("E", n), r.AllowableInvestmentPerKW)
		_ = f.SetCellValue(profilesSheet, cell("F", n), string(r.Verdict))
	}

	if err := writeLedger(f, cmp); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLedger(f *excelize.File, cmp Comparison) error {
	has := false
	for _, p := range cmp.Result.Profiles {
		if len(p.Ledger) > 0 {
			has = true
			break
		}
	}
	if !has {
		return nil
	}

	sw, err := newStream(f, ledgerSheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", []interface{}{
		"Profile", "Datetime", "Demand", "Price (per MWh)", "Heat (kWh)", "Electricity (kWh)", "Electricity cost", "Cumulative cost",
	}); err != nil {
		return err
	}
	n := 2
	for _, p := range cmp.Result.Profiles {
		for _, r := range p.Ledger {
			if err := sw.SetRow(cell("A", n), []interface{}{
				p.Name, r.Time.Format(time.RFC3339), r.Demand, r.Price, r.HeatKWh, r.ElectricityKWh, r.ElectricityCost, r.CumCost,
			}); err != nil {
				return err
			}
			n++
		}
	}
	return sw.Flush()
}

func newStream(f *excelize.File, sheet string) (*excelize.StreamWriter, error) {
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	return f.NewStreamWriter(sheet)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func column(i int) string {
	name, _ := excelize.ColumnNumberToName(i + 1)
	return name
}
