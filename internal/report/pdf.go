package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// BuildPDF renders a one-page summary with the ranked profile table.
func BuildPDF(cmp Comparison) ([]byte, error) {
	res := cmp.Result
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Heat pump allowable investment")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Evaluation: %s", res.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", res.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	if p := cmp.Prices; p != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Electricity price per MWh: min %.0f / mean %.0f / max %.0f", p.Min, p.Mean, p.Max))
		pdf.Ln(5)
		if p.Missing > 0 {
			pdf.Cell(0, 6, fmt.Sprintf("Missing prices: %d", p.Missing))
			pdf.Ln(5)
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(12, 6, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Profile", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "COP", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Full load h", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Invest. per kW el", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Verdict", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, r := range cmp.Ranking {
		pdf.CellFormat(12, 6, fmt.Sprintf("%d", r.Rank), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, r.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", r.COP), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.0f", r.FullLoadHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", r.AllowableInvestmentPerKW), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, string(r.Verdict), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if len(res.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Warnings")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		for _, w := range res.Warnings {
			pdf.MultiCell(0, 5, w, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
