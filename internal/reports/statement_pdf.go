package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/manuelgonzga/wallet-api/internal/currency"
)

func renderStatementPDF(st statement) ([]byte, error) {
	code := st.Header.Currency
	if code == "" {
		code = currency.DefaultCode
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Budget Statement")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, st.Header.Title)
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Started %s, %d days, budget %s %s",
		st.Header.StartDate.Format("2006-01-02"), st.Header.PeriodDays,
		formatMoney(st.Header.TotalAmount), code))
	pdf.Ln(5)
	status := "archived"
	if st.Header.IsActive {
		status = "active"
	}
	pdf.Cell(0, 6, "Period "+shortTag(st.Tag)+" ("+status+")")
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)

	sumW := []float64{62, 62, 62}
	pdf.CellFormat(sumW[0], 10, "Income ("+code+")", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[1], 10, "Expenses ("+code+")", "1", 0, "C", true, 0, "")
	pdf.CellFormat(sumW[2], 10, "Balance ("+code+")", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(sumW[0], 10, formatMoney(st.Income), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[1], 10, formatMoney(st.Expenses), "1", 0, "C", false, 0, "")
	pdf.CellFormat(sumW[2], 10, formatMoney(st.Balance), "1", 1, "C", false, 0, "")
	pdf.Ln(6)

	colW := []float64{26, 96, 36, 28}
	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.CellFormat(colW[0], 8, "DATE", "1", 0, "C", true, 0, "")
		pdf.CellFormat(colW[1], 8, "TITLE", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[2], 8, "CATEGORY", "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[3], 8, "AMOUNT", "1", 1, "R", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
	}
	writeHeader()

	pdf.SetTextColor(30, 30, 30)
	const maxRows = 200
	for i, r := range st.Rows {
		if i >= maxRows {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 8, "truncated (too many rows)", "1", 1, "C", false, 0, "")
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			writeHeader()
		}
		pdf.CellFormat(colW[0], 8, r.CreatedAt.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[1], 8, trimTo(r.Title, 58), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 8, trimTo(r.Category, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 8, formatMoney(r.Amount), "1", 1, "R", false, 0, "")
	}
	if len(st.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 8, "No transactions in this period", "1", 1, "C", false, 0, "")
	}

	pdf.SetY(-18)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 10, "Generated "+time.Now().Format(time.RFC3339), "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "..."
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
