package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"pocket/internal/core"
)

var (
	headerFill = [3]int{22, 163, 74}
	stripeFill = [3]int{240, 253, 244}
	colWidths  = []float64{28, 72, 32, 22, 36}
	colAlign   = []string{"L", "L", "L", "L", "R"}
)

const rowHeight = 7.0

// WritePDF renders the report as a paginated A4 document. The table header is
// repeated at the top of every page.
func (r *Report) WritePDF(w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetTitle("Expense Report", false)
	pdf.SetAutoPageBreak(false, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Expense Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, "Generated on "+r.GeneratedAt.In(r.Location).Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", r.day(r.Range.From), r.day(r.Range.To)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range [][2]string{
		{"Total Income", tr(r.money(r.Summary.Income))},
		{"Total Expenses", tr(r.money(r.Summary.Expenses))},
		{"Net Balance", tr(r.money(r.Summary.Balance))},
	} {
		pdf.CellFormat(40, 6, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, line[1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	r.tableHeader(pdf)
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for i, t := range r.Transactions {
		if pdf.GetY()+rowHeight > pageH-bottom {
			pdf.AddPage()
			r.tableHeader(pdf)
		}
		fill := i%2 == 1
		pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		pdf.SetFont("Helvetica", "", 9)
		cells := []string{
			r.day(t.Date),
			tr(truncate(t.Description, 45)),
			tr(t.Category),
			typeLabel(t.Type),
			tr(r.signed(t)),
		}
		for c, text := range cells {
			pdf.CellFormat(colWidths[c], rowHeight, text, "", 0, colAlign[c], fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func (r *Report) tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for c, h := range []string{"Date", "Description", "Category", "Type", "Amount"} {
		pdf.CellFormat(colWidths[c], rowHeight+1, h, "", 0, colAlign[c], true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

func typeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Income"
	}
	return "Expense"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

// FileName is the suggested download name, e.g. expense-report-2024-03-15.pdf.
func FileName(ext string, now time.Time) string {
	return "expense-report-" + now.Format(time.DateOnly) + "." + ext
}
