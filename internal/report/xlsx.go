package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pocket/internal/core"
)

const (
	sheetTransactions = "Transactions"
	sheetSummary      = "Summary"
)

// WriteXLSX renders the report as a workbook with a transactions sheet and a
// summary sheet. Amounts are numeric cells, negative for expenses.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetTransactions); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"16A34A"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountFmt := "#,##0.00"
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}

	headers := []any{"Date", "Description", "Category", "Type", "Amount (" + r.Currency + ")"}
	if err := f.SetSheetRow(sheetTransactions, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetTransactions, "A1", "E1", header); err != nil {
		return err
	}
	for i, t := range r.Transactions {
		v := t.Amount.Decimal()
		if t.Type == core.Expense {
			v = v.Neg()
		}
		row := []any{r.day(t.Date), t.Description, t.Category, typeLabel(t.Type), v.InexactFloat64()}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetTransactions, cell, &row); err != nil {
			return err
		}
	}
	last := len(r.Transactions) + 1
	if err := f.SetCellStyle(sheetTransactions, "E2", fmt.Sprintf("E%d", last), amount); err != nil {
		return err
	}
	for col, width := range map[string]float64{"A": 12, "B": 40, "C": 16, "D": 10, "E": 16} {
		if err := f.SetColWidth(sheetTransactions, col, col, width); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	rows := [][]any{
		{"Generated on", r.GeneratedAt.In(r.Location).Format("2006-01-02 15:04")},
		{"From", r.day(r.Range.From)},
		{"To", r.day(r.Range.To)},
		{"Transactions", len(r.Transactions)},
		{"Total Income", r.Summary.Income.Decimal().InexactFloat64()},
		{"Total Expenses", r.Summary.Expenses.Decimal().InexactFloat64()},
		{"Net Balance", r.Summary.Balance.Decimal().InexactFloat64()},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetSummary, "B5", "B7", amount); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetSummary, "A", "B", 18); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return nil
}
