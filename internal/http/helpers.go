package http

import (
	"strings"

	"pocket/internal/core"
)

// sanitizeInput removes control characters except tab and newlines, and trims
// whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// formatMoney renders m with the currency symbol ("Rs.500.00").
func formatMoney(currency string, m core.Money) string {
	if m.Cents < 0 {
		return "-" + currency + core.Money{Cents: -m.Cents}.Fixed()
	}
	return currency + m.Fixed()
}

// formatSigned renders an amount with "+" for income and "-" for expenses.
func formatSigned(currency string, t core.Transaction) string {
	sign := "-"
	if t.Type == core.Income {
		sign = "+"
	}
	return sign + currency + t.Amount.Fixed()
}

// barWidth scales amount against max as a rounded percentage. Non-zero
// amounts stay visible at 2%.
func barWidth(amount, max int64) int {
	if max <= 0 || amount <= 0 {
		return 0
	}
	width := int((amount*100 + max/2) / max)
	if width < 2 {
		width = 2
	}
	if width > 100 {
		width = 100
	}
	return width
}
