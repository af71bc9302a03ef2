package google

import (
	"strings"
	"time"

	"pocket/internal/core"
	ports "pocket/internal/sheets"
)

// rowValues renders t in mirror column order.
func rowValues(t core.Transaction) []any {
	return []any{
		t.ID,
		t.Date.Format(time.DateOnly),
		t.Description,
		t.Category,
		string(t.Type),
		t.Amount.Fixed(),
	}
}

func headerValues() []any {
	out := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		out[i] = h
	}
	return out
}

// findRow returns the 1-based sheet row whose id column equals id, or 0.
// The header row never matches.
func findRow(ids []string, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0
	}
	for i, v := range ids {
		if i == 0 && strings.EqualFold(v, ports.Header[0]) {
			continue
		}
		if v == id {
			return i + 1
		}
	}
	return 0
}
