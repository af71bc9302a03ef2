package core

import "sort"

// Aggregates are the derived totals over a transaction collection.
type Aggregates struct {
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Balance  Money `json:"balance"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string          `json:"category"`
	Type     TransactionType `json:"type"`
	Amount   Money           `json:"amount"`
	Count    int             `json:"count"`
}

// Summarize folds txs into income, expense and balance totals.
func Summarize(txs []Transaction) Aggregates {
	var a Aggregates
	for _, t := range txs {
		switch t.Type {
		case Income:
			a.Income = a.Income.Add(t.Amount)
		case Expense:
			a.Expenses = a.Expenses.Add(t.Amount)
		}
	}
	a.Balance = a.Income.Sub(a.Expenses)
	return a
}

// Breakdown totals txs of type typ per category, largest first.
func Breakdown(txs []Transaction, typ TransactionType) []CategoryAmount {
	byCat := make(map[string]*CategoryAmount)
	for _, t := range txs {
		if t.Type != typ {
			continue
		}
		ca, ok := byCat[t.Category]
		if !ok {
			ca = &CategoryAmount{Category: t.Category, Type: typ}
			byCat[t.Category] = ca
		}
		ca.Amount = ca.Amount.Add(t.Amount)
		ca.Count++
	}
	out := make([]CategoryAmount, 0, len(byCat))
	for _, ca := range byCat {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}
