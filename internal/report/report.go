// Package report renders a date-bounded slice of the ledger as a PDF or XLSX
// document.
package report

import (
	"errors"
	"time"

	"pocket/internal/core"
)

var ErrEmptyReport = errors.New("no transactions in the selected date range")

// Range is an inclusive interval of whole days.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Bounds resolves the requested range. A zero start means the earliest
// transaction (the epoch when there are none), a zero end means now. Both ends
// are widened to whole days in loc.
func Bounds(txs []core.Transaction, start, end, now time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}
	if start.IsZero() {
		start = time.Unix(0, 0)
		for i, t := range txs {
			if i == 0 || t.Date.Before(start) {
				start = t.Date
			}
		}
	}
	if end.IsZero() {
		end = now
	}
	return Range{From: core.StartOfDay(start, loc), To: core.EndOfDay(end, loc)}
}

type Options struct {
	Start    time.Time
	End      time.Time
	Now      time.Time
	Location *time.Location
	Currency string
}

// Report is a filtered snapshot ready to be rendered.
type Report struct {
	Range        Range
	Transactions []core.Transaction
	Summary      core.Aggregates
	GeneratedAt  time.Time
	Currency     string
	Location     *time.Location
}

// Build filters txs to the resolved range, keeping their order.
func Build(txs []core.Transaction, opts Options) (*Report, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	rng := Bounds(txs, opts.Start, opts.End, opts.Now, opts.Location)

	var selected []core.Transaction
	for _, t := range txs {
		if rng.Contains(t.Date) {
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, ErrEmptyReport
	}
	return &Report{
		Range:        rng,
		Transactions: selected,
		Summary:      core.Summarize(selected),
		GeneratedAt:  opts.Now,
		Currency:     opts.Currency,
		Location:     opts.Location,
	}, nil
}

// signed renders an amount with a + for income and - for expenses.
func (r *Report) signed(t core.Transaction) string {
	sign := "-"
	if t.Type == core.Income {
		sign = "+"
	}
	return sign + r.Currency + t.Amount.Fixed()
}

func (r *Report) money(m core.Money) string {
	if m.Cents < 0 {
		return "-" + r.Currency + core.Money{Cents: -m.Cents}.Fixed()
	}
	return r.Currency + m.Fixed()
}

func (r *Report) day(t time.Time) string {
	return t.In(r.Location).Format(time.DateOnly)
}
