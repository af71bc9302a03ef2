package memory

import (
	"context"
	"testing"

	"pocket/internal/core"
)

func TestMemoryMirror(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := core.Transaction{ID: "a", Description: "Lunch", Amount: core.Money{Cents: 500}}
	b := core.Transaction{ID: "b", Description: "Bus", Amount: core.Money{Cents: 200}}
	if err := s.Upsert(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, b); err != nil {
		t.Fatal(err)
	}

	a.Amount = core.Money{Cents: 650}
	if err := s.Upsert(ctx, a); err != nil {
		t.Fatal(err)
	}
	rows := s.Rows()
	if len(rows) != 2 || rows[0].Amount.Cents != 650 || rows[1].ID != "b" {
		t.Fatalf("unexpected rows after upsert: %+v", rows)
	}

	if err := s.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Fatalf("removing a missing row should not fail: %v", err)
	}
	if rows := s.Rows(); len(rows) != 1 || rows[0].ID != "b" {
		t.Fatalf("unexpected rows after remove: %+v", rows)
	}

	if err := s.ReplaceAll(ctx, []core.Transaction{a}); err != nil {
		t.Fatal(err)
	}
	if rows := s.Rows(); len(rows) != 1 || rows[0].ID != "a" {
		t.Fatalf("unexpected rows after replace: %+v", rows)
	}
}
