package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"500", 50000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		cents      int64
		str, fixed string
	}{
		{50000, "500", "500.00"},
		{1250, "12.5", "12.50"},
		{1, "0.01", "0.01"},
		{-1999, "-19.99", "-19.99"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if m.String() != tc.str || m.Fixed() != tc.fixed {
			t.Fatalf("Money(%d) = %q / %q, want %q / %q", tc.cents, m.String(), m.Fixed(), tc.str, tc.fixed)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1250})
	if err != nil || string(b) != "12.5" {
		t.Fatalf("Marshal = %s, %v", b, err)
	}

	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{`500`, 50000, true},
		{`12.345`, 1235, true},
		{`"42.5"`, 4250, true},
		{`"42,5"`, 4250, true},
		{`"lots"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
	}
	for _, tc := range cases {
		var m Money
		err := json.Unmarshal([]byte(tc.in), &m)
		if tc.ok && (err != nil || m.Cents != tc.want) {
			t.Fatalf("Unmarshal(%s) = %d, %v", tc.in, m.Cents, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("Unmarshal(%s) expected error", tc.in)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	m, err := MoneyFromFloat(0.1 + 0.2)
	if err != nil || m.Cents != 30 {
		t.Fatalf("MoneyFromFloat = %d, %v", m.Cents, err)
	}
}
