package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pocket/internal/core"
)

func newParser(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse(%q): %v", body, err)
	}
	return p
}

func TestRequestBodyParser(t *testing.T) {
	p := newParser(t, `{"amount": 12.50, "description": "  tea\u0007 ", "note": null}`)
	if !p.IsJSON() {
		t.Fatal("expected JSON")
	}
	if got := p.Get("amount"); got != "12.50" {
		t.Errorf("json number should keep its text, got %q", got)
	}
	if got := p.Get("description"); got != "tea" {
		t.Errorf("description = %q", got)
	}
	if p.Has("note") || p.Has("missing") || !p.Has("amount") {
		t.Error("Has should ignore nulls and absent keys")
	}

	p = newParser(t, "name=Asha&age=")
	if p.IsJSON() {
		t.Error("form body reported as JSON")
	}
	if !p.Has("age") || p.Get("age") != "" || p.Get("name") != "Asha" {
		t.Error("form values not parsed")
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[1]`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("JSON array should be rejected")
	}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("truncated JSON should be rejected")
	}
}

func TestParseDraft(t *testing.T) {
	d, err := ParseDraft(newParser(t, `{"amount":"500","description":"Lunch","category":"FOOD","type":"Expense","date":"2024-03-14"}`), time.UTC)
	if err != nil {
		t.Fatalf("ParseDraft: %v", err)
	}
	want := core.Draft{
		Amount:      core.Money{Cents: 50000},
		Description: "Lunch",
		Category:    "food",
		Type:        core.Expense,
		Date:        time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	if d != want {
		t.Errorf("draft = %+v, want %+v", d, want)
	}

	hindi := strings.Repeat("खाना", 50)
	if d, err := ParseDraft(newParser(t, `{"amount":5,"description":"`+hindi+`","category":"food","type":"expense"}`), time.UTC); err != nil || d.Description != hindi {
		t.Errorf("200-character Devanagari description: %v", err)
	}

	d, err = ParseDraft(newParser(t, "amount=10&description=Pay&category=salary&type=income"), time.UTC)
	if err != nil {
		t.Fatalf("form draft: %v", err)
	}
	if !d.Date.IsZero() {
		t.Error("missing date should stay zero for the store to fill")
	}

	tests := []struct {
		body  string
		field string
	}{
		{`{"description":"x","category":"food","type":"expense"}`, "amount"},
		{`{"amount":0,"description":"x","category":"food","type":"expense"}`, "amount"},
		{`{"amount":5,"description":" ","category":"food","type":"expense"}`, "description"},
		{`{"amount":5,"description":"` + strings.Repeat("a", 201) + `","category":"food","type":"expense"}`, "description"},
		{`{"amount":5,"description":"` + strings.Repeat("खाना", 50) + `ा","category":"food","type":"expense"}`, "description"},
		{`{"amount":5,"description":"x","category":"food","type":"refund"}`, "type"},
		{`{"amount":5,"description":"x","category":"salary","type":"expense"}`, "category"},
		{`{"amount":5,"description":"x","category":"food","type":"expense","date":"tomorrow"}`, "date"},
	}
	for _, tt := range tests {
		_, err := ParseDraft(newParser(t, tt.body), time.UTC)
		var fe *FieldError
		if !errors.As(err, &fe) || fe.Field != tt.field {
			t.Errorf("ParseDraft(%s) error = %v, want field %q", tt.body, err, tt.field)
		}
	}
}

func TestParsePatch(t *testing.T) {
	patch, err := ParsePatch(newParser(t, `{"amount": 7.5, "category": "Transport"}`), time.UTC)
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if patch.Amount == nil || patch.Amount.Cents != 750 {
		t.Errorf("amount = %v", patch.Amount)
	}
	if patch.Category == nil || *patch.Category != "transport" {
		t.Errorf("category = %v", patch.Category)
	}
	if patch.Description != nil || patch.Type != nil || patch.Date != nil {
		t.Error("absent fields must stay nil")
	}

	patch, err = ParsePatch(newParser(t, `{}`), time.UTC)
	if err != nil || !patch.IsEmpty() {
		t.Errorf("empty body should give an empty patch, got %+v %v", patch, err)
	}

	for body, field := range map[string]string{
		`{"amount": "-1"}`:     "amount",
		`{"description": ""}`:  "description",
		`{"type": "loan"}`:     "type",
		`{"date": "2024-3-1"}`: "date",
	} {
		_, err := ParsePatch(newParser(t, body), time.UTC)
		var fe *FieldError
		if !errors.As(err, &fe) || fe.Field != field {
			t.Errorf("ParsePatch(%s) error = %v, want field %q", body, err, field)
		}
	}
}

func TestParseProfilePatch(t *testing.T) {
	patch := ParseProfilePatch(newParser(t, `{"name": "Asha", "language": "de"}`))
	if patch.Name == nil || *patch.Name != "Asha" || patch.Language == nil || *patch.Language != "de" {
		t.Errorf("patch = %+v", patch)
	}
	if patch.Age != nil || patch.Gender != nil {
		t.Error("absent profile fields must stay nil")
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange(url.Values{"start": {"2024-03-01"}, "end": {"2024-03-31"}}, time.UTC)
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("range = %v..%v", start, end)
	}

	start, end, err = ParseRange(url.Values{}, time.UTC)
	if err != nil || !start.IsZero() || !end.IsZero() {
		t.Errorf("empty query should give zero bounds, got %v %v %v", start, end, err)
	}

	_, _, err = ParseRange(url.Values{"start": {"2024-03-02"}, "end": {"2024-03-01"}}, time.UTC)
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "end" {
		t.Errorf("inverted range error = %v", err)
	}
	if _, _, err := ParseRange(url.Values{"end": {"03/01/2024"}}, time.UTC); err == nil {
		t.Error("malformed end should fail")
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if RequireMethod(req, http.MethodGet, http.MethodHead) != nil {
		t.Error("GET should be allowed")
	}
	rr := httptest.NewRecorder()
	RequireMethod(req, http.MethodPost).Write(rr)
	if rr.Code != http.StatusMethodNotAllowed || rr.Header().Get("Allow") != "POST" {
		t.Errorf("got %d Allow=%q", rr.Code, rr.Header().Get("Allow"))
	}
}
