// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Transaction and profile input arrives either as JSON (the API and app.js)
// or form-encoded (the settings page), and is checked field by field before
// any store is called.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"pocket/internal/core"
	"pocket/internal/profile"
)

// maxBodyBytes bounds request bodies. Backups are the largest legitimate input.
const maxBodyBytes = 8 << 20

// FieldError reports a missing or malformed input field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if trimmed[0] == '{' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]interface{})
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = errors.New("expected a JSON object")
		return p.err
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Has reports whether key was sent at all, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return ok && v != nil
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string. Numbers keep the text
// they were sent with.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDraft reads a complete transaction. Every field except date is
// required; a missing date means now.
func ParseDraft(p *RequestBodyParser, loc *time.Location) (core.Draft, error) {
	var d core.Draft
	for _, f := range []string{"amount", "description", "category", "type"} {
		if p.Get(f) == "" {
			return d, fieldError(f, "is required")
		}
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return d, fieldError("amount", "must be a positive number")
	}
	typ, err := core.ParseTransactionType(p.Get("type"))
	if err != nil {
		return d, fieldError("type", "must be income or expense")
	}
	category := strings.ToLower(p.Get("category"))
	if !core.IsValidCategory(typ, category) {
		return d, fieldError("category", "%q is not a %s category", category, typ)
	}

	d = core.Draft{
		Amount:      amount,
		Description: p.Get("description"),
		Category:    category,
		Type:        typ,
	}
	if utf8.RuneCountInString(d.Description) > core.MaxDescriptionLength {
		return d, fieldError("description", "is longer than %d characters", core.MaxDescriptionLength)
	}
	if v := p.Get("date"); v != "" {
		if d.Date, err = core.ParseDate(v, loc); err != nil {
			return d, fieldError("date", "must be YYYY-MM-DD")
		}
	}
	return d, nil
}

// ParsePatch reads the fields present in the body. Fields that are sent must
// be valid; fields that are absent stay untouched. Category membership is
// checked by the store against the merged record.
func ParsePatch(p *RequestBodyParser, loc *time.Location) (core.Patch, error) {
	var patch core.Patch
	if p.Has("amount") {
		amount, err := core.ParseAmount(p.Get("amount"))
		if err != nil {
			return patch, fieldError("amount", "must be a positive number")
		}
		patch.Amount = &amount
	}
	if p.Has("description") {
		desc := p.Get("description")
		if desc == "" {
			return patch, fieldError("description", "must not be empty")
		}
		patch.Description = &desc
	}
	if p.Has("category") {
		category := strings.ToLower(p.Get("category"))
		if category == "" {
			return patch, fieldError("category", "must not be empty")
		}
		patch.Category = &category
	}
	if p.Has("type") {
		typ, err := core.ParseTransactionType(p.Get("type"))
		if err != nil {
			return patch, fieldError("type", "must be income or expense")
		}
		patch.Type = &typ
	}
	if p.Has("date") {
		date, err := core.ParseDate(p.Get("date"), loc)
		if err != nil {
			return patch, fieldError("date", "must be YYYY-MM-DD")
		}
		patch.Date = &date
	}
	return patch, nil
}

// ParseProfilePatch reads the profile fields present in the body.
func ParseProfilePatch(p *RequestBodyParser) profile.Patch {
	var patch profile.Patch
	field := func(key string) *string {
		if !p.Has(key) {
			return nil
		}
		v := p.Get(key)
		return &v
	}
	patch.Name = field("name")
	patch.Age = field("age")
	patch.Gender = field("gender")
	patch.Language = field("language")
	return patch
}

// ParseRange reads the optional start and end query parameters of a report.
func ParseRange(q url.Values, loc *time.Location) (start, end time.Time, err error) {
	if v := strings.TrimSpace(q.Get("start")); v != "" {
		if start, err = time.ParseInLocation(time.DateOnly, v, loc); err != nil {
			return start, end, fieldError("start", "must be YYYY-MM-DD")
		}
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		if end, err = time.ParseInLocation(time.DateOnly, v, loc); err != nil {
			return start, end, fieldError("end", "must be YYYY-MM-DD")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fieldError("end", "is before start")
	}
	return start, end, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return NewResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", strings.Join(methods, ", "))
}
