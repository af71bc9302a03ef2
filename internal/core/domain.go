package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxDescriptionLength bounds free-text labels.
const MaxDescriptionLength = 200

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is one recorded income or expense event.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        time.Time       `json:"date"`
		Type        TransactionType `json:"type"`
	}

	// Draft is a transaction that has not been assigned an id yet.
	Draft struct {
		Amount      Money           `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        time.Time       `json:"date"`
		Type        TransactionType `json:"type"`
	}

	// Patch carries the fields of an update. Nil fields are left untouched.
	Patch struct {
		Amount      *Money           `json:"amount,omitempty"`
		Description *string          `json:"description,omitempty"`
		Category    *string          `json:"category,omitempty"`
		Date        *time.Time       `json:"date,omitempty"`
		Type        *TransactionType `json:"type,omitempty"`
	}

	Profile struct {
		Name     string `json:"name"`
		Age      string `json:"age"`
		Gender   string `json:"gender"`
		Language string `json:"language"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("category not allowed for transaction type")
	ErrInvalidDate        = errors.New("invalid date")
)

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (d Draft) Validate() error {
	return validateFields(d.Amount, d.Description, d.Category, d.Type)
}

func (t Transaction) Validate() error {
	return validateFields(t.Amount, t.Description, t.Category, t.Type)
}

func validateFields(amount Money, description, category string, typ TransactionType) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if !typ.Valid() {
		return ErrInvalidType
	}
	if !IsValidCategory(typ, category) {
		return fmt.Errorf("%w: %q for %s", ErrInvalidCategory, category, typ)
	}
	return nil
}

// Transaction materializes the draft with the given id.
func (d Draft) Transaction(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      d.Amount,
		Description: strings.TrimSpace(d.Description),
		Category:    d.Category,
		Date:        d.Date,
		Type:        d.Type,
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Amount == nil && p.Description == nil && p.Category == nil && p.Date == nil && p.Type == nil
}

// Apply merges the patch over t. The id never changes.
func (p Patch) Apply(t Transaction) Transaction {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	return t
}

// ParseDate accepts YYYY-MM-DD (interpreted in loc) or RFC 3339.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if d, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// StartOfDay returns 00:00:00.000 of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).Add(24*time.Hour - time.Millisecond)
}
