package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// MonthKeyLayout formats a date as its month bucket, e.g. "2025-01".
const MonthKeyLayout = "2006-01"

type (
	Date struct {
		time.Time
	}

	Customer struct {
		ID         int64 // Storage row ID
		CustomerID string
		Name       string
	}

	Transaction struct {
		ID         int64 // Storage row ID, zero until saved
		CustomerID string
		Amount     decimal.Decimal
		Date       Date
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRange      = errors.New("end date must not be before start date")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyCustomerID   = errors.New("empty customer id")
	ErrCustomerIDTooLong = errors.New("customer id too long (max 64 characters)")
	ErrNameTooLong       = errors.New("name too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthKey returns the zero-padded year-month bucket of the date.
func (d Date) MonthKey() string {
	return d.Format(MonthKeyLayout)
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ValidateRange checks that both bounds are set and ordered.
func ValidateRange(start, end Date) error {
	if err := start.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := end.Validate(); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if end.Before(start) {
		return ErrInvalidRange
	}
	return nil
}

func (c Customer) Validate() error {
	id := strings.TrimSpace(c.CustomerID)
	if id == "" {
		return ErrEmptyCustomerID
	}
	if len(id) > 64 {
		return ErrCustomerIDTooLong
	}
	if len(c.Name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	if err := validateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func validateAmount(a decimal.Decimal) error {
	switch {
	case a.IsNegative():
		return fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	case a.IsZero():
		return nil
	case a.Exponent() < minAmountExponent:
		return fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, -minAmountExponent)
	case exceedsMaxAmount(a):
		return fmt.Errorf("%w: must not exceed %s", ErrInvalidAmount, MaxAmount)
	}
	return nil
}

// MonthKey returns the month bucket the transaction's points land in.
func (t Transaction) MonthKey() string {
	return t.Date.MonthKey()
}
