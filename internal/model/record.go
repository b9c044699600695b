package model

import (
	"fmt"
	"strings"
	"time"
)

// NormalizedRecord is one monthly aggregate row produced from a raw sheet.
// Date is always the first of the month.
type NormalizedRecord struct {
	Date      time.Time
	Breakdown map[string]float64
	Total     float64
}

// Month returns the record's month bucket in YYYY-MM form.
func (r NormalizedRecord) Month() string {
	return r.Date.Format("2006-01")
}

// ExpenseType categorizes an expense as recurring or discretionary.
type ExpenseType string

// Expense type constants.
const (
	ExpenseFixed    ExpenseType = "Fixed"
	ExpenseVariable ExpenseType = "Variable"
)

// ParseExpenseType resolves a raw cell value to an ExpenseType.
func ParseExpenseType(raw string) (ExpenseType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "fixed":
		return ExpenseFixed, nil
	case "variable":
		return ExpenseVariable, nil
	default:
		return "", fmt.Errorf("unknown expense type %q", raw)
	}
}

// ExpenseRecord is a single validated expense transaction at month
// granularity.
type ExpenseRecord struct {
	Date     time.Time
	Merchant string
	Category string
	Type     ExpenseType
	Amount   float64
}

// Validate checks the record invariants: all descriptive fields non-empty
// after trimming, a resolvable month bucket, and a non-negative amount.
func (e *ExpenseRecord) Validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if strings.TrimSpace(e.Merchant) == "" {
		return fmt.Errorf("merchant is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("category is required")
	}
	if e.Type != ExpenseFixed && e.Type != ExpenseVariable {
		return fmt.Errorf("invalid expense type %q", e.Type)
	}
	if e.Amount < 0 {
		return fmt.Errorf("amount must be non-negative, got %.2f", e.Amount)
	}
	return nil
}

// Month returns the expense's month bucket in YYYY-MM form.
func (e ExpenseRecord) Month() string {
	return e.Date.Format("2006-01")
}
