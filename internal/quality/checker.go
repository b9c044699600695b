// Package quality validates the completeness of loaded financial sheets and
// produces actionable, non-blocking warnings.
package quality

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/kanso/internal/model"
)

// Severity classifies a data quality issue.
type Severity string

// Severity levels.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Warning describes one data quality issue on one sheet.
type Warning struct {
	Sheet    string
	Severity Severity
	Message  string
	Details  string
}

// RequiredSheets lists the sheets the dashboard needs, in display order.
var RequiredSheets = []string{"Assets", "Liabilities", "Incomes", "Expenses"}

// requiredColumns maps each sheet to the columns it must carry.
var requiredColumns = map[string][]string{
	"Assets":      {"Date"},
	"Liabilities": {"Date"},
	"Incomes":     {"Date"},
	"Expenses":    {"Date", "Merchant", "Amount", "Category", "Type"},
}

// Checker runs data quality checks over loaded sheets.
type Checker struct{}

// NewChecker creates a quality checker.
func NewChecker() *Checker {
	return &Checker{}
}

// CheckAll runs every check over the given tables, keyed by sheet name. A
// nil or absent table counts as a missing sheet.
func (c *Checker) CheckAll(tables map[string]*model.RawTable) []Warning {
	var warnings []Warning
	warnings = append(warnings, c.CheckMissing(tables)...)
	warnings = append(warnings, c.CheckEmpty(tables)...)
	warnings = append(warnings, c.CheckColumns(tables)...)

	if len(warnings) > 0 {
		slog.Info("data quality check found issues", "count", len(warnings))
	}
	return warnings
}

// CheckMissing flags required sheets that are not loaded at all.
func (c *Checker) CheckMissing(tables map[string]*model.RawTable) []Warning {
	var warnings []Warning
	for _, sheet := range RequiredSheets {
		if tables[sheet] == nil {
			warnings = append(warnings, Warning{
				Sheet:    sheet,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s sheet is not loaded", sheet),
				Details:  "Check the spreadsheet configuration and refresh.",
			})
		}
	}
	return warnings
}

// CheckEmpty flags loaded sheets with zero data rows.
func (c *Checker) CheckEmpty(tables map[string]*model.RawTable) []Warning {
	var warnings []Warning
	for _, sheet := range RequiredSheets {
		table := tables[sheet]
		if table == nil {
			continue
		}
		if table.IsEmpty() {
			warnings = append(warnings, Warning{
				Sheet:    sheet,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("%s sheet has no data", sheet),
				Details:  "Add at least one row of data to see this sheet's metrics.",
			})
		}
	}
	return warnings
}

// CheckColumns flags loaded, non-empty sheets missing required columns.
func (c *Checker) CheckColumns(tables map[string]*model.RawTable) []Warning {
	var warnings []Warning
	for _, sheet := range RequiredSheets {
		table := tables[sheet]
		if table == nil || table.IsEmpty() {
			continue
		}

		var missing []string
		for _, required := range requiredColumns[sheet] {
			found := false
			for _, col := range table.Columns {
				if col.Matches(required) {
					found = true
					break
				}
			}
			if !found {
				missing = append(missing, required)
			}
		}

		if len(missing) > 0 {
			warnings = append(warnings, Warning{
				Sheet:    sheet,
				Severity: SeverityError,
				Message:  fmt.Sprintf("%s sheet is missing required columns", sheet),
				Details:  "Missing: " + strings.Join(missing, ", "),
			})
		}
	}
	return warnings
}
