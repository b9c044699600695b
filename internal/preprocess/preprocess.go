// Package preprocess turns raw sheet tables into sorted, normalized record
// sets ready for metric computation.
package preprocess

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/kanso/internal/currency"
	"github.com/Veraticus/kanso/internal/model"
)

// Default column exclusion patterns for monetary summation: the date axis
// and descriptive columns never contribute to a row total.
var defaultExcludePatterns = []string{"Date", "Category", "Notes"}

// Result is the outcome of preprocessing one balance-style sheet (assets,
// liabilities, incomes). SkippedRows and DefaultedCells feed data-quality
// warnings; they never abort processing.
type Result struct {
	Records        []model.NormalizedRecord
	SkippedRows    int
	DefaultedCells int
}

// ExpenseResult is the outcome of preprocessing the expenses sheet.
type ExpenseResult struct {
	Records     []model.ExpenseRecord
	SkippedRows int
}

// Preprocessor normalizes raw tables. A forced currency, when set, overrides
// per-cell symbol detection.
type Preprocessor struct {
	forced currency.Code
}

// New creates a preprocessor that detects currency per cell.
func New() *Preprocessor {
	return &Preprocessor{}
}

// NewWithCurrency creates a preprocessor that parses every monetary cell
// under the given currency's format rules.
func NewWithCurrency(code currency.Code) *Preprocessor {
	return &Preprocessor{forced: code}
}

// FindDateAxis locates the date column of a table, in either header shape.
func (p *Preprocessor) FindDateAxis(table *model.RawTable) (model.Column, bool) {
	if table == nil {
		return model.Column{}, false
	}
	return table.DateColumn()
}

// SumMonetaryColumns sums every cell of a row whose column matches none of
// the exclusion patterns, parsing each via the monetary parser. The second
// return value counts cells that defaulted to zero because they could not be
// parsed.
func (p *Preprocessor) SumMonetaryColumns(table *model.RawTable, row []any, excludePatterns []string) (float64, int) {
	total := 0.0
	defaulted := 0
	for _, col := range table.Columns {
		if excluded(col, excludePatterns) {
			continue
		}
		res := currency.Parse(table.Cell(row, col), p.forced)
		total += res.Amount
		if res.Defaulted {
			defaulted++
		}
	}
	return total, defaulted
}

// Preprocess produces the sorted monthly record set for a balance-style
// sheet. Returns nil when the table is missing or has no date axis; the
// caller treats that as "no usable data", not a fatal error. Row-level
// problems are skipped and counted.
func (p *Preprocessor) Preprocess(table *model.RawTable) *Result {
	if table.IsEmpty() {
		return nil
	}

	dateCol, ok := table.DateColumn()
	if !ok {
		slog.Warn("sheet has no date column, skipping",
			"sheet", table.Sheet,
			"columns", len(table.Columns))
		return nil
	}

	result := &Result{}
	byMonth := make(map[string]model.NormalizedRecord)
	var order []string

	for _, row := range table.Rows {
		date, ok := ParseDate(table.Cell(row, dateCol))
		if !ok {
			result.SkippedRows++
			continue
		}

		record := model.NormalizedRecord{
			Date:      date,
			Breakdown: make(map[string]float64),
		}
		for _, col := range table.Columns {
			if col.Index == dateCol.Index || excluded(col, defaultExcludePatterns) {
				continue
			}
			res := currency.Parse(table.Cell(row, col), p.forced)
			if res.Defaulted {
				result.DefaultedCells++
			}
			record.Total += res.Amount
			record.Breakdown[col.FullLabel()] += res.Amount
		}

		// Duplicate month buckets: the later row is the correction and
		// replaces the earlier one.
		month := record.Month()
		if _, seen := byMonth[month]; !seen {
			order = append(order, month)
		}
		byMonth[month] = record
	}

	if result.SkippedRows > 0 {
		slog.Warn("skipped rows with unparseable dates",
			"sheet", table.Sheet,
			"skipped", result.SkippedRows)
	}

	result.Records = make([]model.NormalizedRecord, 0, len(order))
	for _, month := range order {
		result.Records = append(result.Records, byMonth[month])
	}
	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Date.Before(result.Records[j].Date)
	})
	return result
}

// PreprocessExpenses validates each row of the expenses sheet into an
// ExpenseRecord. Rows failing validation are skipped and counted, never
// fatal. Returns nil when the table is missing its structural columns.
func (p *Preprocessor) PreprocessExpenses(table *model.RawTable) *ExpenseResult {
	if table.IsEmpty() {
		return nil
	}

	dateCol, ok := table.DateColumn()
	if !ok {
		slog.Warn("expenses sheet has no date column, skipping", "sheet", table.Sheet)
		return nil
	}
	amountCol, ok := findColumn(table, "Amount")
	if !ok {
		slog.Warn("expenses sheet has no amount column, skipping", "sheet", table.Sheet)
		return nil
	}
	merchantCol, _ := findColumn(table, "Merchant")
	categoryCol, _ := findColumn(table, "Category")
	typeCol, _ := findColumn(table, "Type")

	result := &ExpenseResult{}
	for i, row := range table.Rows {
		record, err := p.expenseRecord(table, row, dateCol, merchantCol, amountCol, categoryCol, typeCol)
		if err != nil {
			result.SkippedRows++
			slog.Warn("skipping invalid expense row",
				"sheet", table.Sheet,
				"row", i+1,
				"error", err)
			continue
		}
		result.Records = append(result.Records, record)
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Date.Before(result.Records[j].Date)
	})
	return result
}

func (p *Preprocessor) expenseRecord(table *model.RawTable, row []any, dateCol, merchantCol, amountCol, categoryCol, typeCol model.Column) (model.ExpenseRecord, error) {
	date, ok := ParseDate(table.Cell(row, dateCol))
	if !ok {
		return model.ExpenseRecord{}, fmt.Errorf("unparseable date %v", table.Cell(row, dateCol))
	}

	expenseType, err := model.ParseExpenseType(cellString(table.Cell(row, typeCol)))
	if err != nil {
		return model.ExpenseRecord{}, err
	}

	record := model.ExpenseRecord{
		Date:     date,
		Merchant: strings.TrimSpace(cellString(table.Cell(row, merchantCol))),
		Category: strings.TrimSpace(cellString(table.Cell(row, categoryCol))),
		Type:     expenseType,
		Amount:   currency.ParseValue(table.Cell(row, amountCol), p.forced),
	}
	if err := record.Validate(); err != nil {
		return model.ExpenseRecord{}, err
	}
	return record, nil
}

// ParseDate resolves a raw date cell to the first day of its month. Accepts
// YYYY-MM and YYYY-MM-DD strings plus already-typed times.
func ParseDate(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return monthStart(v), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{"2006-01", "2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil {
				return monthStart(t), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func cellString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func excluded(col model.Column, patterns []string) bool {
	for _, pattern := range patterns {
		if col.Matches(pattern) {
			return true
		}
		if strings.Contains(col.Label, pattern) || strings.Contains(col.Category, pattern) {
			return true
		}
	}
	return false
}

func findColumn(table *model.RawTable, name string) (model.Column, bool) {
	for _, col := range table.Columns {
		if col.Matches(name) {
			return col, true
		}
	}
	// Index -1 makes Cell return nil for the missing column, so row-level
	// validation reports the absence instead of reading a wrong cell.
	return model.Column{Index: -1}, false
}
