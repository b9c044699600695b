package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kanso/internal/model"
)

func completeTables() map[string]*model.RawTable {
	return map[string]*model.RawTable{
		"Assets":      model.NewSingleHeaderTable("Assets", []string{"Date", "Cash"}, [][]any{{"2024-01", "1"}}),
		"Liabilities": model.NewSingleHeaderTable("Liabilities", []string{"Date", "Loans"}, [][]any{{"2024-01", "1"}}),
		"Incomes":     model.NewSingleHeaderTable("Incomes", []string{"Date", "Salary"}, [][]any{{"2024-01", "1"}}),
		"Expenses": model.NewSingleHeaderTable("Expenses",
			[]string{"Date", "Merchant", "Amount", "Category", "Type"},
			[][]any{{"2024-01", "A", "1", "Food", "Variable"}}),
	}
}

func TestCheckAllClean(t *testing.T) {
	warnings := NewChecker().CheckAll(completeTables())
	assert.Empty(t, warnings)
}

func TestCheckMissingSheet(t *testing.T) {
	tables := completeTables()
	delete(tables, "Liabilities")

	warnings := NewChecker().CheckAll(tables)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Liabilities", warnings[0].Sheet)
	assert.Equal(t, SeverityError, warnings[0].Severity)
	assert.Contains(t, warnings[0].Message, "not loaded")
}

func TestCheckEmptySheet(t *testing.T) {
	tables := completeTables()
	tables["Incomes"] = model.NewSingleHeaderTable("Incomes", []string{"Date", "Salary"}, nil)

	warnings := NewChecker().CheckAll(tables)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Incomes", warnings[0].Sheet)
	assert.Equal(t, SeverityWarning, warnings[0].Severity)
}

func TestCheckMissingColumns(t *testing.T) {
	tables := completeTables()
	tables["Expenses"] = model.NewSingleHeaderTable("Expenses",
		[]string{"Date", "Amount"},
		[][]any{{"2024-01", "1"}})

	warnings := NewChecker().CheckAll(tables)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Expenses", warnings[0].Sheet)
	assert.Equal(t, SeverityError, warnings[0].Severity)
	assert.Contains(t, warnings[0].Details, "Merchant")
	assert.Contains(t, warnings[0].Details, "Category")
	assert.Contains(t, warnings[0].Details, "Type")
	assert.NotContains(t, warnings[0].Details, "Date")
}

func TestCheckColumnsMultiLevelHeader(t *testing.T) {
	tables := completeTables()
	tables["Assets"] = model.NewMultiHeaderTable("Assets",
		[]string{"", "Cash"},
		[]string{"Date", "Checking"},
		[][]any{{"2024-01", "1"}})

	warnings := NewChecker().CheckAll(tables)
	assert.Empty(t, warnings)
}
