package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/kanso/internal/currency"
	"github.com/Veraticus/kanso/internal/metrics"
	"github.com/Veraticus/kanso/internal/quality"
)

func TestRenderKPIs(t *testing.T) {
	out := RenderKPIs(metrics.KPIData{
		NetWorth:          5500,
		MoMPercentage:     10,
		MoMAbsolute:       500,
		YoYPercentage:     -2.5,
		YoYAbsolute:       -140,
		SavingsRatioPct:   62.5,
		AvgMonthlySavings: 1250,
		FIProgressPct:     25,
		LastUpdate:        "02-2024",
	}, currency.USD)

	assert.Contains(t, out, "Net worth")
	assert.Contains(t, out, "$5,500.00")
	assert.Contains(t, out, "+10.0%")
	assert.Contains(t, out, "-2.5%")
	assert.Contains(t, out, "FI progress")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "02-2024")

	// Without a target the row is omitted.
	out = RenderKPIs(metrics.KPIData{NetWorth: 5500}, currency.USD)
	assert.NotContains(t, out, "FI progress")
}

func TestRenderCashFlow(t *testing.T) {
	out := RenderCashFlow(metrics.CashFlow{
		Dates:    []string{"2024-01", "2024-02"},
		Incomes:  map[string][]float64{"Salary": {5000, 5500}},
		Expenses: []float64{2000, 2100},
		Savings:  []float64{3000, 3400},
	}, currency.EUR)

	assert.Contains(t, out, "Salary")
	assert.Contains(t, out, "2024-01")
	assert.Contains(t, out, "5.500,00 €")
}

func TestRenderCashFlowEmpty(t *testing.T) {
	out := RenderCashFlow(metrics.CashFlow{}, currency.USD)
	assert.Contains(t, out, "No cash flow data")
}

func TestRenderQualityWarnings(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		out := RenderQualityWarnings(nil)
		assert.Contains(t, out, "look good")
	})

	t.Run("mixed severities", func(t *testing.T) {
		out := RenderQualityWarnings([]quality.Warning{
			{Sheet: "Expenses", Severity: quality.SeverityError, Message: "missing columns", Details: "Missing: Merchant"},
			{Sheet: "Assets", Severity: quality.SeverityWarning, Message: "worksheet is empty"},
		})
		assert.Contains(t, out, "[Expenses] missing columns (Missing: Merchant)")
		assert.Contains(t, out, "[Assets] worksheet is empty")
	})
}

func TestRenderQualityStats(t *testing.T) {
	assert.Empty(t, RenderQualityStats(metrics.QualityStats{}))

	out := RenderQualityStats(metrics.QualityStats{SkippedRows: 2, DefaultedCells: 1})
	assert.Contains(t, out, "2 balance rows skipped")
	assert.Contains(t, out, "1 cells defaulted to zero")
}
