package metrics

// SeriesData is a simple dated series for line charts.
type SeriesData struct {
	Dates  []string
	Values []float64
}

// CashFlow aligns income, expenses, and savings per month over the lookback
// window. Incomes is keyed by source (income sheet column label), each slice
// aligned with Dates.
type CashFlow struct {
	Incomes  map[string][]float64
	Dates    []string
	Expenses []float64
	Savings  []float64
}

// CategoryBreakdown pairs category labels with values, aligned by index.
type CategoryBreakdown struct {
	Categories []string
	Values     []float64
}

// MerchantBreakdown pairs merchant labels with total spend, aligned by
// index. The trailing "Other" bucket aggregates merchants below the
// coverage threshold.
type MerchantBreakdown struct {
	Merchants []string
	Values    []float64
}

// TotalsComparison is a two-bucket labeled total comparison.
type TotalsComparison struct {
	Labels []string
	Values []float64
}

// BalanceBreakdown holds the latest per-column asset and liability values
// for the composition chart.
type BalanceBreakdown struct {
	Assets      map[string]float64
	Liabilities map[string]float64
}

// KPIData bundles every dashboard KPI in one pass.
type KPIData struct {
	LastUpdate        string
	NetWorth          float64
	MoMPercentage     float64
	MoMAbsolute       float64
	YoYPercentage     float64
	YoYAbsolute       float64
	SavingsRatioPct   float64
	AvgMonthlySavings float64
	FIProgressPct     float64
}

// ChartData bundles every dashboard chart payload in one pass.
type ChartData struct {
	NetWorth           SeriesData
	CashFlow           CashFlow
	ExpensesByCategory CategoryBreakdown
	IncomeVsExpenses   TotalsComparison
	TopMerchants       MerchantBreakdown
	Balances           BalanceBreakdown
}

// QualityStats aggregates row-level problems encountered during
// preprocessing, for surfacing as non-blocking warnings.
type QualityStats struct {
	SkippedRows        int
	SkippedExpenseRows int
	DefaultedCells     int
}
