// Package metrics computes the dashboard's financial metrics from
// normalized record sets: net worth, deltas, savings ratio, cash flow, and
// category/merchant aggregates.
package metrics

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/kanso/internal/model"
	"github.com/Veraticus/kanso/internal/preprocess"
)

// Config holds the tunable parameters of the metrics engine.
type Config struct {
	LookbackMonths   int
	MerchantCoverage float64
	// FITarget is the net worth goal for financial independence. Zero
	// disables the FI progress KPI.
	FITarget float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		LookbackMonths:   12,
		MerchantCoverage: 0.8,
	}
}

// Validate rejects configurations that are caller bugs rather than data
// problems. This is the one failure class that errors loudly.
func (c Config) Validate() error {
	if c.LookbackMonths <= 0 {
		return fmt.Errorf("lookback months must be positive, got %d", c.LookbackMonths)
	}
	if c.MerchantCoverage <= 0 || c.MerchantCoverage > 1 {
		return fmt.Errorf("merchant coverage must be in (0, 1], got %.2f", c.MerchantCoverage)
	}
	if c.FITarget < 0 {
		return fmt.Errorf("financial independence target cannot be negative, got %.2f", c.FITarget)
	}
	return nil
}

// Tables holds the four raw input sheets. Any of them may be nil; a missing
// sheet contributes an empty series, never an error.
type Tables struct {
	Assets      *model.RawTable
	Liabilities *model.RawTable
	Incomes     *model.RawTable
	Expenses    *model.RawTable
}

// Engine computes dashboard metrics over the four record sets. Each sheet is
// preprocessed lazily on first access and memoized, so repeated metric calls
// never re-run the preprocessor. All operations are pure computation; an
// Engine is not safe for concurrent use.
type Engine struct {
	pre    *preprocess.Preprocessor
	tables Tables
	cfg    Config

	assets      *preprocess.Result
	liabilities *preprocess.Result
	incomes     *preprocess.Result
	expenses    *preprocess.ExpenseResult

	assetsDone      bool
	liabilitiesDone bool
	incomesDone     bool
	expensesDone    bool
}

// New creates a metrics engine. An invalid configuration is a programming
// error and is rejected here.
func New(pre *preprocess.Preprocessor, tables Tables, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pre == nil {
		pre = preprocess.New()
	}
	return &Engine{pre: pre, tables: tables, cfg: cfg}, nil
}

func (e *Engine) assetRecords() []model.NormalizedRecord {
	if !e.assetsDone {
		e.assets = e.pre.Preprocess(e.tables.Assets)
		e.assetsDone = true
	}
	if e.assets == nil {
		return nil
	}
	return e.assets.Records
}

func (e *Engine) liabilityRecords() []model.NormalizedRecord {
	if !e.liabilitiesDone {
		e.liabilities = e.pre.Preprocess(e.tables.Liabilities)
		e.liabilitiesDone = true
	}
	if e.liabilities == nil {
		return nil
	}
	return e.liabilities.Records
}

func (e *Engine) incomeRecords() []model.NormalizedRecord {
	if !e.incomesDone {
		e.incomes = e.pre.Preprocess(e.tables.Incomes)
		e.incomesDone = true
	}
	if e.incomes == nil {
		return nil
	}
	return e.incomes.Records
}

func (e *Engine) expenseRecords() []model.ExpenseRecord {
	if !e.expensesDone {
		e.expenses = e.pre.PreprocessExpenses(e.tables.Expenses)
		e.expensesDone = true
	}
	if e.expenses == nil {
		return nil
	}
	return e.expenses.Records
}

// Quality reports row-level problems encountered while preprocessing,
// forcing preprocessing of all four sheets.
func (e *Engine) Quality() QualityStats {
	e.assetRecords()
	e.liabilityRecords()
	e.incomeRecords()
	e.expenseRecords()

	var stats QualityStats
	for _, r := range []*preprocess.Result{e.assets, e.liabilities, e.incomes} {
		if r != nil {
			stats.SkippedRows += r.SkippedRows
			stats.DefaultedCells += r.DefaultedCells
		}
	}
	if e.expenses != nil {
		stats.SkippedExpenseRows = e.expenses.SkippedRows
	}
	return stats
}

// netWorthSeries builds the monthly net worth series over the union of
// asset and liability months. Each side contributes its last-known total at
// or before the month, so a side reported less frequently carries forward.
func (e *Engine) netWorthSeries() []model.NormalizedRecord {
	assets := e.assetRecords()
	liabilities := e.liabilityRecords()
	if len(assets) == 0 && len(liabilities) == 0 {
		return nil
	}

	seen := make(map[time.Time]bool)
	var months []time.Time
	for _, r := range assets {
		if !seen[r.Date] {
			seen[r.Date] = true
			months = append(months, r.Date)
		}
	}
	for _, r := range liabilities {
		if !seen[r.Date] {
			seen[r.Date] = true
			months = append(months, r.Date)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	series := make([]model.NormalizedRecord, 0, len(months))
	ai, li := 0, 0
	assetTotal, liabilityTotal := 0.0, 0.0
	for _, month := range months {
		for ai < len(assets) && !assets[ai].Date.After(month) {
			assetTotal = assets[ai].Total
			ai++
		}
		for li < len(liabilities) && !liabilities[li].Date.After(month) {
			liabilityTotal = liabilities[li].Total
			li++
		}
		series = append(series, model.NormalizedRecord{Date: month, Total: assetTotal - liabilityTotal})
	}
	return series
}

// CurrentNetWorth returns the latest asset total minus the latest liability
// total. An empty series contributes zero.
func (e *Engine) CurrentNetWorth() float64 {
	total := 0.0
	if assets := e.assetRecords(); len(assets) > 0 {
		total += assets[len(assets)-1].Total
	}
	if liabilities := e.liabilityRecords(); len(liabilities) > 0 {
		total -= liabilities[len(liabilities)-1].Total
	}
	return total
}

// FIProgress returns the current net worth as a percentage of the
// configured financial independence target, on the 0-100 scale. A zero
// target yields zero.
func (e *Engine) FIProgress() float64 {
	if e.cfg.FITarget <= 0 {
		return 0
	}
	return e.CurrentNetWorth() / e.cfg.FITarget * 100
}

// LastUpdate returns the most recent month present in the net worth series,
// in MM-YYYY display form, or empty when there is no data.
func (e *Engine) LastUpdate() string {
	series := e.netWorthSeries()
	if len(series) == 0 {
		return ""
	}
	return series[len(series)-1].Date.Format("01-2006")
}

// MonthOverMonthDelta compares net worth at the latest month against the
// preceding month. Percentage mode returns a 0-100 value; a zero prior value
// yields 0 rather than a division error.
func (e *Engine) MonthOverMonthDelta(percentage bool) float64 {
	return e.seriesDelta(1, percentage)
}

// YearOverYearDelta compares net worth at the latest month against the value
// twelve months earlier. With fewer than thirteen months of data the
// comparison degrades to zero with a diagnostic.
func (e *Engine) YearOverYearDelta(percentage bool) float64 {
	return e.seriesDelta(12, percentage)
}

func (e *Engine) seriesDelta(monthsBack int, percentage bool) float64 {
	series := e.netWorthSeries()
	if len(series) < monthsBack+1 {
		slog.Debug("insufficient net worth history for delta",
			"months_back", monthsBack,
			"available", len(series))
		return 0
	}

	current := series[len(series)-1].Total
	previous := series[len(series)-1-monthsBack].Total
	if !percentage {
		return current - previous
	}
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// windowMonths returns the trailing lookback window as consecutive calendar
// months ending at the latest month present in the income or expense data.
func (e *Engine) windowMonths() []time.Time {
	var latest time.Time
	if incomes := e.incomeRecords(); len(incomes) > 0 {
		latest = incomes[len(incomes)-1].Date
	}
	if expenses := e.expenseRecords(); len(expenses) > 0 {
		if last := expenses[len(expenses)-1].Date; last.After(latest) {
			latest = last
		}
	}
	if latest.IsZero() {
		return nil
	}

	months := make([]time.Time, e.cfg.LookbackMonths)
	for i := range months {
		months[i] = latest.AddDate(0, i-(e.cfg.LookbackMonths-1), 0)
	}
	return months
}

func (e *Engine) monthlyIncomeTotals() map[time.Time]float64 {
	totals := make(map[time.Time]float64)
	for _, r := range e.incomeRecords() {
		totals[r.Date] = r.Total
	}
	return totals
}

func (e *Engine) monthlyExpenseTotals() map[time.Time]float64 {
	totals := make(map[time.Time]float64)
	for _, r := range e.expenseRecords() {
		totals[r.Date] += r.Amount
	}
	return totals
}

// AverageSavingsRatio computes (income - expenses) / income per window
// month and averages across months with data. A month with zero income
// contributes a zero ratio. Percentage mode returns a 0-100 value; absolute
// mode returns the average monetary savings instead of a ratio.
func (e *Engine) AverageSavingsRatio(percentage bool) float64 {
	incomeByMonth := e.monthlyIncomeTotals()
	expenseByMonth := e.monthlyExpenseTotals()

	sum := 0.0
	count := 0
	for _, month := range e.windowMonths() {
		income, hasIncome := incomeByMonth[month]
		expense, hasExpense := expenseByMonth[month]
		if !hasIncome && !hasExpense {
			continue
		}
		count++
		if percentage {
			if income != 0 {
				sum += (income - expense) / income
			}
		} else {
			sum += income - expense
		}
	}
	if count == 0 {
		return 0
	}
	if percentage {
		return sum / float64(count) * 100
	}
	return sum / float64(count)
}

// CashFlowSeries aligns income by source, expense totals, and savings per
// month over the lookback window. Months without data contribute zeros.
func (e *Engine) CashFlowSeries() CashFlow {
	months := e.windowMonths()
	flow := CashFlow{Incomes: make(map[string][]float64)}
	if len(months) == 0 {
		return flow
	}

	incomeBreakdowns := make(map[time.Time]map[string]float64)
	var sources []string
	seenSource := make(map[string]bool)
	for _, r := range e.incomeRecords() {
		incomeBreakdowns[r.Date] = r.Breakdown
		for _, source := range sortedKeys(r.Breakdown) {
			if !seenSource[source] {
				seenSource[source] = true
				sources = append(sources, source)
			}
		}
	}

	incomeByMonth := e.monthlyIncomeTotals()
	expenseByMonth := e.monthlyExpenseTotals()

	for _, source := range sources {
		flow.Incomes[source] = make([]float64, len(months))
	}
	flow.Dates = make([]string, len(months))
	flow.Expenses = make([]float64, len(months))
	flow.Savings = make([]float64, len(months))

	for i, month := range months {
		flow.Dates[i] = month.Format("2006-01")
		for _, source := range sources {
			if breakdown := incomeBreakdowns[month]; breakdown != nil {
				flow.Incomes[source][i] = breakdown[source]
			}
		}
		flow.Expenses[i] = expenseByMonth[month]
		flow.Savings[i] = incomeByMonth[month] - expenseByMonth[month]
	}
	return flow
}

// AverageExpensesByCategory groups expenses by category over the window and
// averages each category's total across the window months that have expense
// data. Categories appear in order of first appearance in the sorted input.
func (e *Engine) AverageExpensesByCategory() CategoryBreakdown {
	inWindow := e.windowSet()
	totals := make(map[string]float64)
	var order []string
	monthsWithData := make(map[time.Time]bool)

	for _, r := range e.expenseRecords() {
		if !inWindow[r.Date] {
			continue
		}
		monthsWithData[r.Date] = true
		if _, seen := totals[r.Category]; !seen {
			order = append(order, r.Category)
		}
		totals[r.Category] += r.Amount
	}

	breakdown := CategoryBreakdown{}
	if len(monthsWithData) == 0 {
		return breakdown
	}
	for _, category := range order {
		breakdown.Categories = append(breakdown.Categories, category)
		breakdown.Values = append(breakdown.Values, totals[category]/float64(len(monthsWithData)))
	}
	return breakdown
}

// IncomeVsExpensesTotals compares total income against total expenses over
// the lookback window.
func (e *Engine) IncomeVsExpensesTotals() TotalsComparison {
	inWindow := e.windowSet()

	incomeTotal := 0.0
	for _, r := range e.incomeRecords() {
		if inWindow[r.Date] {
			incomeTotal += r.Total
		}
	}
	expenseTotal := 0.0
	for _, r := range e.expenseRecords() {
		if inWindow[r.Date] {
			expenseTotal += r.Amount
		}
	}

	return TotalsComparison{
		Labels: []string{"Income", "Expenses"},
		Values: []float64{incomeTotal, expenseTotal},
	}
}

// TopMerchantsBreakdown ranks merchants by total spend over the window
// descending and keeps the minimal prefix whose cumulative share exceeds the
// coverage threshold; the remainder aggregates into an "Other" bucket. Equal
// totals keep their first-appearance order.
func (e *Engine) TopMerchantsBreakdown() MerchantBreakdown {
	inWindow := e.windowSet()
	totals := make(map[string]float64)
	var order []string

	grandTotal := 0.0
	for _, r := range e.expenseRecords() {
		if !inWindow[r.Date] {
			continue
		}
		if _, seen := totals[r.Merchant]; !seen {
			order = append(order, r.Merchant)
		}
		totals[r.Merchant] += r.Amount
		grandTotal += r.Amount
	}

	breakdown := MerchantBreakdown{}
	if grandTotal <= 0 {
		return breakdown
	}

	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})

	limit := e.cfg.MerchantCoverage * grandTotal
	cut := len(order)
	cumulative := 0.0
	for i, merchant := range order {
		cumulative += totals[merchant]
		if cumulative > limit {
			cut = i + 1
			break
		}
	}

	for _, merchant := range order[:cut] {
		breakdown.Merchants = append(breakdown.Merchants, merchant)
		breakdown.Values = append(breakdown.Values, totals[merchant])
	}
	other := 0.0
	for _, merchant := range order[cut:] {
		other += totals[merchant]
	}
	if other > 0 {
		breakdown.Merchants = append(breakdown.Merchants, "Other")
		breakdown.Values = append(breakdown.Values, other)
	}
	return breakdown
}

// NetWorthSeries returns the monthly net worth series for charting.
func (e *Engine) NetWorthSeries() SeriesData {
	series := e.netWorthSeries()
	data := SeriesData{}
	for _, point := range series {
		data.Dates = append(data.Dates, point.Date.Format("2006-01"))
		data.Values = append(data.Values, point.Total)
	}
	return data
}

// Balances returns the latest per-column asset and liability values.
func (e *Engine) Balances() BalanceBreakdown {
	breakdown := BalanceBreakdown{
		Assets:      make(map[string]float64),
		Liabilities: make(map[string]float64),
	}
	if assets := e.assetRecords(); len(assets) > 0 {
		for label, value := range assets[len(assets)-1].Breakdown {
			breakdown.Assets[label] = value
		}
	}
	if liabilities := e.liabilityRecords(); len(liabilities) > 0 {
		for label, value := range liabilities[len(liabilities)-1].Breakdown {
			breakdown.Liabilities[label] = value
		}
	}
	return breakdown
}

// KPIs computes every dashboard KPI in one pass.
func (e *Engine) KPIs() KPIData {
	return KPIData{
		LastUpdate:        e.LastUpdate(),
		NetWorth:          e.CurrentNetWorth(),
		MoMPercentage:     e.MonthOverMonthDelta(true),
		MoMAbsolute:       e.MonthOverMonthDelta(false),
		YoYPercentage:     e.YearOverYearDelta(true),
		YoYAbsolute:       e.YearOverYearDelta(false),
		SavingsRatioPct:   e.AverageSavingsRatio(true),
		AvgMonthlySavings: e.AverageSavingsRatio(false),
		FIProgressPct:     e.FIProgress(),
	}
}

// Charts computes every dashboard chart payload in one pass.
func (e *Engine) Charts() ChartData {
	return ChartData{
		NetWorth:           e.NetWorthSeries(),
		CashFlow:           e.CashFlowSeries(),
		ExpensesByCategory: e.AverageExpensesByCategory(),
		IncomeVsExpenses:   e.IncomeVsExpensesTotals(),
		TopMerchants:       e.TopMerchantsBreakdown(),
		Balances:           e.Balances(),
	}
}

func (e *Engine) windowSet() map[time.Time]bool {
	set := make(map[time.Time]bool)
	for _, month := range e.windowMonths() {
		set[month] = true
	}
	return set
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
