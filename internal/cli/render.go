package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/kanso/internal/currency"
	"github.com/Veraticus/kanso/internal/metrics"
	"github.com/Veraticus/kanso/internal/quality"
)

// RenderKPIs renders the headline indicators as a bordered box.
func RenderKPIs(kpi metrics.KPIData, code currency.Code) string {
	rows := []string{
		kpiRow("Net worth", currency.Render(kpi.NetWorth, code)),
		kpiRow("Month over month", fmt.Sprintf("%s (%s)",
			signedPercent(kpi.MoMPercentage),
			currency.Render(kpi.MoMAbsolute, code))),
		kpiRow("Year over year", fmt.Sprintf("%s (%s)",
			signedPercent(kpi.YoYPercentage),
			currency.Render(kpi.YoYAbsolute, code))),
		kpiRow("Avg savings ratio", signedPercent(kpi.SavingsRatioPct)),
		kpiRow("Avg monthly savings", currency.Render(kpi.AvgMonthlySavings, code)),
	}
	if kpi.FIProgressPct > 0 {
		rows = append(rows, kpiRow("FI progress", fmt.Sprintf("%.1f%%", kpi.FIProgressPct)))
	}
	if kpi.LastUpdate != "" {
		rows = append(rows, SubtleStyle.Render("Last update: "+kpi.LastUpdate))
	}

	return RenderBox("Overview", strings.Join(rows, "\n"))
}

// RenderNetWorth renders the net worth series, one month per line.
func RenderNetWorth(series metrics.SeriesData, code currency.Code) string {
	if len(series.Dates) == 0 {
		return SubtleStyle.Render("No balance data available.")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(ChartIcon + " Net Worth"))
	b.WriteString("\n")
	for i, date := range series.Dates {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			SubtleStyle.Render(date),
			currency.Render(series.Values[i], code)))
	}
	return b.String()
}

// RenderCashFlow renders income sources, expenses and savings per month.
func RenderCashFlow(flow metrics.CashFlow, code currency.Code) string {
	if len(flow.Dates) == 0 {
		return SubtleStyle.Render("No cash flow data available.")
	}

	sources := make([]string, 0, len(flow.Incomes))
	for source := range flow.Incomes {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	var b strings.Builder
	b.WriteString(TitleStyle.Render(ChartIcon + " Cash Flow"))
	b.WriteString("\n")

	header := []string{pad("Month", 10)}
	for _, source := range sources {
		header = append(header, pad(source, 14))
	}
	header = append(header, pad("Expenses", 14), pad("Savings", 14))
	b.WriteString(TableHeaderStyle.Render(strings.Join(header, "")))
	b.WriteString("\n")

	for i, date := range flow.Dates {
		row := []string{pad(date, 10)}
		for _, source := range sources {
			row = append(row, pad(currency.Render(flow.Incomes[source][i], code), 14))
		}
		row = append(row,
			pad(currency.Render(flow.Expenses[i], code), 14),
			pad(currency.Render(flow.Savings[i], code), 14))
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCategoryBreakdown renders average monthly spend per category.
func RenderCategoryBreakdown(breakdown metrics.CategoryBreakdown, code currency.Code) string {
	return renderLabeledValues(ChartIcon+" Average Expenses by Category",
		breakdown.Categories, breakdown.Values, code)
}

// RenderTopMerchants renders the merchant spend breakdown.
func RenderTopMerchants(breakdown metrics.MerchantBreakdown, code currency.Code) string {
	return renderLabeledValues(ChartIcon+" Top Merchants",
		breakdown.Merchants, breakdown.Values, code)
}

// RenderTotals renders the income vs expenses comparison.
func RenderTotals(totals metrics.TotalsComparison, code currency.Code) string {
	return renderLabeledValues(ChartIcon+" Income vs Expenses",
		totals.Labels, totals.Values, code)
}

// RenderBalances renders the latest asset and liability composition.
func RenderBalances(balances metrics.BalanceBreakdown, code currency.Code) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(ChartIcon + " Balances"))
	b.WriteString("\n")

	b.WriteString(BoldStyle.Render("Assets"))
	b.WriteString("\n")
	b.WriteString(renderSortedMap(balances.Assets, code))
	b.WriteString(BoldStyle.Render("Liabilities"))
	b.WriteString("\n")
	b.WriteString(renderSortedMap(balances.Liabilities, code))
	return b.String()
}

// RenderQualityWarnings renders spreadsheet structure problems, errors
// first.
func RenderQualityWarnings(warnings []quality.Warning) string {
	if len(warnings) == 0 {
		return FormatSuccess("All worksheets look good.")
	}

	var b strings.Builder
	for _, w := range warnings {
		line := fmt.Sprintf("[%s] %s", w.Sheet, w.Message)
		if w.Details != "" {
			line += " (" + w.Details + ")"
		}
		if w.Severity == quality.SeverityError {
			b.WriteString(FormatError(line))
		} else {
			b.WriteString(FormatWarning(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderQualityStats renders row-level preprocessing stats as subtle
// footnotes; silent when everything parsed cleanly.
func RenderQualityStats(stats metrics.QualityStats) string {
	var lines []string
	if stats.SkippedRows > 0 {
		lines = append(lines, fmt.Sprintf("%d balance rows skipped (unparseable dates)", stats.SkippedRows))
	}
	if stats.SkippedExpenseRows > 0 {
		lines = append(lines, fmt.Sprintf("%d expense rows skipped (invalid fields)", stats.SkippedExpenseRows))
	}
	if stats.DefaultedCells > 0 {
		lines = append(lines, fmt.Sprintf("%d cells defaulted to zero (unparseable amounts)", stats.DefaultedCells))
	}
	if len(lines) == 0 {
		return ""
	}
	return SubtleStyle.Render(strings.Join(lines, "\n"))
}

func renderLabeledValues(title string, labels []string, values []float64, code currency.Code) string {
	if len(labels) == 0 {
		return SubtleStyle.Render("No data available.")
	}

	width := 0
	for _, label := range labels {
		if len(label) > width {
			width = len(label)
		}
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	for i, label := range labels {
		b.WriteString(fmt.Sprintf("%s  %s\n",
			pad(label, width+2),
			currency.Render(values[i], code)))
	}
	return b.String()
}

func renderSortedMap(m map[string]float64, code currency.Code) string {
	if len(m) == 0 {
		return SubtleStyle.Render("(none)") + "\n"
	}

	keys := make([]string, 0, len(m))
	width := 0
	for k := range m {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %s  %s\n", pad(k, width+2), currency.Render(m[k], code)))
	}
	return b.String()
}

func kpiRow(label, value string) string {
	return fmt.Sprintf("%s %s", pad(label, 22), BoldStyle.Render(value))
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s + " "
	}
	return s + strings.Repeat(" ", width-len(s))
}
