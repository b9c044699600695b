package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kanso/internal/cache"
	kansocli "github.com/Veraticus/kanso/internal/cli"
	"github.com/Veraticus/kanso/internal/common"
	"github.com/Veraticus/kanso/internal/config"
	"github.com/Veraticus/kanso/internal/currency"
	"github.com/Veraticus/kanso/internal/metrics"
	"github.com/Veraticus/kanso/internal/model"
	"github.com/Veraticus/kanso/internal/preprocess"
	"github.com/Veraticus/kanso/internal/service"
	"github.com/Veraticus/kanso/internal/storage"
)

// dashboardPayload bundles everything the dashboard renders, so one cache
// entry covers the whole computation.
type dashboardPayload struct {
	KPIs    metrics.KPIData
	Charts  metrics.ChartData
	Quality metrics.QualityStats
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Render the finance dashboard from stored snapshots",
		Long: `Computes net worth, cash flow, and spending metrics from the locally
stored worksheet snapshots and renders them. Run 'kanso refresh' first
to fetch the data.`,
		RunE: runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dashCfg, err := config.LoadDashboardConfig()
	if err != nil {
		return err
	}

	store, err := storage.NewSQLiteStorage(dashCfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate snapshot store: %w", err)
	}

	tables, inputHash, err := loadTables(ctx, store, dashCfg)
	if err != nil {
		return err
	}

	payload, err := computeDashboard(cache.New(dashCfg.CacheTTL), dashCfg, tables, inputHash)
	if err != nil {
		return err
	}

	renderDashboard(payload, currency.Code(dashCfg.Currency))
	return nil
}

// loadTables reads the stored snapshots for every configured worksheet and
// combines their content hashes into one cache input hash.
func loadTables(ctx context.Context, store service.SnapshotStore, cfg *config.DashboardConfig) (metrics.Tables, string, error) {
	var tables metrics.Tables
	var hashes []string

	load := func(spec config.SheetSpec, dest **model.RawTable) error {
		snapshot, err := store.GetSnapshot(ctx, spec.Name)
		if errors.Is(err, common.ErrNotFound) {
			slog.Warn("No snapshot for worksheet; run 'kanso refresh'", "sheet", spec.Name)
			return nil
		}
		if err != nil {
			return err
		}
		*dest = snapshot.Table()
		hashes = append(hashes, snapshot.ContentHash)
		return nil
	}

	if err := load(cfg.Assets, &tables.Assets); err != nil {
		return tables, "", err
	}
	if err := load(cfg.Liabilities, &tables.Liabilities); err != nil {
		return tables, "", err
	}
	if err := load(cfg.Incomes, &tables.Incomes); err != nil {
		return tables, "", err
	}
	if err := load(cfg.Expenses, &tables.Expenses); err != nil {
		return tables, "", err
	}

	if len(hashes) == 0 {
		return tables, "", common.NewUserError(
			"No worksheet snapshots found; run 'kanso refresh' first", common.ErrNotFound)
	}

	return tables, cache.ContentHash([]byte(strings.Join(hashes, "|"))), nil
}

func computeDashboard(metricsCache *cache.Cache, cfg *config.DashboardConfig, tables metrics.Tables, inputHash string) (dashboardPayload, error) {
	value, err := metricsCache.GetOrCompute("dashboard", inputHash, cfg.CacheTTL, func() (any, error) {
		pre := preprocess.NewWithCurrency(currency.Code(cfg.Currency))
		engine, err := metrics.New(pre, tables, metrics.Config{
			LookbackMonths:   cfg.LookbackMonths,
			MerchantCoverage: cfg.MerchantCoverage,
			FITarget:         cfg.FITarget,
		})
		if err != nil {
			return nil, err
		}

		return dashboardPayload{
			KPIs:    engine.KPIs(),
			Charts:  engine.Charts(),
			Quality: engine.Quality(),
		}, nil
	})
	if err != nil {
		return dashboardPayload{}, err
	}

	payload, ok := value.(dashboardPayload)
	if !ok {
		return dashboardPayload{}, fmt.Errorf("unexpected cached dashboard type %T", value)
	}
	return payload, nil
}

func renderDashboard(payload dashboardPayload, code currency.Code) {
	out := os.Stdout

	fmt.Fprintln(out, kansocli.FormatTitle("kanso"))
	fmt.Fprintln(out, kansocli.RenderKPIs(payload.KPIs, code))
	fmt.Fprintln(out, kansocli.RenderNetWorth(payload.Charts.NetWorth, code))
	fmt.Fprintln(out, kansocli.RenderCashFlow(payload.Charts.CashFlow, code))
	fmt.Fprintln(out, kansocli.RenderCategoryBreakdown(payload.Charts.ExpensesByCategory, code))
	fmt.Fprintln(out, kansocli.RenderTotals(payload.Charts.IncomeVsExpenses, code))
	fmt.Fprintln(out, kansocli.RenderTopMerchants(payload.Charts.TopMerchants, code))
	fmt.Fprintln(out, kansocli.RenderBalances(payload.Charts.Balances, code))

	if stats := kansocli.RenderQualityStats(payload.Quality); stats != "" {
		fmt.Fprintln(out, stats)
	}
}
