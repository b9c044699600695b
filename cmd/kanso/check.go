package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	kansocli "github.com/Veraticus/kanso/internal/cli"
	"github.com/Veraticus/kanso/internal/common"
	"github.com/Veraticus/kanso/internal/config"
	"github.com/Veraticus/kanso/internal/currency"
	"github.com/Veraticus/kanso/internal/metrics"
	"github.com/Veraticus/kanso/internal/model"
	"github.com/Veraticus/kanso/internal/preprocess"
	"github.com/Veraticus/kanso/internal/quality"
	"github.com/Veraticus/kanso/internal/service"
	"github.com/Veraticus/kanso/internal/storage"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the stored worksheets for structural problems",
		Long: `Validates the stored worksheet snapshots: missing sheets, empty
sheets, missing required columns, and rows that would be skipped or
defaulted during metric computation. Exits non-zero when errors are
found.`,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
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

	tables, err := loadTablesByRole(ctx, store, dashCfg)
	if err != nil {
		return err
	}

	checker := quality.NewChecker()
	warnings := checker.CheckAll(tables)

	out := os.Stdout
	fmt.Fprintln(out, kansocli.FormatTitle("Data Quality"))
	fmt.Fprintln(out, kansocli.RenderQualityWarnings(warnings))

	// Row-level stats need a full preprocessing pass
	engine, err := metrics.New(
		preprocess.NewWithCurrency(currency.Code(dashCfg.Currency)),
		metrics.Tables{
			Assets:      tables["Assets"],
			Liabilities: tables["Liabilities"],
			Incomes:     tables["Incomes"],
			Expenses:    tables["Expenses"],
		},
		metrics.Config{
			LookbackMonths:   dashCfg.LookbackMonths,
			MerchantCoverage: dashCfg.MerchantCoverage,
			FITarget:         dashCfg.FITarget,
		})
	if err != nil {
		return err
	}
	if stats := kansocli.RenderQualityStats(engine.Quality()); stats != "" {
		fmt.Fprintln(out, stats)
	}

	for _, w := range warnings {
		if w.Severity == quality.SeverityError {
			return common.NewUserError("Data quality check found errors", nil)
		}
	}
	return nil
}

// loadTablesByRole loads each configured worksheet's snapshot and keys it by
// its canonical role name, so renamed sheets still check correctly.
func loadTablesByRole(ctx context.Context, store service.SnapshotStore, cfg *config.DashboardConfig) (map[string]*model.RawTable, error) {
	roles := map[string]config.SheetSpec{
		"Assets":      cfg.Assets,
		"Liabilities": cfg.Liabilities,
		"Incomes":     cfg.Incomes,
		"Expenses":    cfg.Expenses,
	}

	tables := make(map[string]*model.RawTable, len(roles))
	for role, spec := range roles {
		snapshot, err := store.GetSnapshot(ctx, spec.Name)
		if errors.Is(err, common.ErrNotFound) {
			tables[role] = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		tables[role] = snapshot.Table()
	}
	return tables, nil
}
