package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/kanso/internal/cache"
	kansocli "github.com/Veraticus/kanso/internal/cli"
	"github.com/Veraticus/kanso/internal/config"
	"github.com/Veraticus/kanso/internal/model"
	"github.com/Veraticus/kanso/internal/service"
	"github.com/Veraticus/kanso/internal/sheets"
	"github.com/Veraticus/kanso/internal/storage"
)

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch all worksheets and store fresh snapshots",
		Long: `Fetches every configured worksheet from Google Sheets and stores a
local snapshot. Unchanged worksheets are detected by content hash and
left alone.`,
		RunE: runRefresh,
	}
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dashCfg, err := config.LoadDashboardConfig()
	if err != nil {
		return err
	}
	sheetsCfg, err := config.LoadSheetsConfig()
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

	reader, err := sheets.NewReader(ctx, *sheetsCfg, slog.Default())
	if err != nil {
		return err
	}

	specs := dashCfg.AllSheets()
	bar := newRefreshBar(len(specs))

	var updated, unchanged, failed int
	for _, spec := range specs {
		changed, refreshErr := refreshSheet(ctx, reader, store, spec)
		switch {
		case refreshErr != nil:
			slog.Error("Failed to refresh worksheet", "sheet", spec.Name, "error", refreshErr)
			failed++
		case changed:
			updated++
		default:
			unchanged++
		}
		_ = bar.Add(1)
	}

	fmt.Fprintln(os.Stdout, kansocli.FormatSuccess(fmt.Sprintf(
		"Refresh complete: %d updated, %d unchanged, %d failed", updated, unchanged, failed)))

	if failed > 0 {
		return fmt.Errorf("%d worksheet(s) failed to refresh", failed)
	}
	return nil
}

func refreshSheet(ctx context.Context, src service.SheetSource, store service.SnapshotStore, spec config.SheetSpec) (bool, error) {
	values, err := src.FetchValues(ctx, spec.Name)
	if err != nil {
		return false, err
	}

	payload, err := json.Marshal(values)
	if err != nil {
		return false, fmt.Errorf("failed to encode worksheet values: %w", err)
	}
	hash := cache.ContentHash(payload)

	if existing, getErr := store.GetSnapshot(ctx, spec.Name); getErr == nil && existing.ContentHash == hash {
		slog.Debug("Worksheet unchanged", "sheet", spec.Name, "hash", hash)
		return false, nil
	}

	snapshot := &model.SheetSnapshot{
		Sheet:       spec.Name,
		ContentHash: hash,
		HeaderRows:  spec.HeaderRows,
		Values:      values,
		FetchedAt:   time.Now().UTC(),
	}
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		return false, err
	}

	slog.Debug("Worksheet refreshed", "sheet", spec.Name, "rows", len(values))
	return true, nil
}

func newRefreshBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Fetching worksheets...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
