package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kanso/internal/config"
	"github.com/Veraticus/kanso/internal/service"
	"github.com/Veraticus/kanso/internal/sheets"
	"github.com/Veraticus/kanso/internal/storage"
)

func setupTestStore(t *testing.T) service.SnapshotStore {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "kanso.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestRefreshSheetStoresAndDetectsUnchanged(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	src := sheets.NewMockSource()
	src.SetValues("Expenses", [][]any{
		{"Date", "Merchant", "Amount", "Category", "Type"},
		{"2024-01-15", "Grocer", "12.50", "Food", "Expense"},
	})

	spec := config.SheetSpec{Name: "Expenses", HeaderRows: 1}

	changed, err := refreshSheet(ctx, src, store, spec)
	require.NoError(t, err)
	assert.True(t, changed)

	snapshot, err := store.GetSnapshot(ctx, "Expenses")
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.HeaderRows)
	assert.Len(t, snapshot.Values, 2)

	// Same content again: detected by hash, nothing rewritten.
	changed, err = refreshSheet(ctx, src, store, spec)
	require.NoError(t, err)
	assert.False(t, changed)

	// New row changes the hash.
	src.SetValues("Expenses", [][]any{
		{"Date", "Merchant", "Amount", "Category", "Type"},
		{"2024-01-15", "Grocer", "12.50", "Food", "Expense"},
		{"2024-01-20", "Cafe", "4.00", "Food", "Expense"},
	})
	changed, err = refreshSheet(ctx, src, store, spec)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestRefreshSheetPropagatesFetchError(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	src := sheets.NewMockSource()
	fetchErr := errors.New("quota exhausted")
	src.SetFetchError(fetchErr)

	changed, err := refreshSheet(ctx, src, store, config.SheetSpec{Name: "Assets", HeaderRows: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fetchErr))
	assert.False(t, changed)

	_, err = store.GetSnapshot(ctx, "Assets")
	assert.Error(t, err)
}
