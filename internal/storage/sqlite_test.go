package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kanso/internal/common"
	"github.com/Veraticus/kanso/internal/model"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("")
		assert.Error(t, err)
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		assert.NoError(t, store.Close())
	})
}

func TestSaveAndGetSnapshot(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	snapshot := &model.SheetSnapshot{
		Sheet:       "Incomes",
		ContentHash: "abc123",
		HeaderRows:  1,
		FetchedAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Values: [][]any{
			{"Date", "Salary"},
			{"2024-01", 5000.0},
			{"2024-02", 5500.0},
		},
	}

	require.NoError(t, store.SaveSnapshot(ctx, snapshot))

	got, err := store.GetSnapshot(ctx, "Incomes")
	require.NoError(t, err)
	assert.Equal(t, "Incomes", got.Sheet)
	assert.Equal(t, "abc123", got.ContentHash)
	assert.Equal(t, 1, got.HeaderRows)
	require.Len(t, got.Values, 3)
	assert.Equal(t, "Salary", got.Values[0][1])

	// Stored values round-trip through JSON, so numbers come back as float64
	assert.InDelta(t, 5000.0, got.Values[1][1], 0.001)

	table := got.Table()
	require.NotNil(t, table)
	assert.Equal(t, "Incomes", table.Sheet)
	assert.Len(t, table.Rows, 2)
}

func TestSaveSnapshotReplacesExisting(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	first := &model.SheetSnapshot{
		Sheet:       "Assets",
		ContentHash: "hash-1",
		HeaderRows:  2,
		Values:      [][]any{{"Cash"}, {"Savings"}, {100.0}},
	}
	require.NoError(t, store.SaveSnapshot(ctx, first))

	second := &model.SheetSnapshot{
		Sheet:       "Assets",
		ContentHash: "hash-2",
		HeaderRows:  2,
		Values:      [][]any{{"Cash"}, {"Savings"}, {250.0}},
	}
	require.NoError(t, store.SaveSnapshot(ctx, second))

	got, err := store.GetSnapshot(ctx, "Assets")
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.ContentHash)

	all, err := store.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSaveSnapshotValidation(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	assert.Error(t, store.SaveSnapshot(ctx, nil))
	assert.Error(t, store.SaveSnapshot(ctx, &model.SheetSnapshot{Sheet: "  "}))
}

func TestGetSnapshotNotFound(t *testing.T) {
	store := setupTestStorage(t)

	_, err := store.GetSnapshot(context.Background(), "Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListSnapshots(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	t.Run("empty database", func(t *testing.T) {
		all, err := store.ListSnapshots(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("ordered by sheet name", func(t *testing.T) {
		for _, sheet := range []string{"Liabilities", "Assets", "Incomes"} {
			require.NoError(t, store.SaveSnapshot(ctx, &model.SheetSnapshot{
				Sheet:       sheet,
				ContentHash: "hash-" + sheet,
				HeaderRows:  1,
				Values:      [][]any{{"Date"}},
			}))
		}

		all, err := store.ListSnapshots(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Assets", all[0].Sheet)
		assert.Equal(t, "Incomes", all[1].Sheet)
		assert.Equal(t, "Liabilities", all[2].Sheet)
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := setupTestStorage(t)

	// Second run applies nothing and leaves data intact
	ctx := context.Background()
	require.NoError(t, store.SaveSnapshot(ctx, &model.SheetSnapshot{
		Sheet:       "Expenses",
		ContentHash: "h",
		HeaderRows:  1,
		Values:      [][]any{{"Date"}},
	}))
	require.NoError(t, store.Migrate(ctx))

	got, err := store.GetSnapshot(ctx, "Expenses")
	require.NoError(t, err)
	assert.Equal(t, "h", got.ContentHash)
}
