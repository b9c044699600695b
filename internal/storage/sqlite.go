// Package storage implements the SnapshotStore interface using SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/kanso/internal/common"
	"github.com/Veraticus/kanso/internal/model"
	"github.com/Veraticus/kanso/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage persists worksheet snapshots in a local SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

var _ service.SnapshotStore = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveSnapshot inserts or replaces the stored snapshot for a worksheet.
func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snapshot *model.SheetSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if strings.TrimSpace(snapshot.Sheet) == "" {
		return fmt.Errorf("snapshot sheet name cannot be empty")
	}

	payload, err := json.Marshal(snapshot.Values)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot values: %w", err)
	}

	fetchedAt := snapshot.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_snapshots (sheet, payload, content_hash, header_rows, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(sheet) DO UPDATE SET
			payload = excluded.payload,
			content_hash = excluded.content_hash,
			header_rows = excluded.header_rows,
			fetched_at = excluded.fetched_at`,
		snapshot.Sheet, string(payload), snapshot.ContentHash, snapshot.HeaderRows, fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %q: %w", snapshot.Sheet, err)
	}

	return nil
}

// GetSnapshot returns the stored snapshot for a worksheet, or ErrNotFound.
func (s *SQLiteStorage) GetSnapshot(ctx context.Context, sheet string) (*model.SheetSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sheet, payload, content_hash, header_rows, fetched_at
		FROM sheet_snapshots
		WHERE sheet = ?`, sheet)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: snapshot for sheet %q", common.ErrNotFound, sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %q: %w", sheet, err)
	}

	return snapshot, nil
}

// ListSnapshots returns all stored snapshots ordered by worksheet name.
func (s *SQLiteStorage) ListSnapshots(ctx context.Context) ([]model.SheetSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sheet, payload, content_hash, header_rows, fetched_at
		FROM sheet_snapshots
		ORDER BY sheet`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []model.SheetSnapshot
	for rows.Next() {
		snapshot, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", scanErr)
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*model.SheetSnapshot, error) {
	var snapshot model.SheetSnapshot
	var payload string

	if err := row.Scan(&snapshot.Sheet, &payload, &snapshot.ContentHash, &snapshot.HeaderRows, &snapshot.FetchedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(payload), &snapshot.Values); err != nil {
		return nil, fmt.Errorf("%w: snapshot payload for %q: %v", common.ErrDatabaseCorrupted, snapshot.Sheet, err)
	}

	return &snapshot, nil
}
