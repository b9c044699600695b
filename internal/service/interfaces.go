// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/kanso/internal/model"
)

// SheetSource defines the contract for fetching raw worksheet data.
type SheetSource interface {
	// FetchValues retrieves the raw cell grid of one worksheet, headers
	// included.
	FetchValues(ctx context.Context, sheet string) ([][]any, error)
}

// SnapshotStore defines the contract for persisting raw sheet snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *model.SheetSnapshot) error
	GetSnapshot(ctx context.Context, sheet string) (*model.SheetSnapshot, error)
	ListSnapshots(ctx context.Context) ([]model.SheetSnapshot, error)
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations against external
// services.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
