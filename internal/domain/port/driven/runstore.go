package driven

import (
	"context"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// RunStore defines the driven port for persisting pipeline run history.
type RunStore interface {
	// Insert records a run and its per-package stats in one transaction.
	Insert(ctx context.Context, run model.Run, stats []model.PackageStat) error
	// Latest returns the most recent run, or nil if none exist.
	Latest(ctx context.Context) (*model.Run, error)
	ListRecent(ctx context.Context, limit int) ([]model.Run, error)
	// StatsFor returns the per-package breakdown recorded for a run,
	// ordered by import path.
	StatsFor(ctx context.Context, runID string) ([]model.PackageStat, error)
	// PruneOlderThan deletes runs beyond the keep most recent ones and
	// returns the number removed.
	PruneOlderThan(ctx context.Context, keep int) (int64, error)
}
