package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Insert records a run and its per-package stats in a single transaction.
func (r *RunRepo) Insert(ctx context.Context, run model.Run, stats []model.PackageStat) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	const runQuery = `
		INSERT INTO runs (
			id, module, branch, commit_sha, toolchain, documented, total,
			percent, message, publish_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := tx.ExecContext(ctx, runQuery,
		run.ID, run.Module, run.Branch, run.CommitSHA, run.Toolchain,
		run.Documented, run.Total, run.Percent, run.Message,
		string(run.Publish), run.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	const statQuery = `
		INSERT INTO package_stats (run_id, import_path, documented, total)
		VALUES (?, ?, ?, ?)
	`

	for _, stat := range stats {
		if _, err := tx.ExecContext(ctx, statQuery,
			run.ID, stat.ImportPath, stat.Documented, stat.Total,
		); err != nil {
			return fmt.Errorf("insert stat %s for run %s: %w", stat.ImportPath, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}

	return nil
}

// Latest returns the most recent run. Returns nil, nil if no runs exist.
func (r *RunRepo) Latest(ctx context.Context) (*model.Run, error) {
	const query = `
		SELECT id, module, branch, commit_sha, toolchain, documented, total,
		       percent, message, publish_status, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT 1
	`

	run, err := scanRun(r.db.Reader.QueryRowContext(ctx, query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]model.Run, error) {
	const query = `
		SELECT id, module, branch, commit_sha, toolchain, documented, total,
		       percent, message, publish_status, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// StatsFor returns the per-package breakdown for a run, ordered by import path.
func (r *RunRepo) StatsFor(ctx context.Context, runID string) ([]model.PackageStat, error) {
	const query = `
		SELECT run_id, import_path, documented, total
		FROM package_stats
		WHERE run_id = ?
		ORDER BY import_path
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query stats for run %s: %w", runID, err)
	}
	defer rows.Close()

	var stats []model.PackageStat
	for rows.Next() {
		var stat model.PackageStat
		if err := rows.Scan(&stat.RunID, &stat.ImportPath, &stat.Documented, &stat.Total); err != nil {
			return nil, fmt.Errorf("scan stat: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	return stats, nil
}

// PruneOlderThan deletes all runs except the keep most recent ones and
// returns the number removed. Package stats cascade with their run.
func (r *RunRepo) PruneOlderThan(ctx context.Context, keep int) (int64, error) {
	const query = `
		DELETE FROM runs
		WHERE id NOT IN (SELECT id FROM runs ORDER BY created_at DESC LIMIT ?)
	`

	result, err := r.db.Writer.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned runs: %w", err)
	}

	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*model.Run, error) {
	var run model.Run
	var publish string
	var createdAt string

	err := s.Scan(
		&run.ID, &run.Module, &run.Branch, &run.CommitSHA, &run.Toolchain,
		&run.Documented, &run.Total, &run.Percent, &run.Message,
		&publish, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.Publish = model.PublishStatus(publish)

	run.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &run, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
