package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// defaultDebounce is the quiet period after the last filesystem event before
// a rescan fires, so editor write-then-rename bursts coalesce into one pass.
const defaultDebounce = 2 * time.Second

// defaultWatchIgnores mirrors the directories the coverage scan prunes.
var defaultWatchIgnores = []string{
	"**/vendor/**",
	"**/testdata/**",
	"**/.*/**",
	"**/_*/**",
}

// WatchService re-runs the coverage scan when Go source changes. It is a
// foreground development loop: results are logged and the report artifact
// refreshed, never published.
type WatchService struct {
	analyzer driven.CoverageAnalyzer
	reports  driven.ReportWriter
	root     string
	debounce time.Duration
	ignores  []string

	// Previous pass, for delta logging and report package changes.
	lastPercent float64
	hasLast     bool
	prevStats   []model.PackageStat
}

// NewWatchService creates a new WatchService. reports may be nil when no
// report artifact is configured; extra ignore globs are merged with the
// built-in set.
func NewWatchService(
	analyzer driven.CoverageAnalyzer,
	reports driven.ReportWriter,
	root string,
	debounce time.Duration,
	ignore []string,
) *WatchService {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	ignores := make([]string, 0, len(defaultWatchIgnores)+len(ignore))
	ignores = append(ignores, defaultWatchIgnores...)
	ignores = append(ignores, ignore...)

	return &WatchService{
		analyzer: analyzer,
		reports:  reports,
		root:     root,
		debounce: debounce,
		ignores:  ignores,
	}
}

// Start runs an immediate scan, then blocks until ctx is canceled,
// rescanning after each debounced burst of source changes.
func (s *WatchService) Start(ctx context.Context) error {
	root, err := resolveSourceRoot(s.root)
	if err != nil {
		return err
	}
	s.root = root

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close() //nolint:errcheck // Close error on shutdown is not actionable.

	if err := s.watchTree(fsw); err != nil {
		return err
	}

	s.rescan(ctx)

	var (
		mu    sync.Mutex
		timer *time.Timer
		busy  atomic.Bool
	)

	// fire coalesces a burst of events into one rescan. The busy guard
	// skips firing while the previous rescan is still running and
	// reschedules so the burst is not lost.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !busy.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(s.debounce)
			}
			mu.Unlock()
			return
		}
		defer busy.Store(false)
		s.rescan(ctx)
	}

	slog.Info("watching for changes", "root", s.root, "debounce", s.debounce)

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil

		case evt, ok := <-fsw.Events:
			if !ok {
				return errors.New("watch event channel closed")
			}

			rel, relErr := filepath.Rel(s.root, evt.Name)
			if relErr != nil {
				rel = evt.Name
			}
			if s.ignored(rel) {
				continue
			}

			// Extend the watch to directories created after startup.
			if evt.Has(fsnotify.Create) {
				s.maybeWatchDir(fsw, evt.Name)
			}

			if !triggersRescan(rel) {
				continue
			}

			mu.Lock()
			if timer == nil {
				timer = time.AfterFunc(s.debounce, fire)
			} else {
				timer.Reset(s.debounce)
			}
			mu.Unlock()

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watch error channel closed")
			}
			slog.Error("watch error", "error", watchErr)
		}
	}
}

// rescan runs one coverage pass, logs the figure with its delta against the
// previous pass, and refreshes the report artifact when one is configured.
func (s *WatchService) rescan(ctx context.Context) {
	report, err := s.analyzer.Scan(ctx, s.root)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("rescan failed", "error", err)
		return
	}

	percent := report.Percent()
	attrs := []any{
		"coverage", fmt.Sprintf("%.1f%%", percent),
		"documented", report.Documented,
		"total", report.Total,
	}
	if s.hasLast {
		attrs = append(attrs, "delta_pp", fmt.Sprintf("%+.1f", percent-s.lastPercent))
	}
	slog.Info("coverage updated", attrs...)

	if s.reports != nil {
		if err := s.reports.Write(ctx, report, nil, s.prevStats); err != nil {
			slog.Error("report write failed", "error", err)
		}
	}

	s.lastPercent = percent
	s.hasLast = true
	s.prevStats = packageStats(report)
}

// watchTree registers every non-ignored directory under the root.
func (s *WatchService) watchTree(fsw *fsnotify.Watcher) error {
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			slog.Warn("skipping unreadable path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // Unreadable subtrees are skipped, not fatal.
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil //nolint:nilerr // Paths outside the root are skipped.
		}
		if rel != "." && s.ignored(rel) {
			return filepath.SkipDir
		}

		if addErr := fsw.Add(path); addErr != nil {
			return fmt.Errorf("watching %s: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", s.root, err)
	}
	return nil
}

// maybeWatchDir adds path to the watcher when it is a new, non-ignored
// directory.
func (s *WatchService) maybeWatchDir(fsw *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil || s.ignored(rel) {
		return
	}

	if err := fsw.Add(path); err != nil {
		slog.Warn("watching new directory failed", "path", path, "error", err)
	}
}

// ignored reports whether the path, relative to the root, matches an ignore
// glob. The trailing-separator form is checked as well so directory paths
// match patterns ending in /**.
func (s *WatchService) ignored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range s.ignores {
		if ok, err := doublestar.Match(pat, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat, normalized+"/"); err == nil && ok {
			return true
		}
	}
	return false
}

// triggersRescan reports whether a change to the path can move the coverage
// figure. Test files and underscore- or dot-prefixed files are excluded from
// the scan, so they do not count.
func triggersRescan(rel string) bool {
	base := filepath.Base(rel)
	if base == "go.mod" {
		return true
	}
	if strings.HasPrefix(base, "_") || strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, ".go") && !strings.HasSuffix(base, "_test.go")
}
