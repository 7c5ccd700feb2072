// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// outputName is the workflow output key carrying the rendered coverage value.
const outputName = "coverage"

// BadgeOptions carries the scalar configuration for a badge pipeline run.
type BadgeOptions struct {
	Label        string
	Color        string // Fixed shields.io color, or ColorAuto.
	Format       model.OutputFormat
	Branch       string // Branch whose pushes publish the badge.
	Toolchain    string // Expected Go release channel, e.g. "1.25.x". Empty disables the probe.
	SourceRoot   string
	HistoryLimit int
}

// BadgeService orchestrates a full coverage run: scan the module, publish
// the badge when the trigger gate allows it, record the run in the ledger,
// and write the report artifact.
type BadgeService struct {
	analyzer  driven.CoverageAnalyzer
	publisher *PublisherProvider
	runStore  driven.RunStore
	reports   driven.ReportWriter
	opts      BadgeOptions
}

// NewBadgeService creates a new BadgeService with all required dependencies.
// reports may be nil when no report artifact is configured.
func NewBadgeService(
	analyzer driven.CoverageAnalyzer,
	publisher *PublisherProvider,
	runStore driven.RunStore,
	reports driven.ReportWriter,
	opts BadgeOptions,
) *BadgeService {
	return &BadgeService{
		analyzer:  analyzer,
		publisher: publisher,
		runStore:  runStore,
		reports:   reports,
		opts:      opts,
	}
}

// Run executes one pipeline pass and returns the recorded run. Scan failures
// abort immediately. A publish failure is captured so the ledger, report, and
// workflow output still reflect the run, then returned as the pass error.
// Ledger and report failures are logged and do not abort the pass.
func (s *BadgeService) Run(ctx context.Context, event model.EventContext) (*model.Run, error) {
	start := time.Now()

	root, err := resolveSourceRoot(s.opts.SourceRoot)
	if err != nil {
		return nil, err
	}

	s.probeToolchain()

	report, err := s.analyzer.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	percent := report.Percent()
	message := FormatMessage(report.Documented, report.Total, s.opts.Format)
	badge := model.NewBadge(s.opts.Label, message, ResolveColor(s.opts.Color, percent))

	history, prevStats := s.loadHistory(ctx)

	status, publishErr := s.publish(ctx, event, badge)

	run := model.Run{
		ID:         uuid.NewString(),
		Module:     report.Module,
		Branch:     event.Branch,
		CommitSHA:  event.CommitSHA,
		Toolchain:  report.Toolchain,
		Documented: report.Documented,
		Total:      report.Total,
		Percent:    percent,
		Message:    message,
		Publish:    status,
		CreatedAt:  time.Now().UTC(),
	}
	s.record(ctx, run, report)

	if s.reports != nil {
		if err := s.reports.Write(ctx, report, history, prevStats); err != nil {
			slog.Error("report write failed", "error", err)
		}
	}

	if err := emitOutput(outputName, message); err != nil {
		slog.Error("workflow output write failed", "error", err)
	}

	slog.Info("badge run complete",
		"coverage", message,
		"documented", report.Documented,
		"total", report.Total,
		"publish", string(status),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if publishErr != nil {
		return &run, fmt.Errorf("publishing badge: %w", publishErr)
	}
	return &run, nil
}

// resolveSourceRoot verifies the configured source root holds a Go module.
func resolveSourceRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving source root %s: %w", root, err)
	}

	if _, err := os.Stat(filepath.Join(abs, "go.mod")); err != nil {
		return "", fmt.Errorf("source root %s holds no go.mod: %w", abs, err)
	}

	return abs, nil
}

// probeToolchain compares the running Go version against the configured
// release channel. A mismatch is logged, never fatal: the scan measures
// comments, not compiled output.
func (s *BadgeService) probeToolchain() {
	version := runtime.Version()
	if s.opts.Toolchain == "" {
		slog.Debug("toolchain probe", "version", version)
		return
	}

	if !toolchainMatches(version, s.opts.Toolchain) {
		slog.Warn("toolchain differs from configured channel",
			"version", version,
			"channel", s.opts.Toolchain,
		)
		return
	}

	slog.Debug("toolchain probe", "version", version, "channel", s.opts.Toolchain)
}

// toolchainMatches reports whether the runtime version (as reported by
// runtime.Version, e.g. "go1.25.7") falls inside the configured release
// channel (e.g. "1.25.x"). Versions semver cannot parse, such as devel
// builds, only match the channel verbatim.
func toolchainMatches(version, channel string) bool {
	v := "v" + strings.TrimPrefix(version, "go")
	c := "v" + strings.TrimPrefix(strings.TrimSuffix(channel, ".x"), "go")

	if !semver.IsValid(v) || !semver.IsValid(c) {
		return version == channel
	}

	return semver.MajorMinor(v) == semver.MajorMinor(c)
}

// loadHistory fetches recent runs plus the per-package stats of the most
// recent one for report deltas. History must be read before the current run
// is inserted. Failures degrade to an empty history.
func (s *BadgeService) loadHistory(ctx context.Context) ([]model.Run, []model.PackageStat) {
	history, err := s.runStore.ListRecent(ctx, s.opts.HistoryLimit)
	if err != nil {
		slog.Error("run history load failed", "error", err)
		return nil, nil
	}
	if len(history) == 0 {
		return nil, nil
	}

	prevStats, err := s.runStore.StatsFor(ctx, history[0].ID)
	if err != nil {
		slog.Error("package stats load failed", "run", history[0].ID, "error", err)
		return history, nil
	}

	return history, prevStats
}

// publish evaluates the trigger gate and pushes the badge when it applies.
// The returned status is what the ledger records; a non-nil error marks a
// publish attempt that failed.
func (s *BadgeService) publish(ctx context.Context, event model.EventContext, badge model.Badge) (model.PublishStatus, error) {
	pub := s.publisher.Get()
	if pub == nil {
		slog.Info("badge publish skipped", "reason", "no publisher configured")
		return model.PublishStatusDryRun, nil
	}

	ok, reason := ShouldPublish(event, s.opts.Branch)
	if !ok {
		slog.Info("badge publish skipped", "reason", reason)
		return model.PublishStatusSkipped, nil
	}

	current, err := pub.Current(ctx)
	if err != nil {
		slog.Error("current badge fetch failed", "error", err)
		// Continue without the unchanged check.
	} else if current != nil && current.Equal(badge) {
		slog.Info("badge publish skipped", "reason", "unchanged", "message", badge.Message)
		return model.PublishStatusSkipped, nil
	}

	if err := pub.Publish(ctx, badge); err != nil {
		return model.PublishStatusFailed, err
	}

	slog.Info("badge published", "message", badge.Message, "color", badge.Color)
	return model.PublishStatusPublished, nil
}

// record inserts the run with its per-package stats and prunes history past
// the configured limit.
func (s *BadgeService) record(ctx context.Context, run model.Run, report *model.CoverageReport) {
	if err := s.runStore.Insert(ctx, run, packageStats(report)); err != nil {
		slog.Error("run insert failed", "run", run.ID, "error", err)
		return
	}

	if s.opts.HistoryLimit <= 0 {
		return
	}
	removed, err := s.runStore.PruneOlderThan(ctx, s.opts.HistoryLimit)
	if err != nil {
		slog.Error("run prune failed", "error", err)
	} else if removed > 0 {
		slog.Debug("old runs pruned", "removed", removed)
	}
}

// packageStats flattens a report into ledger rows. The run ID is assigned
// on insert.
func packageStats(report *model.CoverageReport) []model.PackageStat {
	stats := make([]model.PackageStat, 0, len(report.Packages))
	for _, pkg := range report.Packages {
		stats = append(stats, model.PackageStat{
			ImportPath: pkg.ImportPath,
			Documented: pkg.Documented,
			Total:      pkg.Total,
		})
	}
	return stats
}

// emitOutput appends a name=value line to the file named by GITHUB_OUTPUT.
// Outside a workflow the value is only logged.
func emitOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		slog.Info("workflow output", name, value)
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		f.Close() //nolint:errcheck // The write error is the one that matters.
		return fmt.Errorf("appending output %s: %w", name, err)
	}
	return f.Close()
}
