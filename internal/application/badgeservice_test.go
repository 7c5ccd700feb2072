package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplepixelfont/spf-go/internal/application"
	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// --- Mock implementations ---

type mockAnalyzer struct {
	calls atomic.Int32
	roots []string
	scan  func(ctx context.Context, root string) (*model.CoverageReport, error)
}

func (m *mockAnalyzer) Scan(ctx context.Context, root string) (*model.CoverageReport, error) {
	m.calls.Add(1)
	m.roots = append(m.roots, root)
	return m.scan(ctx, root)
}

type mockPublisher struct {
	current      func(ctx context.Context) (*model.Badge, error)
	publishErr   error
	currentCalls int
	published    []model.Badge
}

func (m *mockPublisher) Current(ctx context.Context) (*model.Badge, error) {
	m.currentCalls++
	if m.current != nil {
		return m.current(ctx)
	}
	return nil, nil
}

func (m *mockPublisher) Publish(_ context.Context, badge model.Badge) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, badge)
	return nil
}

type mockRunStore struct {
	insertErr     error
	listErr       error
	history       []model.Run
	prevStats     []model.PackageStat
	inserted      []model.Run
	insertedStats [][]model.PackageStat
	statsForIDs   []string
	pruneKeeps    []int
}

func (m *mockRunStore) Insert(_ context.Context, run model.Run, stats []model.PackageStat) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, run)
	m.insertedStats = append(m.insertedStats, stats)
	return nil
}

func (m *mockRunStore) Latest(_ context.Context) (*model.Run, error) {
	if len(m.history) == 0 {
		return nil, nil
	}
	return &m.history[0], nil
}

func (m *mockRunStore) ListRecent(_ context.Context, _ int) ([]model.Run, error) {
	return m.history, m.listErr
}

func (m *mockRunStore) StatsFor(_ context.Context, runID string) ([]model.PackageStat, error) {
	m.statsForIDs = append(m.statsForIDs, runID)
	return m.prevStats, nil
}

func (m *mockRunStore) PruneOlderThan(_ context.Context, keep int) (int64, error) {
	m.pruneKeeps = append(m.pruneKeeps, keep)
	return 0, nil
}

type reportWrite struct {
	report    *model.CoverageReport
	history   []model.Run
	prevStats []model.PackageStat
}

type mockReportWriter struct {
	mu       sync.Mutex
	writeErr error
	writes   []reportWrite
}

func (m *mockReportWriter) Write(_ context.Context, report *model.CoverageReport, history []model.Run, prevStats []model.PackageStat) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, reportWrite{report: report, history: history, prevStats: prevStats})
	return nil
}

func (m *mockReportWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// --- Fixtures ---

// coverageFixture is a 9/10 documented module, 90.0%.
func coverageFixture() *model.CoverageReport {
	return &model.CoverageReport{
		Module:      "example.com/fontlib",
		Root:        "/src/fontlib",
		Toolchain:   "go1.25.7",
		GeneratedAt: time.Now().UTC(),
		Packages: []model.PackageCoverage{
			{ImportPath: "example.com/fontlib", Documented: 5, Total: 6},
			{ImportPath: "example.com/fontlib/codec", Documented: 4, Total: 4},
		},
		Documented: 9,
		Total:      10,
	}
}

func pushEvent() model.EventContext {
	return model.EventContext{
		Event:      "push",
		Ref:        "refs/heads/main",
		Branch:     "main",
		CommitSHA:  "0decaf11223344556677889900aabbccddeeff00",
		Repository: "example/fontlib",
	}
}

// badgeMocks bundles the collaborators for a BadgeService under test.
type badgeMocks struct {
	analyzer  *mockAnalyzer
	publisher *mockPublisher
	provider  *application.PublisherProvider
	store     *mockRunStore
	reports   *mockReportWriter
	opts      application.BadgeOptions
}

// newBadgeMocks prepares happy-path collaborators around a temp module root
// and neutralizes any ambient GITHUB_OUTPUT.
func newBadgeMocks(t *testing.T) *badgeMocks {
	t.Helper()
	t.Setenv("GITHUB_OUTPUT", "")

	publisher := &mockPublisher{}
	m := &badgeMocks{
		analyzer: &mockAnalyzer{
			scan: func(_ context.Context, _ string) (*model.CoverageReport, error) {
				return coverageFixture(), nil
			},
		},
		publisher: publisher,
		provider:  application.NewPublisherProvider(publisher),
		store:     &mockRunStore{},
		reports:   &mockReportWriter{},
		opts: application.BadgeOptions{
			Label:        "doc coverage",
			Color:        application.ColorAuto,
			Format:       model.FormatPercentage,
			Branch:       "main",
			SourceRoot:   moduleRoot(t),
			HistoryLimit: 10,
		},
	}
	return m
}

func (m *badgeMocks) service() *application.BadgeService {
	return application.NewBadgeService(m.analyzer, m.provider, m.store, m.reports, m.opts)
}

// moduleRoot creates a temp directory holding a minimal go.mod.
func moduleRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gomod := "module example.com/fontlib\n\ngo 1.25\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(gomod), 0o644))
	return dir
}

// --- Tests ---

func TestBadgeRun_PublishesAndRecords(t *testing.T) {
	m := newBadgeMocks(t)

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Len(t, run.ID, 36) // uuid
	assert.Equal(t, "example.com/fontlib", run.Module)
	assert.Equal(t, "main", run.Branch)
	assert.Equal(t, "0decaf11223344556677889900aabbccddeeff00", run.CommitSHA)
	assert.Equal(t, "go1.25.7", run.Toolchain)
	assert.Equal(t, 9, run.Documented)
	assert.Equal(t, 10, run.Total)
	assert.InDelta(t, 90.0, run.Percent, 0.001)
	assert.Equal(t, "90.0%", run.Message)
	assert.Equal(t, model.PublishStatusPublished, run.Publish)
	assert.False(t, run.CreatedAt.IsZero())

	// The analyzer received the resolved module root.
	require.Len(t, m.analyzer.roots, 1)
	assert.Equal(t, m.opts.SourceRoot, m.analyzer.roots[0])

	// Published badge carries the derived color for 90%.
	require.Len(t, m.publisher.published, 1)
	badge := m.publisher.published[0]
	assert.Equal(t, 1, badge.SchemaVersion)
	assert.Equal(t, "doc coverage", badge.Label)
	assert.Equal(t, "90.0%", badge.Message)
	assert.Equal(t, "green", badge.Color)

	// Ledger insert with per-package stats, then prune to the limit.
	require.Len(t, m.store.inserted, 1)
	assert.Equal(t, run.ID, m.store.inserted[0].ID)
	require.Len(t, m.store.insertedStats, 1)
	require.Len(t, m.store.insertedStats[0], 2)
	assert.Equal(t, "example.com/fontlib", m.store.insertedStats[0][0].ImportPath)
	assert.Equal(t, []int{10}, m.store.pruneKeeps)

	assert.Equal(t, 1, m.reports.count())
}

func TestBadgeRun_ScanFailureAborts(t *testing.T) {
	m := newBadgeMocks(t)
	m.analyzer.scan = func(_ context.Context, _ string) (*model.CoverageReport, error) {
		return nil, errors.New("parse wreckage")
	}

	run, err := m.service().Run(context.Background(), pushEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
	assert.Nil(t, run)

	assert.Empty(t, m.store.inserted)
	assert.Empty(t, m.publisher.published)
	assert.Equal(t, 0, m.reports.count())
}

func TestBadgeRun_MissingGoModAborts(t *testing.T) {
	m := newBadgeMocks(t)
	m.opts.SourceRoot = t.TempDir() // no go.mod inside

	run, err := m.service().Run(context.Background(), pushEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go.mod")
	assert.Nil(t, run)
	assert.Equal(t, int32(0), m.analyzer.calls.Load())
}

func TestBadgeRun_GateClosedSkipsPublish(t *testing.T) {
	tests := []struct {
		name  string
		event model.EventContext
	}{
		{
			name: "pull request",
			event: model.EventContext{
				Event:  "pull_request",
				Ref:    "refs/heads/main",
				Branch: "main",
			},
		},
		{
			name: "push to feature branch",
			event: model.EventContext{
				Event:  "push",
				Ref:    "refs/heads/feature/hinting",
				Branch: "feature/hinting",
			},
		},
		{
			name: "tag push",
			event: model.EventContext{
				Event:  "push",
				Ref:    "refs/tags/v0.3.0",
				Branch: "v0.3.0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newBadgeMocks(t)

			run, err := m.service().Run(context.Background(), tt.event)
			require.NoError(t, err)
			require.NotNil(t, run)

			assert.Equal(t, model.PublishStatusSkipped, run.Publish)
			assert.Empty(t, m.publisher.published)
			assert.Equal(t, 0, m.publisher.currentCalls)

			// The run is still recorded.
			require.Len(t, m.store.inserted, 1)
			assert.Equal(t, model.PublishStatusSkipped, m.store.inserted[0].Publish)
		})
	}
}

func TestBadgeRun_ManualRunPublishes(t *testing.T) {
	m := newBadgeMocks(t)

	run, err := m.service().Run(context.Background(), model.EventContext{})
	require.NoError(t, err)

	assert.Equal(t, model.PublishStatusPublished, run.Publish)
	assert.Len(t, m.publisher.published, 1)
	assert.Empty(t, run.Branch)
	assert.Empty(t, run.CommitSHA)
}

func TestBadgeRun_DryRunWithoutPublisher(t *testing.T) {
	m := newBadgeMocks(t)
	m.provider = application.NewPublisherProvider(nil)

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	assert.Equal(t, model.PublishStatusDryRun, run.Publish)
	require.Len(t, m.store.inserted, 1)
	assert.Equal(t, model.PublishStatusDryRun, m.store.inserted[0].Publish)
}

func TestBadgeRun_SkipsUnchangedBadge(t *testing.T) {
	m := newBadgeMocks(t)
	m.publisher.current = func(_ context.Context) (*model.Badge, error) {
		b := model.NewBadge("doc coverage", "90.0%", "green")
		return &b, nil
	}

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	assert.Equal(t, model.PublishStatusSkipped, run.Publish)
	assert.Equal(t, 1, m.publisher.currentCalls)
	assert.Empty(t, m.publisher.published)
}

func TestBadgeRun_ChangedBadgeStillPublishes(t *testing.T) {
	m := newBadgeMocks(t)
	m.publisher.current = func(_ context.Context) (*model.Badge, error) {
		b := model.NewBadge("doc coverage", "88.9%", "green")
		return &b, nil
	}

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	assert.Equal(t, model.PublishStatusPublished, run.Publish)
	assert.Len(t, m.publisher.published, 1)
}

func TestBadgeRun_CurrentFetchFailureStillPublishes(t *testing.T) {
	m := newBadgeMocks(t)
	m.publisher.current = func(_ context.Context) (*model.Badge, error) {
		return nil, errors.New("gist unreachable")
	}

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	assert.Equal(t, model.PublishStatusPublished, run.Publish)
	assert.Len(t, m.publisher.published, 1)
}

func TestBadgeRun_PublishFailureRecordedAndReturned(t *testing.T) {
	m := newBadgeMocks(t)
	m.publisher.publishErr = errors.New("403 rate limited")

	run, err := m.service().Run(context.Background(), pushEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing badge")

	// The failed attempt still lands in the ledger and the report.
	require.NotNil(t, run)
	assert.Equal(t, model.PublishStatusFailed, run.Publish)
	require.Len(t, m.store.inserted, 1)
	assert.Equal(t, model.PublishStatusFailed, m.store.inserted[0].Publish)
	assert.Equal(t, 1, m.reports.count())
}

func TestBadgeRun_LedgerFailureIsSoft(t *testing.T) {
	m := newBadgeMocks(t)
	m.store.insertErr = errors.New("disk full")

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Len(t, m.publisher.published, 1)
	assert.Empty(t, m.store.pruneKeeps) // no prune after a failed insert
	assert.Equal(t, 1, m.reports.count())
}

func TestBadgeRun_ReportFailureIsSoft(t *testing.T) {
	m := newBadgeMocks(t)
	m.reports.writeErr = errors.New("read-only filesystem")

	_, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)
	assert.Len(t, m.publisher.published, 1)
}

func TestBadgeRun_NilReportWriter(t *testing.T) {
	m := newBadgeMocks(t)
	svc := application.NewBadgeService(m.analyzer, m.provider, m.store, nil, m.opts)

	_, err := svc.Run(context.Background(), pushEvent())
	require.NoError(t, err)
}

func TestBadgeRun_PassesHistoryToReport(t *testing.T) {
	m := newBadgeMocks(t)
	prev := model.Run{
		ID:      "prev-run",
		Module:  "example.com/fontlib",
		Percent: 88.9,
	}
	m.store.history = []model.Run{prev}
	m.store.prevStats = []model.PackageStat{
		{RunID: "prev-run", ImportPath: "example.com/fontlib", Documented: 4, Total: 6},
	}

	_, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	// Stats were looked up for the most recent prior run.
	assert.Equal(t, []string{"prev-run"}, m.store.statsForIDs)

	m.reports.mu.Lock()
	defer m.reports.mu.Unlock()
	require.Len(t, m.reports.writes, 1)
	write := m.reports.writes[0]
	require.Len(t, write.history, 1)
	assert.Equal(t, "prev-run", write.history[0].ID)
	require.Len(t, write.prevStats, 1)
	assert.Equal(t, 4, write.prevStats[0].Documented)
}

func TestBadgeRun_AppendsWorkflowOutput(t *testing.T) {
	m := newBadgeMocks(t)

	outPath := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(outPath, []byte("prior=1\n"), 0o644))
	t.Setenv("GITHUB_OUTPUT", outPath)

	_, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "prior=1\ncoverage=90.0%\n", string(data))
}

func TestBadgeRun_RatioFormat(t *testing.T) {
	m := newBadgeMocks(t)
	m.opts.Format = model.FormatRatio
	m.opts.Color = "blue"

	run, err := m.service().Run(context.Background(), pushEvent())
	require.NoError(t, err)

	assert.Equal(t, "9/10", run.Message)
	require.Len(t, m.publisher.published, 1)
	assert.Equal(t, "9/10", m.publisher.published[0].Message)
	assert.Equal(t, "blue", m.publisher.published[0].Color)
}
