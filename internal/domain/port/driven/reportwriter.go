package driven

import (
	"context"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// ReportWriter defines the driven port for rendering a coverage report
// to a human-readable artifact.
type ReportWriter interface {
	// Write renders the report to the configured destination. history holds
	// prior runs, newest first, for the trend section; prevStats is the
	// per-package breakdown of the most recent prior run, used to show
	// package-level movement. Both may be empty on a first run.
	Write(ctx context.Context, report *model.CoverageReport, history []model.Run, prevStats []model.PackageStat) error
}
