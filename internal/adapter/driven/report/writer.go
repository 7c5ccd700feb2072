// Package report renders coverage reports to markdown or HTML artifacts.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReportWriter = (*Writer)(nil)

// Writer renders coverage reports to a file. Paths ending in .html produce a
// standalone HTML page; anything else gets plain markdown.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting the given path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Write implements driven.ReportWriter.
func (w *Writer) Write(ctx context.Context, report *model.CoverageReport, history []model.Run, prevStats []model.PackageStat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	md := buildMarkdown(report, history, prevStats)

	content := []byte(md)
	if strings.EqualFold(filepath.Ext(w.path), ".html") {
		html, err := renderHTML(md)
		if err != nil {
			return err
		}
		content = html
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	if err := os.WriteFile(w.path, content, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	w.logger.Info("report written", "path", w.path, "bytes", len(content))
	return nil
}
