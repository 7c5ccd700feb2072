package driven

import (
	"context"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// CoverageAnalyzer defines the driven port for scanning a Go source tree
// and measuring documentation coverage of its exported symbols.
type CoverageAnalyzer interface {
	// Scan walks the module rooted at root and returns its coverage report.
	// Vendored, hidden, underscore-prefixed, and testdata directories are
	// excluded, as are _test.go files.
	Scan(ctx context.Context, root string) (*model.CoverageReport, error)
}
