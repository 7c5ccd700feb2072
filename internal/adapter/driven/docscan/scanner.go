// Package docscan measures documentation coverage of a Go module by parsing
// its source with go/parser and extracting exported symbols with go/doc.
package docscan

import (
	"context"
	"fmt"
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

// scanConcurrency bounds how many package directories are parsed in parallel.
const scanConcurrency = 4

// Scanner walks a module's source tree and measures documentation coverage
// of its exported symbols.
type Scanner struct {
	logger *slog.Logger
}

// Compile-time interface satisfaction check.
var _ driven.CoverageAnalyzer = (*Scanner)(nil)

// NewScanner creates a Scanner.
func NewScanner(logger *slog.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan implements driven.CoverageAnalyzer.
func (s *Scanner) Scan(ctx context.Context, root string) (*model.CoverageReport, error) {
	modulePath, err := readModulePath(root)
	if err != nil {
		return nil, err
	}

	dirs, err := collectPackageDirs(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)

	var (
		mu       sync.Mutex
		packages []model.PackageCoverage
	)
	for _, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			covs, err := scanDir(root, modulePath, dir)
			if err != nil {
				return err
			}
			mu.Lock()
			packages = append(packages, covs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].ImportPath < packages[j].ImportPath
	})

	report := &model.CoverageReport{
		Module:      modulePath,
		Root:        root,
		Toolchain:   runtime.Version(),
		GeneratedAt: time.Now().UTC(),
		Packages:    packages,
	}
	for _, pkg := range packages {
		report.Documented += pkg.Documented
		report.Total += pkg.Total
	}

	s.logger.Info("scan complete",
		"module", modulePath,
		"packages", len(packages),
		"documented", report.Documented,
		"total", report.Total)

	return report, nil
}

// readModulePath returns the module path declared in root's go.mod.
func readModulePath(root string) (string, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	mod, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	if mod.Module == nil || mod.Module.Mod.Path == "" {
		return "", fmt.Errorf("%s: missing module directive", path)
	}
	return mod.Module.Mod.Path, nil
}

// collectPackageDirs returns every directory under root containing at least
// one non-test Go source file. Vendored, hidden, underscore-prefixed, and
// testdata directories are pruned.
func collectPackageDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSourceFile(d.Name()) {
			return nil
		}
		// WalkDir visits a directory's files consecutively, so checking the
		// previous entry is enough to deduplicate.
		dir := filepath.Dir(path)
		if len(dirs) == 0 || dirs[len(dirs)-1] != dir {
			dirs = append(dirs, dir)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dirs, nil
}

func skipDir(name string) bool {
	switch {
	case name == "vendor" || name == "testdata":
		return true
	case strings.HasPrefix(name, "."):
		return true
	case strings.HasPrefix(name, "_"):
		return true
	}
	return false
}

// isSourceFile mirrors the build toolchain's file selection: no test files
// and no underscore- or dot-prefixed names.
func isSourceFile(name string) bool {
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
}

// scanDir parses one directory's source files and computes coverage for each
// package found there.
func scanDir(root, modulePath, dir string) ([]model.PackageCoverage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	byPackage := make(map[string][]*ast.File)
	for _, entry := range entries {
		if entry.IsDir() || !isSourceFile(entry.Name()) {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, entry.Name()), nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Join(dir, entry.Name()), err)
		}
		name := file.Name.Name
		byPackage[name] = append(byPackage[name], file)
	}

	importPath := importPathFor(root, modulePath, dir)

	names := make([]string, 0, len(byPackage))
	for name := range byPackage {
		names = append(names, name)
	}
	sort.Strings(names)

	var covs []model.PackageCoverage
	for _, name := range names {
		files := byPackage[name]
		docPkg, err := doc.NewFromFiles(fset, files, importPath)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", importPath, err)
		}
		covs = append(covs, coverPackage(fset, root, importPath, docPkg, files))
	}
	return covs, nil
}

// importPathFor maps a directory to its import path within the module.
func importPathFor(root, modulePath, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return modulePath
	}
	return modulePath + "/" + filepath.ToSlash(rel)
}
