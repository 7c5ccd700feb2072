package model

import "time"

// SymbolKind classifies an exported declaration for documentation accounting.
type SymbolKind string

const (
	SymbolKindPackage SymbolKind = "package"
	SymbolKindFunc    SymbolKind = "func"
	SymbolKindMethod  SymbolKind = "method"
	SymbolKindType    SymbolKind = "type"
	SymbolKindConst   SymbolKind = "const"
	SymbolKindVar     SymbolKind = "var"
)

// Symbol is one exported declaration found during a scan.
type Symbol struct {
	Package    string
	Name       string
	Kind       SymbolKind
	File       string // Relative to the scan root.
	Line       int
	Documented bool
}

// PackageCoverage aggregates documentation coverage for a single package.
type PackageCoverage struct {
	ImportPath   string
	Documented   int
	Total        int
	Undocumented []Symbol
}

// Percent returns the package's documentation coverage as a percentage.
// A package with no exported symbols counts as fully documented.
func (p PackageCoverage) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Documented) / float64(p.Total) * 100
}

// CoverageReport is the result of scanning a source tree for exported
// symbols and their doc comments.
type CoverageReport struct {
	Module      string // Module path from go.mod.
	Root        string
	Toolchain   string
	GeneratedAt time.Time
	Packages    []PackageCoverage
	Documented  int
	Total       int
}

// Percent returns the overall documentation coverage as a percentage.
func (r CoverageReport) Percent() float64 {
	if r.Total == 0 {
		return 100
	}
	return float64(r.Documented) / float64(r.Total) * 100
}

// Undocumented returns every undocumented symbol across all packages,
// in package order.
func (r CoverageReport) Undocumented() []Symbol {
	var symbols []Symbol
	for _, pkg := range r.Packages {
		symbols = append(symbols, pkg.Undocumented...)
	}
	return symbols
}
