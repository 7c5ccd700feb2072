package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// maxUndocumented caps the undocumented symbol listing so a sparsely
// documented tree does not produce an unreadable report.
const maxUndocumented = 50

func buildMarkdown(report *model.CoverageReport, history []model.Run, prevStats []model.PackageStat) string {
	var sb strings.Builder
	sb.WriteString("# Documentation Coverage Report\n\n")
	sb.WriteString(fmt.Sprintf("- Module: `%s`\n", report.Module))
	sb.WriteString(fmt.Sprintf("- Generated: %s\n", report.GeneratedAt.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- Toolchain: %s\n\n", report.Toolchain))

	writeSummarySection(&sb, report)
	writePackagesSection(&sb, report, prevStats)
	writeUndocumentedSection(&sb, report)
	writeHistorySection(&sb, history)

	return sb.String()
}

func writeSummarySection(sb *strings.Builder, report *model.CoverageReport) {
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- Exported symbols: %d\n", report.Total))
	sb.WriteString(fmt.Sprintf("- Documented: %d\n", report.Documented))
	sb.WriteString(fmt.Sprintf("- Coverage: %.1f%%\n\n", report.Percent()))
}

func writePackagesSection(sb *strings.Builder, report *model.CoverageReport, prevStats []model.PackageStat) {
	sb.WriteString("## Packages\n\n")

	if len(report.Packages) == 0 {
		sb.WriteString("No packages scanned.\n\n")
		return
	}

	prev := make(map[string]model.PackageStat, len(prevStats))
	for _, stat := range prevStats {
		prev[stat.ImportPath] = stat
	}

	sb.WriteString("| Package | Documented | Total | Coverage | Change |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, pkg := range report.Packages {
		change := "-"
		if len(prev) > 0 {
			if stat, ok := prev[pkg.ImportPath]; ok {
				change = fmt.Sprintf("%+.1f pp", pkg.Percent()-stat.Percent())
			} else {
				change = "new"
			}
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %.1f%% | %s |\n",
			pkg.ImportPath, pkg.Documented, pkg.Total, pkg.Percent(), change))
	}
	sb.WriteString("\n")
}

func writeUndocumentedSection(sb *strings.Builder, report *model.CoverageReport) {
	sb.WriteString("## Undocumented Symbols\n\n")

	missing := report.Undocumented()
	if len(missing) == 0 {
		sb.WriteString("None.\n\n")
		return
	}

	shown := missing
	if len(shown) > maxUndocumented {
		shown = shown[:maxUndocumented]
	}

	sb.WriteString("| Symbol | Kind | Location |\n")
	sb.WriteString("|---|---|---|\n")
	for _, sym := range shown {
		sb.WriteString(fmt.Sprintf("| %s.%s | %s | %s:%d |\n",
			sym.Package, sym.Name, sym.Kind, sym.File, sym.Line))
	}
	sb.WriteString("\n")

	if rest := len(missing) - len(shown); rest > 0 {
		sb.WriteString(fmt.Sprintf("...and %d more.\n\n", rest))
	}
}

func writeHistorySection(sb *strings.Builder, history []model.Run) {
	sb.WriteString("## Recent Runs\n\n")

	if len(history) == 0 {
		sb.WriteString("No prior runs recorded.\n\n")
		return
	}

	sb.WriteString("| When | Commit | Coverage | Badge |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, run := range history {
		sb.WriteString(fmt.Sprintf("| %s | %s | %.1f%% | %s |\n",
			run.CreatedAt.UTC().Format("2006-01-02 15:04"),
			shortSHA(run.CommitSHA), run.Percent, run.Message))
	}
	sb.WriteString("\n")
}

func shortSHA(sha string) string {
	if sha == "" {
		return "-"
	}
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
