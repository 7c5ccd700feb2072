package model

import "time"

// PublishStatus records the outcome of the badge publish step for a run.
type PublishStatus string

const (
	PublishStatusPublished PublishStatus = "published"
	PublishStatusSkipped   PublishStatus = "skipped" // Badge unchanged or trigger gate closed.
	PublishStatusDryRun    PublishStatus = "dry_run" // No gist configured.
	PublishStatusFailed    PublishStatus = "failed"
)

// Run is one recorded execution of the coverage pipeline.
type Run struct {
	ID         string // UUID assigned at insert time.
	Module     string
	Branch     string
	CommitSHA  string
	Toolchain  string
	Documented int
	Total      int
	Percent    float64
	Message    string // Badge message as rendered for this run.
	Publish    PublishStatus
	CreatedAt  time.Time
}

// PackageStat is the per-package breakdown persisted alongside a run.
type PackageStat struct {
	RunID      string
	ImportPath string
	Documented int
	Total      int
}

// Percent returns the recorded package coverage as a percentage.
// A package with no exported symbols counts as fully documented.
func (p PackageStat) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Documented) / float64(p.Total) * 100
}

// Delta returns the percentage-point change from prev to r.
func (r Run) Delta(prev Run) float64 {
	return r.Percent - prev.Percent
}
