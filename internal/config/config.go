// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/simplepixelfont/spf-go/internal/domain/model"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken  string
	GistID       string
	GistFilename string

	Label  string
	Color  string // Fixed shields.io color, or "auto".
	Format model.OutputFormat
	Branch string

	Toolchain  string // Expected Go release channel, e.g. "1.25.x".
	SourceRoot string
	DBPath     string
	ReportPath string // Empty disables the report artifact.

	HistoryLimit  int
	Watch         bool
	WatchDebounce time.Duration
	WatchIgnore   []string
}

// HasGistCredentials returns true when both the token and the gist id are
// non-empty. Used by the composition root to decide whether to create a real
// publisher at startup or start with a nil publisher, making runs dry runs.
func (c *Config) HasGistCredentials() bool {
	return c.GitHubToken != "" && c.GistID != ""
}

// Load reads configuration from environment variables and returns a validated
// Config. Gist credentials (DOCBADGE_GITHUB_TOKEN, DOCBADGE_GIST_ID) are
// optional; without them a run still scans, records, and reports, but skips
// publishing. Optional variables with defaults: DOCBADGE_GIST_FILENAME
// (doc-coverage.json), DOCBADGE_LABEL (doc coverage), DOCBADGE_COLOR (blue),
// DOCBADGE_FORMAT (percentage), DOCBADGE_BRANCH (main), DOCBADGE_SOURCE_ROOT (.),
// DOCBADGE_DB_PATH (docbadge.db), DOCBADGE_HISTORY_LIMIT (20),
// DOCBADGE_WATCH_DEBOUNCE (2s).
func Load() (*Config, error) {
	token := os.Getenv("DOCBADGE_GITHUB_TOKEN")
	gistID := os.Getenv("DOCBADGE_GIST_ID")

	gistFilename := "doc-coverage.json"
	if v, ok := os.LookupEnv("DOCBADGE_GIST_FILENAME"); ok && v != "" {
		gistFilename = v
	}

	label := "doc coverage"
	if v, ok := os.LookupEnv("DOCBADGE_LABEL"); ok && v != "" {
		label = v
	}

	color := "blue"
	if v, ok := os.LookupEnv("DOCBADGE_COLOR"); ok && v != "" {
		color = v
	}

	format := model.FormatPercentage
	if v, ok := os.LookupEnv("DOCBADGE_FORMAT"); ok && v != "" {
		switch model.OutputFormat(v) {
		case model.FormatPercentage, model.FormatInteger, model.FormatRatio:
			format = model.OutputFormat(v)
		default:
			return nil, fmt.Errorf("DOCBADGE_FORMAT has invalid value %q (want percentage, integer, or ratio)", v)
		}
	}

	branch := "main"
	if v, ok := os.LookupEnv("DOCBADGE_BRANCH"); ok && v != "" {
		branch = v
	}

	sourceRoot := "."
	if v, ok := os.LookupEnv("DOCBADGE_SOURCE_ROOT"); ok && v != "" {
		sourceRoot = v
	}

	dbPath := "docbadge.db"
	if v, ok := os.LookupEnv("DOCBADGE_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	historyLimit := 20
	if v, ok := os.LookupEnv("DOCBADGE_HISTORY_LIMIT"); ok && v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("DOCBADGE_HISTORY_LIMIT has invalid value %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("DOCBADGE_HISTORY_LIMIT must not be negative, got %d", parsed)
		}
		historyLimit = parsed
	}

	watch := false
	if v, ok := os.LookupEnv("DOCBADGE_WATCH"); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("DOCBADGE_WATCH has invalid value %q: %w", v, err)
		}
		watch = parsed
	}

	watchDebounce := 2 * time.Second
	if v, ok := os.LookupEnv("DOCBADGE_WATCH_DEBOUNCE"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DOCBADGE_WATCH_DEBOUNCE has invalid duration %q: %w", v, err)
		}
		watchDebounce = parsed
	}

	var watchIgnore []string
	if v, ok := os.LookupEnv("DOCBADGE_WATCH_IGNORE"); ok && v != "" {
		for _, glob := range strings.Split(v, ",") {
			glob = strings.TrimSpace(glob)
			if glob != "" {
				watchIgnore = append(watchIgnore, glob)
			}
		}
	}
	if watchIgnore == nil {
		watchIgnore = []string{}
	}

	return &Config{
		GitHubToken:   token,
		GistID:        gistID,
		GistFilename:  gistFilename,
		Label:         label,
		Color:         color,
		Format:        format,
		Branch:        branch,
		Toolchain:     os.Getenv("DOCBADGE_TOOLCHAIN"),
		SourceRoot:    sourceRoot,
		DBPath:        dbPath,
		ReportPath:    os.Getenv("DOCBADGE_REPORT_PATH"),
		HistoryLimit:  historyLimit,
		Watch:         watch,
		WatchDebounce: watchDebounce,
		WatchIgnore:   watchIgnore,
	}, nil
}

// LoadEvent reads the CI event context from the standard GITHUB_* variables.
// All fields are empty outside a workflow.
func LoadEvent() model.EventContext {
	return model.EventContext{
		Event:      os.Getenv("GITHUB_EVENT_NAME"),
		Ref:        os.Getenv("GITHUB_REF"),
		Branch:     os.Getenv("GITHUB_REF_NAME"),
		CommitSHA:  os.Getenv("GITHUB_SHA"),
		Repository: os.Getenv("GITHUB_REPOSITORY"),
	}
}
