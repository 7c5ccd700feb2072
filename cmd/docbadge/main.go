package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/simplepixelfont/spf-go/internal/adapter/driven/docscan"
	githubadapter "github.com/simplepixelfont/spf-go/internal/adapter/driven/github"
	"github.com/simplepixelfont/spf-go/internal/adapter/driven/report"
	sqliteadapter "github.com/simplepixelfont/spf-go/internal/adapter/driven/sqlite"
	"github.com/simplepixelfont/spf-go/internal/application"
	"github.com/simplepixelfont/spf-go/internal/config"
	"github.com/simplepixelfont/spf-go/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"source_root", cfg.SourceRoot,
		"branch", cfg.Branch,
		"format", string(cfg.Format),
		"db_path", cfg.DBPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Wire the scanner and the optional report writer.
	analyzer := docscan.NewScanner(slog.Default())

	var reports driven.ReportWriter
	if cfg.ReportPath != "" {
		reports = report.NewWriter(cfg.ReportPath, slog.Default())
		slog.Info("report artifact enabled", "path", cfg.ReportPath)
	}

	// 4. Watch mode: foreground rescan loop, no ledger, no publishing.
	if cfg.Watch {
		watchSvc := application.NewWatchService(analyzer, reports, cfg.SourceRoot, cfg.WatchDebounce, cfg.WatchIgnore)
		return watchSvc.Start(ctx)
	}

	// 5. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 6. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	// 7. Create the gist publisher (absent without credentials: dry run).
	provider := application.NewPublisherProvider(nil)
	if cfg.HasGistCredentials() {
		client := githubadapter.NewClient(cfg.GitHubToken, cfg.GistID, cfg.GistFilename)
		if user, err := client.ValidateToken(ctx); err != nil {
			slog.Warn("github token validation failed", "error", err)
		} else {
			slog.Info("gist publisher created", "user", user, "gist_id", cfg.GistID, "filename", cfg.GistFilename)
		}
		provider.Replace(client)
	} else {
		slog.Info("no gist credentials configured, badge publishing disabled")
	}

	// 8. Assemble the pipeline and run it once under the CI event context.
	badgeSvc := application.NewBadgeService(
		analyzer,
		provider,
		sqliteadapter.NewRunRepo(db),
		reports,
		application.BadgeOptions{
			Label:        cfg.Label,
			Color:        cfg.Color,
			Format:       cfg.Format,
			Branch:       cfg.Branch,
			Toolchain:    cfg.Toolchain,
			SourceRoot:   cfg.SourceRoot,
			HistoryLimit: cfg.HistoryLimit,
		},
	)

	event := config.LoadEvent()
	if event.InCI() {
		slog.Info("workflow event",
			"event", event.Event,
			"ref", event.Ref,
			"repository", event.Repository,
		)
	}

	run, err := badgeSvc.Run(ctx, event)
	if err != nil {
		return err
	}

	slog.Info("docbadge finished", "coverage", run.Message, "publish", string(run.Publish))
	return nil
}
