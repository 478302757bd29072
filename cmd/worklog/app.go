package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/config"
	"github.com/example/worklog/internal/generation"
	"github.com/example/worklog/internal/logging"
	"github.com/example/worklog/internal/persistence"
	"github.com/example/worklog/internal/persistence/sqlite"
	"github.com/example/worklog/internal/templatefile"
)

// app carries the state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	ephemeral  bool
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
	ws     *application.Workspace
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "worklog",
		Short:         "Record work sessions and turn them into documents",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (default $"+config.PathEnv+" or ./worklog.yaml)")
	root.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "keep all state in memory for this invocation")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(
		profileCmd(a),
		sessionCmd(a),
		templateCmd(a),
		presetCmd(a),
		articleCmd(a),
		generateCmd(a),
		serveCmd(a),
		watchCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	return a.openWith(ctx, cfg)
}

// openWith builds the workspace for cfg. Storage is opened last so no earlier
// failure can leak it.
func (a *app) openWith(ctx context.Context, cfg *config.Config) error {
	a.cfg = cfg
	a.logger = logging.New(a.stderr, cfg.Log)

	generator, err := application.NewCachingGenerator(generation.OutlineGenerator{}, cfg.Generation.CacheSize)
	if err != nil {
		return err
	}

	var store persistence.Store
	if a.ephemeral {
		store = persistence.NewMemoryStore()
	} else {
		sqliteStore, err := sqlite.Open(ctx, sqlite.FromStorage(cfg.Storage))
		if err != nil {
			return fmt.Errorf("open storage %s: %w", cfg.Storage.Path, err)
		}
		store = sqliteStore
	}

	a.ws = application.NewWorkspace(ctx, application.WorkspaceOptions{
		Store:     store,
		Logger:    a.logger,
		Generator: generator,
	})
	return nil
}

func (a *app) close() error {
	if a.ws == nil {
		return nil
	}
	err := a.ws.Close()
	a.ws = nil
	return err
}

func (a *app) importer() *templatefile.Importer {
	return &templatefile.Importer{
		Templates: a.ws.Templates,
		Fetcher:   templatefile.NewFetcher(a.cfg.Templates.FetchTimeout, a.cfg.Templates.MaxImportBytes),
		MaxBytes:  a.cfg.Templates.MaxImportBytes,
	}
}
