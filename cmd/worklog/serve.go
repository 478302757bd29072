package main

import (
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/example/worklog/internal/http"
	"github.com/example/worklog/internal/watcher"
)

func generateCmd(a *app) *cobra.Command {
	var templateID string
	var save bool
	cmd := &cobra.Command{
		Use:   "generate <session-id>",
		Short: "Generate a document from a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				art, err := a.ws.GenerateArticle(cmd.Context(), args[0], templateID)
				if err != nil {
					return err
				}
				return a.emit(art, func() {
					fmt.Fprintf(a.stdout, "Saved article %s (%s)\n", art.Title, art.ID)
				})
			}
			content, _, err := a.ws.Generate(cmd.Context(), args[0], templateID)
			if err != nil {
				return err
			}
			return a.emit(content, func() { a.printContent(content) })
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "quick-summary", "template to generate with")
	cmd.Flags().BoolVar(&save, "save", false, "save the result to the article library")
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	var addr, watchDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local capture API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if watchDir == "" {
				watchDir = a.cfg.Templates.WatchDir
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return a.serve(cmd.Context(), ln, watchDir)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&watchDir, "watch", "", "also import templates from this directory")
	return cmd
}

// serve runs the API on ln and, when watchDir is set, the template watcher,
// until ctx is cancelled or either fails.
func (a *app) serve(ctx context.Context, ln net.Listener, watchDir string) error {
	g, ctx := errgroup.WithContext(ctx)

	if watchDir != "" {
		w, err := a.startWatcher(ctx, watchDir)
		if err != nil {
			_ = ln.Close()
			return err
		}
		g.Go(func() error { return w.Run(ctx) })
	}

	handler := httptransport.NewHandler(a.ws, a.cfg.Server, a.logger)
	g.Go(func() error { return httptransport.Serve(ctx, ln, handler, a.cfg.Server, a.logger) })
	return g.Wait()
}

func (a *app) startWatcher(ctx context.Context, dir string) (*watcher.Watcher, error) {
	w, err := watcher.New(dir, a.importer(), a.logger)
	if err != nil {
		return nil, err
	}
	if err := w.Scan(ctx); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Import and refresh templates from a directory until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Templates.WatchDir
			if len(args) > 0 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no directory given and templates.watch_dir is not set")
			}
			w, err := a.startWatcher(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Watching %s (%d templates imported)\n", dir, len(w.Paths()))
			return w.Run(cmd.Context())
		},
	}
}
