package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/config"
)

// NewHandler wires the workspace into the router with request logging and the
// body size limit.
func NewHandler(ws *application.Workspace, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	logger = defaultLogger(logger)
	return NewRouter(RouterConfig{
		Sessions: NewSessionHandler(ws.Sessions, ws.Now, logger),
		Library:  NewLibraryHandler(ws.Templates, ws.Presets, ws.Articles, logger),
		Profile:  NewProfileHandler(ws.Profiles, logger),
		Middleware: []func(http.Handler) http.Handler{
			RequestLogger(logger),
			LimitBody(cfg.MaxBodyBytes),
		},
	})
}

// Serve runs the API on ln until ctx is cancelled, then shuts down within the
// configured grace period.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, cfg config.ServerConfig, logger *slog.Logger) error {
	logger = defaultLogger(logger)
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "worklog API listening", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to shutdown server", "error", err)
		return err
	}
	return nil
}
