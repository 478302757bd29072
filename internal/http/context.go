package http

import (
	"context"
	"log/slog"

	"github.com/example/worklog/internal/logging"
)

type contextKey string

const articleIDContextKey contextKey = "article_id"

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request logger, or nil outside a request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithArticleID injects the article identifier resolved from the request path.
func ContextWithArticleID(ctx context.Context, articleID string) context.Context {
	return context.WithValue(ctx, articleIDContextKey, articleID)
}

// ArticleIDFromContext extracts an article identifier previously associated with the context.
func ArticleIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(articleIDContextKey).(string)
	return id, ok
}
