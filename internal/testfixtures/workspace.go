package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/persistence"
)

// WorkspaceFactory builds application components with deterministic
// identifiers and a controllable clock.
type WorkspaceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Store       persistence.Store
	Logger      *slog.Logger
}

// WorkspaceOption configures a WorkspaceFactory.
type WorkspaceOption func(*WorkspaceFactory)

// NewWorkspaceFactory returns a factory over a fresh in-memory store whose
// clock steps one second per reading.
func NewWorkspaceFactory(opts ...WorkspaceOption) *WorkspaceFactory {
	factory := &WorkspaceFactory{
		Clock:       NewSteppingClock(time.Time{}, time.Second),
		IDGenerator: NewIDGenerator("id"),
		Store:       persistence.NewMemoryStore(),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the factory clock.
func WithClock(clock *Clock) WorkspaceOption {
	return func(f *WorkspaceFactory) { f.Clock = clock }
}

// WithIDGenerator overrides the factory identifier generator.
func WithIDGenerator(gen *IDGenerator) WorkspaceOption {
	return func(f *WorkspaceFactory) { f.IDGenerator = gen }
}

// WithStore overrides the backing store.
func WithStore(store persistence.Store) WorkspaceOption {
	return func(f *WorkspaceFactory) { f.Store = store }
}

// Workspace loads a workspace over the factory store.
func (f *WorkspaceFactory) Workspace(ctx context.Context, generator application.Generator) *application.Workspace {
	return application.NewWorkspace(ctx, application.WorkspaceOptions{
		Store:       f.Store,
		IDGenerator: f.IDGenerator.NextFunc(),
		Now:         f.Clock.NowFunc(),
		Logger:      f.Logger,
		Generator:   generator,
	})
}

// NewWorkspace is a shorthand for a default factory's workspace with no generator.
func NewWorkspace(tb testing.TB) (*application.Workspace, *WorkspaceFactory) {
	tb.Helper()
	factory := NewWorkspaceFactory()
	return factory.Workspace(context.Background(), nil), factory
}
