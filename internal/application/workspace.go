package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/worklog/internal/persistence"
)

// WorkspaceOptions configures NewWorkspace. Zero values select defaults: an
// in-memory store, random UUIDs, the wall clock and slog.Default.
type WorkspaceOptions struct {
	Store       persistence.Store
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
	Generator   Generator
}

// Workspace owns every component of one user's recording state. It is created
// once at startup and loads all persisted collections up front; each mutation
// writes through to the store.
type Workspace struct {
	Store     persistence.Store
	Profiles  *ProfileService
	Filter    *CaptureFilter
	Sessions  *SessionService
	Templates *TemplateService
	Presets   *PresetService
	Articles  *ArticleService
	Generator Generator

	now    func() time.Time
	logger *slog.Logger
}

// NewWorkspace builds the components over opts.Store and loads their state.
func NewWorkspace(ctx context.Context, opts WorkspaceOptions) *Workspace {
	store := opts.Store
	if store == nil {
		store = persistence.NewMemoryStore()
	}
	idGenerator := opts.IDGenerator
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := defaultLogger(opts.Logger)

	profiles := NewProfileService(store, logger)
	filter := NewCaptureFilter()
	w := &Workspace{
		Store:     store,
		Profiles:  profiles,
		Filter:    filter,
		Sessions:  NewSessionServiceWithLogger(store, profiles, filter, idGenerator, now, logger),
		Templates: NewTemplateServiceWithLogger(store, idGenerator, now, logger),
		Presets:   NewPresetServiceWithLogger(store, idGenerator, now, logger),
		Articles:  NewArticleServiceWithLogger(store, idGenerator, now, logger),
		Generator: opts.Generator,
		now:       now,
		logger:    logger,
	}

	w.Profiles.Load(ctx)
	w.Sessions.Load(ctx)
	w.Templates.Load(ctx)
	w.Presets.Load(ctx)
	w.Articles.Load(ctx)
	return w
}

// Now returns the workspace clock reading.
func (w *Workspace) Now() time.Time {
	return w.now()
}

// Generate runs the configured generator over a session and a template. The
// session's own profile is used when it recorded one.
func (w *Workspace) Generate(ctx context.Context, sessionID, templateID string) (GeneratedContent, GenerationRequest, error) {
	if w.Generator == nil {
		return GeneratedContent{}, GenerationRequest{}, ErrNoGenerator
	}
	session, ok := w.Sessions.Session(ctx, sessionID)
	if !ok {
		return GeneratedContent{}, GenerationRequest{}, fmt.Errorf("session %q: %w", sessionID, ErrNotFound)
	}
	tmpl, ok := w.Templates.Template(ctx, templateID)
	if !ok {
		return GeneratedContent{}, GenerationRequest{}, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
	}
	profileType := session.ProfileType
	if profileType == "" {
		profileType = w.Profiles.ActiveType(ctx)
	}

	req := NewGenerationRequest(session, tmpl, profileType)
	content, err := w.Generator.Generate(ctx, req)
	if err != nil {
		serviceLogger(ctx, w.logger, "Workspace", "Generate", "session_id", sessionID, "template_id", templateID).
			ErrorContext(ctx, "generation failed", "error", err, "error_kind", ErrorKind(err))
		return GeneratedContent{}, req, err
	}
	return content, req, nil
}

// GenerateArticle generates content and saves it to the article library.
func (w *Workspace) GenerateArticle(ctx context.Context, sessionID, templateID string) (SavedArticle, error) {
	content, req, err := w.Generate(ctx, sessionID, templateID)
	if err != nil {
		return SavedArticle{}, err
	}
	return w.Articles.SaveArticle(ctx, ArticleFromContent(req.Session, req.Template, req.ProfileType, content))
}

// Close releases the store when it holds resources.
func (w *Workspace) Close() error {
	if closer, ok := w.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
