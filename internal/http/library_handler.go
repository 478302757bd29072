package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/worklog/internal/application"
)

type templateLister interface {
	ListTemplates(ctx context.Context) []application.CustomTemplate
}

type presetFilterer interface {
	FilterPresets(ctx context.Context, filters application.PresetFilters) []application.ContentPreset
}

type articleLibrary interface {
	ListArticles(ctx context.Context, filter application.ProfileFilter) []application.SavedArticle
	DeleteArticle(ctx context.Context, id string) (bool, error)
}

// LibraryHandler serves read access to templates, presets and articles.
type LibraryHandler struct {
	templates templateLister
	presets   presetFilterer
	articles  articleLibrary
	responder responder
	logger    *slog.Logger
}

func NewLibraryHandler(templates templateLister, presets presetFilterer, articles articleLibrary, logger *slog.Logger) *LibraryHandler {
	base := defaultLogger(logger)
	return &LibraryHandler{templates: templates, presets: presets, articles: articles, responder: newResponder(base), logger: base}
}

func (h *LibraryHandler) Templates(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, templatesResponse{Templates: h.templates.ListTemplates(r.Context())})
}

func (h *LibraryHandler) Presets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := application.PresetFilters{
		ProfileType: application.ProfileType(strings.TrimSpace(query.Get("profile"))),
		Category:    application.PresetCategory(strings.TrimSpace(query.Get("category"))),
		Search:      query.Get("q"),
	}
	for _, tag := range query["tag"] {
		if tag = strings.TrimSpace(tag); tag != "" {
			filters.Tags = append(filters.Tags, tag)
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, presetsResponse{Presets: h.presets.FilterPresets(r.Context(), filters)})
}

func (h *LibraryHandler) Articles(w http.ResponseWriter, r *http.Request) {
	filter := application.ProfileFilter(strings.TrimSpace(r.URL.Query().Get("profile")))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, articlesResponse{Articles: h.articles.ListArticles(r.Context(), filter)})
}

func (h *LibraryHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	articleID, ok := ArticleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(articleID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidArticleID)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "LibraryHandler", "DeleteArticle", "article_id", articleID)
	found, err := h.articles.DeleteArticle(r.Context(), articleID)
	switch {
	case err != nil:
		h.responder.handleServiceError(r.Context(), w, err)
	case !found:
		logger.InfoContext(r.Context(), "article not found")
		h.responder.handleServiceError(r.Context(), w, application.ErrNotFound)
	default:
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
	}
}

type templatesResponse struct {
	Templates []application.CustomTemplate `json:"templates"`
}

type presetsResponse struct {
	Presets []application.ContentPreset `json:"presets"`
}

type articlesResponse struct {
	Articles []application.SavedArticle `json:"articles"`
}
