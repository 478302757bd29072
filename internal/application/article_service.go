package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/worklog/internal/persistence"
)

// ArticleService keeps the library of finalized articles, most recent first.
type ArticleService struct {
	mu          sync.Mutex
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	articles []SavedArticle
}

// NewArticleService constructs an article service with the provided dependencies.
func NewArticleService(store persistence.Store, idGenerator func() string, now func() time.Time) *ArticleService {
	return NewArticleServiceWithLogger(store, idGenerator, now, nil)
}

// NewArticleServiceWithLogger constructs an article service with a specified logger.
func NewArticleServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ArticleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ArticleService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ArticleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ArticleService", operation, attrs...)
}

// Load restores the article library. Unreadable data leaves it empty.
func (s *ArticleService) Load(ctx context.Context) {
	logger := s.loggerWith(ctx, "Load")

	var raw json.RawMessage
	found, err := persistence.GetJSON(ctx, s.store, persistence.KeyArticles, &raw)
	var articles []SavedArticle
	switch {
	case err != nil:
		logger.WarnContext(ctx, "articles unreadable, starting empty", "error", err)
	case found:
		var skipped int
		articles, skipped, err = normalizeCollection(raw, normalizeArticle)
		if err != nil {
			logger.WarnContext(ctx, "articles malformed, starting empty", "error", err)
			articles = nil
		} else if skipped > 0 {
			logger.WarnContext(ctx, "dropped unreadable articles", "skipped", skipped)
		}
	}

	s.mu.Lock()
	s.articles = articles
	s.mu.Unlock()
}

// SaveArticle adds article to the front of the library. A blank id or
// createdAt is filled in.
func (s *ArticleService) SaveArticle(ctx context.Context, article SavedArticle) (saved SavedArticle, err error) {
	logger := s.loggerWith(ctx, "SaveArticle", "session_id", article.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save article", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("article_id", saved.ID).InfoContext(ctx, "article saved")
	}()

	vErr := &ValidationError{}
	article.Title = strings.TrimSpace(article.Title)
	if article.Title == "" {
		vErr.add("title", "article title is required")
	}
	if article.ProfileType != "" && !article.ProfileType.Valid() {
		vErr.add("profileType", "unknown profile type")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if strings.TrimSpace(article.ID) == "" {
		article.ID = s.idGenerator()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = s.now().UTC()
	}
	article.Sections = cloneSections(article.Sections)
	if article.Sections == nil {
		article.Sections = []ContentSection{}
	}
	article.Tags = normalizeTags(article.Tags)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(article.ID) >= 0 {
		err = fieldError("id", "article id already exists")
		return
	}
	s.articles = append([]SavedArticle{article}, s.articles...)
	s.persistLocked(ctx)

	saved = cloneArticle(article)
	return
}

// DeleteArticle removes an article and persists the library immediately.
func (s *ArticleService) DeleteArticle(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false, nil
	}
	s.articles = append(s.articles[:idx:idx], s.articles[idx+1:]...)
	s.persistLocked(ctx)
	s.loggerWith(ctx, "DeleteArticle", "article_id", id).InfoContext(ctx, "article deleted")
	return true, nil
}

// Article returns the article with the given id.
func (s *ArticleService) Article(ctx context.Context, id string) (SavedArticle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return cloneArticle(s.articles[idx]), true
	}
	return SavedArticle{}, false
}

// ArticlesBySession returns the articles generated from sessionID.
func (s *ArticleService) ArticlesBySession(ctx context.Context, sessionID string) []SavedArticle {
	return s.collect(func(article SavedArticle) bool {
		return article.SessionID == sessionID
	})
}

// ListArticles returns the library filtered by profile. ProfileFilterAll and
// the empty filter return everything.
func (s *ArticleService) ListArticles(ctx context.Context, filter ProfileFilter) []SavedArticle {
	return s.collect(func(article SavedArticle) bool {
		return filter == "" || filter == ProfileFilterAll || article.ProfileType == ProfileType(filter)
	})
}

func (s *ArticleService) collect(keep func(SavedArticle) bool) []SavedArticle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SavedArticle, 0, len(s.articles))
	for _, article := range s.articles {
		if keep(article) {
			out = append(out, cloneArticle(article))
		}
	}
	return out
}

func (s *ArticleService) indexLocked(id string) int {
	for i := range s.articles {
		if s.articles[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ArticleService) persistLocked(ctx context.Context) {
	articles := s.articles
	if articles == nil {
		articles = []SavedArticle{}
	}
	if err := persistence.PutJSON(ctx, s.store, persistence.KeyArticles, articles); err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist articles", "error", err)
	}
}

func cloneArticle(article SavedArticle) SavedArticle {
	article.Sections = cloneSections(article.Sections)
	if article.Sections == nil {
		article.Sections = []ContentSection{}
	}
	article.Tags = append([]string{}, article.Tags...)
	return article
}

// ArticleFromContent builds an unsaved article from generated content. Tags
// merge the session tags with the content tags.
func ArticleFromContent(session RecordingSession, tmpl CustomTemplate, profileType ProfileType, content GeneratedContent) SavedArticle {
	title := strings.TrimSpace(content.Title)
	if title == "" {
		title = session.Name
	}
	tags := append(append([]string{}, session.Tags...), content.Tags...)
	return SavedArticle{
		Title:         title,
		Summary:       content.Summary,
		Sections:      cloneSections(content.Sections),
		Tags:          normalizeTags(tags),
		SessionID:     session.ID,
		ProfileType:   profileType,
		TemplateType:  tmpl.ID,
		TemplateLabel: tmpl.Name,
	}
}
