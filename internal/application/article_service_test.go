package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/persistence"
	"github.com/example/worklog/internal/testfixtures"
)

func newArticleService(store persistence.Store) *application.ArticleService {
	clock := testfixtures.NewSteppingClock(time.Time{}, time.Second)
	return application.NewArticleService(store, testfixtures.NewIDGenerator("article").NextFunc(), clock.NowFunc())
}

func articleTitles(articles []application.SavedArticle) []string {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	return titles
}

func TestArticleService_SavePrependsAndFills(t *testing.T) {
	ctx := context.Background()
	svc := newArticleService(nil)

	first, err := svc.SaveArticle(ctx, testfixtures.NewArticle(func(a *application.SavedArticle) { a.Title = "First" }))
	require.NoError(t, err)
	second, err := svc.SaveArticle(ctx, testfixtures.NewArticle(func(a *application.SavedArticle) { a.Title = "Second" }))
	require.NoError(t, err)

	assert.Equal(t, "article-1", first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, []string{"Second", "First"}, articleTitles(svc.ListArticles(ctx, application.ProfileFilterAll)))

	_, err = svc.SaveArticle(ctx, testfixtures.NewArticle(func(a *application.SavedArticle) { a.ID = second.ID }))
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)

	_, err = svc.SaveArticle(ctx, application.SavedArticle{})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "title")
}

func TestArticleService_Filters(t *testing.T) {
	ctx := context.Background()
	svc := newArticleService(nil)

	for _, article := range []application.SavedArticle{
		testfixtures.NewArticle(func(a *application.SavedArticle) { a.Title = "Dev A" }, testfixtures.WithArticleSession("s-1")),
		testfixtures.NewArticle(func(a *application.SavedArticle) { a.Title = "Support" }, testfixtures.WithArticleSession("s-2"), testfixtures.WithArticleProfile(application.ProfileSupport)),
		testfixtures.NewArticle(func(a *application.SavedArticle) { a.Title = "Dev B" }, testfixtures.WithArticleSession("s-1")),
	} {
		_, err := svc.SaveArticle(ctx, article)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"Dev B", "Support", "Dev A"}, articleTitles(svc.ListArticles(ctx, application.ProfileFilterAll)))
	assert.Equal(t, []string{"Dev B", "Support", "Dev A"}, articleTitles(svc.ListArticles(ctx, "")))
	assert.Equal(t, []string{"Dev B", "Dev A"}, articleTitles(svc.ListArticles(ctx, application.ProfileFilter(application.ProfileDeveloper))))
	assert.Equal(t, []string{"Support"}, articleTitles(svc.ListArticles(ctx, "support")))
	assert.Equal(t, []string{"Dev B", "Dev A"}, articleTitles(svc.ArticlesBySession(ctx, "s-1")))
	assert.Empty(t, svc.ArticlesBySession(ctx, "s-9"))
}

func TestArticleService_DeletePersistsImmediately(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	svc := newArticleService(store)

	kept, err := svc.SaveArticle(ctx, testfixtures.NewArticle())
	require.NoError(t, err)
	removed, err := svc.SaveArticle(ctx, testfixtures.NewArticle())
	require.NoError(t, err)

	deleted, err := svc.DeleteArticle(ctx, removed.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = svc.DeleteArticle(ctx, removed.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	reloaded := newArticleService(store)
	reloaded.Load(ctx)
	articles := reloaded.ListArticles(ctx, application.ProfileFilterAll)
	require.Len(t, articles, 1)
	assert.Equal(t, kept.ID, articles[0].ID)
	assert.True(t, kept.CreatedAt.Equal(articles[0].CreatedAt))
	assert.Equal(t, kept.Sections, articles[0].Sections)

	_, ok := reloaded.Article(ctx, kept.ID)
	assert.True(t, ok)
}

func TestArticleFromContent(t *testing.T) {
	session := application.RecordingSession{ID: "s-1", Name: "Bug Triage", Tags: []string{"bugs"}}
	tmpl, ok := application.NewTemplateService(nil, nil, nil).Template(context.Background(), "action-items")
	require.True(t, ok)

	content := testfixtures.NewGeneratedContent()
	article := application.ArticleFromContent(session, tmpl, application.ProfileSupport, content)

	assert.Equal(t, content.Title, article.Title)
	assert.Equal(t, "s-1", article.SessionID)
	assert.Equal(t, "action-items", article.TemplateType)
	assert.Equal(t, "Action Items", article.TemplateLabel)
	assert.Equal(t, application.ProfileSupport, article.ProfileType)
	assert.Equal(t, []string{"bugs", "generated"}, article.Tags)

	content.Title = ""
	assert.Equal(t, "Bug Triage", application.ArticleFromContent(session, tmpl, application.ProfileSupport, content).Title)
}

func TestArticleService_SectionsAreIsolatedFromCallers(t *testing.T) {
	ctx := context.Background()
	svc := newArticleService(persistence.NewMemoryStore())
	article := testfixtures.NewArticle()

	saved, err := svc.SaveArticle(ctx, article)
	require.NoError(t, err)

	article.Sections[1].Content.Items[0] = "changed by caller"
	saved.Sections[1].Content.Items[1] = "changed after save"

	stored, ok := svc.Article(ctx, saved.ID)
	require.True(t, ok)
	assert.Equal(t, testfixtures.NewGeneratedContent().Sections, stored.Sections)
}
