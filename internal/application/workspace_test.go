package application_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/testfixtures"
)

func outline(ctx context.Context, req application.GenerationRequest) (application.GeneratedContent, error) {
	sections := make([]application.ContentSection, 0, len(req.Template.Sections))
	for _, sec := range req.Template.Sections {
		sections = append(sections, application.ContentSection{Label: sec.Label, Content: application.TextBody(sec.ID)})
	}
	return application.GeneratedContent{Title: req.Session.Name, Sections: sections}, nil
}

func TestWorkspace_EndToEnd(t *testing.T) {
	ctx := context.Background()
	factory := testfixtures.NewWorkspaceFactory()
	ws := factory.Workspace(ctx, application.GeneratorFunc(outline))

	session, err := ws.Sessions.StartSession(ctx, application.StartSessionParams{Name: "Bug Triage"})
	require.NoError(t, err)
	_, decision, err := ws.Sessions.Capture(ctx, testfixtures.NewEventFixture().Raw())
	require.NoError(t, err)
	require.True(t, decision.Admitted())
	_, err = ws.Sessions.Complete(ctx, session.ID)
	require.NoError(t, err)

	clone, err := ws.Templates.CloneTemplate(ctx, "quick-summary")
	require.NoError(t, err)
	_, err = ws.Templates.ToggleSection(ctx, clone.ID, "highlights")
	require.NoError(t, err)

	article, err := ws.GenerateArticle(ctx, session.ID, clone.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bug Triage", article.Title)
	assert.Equal(t, session.ID, article.SessionID)
	assert.Equal(t, application.ProfileDeveloper, article.ProfileType)
	require.Len(t, article.Sections, 2, "disabled sections never reach the generator")
	assert.Equal(t, "Overview", article.Sections[0].Label)

	// Deleting the session leaves its articles in place.
	deleted, err := ws.Sessions.DeleteSession(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Len(t, ws.Articles.ArticlesBySession(ctx, session.ID), 1)

	reloaded := factory.Workspace(ctx, nil)
	assert.Len(t, reloaded.Articles.ListArticles(ctx, application.ProfileFilterAll), 1)
	_, ok := reloaded.Templates.Template(ctx, clone.ID)
	assert.True(t, ok)
	_, ok = reloaded.Sessions.Session(ctx, session.ID)
	assert.False(t, ok)
}

func TestWorkspace_GenerateErrors(t *testing.T) {
	ctx := context.Background()
	ws, _ := testfixtures.NewWorkspace(t)

	_, _, err := ws.Generate(ctx, "s", "quick-summary")
	assert.ErrorIs(t, err, application.ErrNoGenerator)

	ws.Generator = application.GeneratorFunc(outline)
	_, _, err = ws.Generate(ctx, "missing", "quick-summary")
	assert.ErrorIs(t, err, application.ErrNotFound)
	assert.True(t, strings.Contains(err.Error(), "missing"))

	session, err := ws.Sessions.StartSession(ctx, application.StartSessionParams{Name: "Live"})
	require.NoError(t, err)
	_, _, err = ws.Generate(ctx, session.ID, "missing")
	assert.ErrorIs(t, err, application.ErrNotFound)

	content, _, err := ws.Generate(ctx, session.ID, "research-notes")
	require.NoError(t, err)
	assert.Len(t, content.Sections, 5, "in-flight sessions can be previewed")
}

func TestWorkspace_DefaultsToMemoryStore(t *testing.T) {
	ws := application.NewWorkspace(context.Background(), application.WorkspaceOptions{})
	require.NotNil(t, ws.Store)
	assert.NoError(t, ws.Close())
	assert.Len(t, ws.Templates.ListTemplates(context.Background()), 4)
}
