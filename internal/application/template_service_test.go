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

func newTemplateService(store persistence.Store, clock *testfixtures.Clock) *application.TemplateService {
	return application.NewTemplateService(store, testfixtures.NewIDGenerator("tmpl").NextFunc(), clock.NowFunc())
}

func sampleSections() []application.TemplateSection {
	return []application.TemplateSection{
		{ID: "intro", Label: "Intro", Order: 0, Enabled: true},
		{ID: "body", Label: "Body", Order: 1, Enabled: true},
		{ID: "outro", Label: "Outro", Order: 2, Enabled: true},
	}
}

func TestTemplateService_ListTemplates(t *testing.T) {
	ctx := context.Background()
	clock := testfixtures.NewSteppingClock(time.Time{}, time.Minute)
	svc := newTemplateService(nil, clock)

	older, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{Name: "Older", Sections: sampleSections()})
	require.NoError(t, err)
	newer, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{Name: "Newer", Sections: sampleSections()})
	require.NoError(t, err)

	templates := svc.ListTemplates(ctx)
	ids := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		ids = append(ids, tmpl.ID)
	}
	assert.Equal(t, []string{"quick-summary", "detailed-report", "action-items", "research-notes", newer.ID, older.ID}, ids)
	for _, tmpl := range templates[:4] {
		assert.True(t, tmpl.IsDefault)
		assert.Equal(t, application.SourceDefault, tmpl.CreatedFrom)
	}

	_, err = svc.UpdateTemplate(ctx, older.ID, application.TemplatePatch{})
	require.NoError(t, err)
	templates = svc.ListTemplates(ctx)
	assert.Equal(t, older.ID, templates[4].ID, "updating moves a template to the front of the user list")
}

func TestTemplateService_BuiltinsAreReadOnly(t *testing.T) {
	ctx := context.Background()
	svc := newTemplateService(nil, testfixtures.NewClock(time.Time{}))
	name := "Renamed"

	_, err := svc.UpdateTemplate(ctx, "quick-summary", application.TemplatePatch{Name: &name})
	assert.ErrorIs(t, err, application.ErrReadOnlyTemplate)
	_, err = svc.ToggleSection(ctx, "quick-summary", "overview")
	assert.ErrorIs(t, err, application.ErrReadOnlyTemplate)
	_, err = svc.ReorderSections(ctx, "quick-summary", []string{"next-steps", "highlights", "overview"})
	assert.ErrorIs(t, err, application.ErrReadOnlyTemplate)
	_, err = svc.DeleteTemplate(ctx, "quick-summary")
	assert.ErrorIs(t, err, application.ErrReadOnlyTemplate)

	builtin, ok := svc.Template(ctx, "quick-summary")
	require.True(t, ok)
	assert.Equal(t, "Quick Summary", builtin.Name)

	clone, err := svc.CloneTemplate(ctx, "quick-summary")
	require.NoError(t, err)
	assert.False(t, clone.IsDefault)
	assert.NotEqual(t, "quick-summary", clone.ID)
	assert.Equal(t, "Quick Summary (Copy)", clone.Name)
	assert.Equal(t, application.SourceDefault, clone.CreatedFrom)
	assert.Equal(t, builtin.Sections, clone.Sections)

	updated, err := svc.UpdateTemplate(ctx, clone.ID, application.TemplatePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	builtin, _ = svc.Template(ctx, "quick-summary")
	assert.Equal(t, "Quick Summary", builtin.Name, "the built-in is untouched")
}

func TestTemplateService_CloneKeepsUserSource(t *testing.T) {
	ctx := context.Background()
	svc := newTemplateService(nil, testfixtures.NewClock(time.Time{}))

	original, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{
		Name:      "Imported",
		Sections:  sampleSections(),
		Source:    application.SourceURL,
		SourceURL: "https://example.com/t.yaml",
	})
	require.NoError(t, err)

	clone, err := svc.CloneTemplate(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, application.SourceURL, clone.CreatedFrom)
	assert.Equal(t, "https://example.com/t.yaml", clone.SourceURL)

	_, err = svc.CloneTemplate(ctx, "missing")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestTemplateService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTemplateService(nil, testfixtures.NewClock(time.Time{}))

	_, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{
		Name: " ",
		Sections: []application.TemplateSection{
			{ID: "a", Label: "A", Order: 1, Enabled: true},
			{ID: "b", Label: "B", Order: 1, Enabled: true},
		},
		Source: application.SourceDefault,
	})
	var vErr *application.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.FieldErrors, "name")
	assert.Contains(t, vErr.FieldErrors, "source")
	assert.Contains(t, vErr.FieldErrors, "sections.b.order")
	assert.Len(t, svc.ListTemplates(ctx), 4)

	tmpl, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{
		Name: "Shared order when disabled",
		Sections: []application.TemplateSection{
			{Label: "A", Order: 1, Enabled: true},
			{Label: "B", Order: 1, Enabled: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, application.SourceScratch, tmpl.CreatedFrom)
	for _, sec := range tmpl.Sections {
		assert.NotEmpty(t, sec.ID)
	}
}

func TestTemplateService_ReorderSections(t *testing.T) {
	ctx := context.Background()
	svc := newTemplateService(nil, testfixtures.NewClock(time.Time{}))
	tmpl, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{Name: "Reorder", Sections: sampleSections()})
	require.NoError(t, err)

	reordered, err := svc.ReorderSections(ctx, tmpl.ID, []string{"outro", "intro", "body"})
	require.NoError(t, err)
	require.Len(t, reordered.Sections, 3)
	assert.Equal(t, "outro", reordered.Sections[0].ID)
	assert.Equal(t, 0, reordered.Sections[0].Order)
	assert.Equal(t, "intro", reordered.Sections[1].ID)
	assert.Equal(t, 1, reordered.Sections[1].Order)
	assert.Equal(t, "body", reordered.Sections[2].ID)
	assert.Equal(t, 2, reordered.Sections[2].Order)

	for name, ids := range map[string][]string{
		"missing id":  {"outro", "intro"},
		"unknown id":  {"outro", "intro", "extra"},
		"repeated id": {"outro", "outro", "body"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ReorderSections(ctx, tmpl.ID, ids)
			var vErr *application.ValidationError
			require.ErrorAs(t, err, &vErr)

			current, _ := svc.Template(ctx, tmpl.ID)
			assert.Equal(t, reordered.Sections, current.Sections, "failed reorders leave the template unchanged")
		})
	}
}

func TestTemplateService_ToggleSection(t *testing.T) {
	ctx := context.Background()
	svc := newTemplateService(nil, testfixtures.NewClock(time.Time{}))
	tmpl, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{Name: "Toggle", Sections: sampleSections()})
	require.NoError(t, err)

	toggled, err := svc.ToggleSection(ctx, tmpl.ID, "body")
	require.NoError(t, err)
	assert.Len(t, toggled.Sections, 3, "disabled sections are kept")

	enabled := application.EnabledSections(toggled)
	require.Len(t, enabled, 2)
	assert.Equal(t, "intro", enabled[0].ID)
	assert.Equal(t, "outro", enabled[1].ID)

	toggled, err = svc.ToggleSection(ctx, tmpl.ID, "body")
	require.NoError(t, err)
	assert.Len(t, application.EnabledSections(toggled), 3)

	_, err = svc.ToggleSection(ctx, tmpl.ID, "missing")
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestTemplateService_PersistsUserTemplates(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	clock := testfixtures.NewClock(time.Time{})
	svc := newTemplateService(store, clock)

	tmpl, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{Name: "Persisted", Sections: sampleSections()})
	require.NoError(t, err)
	deleted, err := svc.CreateTemplate(ctx, application.CreateTemplateParams{Name: "Deleted", Sections: sampleSections()})
	require.NoError(t, err)
	ok, err := svc.DeleteTemplate(ctx, deleted.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded := newTemplateService(store, clock)
	reloaded.Load(ctx)

	loaded, found := reloaded.Template(ctx, tmpl.ID)
	require.True(t, found)
	assert.Equal(t, tmpl.Name, loaded.Name)
	assert.Equal(t, tmpl.Sections, loaded.Sections)
	_, found = reloaded.Template(ctx, deleted.ID)
	assert.False(t, found)
	assert.Len(t, reloaded.ListTemplates(ctx), 5)
}

func TestTemplateService_LoadIgnoresPersistedBuiltins(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemoryStore()
	require.NoError(t, store.Put(ctx, persistence.KeyTemplates, []byte(`[
		{"id":"quick-summary","name":"Hijacked","isDefault":true,"sections":[]},
		{"id":"user-1","name":"Mine","isDefault":true,"createdFrom":"bogus","sections":[{"id":"b","label":"B","order":2,"enabled":true},{"id":"a","label":"A","order":1,"enabled":true}]}
	]`)))

	svc := newTemplateService(store, testfixtures.NewClock(time.Time{}))
	svc.Load(ctx)

	builtin, _ := svc.Template(ctx, "quick-summary")
	assert.Equal(t, "Quick Summary", builtin.Name)

	mine, ok := svc.Template(ctx, "user-1")
	require.True(t, ok)
	assert.False(t, mine.IsDefault)
	assert.Equal(t, application.SourceScratch, mine.CreatedFrom)
	assert.Equal(t, "a", mine.Sections[0].ID)
}
