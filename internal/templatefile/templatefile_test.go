package templatefile

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/worklog/internal/application"
	"github.com/example/worklog/internal/testfixtures"
)

const sprintReview = `
name: Sprint Review
description: What shipped this sprint
icon: rocket
sections:
  - id: shipped
    label: Shipped
  - id: slipped
    label: Slipped
    enabled: false
  - id: demo
    label: Demo
    order: 7
`

func TestParseYAML(t *testing.T) {
	doc, err := Parse([]byte(sprintReview))
	require.NoError(t, err)

	params := doc.Params(application.SourceFile, "")
	assert.Equal(t, "Sprint Review", params.Name)
	assert.Equal(t, application.SourceFile, params.Source)
	require.Len(t, params.Sections, 3)
	assert.Equal(t, 0, params.Sections[0].Order)
	assert.True(t, params.Sections[0].Enabled)
	assert.False(t, params.Sections[1].Enabled)
	assert.Equal(t, 7, params.Sections[2].Order)
}

func TestParseJSON(t *testing.T) {
	doc, err := Parse([]byte(`{"name":"Standup","sections":[{"label":"Yesterday"},{"label":"Today"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "Standup", doc.Name)
	assert.Len(t, doc.Sections, 2)
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	for name, input := range map[string]string{
		"empty":        "",
		"no name":      "sections:\n  - label: A\n",
		"no sections":  "name: Empty\n",
		"unknown key":  "name: X\ncolour: red\nsections:\n  - label: A\n",
		"not a record": "- just\n- a list\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	tmpl, ok := application.NewTemplateService(nil, nil, nil).Template(context.Background(), "detailed-report")
	require.True(t, ok)

	data, err := Encode(tmpl)
	require.NoError(t, err)
	doc, err := Parse(data)
	require.NoError(t, err)

	params := doc.Params(application.SourceFile, "")
	assert.Equal(t, tmpl.Name, params.Name)
	assert.Equal(t, tmpl.Sections, params.Sections)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "review.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sprintReview), 0o644))

	params, err := ReadFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, application.SourceFile, params.Source)

	_, err = ReadFile(path, 16)
	assert.True(t, errors.Is(err, ErrTooLarge))

	assert.True(t, Supported(path))
	assert.True(t, Supported("x.JSON"))
	assert.False(t, Supported("notes.txt"))
}

func TestImporter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/review.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sprintReview))
	}))
	defer server.Close()

	ctx := context.Background()
	svc := application.NewTemplateService(nil, testfixtures.NewIDGenerator("tmpl").NextFunc(), nil)
	importer := &Importer{Templates: svc, Fetcher: &Fetcher{Client: server.Client()}}

	imported, err := importer.ImportURL(ctx, server.URL+"/review.yaml")
	require.NoError(t, err)
	assert.Equal(t, application.SourceURL, imported.CreatedFrom)
	assert.Equal(t, server.URL+"/review.yaml", imported.SourceURL)
	assert.False(t, imported.IsDefault)

	_, err = importer.ImportURL(ctx, server.URL+"/missing.yaml")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "404"))

	path := filepath.Join(t.TempDir(), "review.yml")
	require.NoError(t, os.WriteFile(path, []byte(sprintReview), 0o644))
	fromFile, err := importer.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, application.SourceFile, fromFile.CreatedFrom)

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(sprintReview, "Sprint Review", "Sprint Retro", 1)), 0o644))
	replaced, err := importer.ReplaceFile(ctx, fromFile.ID, path)
	require.NoError(t, err)
	assert.Equal(t, fromFile.ID, replaced.ID)
	assert.Equal(t, "Sprint Retro", replaced.Name)
}
