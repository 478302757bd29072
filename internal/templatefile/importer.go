package templatefile

import (
	"context"

	"github.com/example/worklog/internal/application"
)

// Importer creates user templates from files and URLs.
type Importer struct {
	Templates *application.TemplateService
	Fetcher   *Fetcher
	MaxBytes  int64
}

// ImportFile creates a template from the document at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (application.CustomTemplate, error) {
	params, err := ReadFile(path, i.MaxBytes)
	if err != nil {
		return application.CustomTemplate{}, err
	}
	return i.Templates.CreateTemplate(ctx, params)
}

// ImportURL creates a template from the document served at url.
func (i *Importer) ImportURL(ctx context.Context, url string) (application.CustomTemplate, error) {
	fetcher := i.Fetcher
	if fetcher == nil {
		fetcher = &Fetcher{MaxBytes: i.MaxBytes}
	}
	params, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return application.CustomTemplate{}, err
	}
	return i.Templates.CreateTemplate(ctx, params)
}

// ReplaceFile re-reads path into the existing user template id, keeping its
// identity. It is used when a watched file changes.
func (i *Importer) ReplaceFile(ctx context.Context, id, path string) (application.CustomTemplate, error) {
	params, err := ReadFile(path, i.MaxBytes)
	if err != nil {
		return application.CustomTemplate{}, err
	}
	return i.Templates.UpdateTemplate(ctx, id, application.TemplatePatch{
		Name:        &params.Name,
		Description: &params.Description,
		Icon:        &params.Icon,
		Sections:    params.Sections,
	})
}
