// Package templatefile reads template definitions from YAML or JSON documents
// on disk or over HTTP and turns them into template creation parameters.
package templatefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/worklog/internal/application"
)

// DefaultMaxBytes bounds a template document when no limit is configured.
const DefaultMaxBytes int64 = 256 << 10

var (
	// ErrTooLarge is returned when a document exceeds the configured size limit.
	ErrTooLarge = errors.New("templatefile: document too large")
	// ErrInvalidDocument is returned when a document has no usable template.
	ErrInvalidDocument = errors.New("templatefile: invalid template document")
)

// Document is the on-disk shape of a template. JSON documents use the same keys.
type Document struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Icon        string            `yaml:"icon,omitempty"`
	Sections    []SectionDocument `yaml:"sections"`
}

// SectionDocument describes one section. Order defaults to the list position
// and Enabled defaults to true.
type SectionDocument struct {
	ID          string `yaml:"id,omitempty"`
	Label       string `yaml:"label"`
	Description string `yaml:"description,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Order       *int   `yaml:"order,omitempty"`
	Enabled     *bool  `yaml:"enabled,omitempty"`
}

// Parse decodes a YAML or JSON template document.
func Parse(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, fmt.Errorf("%w: empty document", ErrInvalidDocument)
		}
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return Document{}, fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}
	if len(doc.Sections) == 0 {
		return Document{}, fmt.Errorf("%w: at least one section is required", ErrInvalidDocument)
	}
	return doc, nil
}

// Params converts the document into creation parameters for the given source.
func (d Document) Params(source application.TemplateSource, sourceURL string) application.CreateTemplateParams {
	sections := make([]application.TemplateSection, 0, len(d.Sections))
	for i, sec := range d.Sections {
		order := i
		if sec.Order != nil {
			order = *sec.Order
		}
		enabled := true
		if sec.Enabled != nil {
			enabled = *sec.Enabled
		}
		sections = append(sections, application.TemplateSection{
			ID:          sec.ID,
			Label:       sec.Label,
			Description: sec.Description,
			Placeholder: sec.Placeholder,
			Order:       order,
			Enabled:     enabled,
		})
	}
	return application.CreateTemplateParams{
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		Sections:    sections,
		Source:      source,
		SourceURL:   sourceURL,
	}
}

// Supported reports whether path has a template document extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

// ReadFile parses the template document at path.
func ReadFile(path string, maxBytes int64) (application.CreateTemplateParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return application.CreateTemplateParams{}, err
	}
	defer f.Close()

	data, err := readLimited(f, maxBytes)
	if err != nil {
		return application.CreateTemplateParams{}, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return application.CreateTemplateParams{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Params(application.SourceFile, ""), nil
}

// Fetcher downloads template documents over HTTP.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher returns a fetcher whose requests time out after timeout.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}, MaxBytes: maxBytes}
}

// Fetch downloads and parses the template document at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (application.CreateTemplateParams, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return application.CreateTemplateParams{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, text/plain;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return application.CreateTemplateParams{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return application.CreateTemplateParams{}, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := readLimited(resp.Body, f.MaxBytes)
	if err != nil {
		return application.CreateTemplateParams{}, fmt.Errorf("read %s: %w", url, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return application.CreateTemplateParams{}, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc.Params(application.SourceURL, url), nil
}

// Encode renders a template as a YAML document that Parse accepts.
func Encode(tmpl application.CustomTemplate) ([]byte, error) {
	doc := Document{
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Icon:        tmpl.Icon,
		Sections:    make([]SectionDocument, 0, len(tmpl.Sections)),
	}
	for _, sec := range tmpl.Sections {
		order, enabled := sec.Order, sec.Enabled
		doc.Sections = append(doc.Sections, SectionDocument{
			ID:          sec.ID,
			Label:       sec.Label,
			Description: sec.Description,
			Placeholder: sec.Placeholder,
			Order:       &order,
			Enabled:     &enabled,
		})
	}
	return yaml.Marshal(doc)
}
