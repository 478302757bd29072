package application

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
)

// ErrNoGenerator is returned when generation is requested without a generator.
var ErrNoGenerator = errors.New("application: no generator configured")

// GenerationRequest is everything a generator may look at. The template carries
// only its enabled sections.
type GenerationRequest struct {
	Session     RecordingSession `json:"session"`
	Template    CustomTemplate   `json:"template"`
	ProfileType ProfileType      `json:"profileType"`
}

// NewGenerationRequest builds a request, dropping the template's disabled sections.
func NewGenerationRequest(session RecordingSession, tmpl CustomTemplate, profileType ProfileType) GenerationRequest {
	tmpl = cloneTemplate(tmpl)
	tmpl.Sections = EnabledSections(tmpl)
	return GenerationRequest{
		Session:     cloneSession(session),
		Template:    tmpl,
		ProfileType: profileType,
	}
}

// Generator turns a session and a template into document content. Implementations
// must be pure functions of the request.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GeneratedContent, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req GenerationRequest) (GeneratedContent, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, req GenerationRequest) (GeneratedContent, error) {
	return f(ctx, req)
}

// Fingerprint returns a stable hex key for req. Equal requests give equal keys.
func Fingerprint(req GenerationRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode generation request: %w", err)
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// CachingGenerator memoizes another generator by request fingerprint.
type CachingGenerator struct {
	next  Generator
	cache *lru.Cache[string, GeneratedContent]
}

// NewCachingGenerator wraps next with an LRU cache holding up to size results.
func NewCachingGenerator(next Generator, size int) (*CachingGenerator, error) {
	if next == nil {
		return nil, ErrNoGenerator
	}
	cache, err := lru.New[string, GeneratedContent](size)
	if err != nil {
		return nil, fmt.Errorf("create generation cache: %w", err)
	}
	return &CachingGenerator{next: next, cache: cache}, nil
}

// Generate implements Generator.
func (g *CachingGenerator) Generate(ctx context.Context, req GenerationRequest) (GeneratedContent, error) {
	key, err := Fingerprint(req)
	if err != nil {
		return GeneratedContent{}, err
	}
	if content, ok := g.cache.Get(key); ok {
		return cloneContent(content), nil
	}
	content, err := g.next.Generate(ctx, req)
	if err != nil {
		return GeneratedContent{}, err
	}
	g.cache.Add(key, cloneContent(content))
	return content, nil
}

// Len reports how many results are cached.
func (g *CachingGenerator) Len() int {
	return g.cache.Len()
}

func cloneContent(content GeneratedContent) GeneratedContent {
	content.Sections = cloneSections(content.Sections)
	content.Tags = append([]string(nil), content.Tags...)
	return content
}
