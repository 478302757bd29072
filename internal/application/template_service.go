package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/worklog/internal/persistence"
)

// TemplateService manages the template catalog: the seeded built-ins and the
// user templates derived from them or created from scratch.
type TemplateService struct {
	mu          sync.Mutex
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	user []CustomTemplate
}

// NewTemplateService constructs a template service with the provided dependencies.
func NewTemplateService(store persistence.Store, idGenerator func() string, now func() time.Time) *TemplateService {
	return NewTemplateServiceWithLogger(store, idGenerator, now, nil)
}

// NewTemplateServiceWithLogger constructs a template service with a specified logger.
func NewTemplateServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TemplateService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TemplateService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *TemplateService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TemplateService", operation, attrs...)
}

// Load restores user templates. Unreadable data leaves only the built-ins.
func (s *TemplateService) Load(ctx context.Context) {
	logger := s.loggerWith(ctx, "Load")

	var raw json.RawMessage
	found, err := persistence.GetJSON(ctx, s.store, persistence.KeyTemplates, &raw)
	var user []CustomTemplate
	switch {
	case err != nil:
		logger.WarnContext(ctx, "templates unreadable, using built-ins only", "error", err)
	case found:
		var skipped int
		user, skipped, err = normalizeCollection(raw, normalizeTemplate)
		if err != nil {
			logger.WarnContext(ctx, "templates malformed, using built-ins only", "error", err)
			user = nil
		} else if skipped > 0 {
			logger.WarnContext(ctx, "dropped unreadable templates", "skipped", skipped)
		}
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// ListTemplates returns the built-ins in catalog order followed by user
// templates, most recently updated first.
func (s *TemplateService) ListTemplates(ctx context.Context) []CustomTemplate {
	s.mu.Lock()
	user := make([]CustomTemplate, 0, len(s.user))
	for _, tmpl := range s.user {
		user = append(user, cloneTemplate(tmpl))
	}
	s.mu.Unlock()

	sort.SliceStable(user, func(i, j int) bool {
		return user[i].UpdatedAt.After(user[j].UpdatedAt)
	})
	return append(BuiltinTemplates(), user...)
}

// Template returns the template with the given id.
func (s *TemplateService) Template(ctx context.Context, id string) (CustomTemplate, bool) {
	if idx, ok := builtinTemplateIndex[id]; ok {
		return cloneTemplate(builtinTemplates[idx]), true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return cloneTemplate(s.user[idx]), true
	}
	return CustomTemplate{}, false
}

// CreateTemplate stores a new user template.
func (s *TemplateService) CreateTemplate(ctx context.Context, params CreateTemplateParams) (tmpl CustomTemplate, err error) {
	logger := s.loggerWith(ctx, "CreateTemplate", "name", params.Name, "source", params.Source)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("template_id", tmpl.ID).InfoContext(ctx, "template created")
	}()

	source := params.Source
	if source == "" {
		source = SourceScratch
	}

	vErr := &ValidationError{}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		vErr.add("name", "template name is required")
	}
	if !source.Valid() || source == SourceDefault {
		vErr.add("source", fmt.Sprintf("unsupported template source %q", params.Source))
	}
	if source == SourceURL && strings.TrimSpace(params.SourceURL) == "" {
		vErr.add("sourceUrl", "source url is required for url templates")
	}
	sections := s.prepareSections(params.Sections)
	vErr.merge(validateSections(sections))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now().UTC()
	tmpl = CustomTemplate{
		ID:          s.idGenerator(),
		Name:        name,
		Description: strings.TrimSpace(params.Description),
		Icon:        strings.TrimSpace(params.Icon),
		Sections:    sections,
		IsDefault:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedFrom: source,
	}
	if source == SourceURL {
		tmpl.SourceURL = strings.TrimSpace(params.SourceURL)
	}

	s.mu.Lock()
	s.user = append(s.user, tmpl)
	s.persistLocked(ctx)
	s.mu.Unlock()

	tmpl = cloneTemplate(tmpl)
	return
}

// UpdateTemplate applies patch to a user template. Built-ins must be cloned first.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id string, patch TemplatePatch) (CustomTemplate, error) {
	return s.mutate(ctx, "UpdateTemplate", id, func(tmpl *CustomTemplate) error {
		vErr := &ValidationError{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				vErr.add("name", "template name is required")
			}
			tmpl.Name = name
		}
		if patch.Description != nil {
			tmpl.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Icon != nil {
			tmpl.Icon = strings.TrimSpace(*patch.Icon)
		}
		if patch.Sections != nil {
			tmpl.Sections = s.prepareSections(patch.Sections)
			vErr.merge(validateSections(tmpl.Sections))
		}
		return vErr.orNil()
	})
}

// CloneTemplate copies any template, built-in or not, into a new editable user template.
func (s *TemplateService) CloneTemplate(ctx context.Context, id string) (clone CustomTemplate, err error) {
	logger := s.loggerWith(ctx, "CloneTemplate", "template_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clone template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("clone_id", clone.ID).InfoContext(ctx, "template cloned")
	}()

	source, ok := s.Template(ctx, id)
	if !ok {
		err = ErrNotFound
		return
	}

	now := s.now().UTC()
	clone = cloneTemplate(source)
	clone.ID = s.idGenerator()
	clone.Name = source.Name + " (Copy)"
	clone.IsDefault = false
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if source.IsDefault {
		clone.CreatedFrom = SourceDefault
	}

	s.mu.Lock()
	s.user = append(s.user, clone)
	s.persistLocked(ctx)
	s.mu.Unlock()

	clone = cloneTemplate(clone)
	return
}

// ReorderSections reassigns section order to follow sectionIDs, which must be a
// permutation of the template's section ids.
func (s *TemplateService) ReorderSections(ctx context.Context, id string, sectionIDs []string) (CustomTemplate, error) {
	return s.mutate(ctx, "ReorderSections", id, func(tmpl *CustomTemplate) error {
		if len(sectionIDs) != len(tmpl.Sections) {
			return fieldError("sectionIds", fmt.Sprintf("expected %d section ids, got %d", len(tmpl.Sections), len(sectionIDs)))
		}
		byID := make(map[string]TemplateSection, len(tmpl.Sections))
		for _, sec := range tmpl.Sections {
			byID[sec.ID] = sec
		}
		reordered := make([]TemplateSection, 0, len(sectionIDs))
		for i, sectionID := range sectionIDs {
			sec, ok := byID[sectionID]
			if !ok {
				return fieldError("sectionIds", fmt.Sprintf("unknown or repeated section %q", sectionID))
			}
			delete(byID, sectionID)
			sec.Order = i
			reordered = append(reordered, sec)
		}
		tmpl.Sections = reordered
		return nil
	})
}

// ToggleSection flips whether a section takes part in generation.
func (s *TemplateService) ToggleSection(ctx context.Context, id, sectionID string) (CustomTemplate, error) {
	return s.mutate(ctx, "ToggleSection", id, func(tmpl *CustomTemplate) error {
		for i := range tmpl.Sections {
			if tmpl.Sections[i].ID != sectionID {
				continue
			}
			tmpl.Sections[i].Enabled = !tmpl.Sections[i].Enabled
			return validateSections(tmpl.Sections).orNil()
		}
		return ErrNotFound
	})
}

// DeleteTemplate removes a user template. Built-ins cannot be deleted.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) (bool, error) {
	logger := s.loggerWith(ctx, "DeleteTemplate", "template_id", id)
	if IsBuiltinTemplate(id) {
		logger.WarnContext(ctx, "refusing to delete built-in template", "error_kind", ErrorKind(ErrReadOnlyTemplate))
		return false, ErrReadOnlyTemplate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return false, nil
	}
	s.user = append(s.user[:idx:idx], s.user[idx+1:]...)
	s.persistLocked(ctx)
	logger.InfoContext(ctx, "template deleted")
	return true, nil
}

// mutate applies fn to a copy of a user template and commits it, bumping
// updatedAt, only when fn succeeds.
func (s *TemplateService) mutate(ctx context.Context, operation, id string, fn func(*CustomTemplate) error) (tmpl CustomTemplate, err error) {
	logger := s.loggerWith(ctx, operation, "template_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to modify template", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "template updated")
	}()

	if IsBuiltinTemplate(id) {
		err = ErrReadOnlyTemplate
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	working := cloneTemplate(s.user[idx])
	if err = fn(&working); err != nil {
		return
	}
	sortSections(working.Sections)
	working.IsDefault = false
	working.UpdatedAt = s.now().UTC()
	s.user[idx] = working
	s.persistLocked(ctx)

	tmpl = cloneTemplate(working)
	return
}

func (s *TemplateService) indexLocked(id string) int {
	for i := range s.user {
		if s.user[i].ID == id {
			return i
		}
	}
	return -1
}

// prepareSections copies sections, assigning ids to blank ones and sorting by order.
func (s *TemplateService) prepareSections(sections []TemplateSection) []TemplateSection {
	out := make([]TemplateSection, 0, len(sections))
	for _, sec := range sections {
		sec.ID = strings.TrimSpace(sec.ID)
		if sec.ID == "" {
			sec.ID = s.idGenerator()
		}
		sec.Label = strings.TrimSpace(sec.Label)
		out = append(out, sec)
	}
	sortSections(out)
	return out
}

func validateSections(sections []TemplateSection) *ValidationError {
	vErr := &ValidationError{}
	ids := make(map[string]struct{}, len(sections))
	orders := make(map[int]string, len(sections))
	for _, sec := range sections {
		if sec.Label == "" {
			vErr.add("sections."+sec.ID+".label", "section label is required")
		}
		if _, dup := ids[sec.ID]; dup {
			vErr.add("sections."+sec.ID, "duplicate section id")
		}
		ids[sec.ID] = struct{}{}
		if !sec.Enabled {
			continue
		}
		if other, dup := orders[sec.Order]; dup {
			vErr.add("sections."+sec.ID+".order", fmt.Sprintf("order %d already used by %q", sec.Order, other))
		}
		orders[sec.Order] = sec.ID
	}
	return vErr
}

func (s *TemplateService) persistLocked(ctx context.Context) {
	user := s.user
	if user == nil {
		user = []CustomTemplate{}
	}
	if err := persistence.PutJSON(ctx, s.store, persistence.KeyTemplates, user); err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist templates", "error", err)
	}
}

// EnabledSections returns the enabled sections of tmpl in order. Only these
// sections are handed to a generator.
func EnabledSections(tmpl CustomTemplate) []TemplateSection {
	out := make([]TemplateSection, 0, len(tmpl.Sections))
	for _, sec := range tmpl.Sections {
		if sec.Enabled {
			out = append(out, sec)
		}
	}
	sortSections(out)
	return out
}
