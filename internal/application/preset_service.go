package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/example/worklog/internal/persistence"
)

// PresetService persists named generated-content presets and answers library queries.
type PresetService struct {
	mu          sync.Mutex
	store       persistence.Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	presets []ContentPreset
}

// NewPresetService constructs a preset service with the provided dependencies.
func NewPresetService(store persistence.Store, idGenerator func() string, now func() time.Time) *PresetService {
	return NewPresetServiceWithLogger(store, idGenerator, now, nil)
}

// NewPresetServiceWithLogger constructs a preset service with a specified logger.
func NewPresetServiceWithLogger(store persistence.Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PresetService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PresetService{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *PresetService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PresetService", operation, attrs...)
}

// Load restores the preset collection, filling fields older records lack.
func (s *PresetService) Load(ctx context.Context) {
	logger := s.loggerWith(ctx, "Load")

	var raw json.RawMessage
	found, err := persistence.GetJSON(ctx, s.store, persistence.KeyPresets, &raw)
	var presets []ContentPreset
	switch {
	case err != nil:
		logger.WarnContext(ctx, "presets unreadable, starting empty", "error", err)
	case found:
		var skipped int
		presets, skipped, err = normalizeCollection(raw, normalizePreset)
		if err != nil {
			logger.WarnContext(ctx, "presets malformed, starting empty", "error", err)
			presets = nil
		} else if skipped > 0 {
			logger.WarnContext(ctx, "dropped unreadable presets", "skipped", skipped)
		}
	}

	s.mu.Lock()
	s.presets = presets
	s.mu.Unlock()
}

// SavePreset always creates a new preset; names are not unique.
func (s *PresetService) SavePreset(ctx context.Context, name string, content GeneratedContent, profileType ProfileType, opts PresetOptions) (preset ContentPreset, err error) {
	logger := s.loggerWith(ctx, "SavePreset", "name", name, "profile_type", profileType)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save preset", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("preset_id", preset.ID).InfoContext(ctx, "preset saved")
	}()

	category := opts.Category
	if category == "" {
		category = CategoryGeneral
	}

	vErr := &ValidationError{}
	name = strings.TrimSpace(name)
	if name == "" {
		vErr.add("name", "preset name is required")
	}
	if !profileType.Valid() {
		vErr.add("profileType", fmt.Sprintf("unknown profile type %q", profileType))
	}
	if !category.Valid() {
		vErr.add("category", fmt.Sprintf("unknown category %q", category))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now().UTC()
	preset = ContentPreset{
		ID:          s.idGenerator(),
		Name:        name,
		Description: strings.TrimSpace(opts.Description),
		Content:     cloneContent(content),
		ProfileType: profileType,
		Category:    category,
		Tags:        normalizeTags(opts.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.presets = append(s.presets, preset)
	s.persistLocked(ctx)
	s.mu.Unlock()

	preset = clonePreset(preset)
	return
}

// UpdatePreset changes the fields present in updates and refreshes updatedAt.
// The boolean is false when no preset has the id.
func (s *PresetService) UpdatePreset(ctx context.Context, id string, updates PresetUpdate) (preset ContentPreset, found bool, err error) {
	logger := s.loggerWith(ctx, "UpdatePreset", "preset_id", id)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "failed to update preset", "error", err, "error_kind", ErrorKind(err))
		case !found:
			logger.InfoContext(ctx, "preset not found")
		default:
			logger.InfoContext(ctx, "preset updated")
		}
	}()

	vErr := &ValidationError{}
	if updates.Name != nil && strings.TrimSpace(*updates.Name) == "" {
		vErr.add("name", "preset name is required")
	}
	if updates.ProfileType != nil && !updates.ProfileType.Valid() {
		vErr.add("profileType", fmt.Sprintf("unknown profile type %q", *updates.ProfileType))
	}
	if updates.Category != nil && !updates.Category.Valid() {
		vErr.add("category", fmt.Sprintf("unknown category %q", *updates.Category))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	found = true

	updated := s.presets[idx]
	if updates.Name != nil {
		updated.Name = strings.TrimSpace(*updates.Name)
	}
	if updates.Description != nil {
		updated.Description = strings.TrimSpace(*updates.Description)
	}
	if updates.Content != nil {
		updated.Content = cloneContent(*updates.Content)
	}
	if updates.ProfileType != nil {
		updated.ProfileType = *updates.ProfileType
	}
	if updates.Category != nil {
		updated.Category = *updates.Category
	}
	if updates.Tags != nil {
		updated.Tags = normalizeTags(updates.Tags)
	}
	updated.UpdatedAt = s.now().UTC()

	s.presets[idx] = updated
	s.persistLocked(ctx)

	preset = clonePreset(updated)
	return
}

// DeletePreset removes a preset, reporting whether it existed.
func (s *PresetService) DeletePreset(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false, nil
	}
	s.presets = append(s.presets[:idx:idx], s.presets[idx+1:]...)
	s.persistLocked(ctx)
	s.loggerWith(ctx, "DeletePreset", "preset_id", id).InfoContext(ctx, "preset deleted")
	return true, nil
}

// DuplicatePreset saves a copy of a preset under the name suffixed " (Copy)".
func (s *PresetService) DuplicatePreset(ctx context.Context, id string) (ContentPreset, bool, error) {
	source, ok := s.Preset(ctx, id)
	if !ok {
		return ContentPreset{}, false, nil
	}
	dup, err := s.SavePreset(ctx, source.Name+" (Copy)", source.Content, source.ProfileType, PresetOptions{
		Description: source.Description,
		Category:    source.Category,
		Tags:        source.Tags,
	})
	if err != nil {
		return ContentPreset{}, true, err
	}
	return dup, true, nil
}

// Preset returns the preset with the given id.
func (s *PresetService) Preset(ctx context.Context, id string) (ContentPreset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return clonePreset(s.presets[idx]), true
	}
	return ContentPreset{}, false
}

// ListPresets returns every preset in creation order.
func (s *PresetService) ListPresets(ctx context.Context) []ContentPreset {
	return s.FilterPresets(ctx, PresetFilters{})
}

// PresetsByProfile returns the presets saved for profileType.
func (s *PresetService) PresetsByProfile(ctx context.Context, profileType ProfileType) []ContentPreset {
	return s.FilterPresets(ctx, PresetFilters{ProfileType: profileType})
}

// PresetsByCategory returns the presets in category.
func (s *PresetService) PresetsByCategory(ctx context.Context, category PresetCategory) []ContentPreset {
	return s.FilterPresets(ctx, PresetFilters{Category: category})
}

// PresetsByTag returns the presets carrying tag.
func (s *PresetService) PresetsByTag(ctx context.Context, tag string) []ContentPreset {
	return s.FilterPresets(ctx, PresetFilters{Tags: []string{tag}})
}

// FilterPresets returns the presets matching every non-empty filter dimension.
func (s *PresetService) FilterPresets(ctx context.Context, filters PresetFilters) []ContentPreset {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ContentPreset, 0, len(s.presets))
	for _, preset := range s.presets {
		if MatchPreset(preset, filters) {
			out = append(out, clonePreset(preset))
		}
	}
	return out
}

// MatchPreset reports whether preset satisfies filters: all dimensions must
// match, any listed tag is enough, and search looks for a case-insensitive
// substring of the name, the description or a tag.
func MatchPreset(preset ContentPreset, filters PresetFilters) bool {
	if filters.ProfileType != "" && preset.ProfileType != filters.ProfileType {
		return false
	}
	if filters.Category != "" && preset.Category != filters.Category {
		return false
	}
	if len(filters.Tags) > 0 && !slices.ContainsFunc(filters.Tags, func(tag string) bool {
		return slices.Contains(preset.Tags, tag)
	}) {
		return false
	}

	search := strings.ToLower(strings.TrimSpace(filters.Search))
	if search == "" {
		return true
	}
	if strings.Contains(strings.ToLower(preset.Name), search) ||
		strings.Contains(strings.ToLower(preset.Description), search) {
		return true
	}
	return slices.ContainsFunc(preset.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), search)
	})
}

func (s *PresetService) indexLocked(id string) int {
	for i := range s.presets {
		if s.presets[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PresetService) persistLocked(ctx context.Context) {
	presets := s.presets
	if presets == nil {
		presets = []ContentPreset{}
	}
	if err := persistence.PutJSON(ctx, s.store, persistence.KeyPresets, presets); err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist presets", "error", err)
	}
}

func clonePreset(preset ContentPreset) ContentPreset {
	preset.Content = cloneContent(preset.Content)
	preset.Tags = append([]string{}, preset.Tags...)
	return preset
}
