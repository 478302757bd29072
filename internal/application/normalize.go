package application

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Records read from storage go through the normalize* functions exactly once,
// at load time. They fill fields that older writers did not emit and drop
// records that cannot be repaired, so read paths only ever see canonical values.

type profileRecord struct {
	Type              ProfileType           `json:"type"`
	CustomPreferences *RecordingPreferences `json:"customPreferences,omitempty"`
}

func normalizeProfile(raw json.RawMessage) (profileRecord, error) {
	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return profileRecord{}, err
	}
	if !rec.Type.Valid() {
		return profileRecord{}, fmt.Errorf("unknown profile type %q", rec.Type)
	}
	if rec.CustomPreferences == nil {
		prefs := DefaultCustomPreferences()
		rec.CustomPreferences = &prefs
	}
	if rec.CustomPreferences.CaptureInterval < 0 {
		rec.CustomPreferences.CaptureInterval = 0
	}
	return rec, nil
}

// normalizeCollection decodes a JSON array, passing every element through fn.
// Elements fn rejects are counted as skipped.
func normalizeCollection[T any](raw json.RawMessage, fn func(json.RawMessage) (T, bool)) ([]T, int, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, 0, err
	}

	out := make([]T, 0, len(elements))
	skipped := 0
	for _, element := range elements {
		value, ok := fn(element)
		if !ok {
			skipped++
			continue
		}
		out = append(out, value)
	}
	return out, skipped, nil
}

type presetRecord struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Content     GeneratedContent `json:"content"`
	ProfileType ProfileType      `json:"profileType"`
	Category    *PresetCategory  `json:"category"`
	Tags        []string         `json:"tags"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func normalizePreset(raw json.RawMessage) (ContentPreset, bool) {
	var rec presetRecord
	if err := json.Unmarshal(raw, &rec); err != nil || strings.TrimSpace(rec.ID) == "" {
		return ContentPreset{}, false
	}

	category := CategoryGeneral
	if rec.Category != nil && rec.Category.Valid() {
		category = *rec.Category
	}
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = rec.CreatedAt
	}

	return ContentPreset{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		Content:     rec.Content,
		ProfileType: rec.ProfileType,
		Category:    category,
		Tags:        normalizeTags(rec.Tags),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   updated,
	}, true
}

func normalizeArticle(raw json.RawMessage) (SavedArticle, bool) {
	var article SavedArticle
	if err := json.Unmarshal(raw, &article); err != nil || strings.TrimSpace(article.ID) == "" {
		return SavedArticle{}, false
	}
	if article.Sections == nil {
		article.Sections = []ContentSection{}
	}
	article.Tags = normalizeTags(article.Tags)
	return article, true
}

func normalizeTemplate(raw json.RawMessage) (CustomTemplate, bool) {
	var tmpl CustomTemplate
	if err := json.Unmarshal(raw, &tmpl); err != nil || strings.TrimSpace(tmpl.ID) == "" {
		return CustomTemplate{}, false
	}
	if _, builtin := builtinTemplateIndex[tmpl.ID]; builtin {
		return CustomTemplate{}, false
	}

	// Only user templates are persisted.
	tmpl.IsDefault = false
	if !tmpl.CreatedFrom.Valid() {
		tmpl.CreatedFrom = SourceScratch
	}
	if tmpl.UpdatedAt.IsZero() {
		tmpl.UpdatedAt = tmpl.CreatedAt
	}
	if tmpl.Sections == nil {
		tmpl.Sections = []TemplateSection{}
	}
	sortSections(tmpl.Sections)
	return tmpl, true
}

func normalizeSession(raw json.RawMessage) (RecordingSession, bool) {
	var session RecordingSession
	if err := json.Unmarshal(raw, &session); err != nil || strings.TrimSpace(session.ID) == "" {
		return RecordingSession{}, false
	}
	if session.Events == nil {
		session.Events = []ActivityEvent{}
	}
	session.Tags = normalizeTags(session.Tags)

	// endTime is present exactly when the session is completed.
	switch {
	case session.EndTime != nil:
		session.Status = StatusCompleted
	case session.Status == StatusCompleted:
		end := session.StartTime
		if n := len(session.Events); n > 0 && session.Events[n-1].Timestamp.After(end) {
			end = session.Events[n-1].Timestamp
		}
		session.EndTime = &end
	case session.Status != StatusRecording && session.Status != StatusPaused:
		session.Status = StatusRecording
	}
	return session, true
}

// normalizeTags trims, drops blanks and de-duplicates while keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func sortSections(sections []TemplateSection) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Order < sections[j].Order
	})
}
