package application

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// ProfileType identifies one of the capture profiles a user can activate.
type ProfileType string

const (
	ProfileStudent    ProfileType = "student"
	ProfileDeveloper  ProfileType = "developer"
	ProfileSupport    ProfileType = "support"
	ProfileResearcher ProfileType = "researcher"
	// ProfileCustom is the only profile whose preferences can be edited.
	ProfileCustom ProfileType = "custom"
)

// Valid reports whether p names a known profile.
func (p ProfileType) Valid() bool {
	switch p {
	case ProfileStudent, ProfileDeveloper, ProfileSupport, ProfileResearcher, ProfileCustom:
		return true
	}
	return false
}

// RecordingPreferences holds the per-category capture toggles of a profile.
type RecordingPreferences struct {
	TrackBrowserTabs   bool `json:"trackBrowserTabs"`
	TrackApplications  bool `json:"trackApplications"`
	TrackTerminal      bool `json:"trackTerminal"`
	TrackMessaging     bool `json:"trackMessaging"`
	TrackMeetings      bool `json:"trackMeetings"`
	TrackDocuments     bool `json:"trackDocuments"`
	TrackMedia         bool `json:"trackMedia"`
	CaptureScreenshots bool `json:"captureScreenshots"`
	// CaptureInterval is the minimum spacing, in seconds, between automatic
	// captures of one source. Manual events ignore it.
	CaptureInterval int `json:"captureInterval"`
}

// UserProfile describes a capture profile and the templates it favours.
type UserProfile struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Type            ProfileType          `json:"type"`
	Preferences     RecordingPreferences `json:"preferences"`
	OutputTemplates []string             `json:"outputTemplates"`
}

// EventType classifies an activity event.
type EventType string

const (
	EventTab     EventType = "tab"
	EventApp     EventType = "app"
	EventMessage EventType = "message"
	EventAction  EventType = "action"
	EventNote    EventType = "note"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTab, EventApp, EventMessage, EventAction, EventNote:
		return true
	}
	return false
}

// EventContent is the sparse payload an event may carry.
type EventContent struct {
	Text        string   `json:"text,omitempty"`
	Code        string   `json:"code,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Highlights  []string `json:"highlights,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// ActivityEvent is a single captured activity. Events are immutable once
// created and belong to exactly one session.
type ActivityEvent struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Type        EventType      `json:"type"`
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	Screenshot  string         `json:"screenshot,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Content     *EventContent  `json:"content,omitempty"`
}

func cloneEventContent(content *EventContent) *EventContent {
	if content == nil {
		return nil
	}
	copied := *content
	copied.Highlights = slices.Clone(content.Highlights)
	copied.Attachments = slices.Clone(content.Attachments)
	return &copied
}

// cloneEvent copies event so the result shares no metadata or content with it.
// Nested values inside Metadata are still shared.
func cloneEvent(event ActivityEvent) ActivityEvent {
	event.Metadata = maps.Clone(event.Metadata)
	event.Content = cloneEventContent(event.Content)
	return event
}

// CaptureTrigger tells whether an event was produced by the user or by a
// periodic capture.
type CaptureTrigger string

const (
	TriggerManual    CaptureTrigger = "manual"
	TriggerAutomatic CaptureTrigger = "automatic"
)

// RawEvent is an event as delivered by a capture source, before filtering.
type RawEvent struct {
	ID          string         `json:"id"`
	Timestamp   *time.Time     `json:"timestamp"`
	Type        EventType      `json:"type"`
	Source      string         `json:"source"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	Screenshot  string         `json:"screenshot,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Content     *EventContent  `json:"content,omitempty"`
	Trigger     CaptureTrigger `json:"trigger,omitempty"`
}

// Automatic reports whether the event came from a periodic capture.
func (r RawEvent) Automatic() bool {
	return r.Trigger == TriggerAutomatic
}

// SessionStatus is the lifecycle state of a recording session.
type SessionStatus string

const (
	StatusRecording SessionStatus = "recording"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed"
)

// RecordingSession is a bounded recording of activity events.
type RecordingSession struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
	Status      SessionStatus   `json:"status"`
	Events      []ActivityEvent `json:"events"`
	TicketID    string          `json:"ticketId,omitempty"`
	Tags        []string        `json:"tags"`
	ProfileType ProfileType     `json:"profileType,omitempty"`
}

// StartSessionParams captures caller provided session fields.
type StartSessionParams struct {
	Name        string
	ProfileType ProfileType
	TicketID    string
	Tags        []string
}

// TemplateSection is one named, toggleable part of a template.
type TemplateSection struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Order       int    `json:"order"`
	Enabled     bool   `json:"enabled"`
}

// TemplateSource records how a template came into existence.
type TemplateSource string

const (
	SourceScratch TemplateSource = "scratch"
	SourceURL     TemplateSource = "url"
	SourceFile    TemplateSource = "file"
	SourceDefault TemplateSource = "default"
)

// Valid reports whether s is a known template source.
func (s TemplateSource) Valid() bool {
	switch s {
	case SourceScratch, SourceURL, SourceFile, SourceDefault:
		return true
	}
	return false
}

// CustomTemplate is an ordered list of sections defining a document shape.
type CustomTemplate struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Sections    []TemplateSection `json:"sections"`
	IsDefault   bool              `json:"isDefault"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	CreatedFrom TemplateSource    `json:"createdFrom"`
	SourceURL   string            `json:"sourceUrl,omitempty"`
}

// CreateTemplateParams captures the fields of a new user template.
type CreateTemplateParams struct {
	Name        string
	Description string
	Icon        string
	Sections    []TemplateSection
	Source      TemplateSource
	SourceURL   string
}

// TemplatePatch lists the template fields to change. Nil fields are left untouched.
type TemplatePatch struct {
	Name        *string
	Description *string
	Icon        *string
	Sections    []TemplateSection
}

// PresetCategory groups presets in the library.
type PresetCategory string

const (
	CategoryGeneral       PresetCategory = "general"
	CategoryReports       PresetCategory = "reports"
	CategoryDocumentation PresetCategory = "documentation"
	CategoryLearning      PresetCategory = "learning"
	CategoryResearch      PresetCategory = "research"
	CategoryCustom        PresetCategory = "custom"
)

// Valid reports whether c is a known category.
func (c PresetCategory) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryReports, CategoryDocumentation, CategoryLearning, CategoryResearch, CategoryCustom:
		return true
	}
	return false
}

// SectionBody is the content of a document section: free text or a list of
// items. It serializes as a JSON string or a JSON array of strings.
type SectionBody struct {
	Text  string
	Items []string
}

// TextBody returns a text section body.
func TextBody(text string) SectionBody {
	return SectionBody{Text: text}
}

// ListBody returns a list section body.
func ListBody(items ...string) SectionBody {
	if items == nil {
		items = []string{}
	}
	return SectionBody{Items: items}
}

// IsList reports whether the body holds list items.
func (b SectionBody) IsList() bool {
	return b.Items != nil
}

// MarshalJSON implements json.Marshaler.
func (b SectionBody) MarshalJSON() ([]byte, error) {
	if b.Items != nil {
		return json.Marshal(b.Items)
	}
	return json.Marshal(b.Text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *SectionBody) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*b = SectionBody{}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		items := []string{}
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*b = SectionBody{Items: items}
		return nil
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return err
	}
	*b = SectionBody{Text: text}
	return nil
}

// ContentSection is a labelled block of generated content.
type ContentSection struct {
	Label   string      `json:"label"`
	Content SectionBody `json:"content"`
}

func cloneSections(sections []ContentSection) []ContentSection {
	out := slices.Clone(sections)
	for i := range out {
		out[i].Content.Items = slices.Clone(out[i].Content.Items)
	}
	return out
}

// GeneratedContent is the output of a generator. The core stores and passes it
// around by value without interpreting it.
type GeneratedContent struct {
	Title    string           `json:"title"`
	Summary  string           `json:"summary"`
	Sections []ContentSection `json:"sections"`
	Tags     []string         `json:"tags,omitempty"`
}

// ContentPreset is a saved, reusable generated-content configuration.
type ContentPreset struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Content     GeneratedContent `json:"content"`
	ProfileType ProfileType      `json:"profileType"`
	Category    PresetCategory   `json:"category"`
	Tags        []string         `json:"tags"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// PresetOptions holds the optional fields of a new preset.
type PresetOptions struct {
	Description string
	Category    PresetCategory
	Tags        []string
}

// PresetUpdate lists the preset fields to change. Nil fields are left untouched.
type PresetUpdate struct {
	Name        *string
	Description *string
	Content     *GeneratedContent
	ProfileType *ProfileType
	Category    *PresetCategory
	Tags        []string
}

// PresetFilters composes preset predicates. Empty fields do not constrain.
type PresetFilters struct {
	ProfileType ProfileType
	Category    PresetCategory
	// Tags matches presets carrying at least one of the listed tags.
	Tags []string
	// Search matches name, description or any tag, case-insensitively.
	Search string
}

// SavedArticle is a finalized generated document.
type SavedArticle struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Summary       string           `json:"summary"`
	Sections      []ContentSection `json:"sections"`
	Tags          []string         `json:"tags"`
	CreatedAt     time.Time        `json:"createdAt"`
	SessionID     string           `json:"sessionId"`
	ProfileType   ProfileType      `json:"profileType"`
	TemplateType  string           `json:"templateType"`
	TemplateLabel string           `json:"templateLabel"`
}

// ProfileFilter selects articles by profile at read time.
type ProfileFilter string

// ProfileFilterAll disables profile filtering.
const ProfileFilterAll ProfileFilter = "all"
