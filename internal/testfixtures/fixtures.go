package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/worklog/internal/application"
)

var (
	eventCounter   uint64
	contentCounter uint64
	articleCounter uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture is a deterministic raw capture event.
type EventFixture struct {
	ID          string
	Timestamp   time.Time
	Type        application.EventType
	Source      string
	Title       string
	Description string
	URL         string
	Screenshot  string
	Trigger     application.CaptureTrigger
}

// EventOption configures an EventFixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a manual browser tab event with optional overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	fixture := EventFixture{
		ID:        fmt.Sprintf("evt-%03d", idx),
		Timestamp: referenceTime.Add(time.Duration(idx) * time.Second),
		Type:      application.EventTab,
		Source:    "browser",
		Title:     fmt.Sprintf("Tab %03d", idx),
		Trigger:   application.TriggerManual,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the event id.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) { f.ID = id }
}

// WithEventType overrides the event type.
func WithEventType(t application.EventType) EventOption {
	return func(f *EventFixture) { f.Type = t }
}

// WithEventSource overrides the capture source.
func WithEventSource(source string) EventOption {
	return func(f *EventFixture) { f.Source = source }
}

// WithEventTitle overrides the title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) { f.Title = title }
}

// WithEventTimestamp overrides the timestamp.
func WithEventTimestamp(ts time.Time) EventOption {
	return func(f *EventFixture) { f.Timestamp = ts }
}

// WithScreenshot attaches a screenshot reference.
func WithScreenshot(ref string) EventOption {
	return func(f *EventFixture) { f.Screenshot = ref }
}

// Automatic marks the event as a periodic capture.
func Automatic() EventOption {
	return func(f *EventFixture) { f.Trigger = application.TriggerAutomatic }
}

// Raw returns the fixture as delivered by a capture source.
func (f EventFixture) Raw() application.RawEvent {
	ts := f.Timestamp
	return application.RawEvent{
		ID:          f.ID,
		Timestamp:   &ts,
		Type:        f.Type,
		Source:      f.Source,
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		Screenshot:  f.Screenshot,
		Trigger:     f.Trigger,
	}
}

// Event returns the fixture as an admitted activity event.
func (f EventFixture) Event() application.ActivityEvent {
	return application.ActivityEvent{
		ID:          f.ID,
		Timestamp:   f.Timestamp,
		Type:        f.Type,
		Source:      f.Source,
		Title:       f.Title,
		Description: f.Description,
		URL:         f.URL,
		Screenshot:  f.Screenshot,
	}
}

// ----------------------------- Content fixtures -----------------------------

// NewGeneratedContent returns deterministic generated content with a text and a list section.
func NewGeneratedContent() application.GeneratedContent {
	idx := atomic.AddUint64(&contentCounter, 1)
	return application.GeneratedContent{
		Title:   fmt.Sprintf("Document %03d", idx),
		Summary: "Summary of the recorded work.",
		Sections: []application.ContentSection{
			{Label: "Overview", Content: application.TextBody("Worked through the ticket backlog.")},
			{Label: "Next Steps", Content: application.ListBody("Ship the fix", "Update the docs")},
		},
		Tags: []string{"generated"},
	}
}

// ArticleOption configures a SavedArticle fixture.
type ArticleOption func(*application.SavedArticle)

// NewArticle returns an unsaved article for the developer profile.
func NewArticle(opts ...ArticleOption) application.SavedArticle {
	idx := atomic.AddUint64(&articleCounter, 1)
	content := NewGeneratedContent()
	article := application.SavedArticle{
		Title:         fmt.Sprintf("Article %03d", idx),
		Summary:       content.Summary,
		Sections:      content.Sections,
		Tags:          []string{"work"},
		SessionID:     "session-1",
		ProfileType:   application.ProfileDeveloper,
		TemplateType:  "quick-summary",
		TemplateLabel: "Quick Summary",
	}
	for _, opt := range opts {
		opt(&article)
	}
	return article
}

// WithArticleSession overrides the session back-reference.
func WithArticleSession(sessionID string) ArticleOption {
	return func(a *application.SavedArticle) { a.SessionID = sessionID }
}

// WithArticleProfile overrides the profile type.
func WithArticleProfile(t application.ProfileType) ArticleOption {
	return func(a *application.SavedArticle) { a.ProfileType = t }
}
