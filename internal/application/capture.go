package application

import (
	"maps"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CaptureDecision explains why a raw event was or was not admitted.
type CaptureDecision string

const (
	DecisionAdmitted         CaptureDecision = "admitted"
	DecisionCategoryDisabled CaptureDecision = "category_disabled"
	DecisionRateLimited      CaptureDecision = "rate_limited"
	DecisionSessionPaused    CaptureDecision = "session_paused"
)

// Admitted reports whether the decision lets the event into a session.
func (d CaptureDecision) Admitted() bool {
	return d == DecisionAdmitted
}

// ShouldCapture reports whether events of type t are tracked under prefs.
// Notes are gated by the documents toggle. Unknown types are never captured.
func ShouldCapture(t EventType, prefs RecordingPreferences) bool {
	switch t {
	case EventTab:
		return prefs.TrackBrowserTabs
	case EventApp:
		return prefs.TrackApplications
	case EventMessage:
		return prefs.TrackMessaging
	case EventAction:
		return prefs.TrackTerminal
	case EventNote:
		return prefs.TrackDocuments
	}
	return false
}

func validateRawEvent(raw RawEvent) error {
	vErr := &ValidationError{cause: ErrMalformedEvent}
	if strings.TrimSpace(raw.ID) == "" {
		vErr.add("id", "event id is required")
	}
	switch {
	case raw.Type == "":
		vErr.add("type", "event type is required")
	case !raw.Type.Valid():
		vErr.add("type", "unknown event type")
	}
	if raw.Timestamp == nil || raw.Timestamp.IsZero() {
		vErr.add("timestamp", "event timestamp is required")
	}
	if raw.Trigger != "" && raw.Trigger != TriggerManual && raw.Trigger != TriggerAutomatic {
		vErr.add("trigger", "trigger must be manual or automatic")
	}
	return vErr.orNil()
}

// NormalizeEvent converts a raw event into its canonical form. Events missing
// id, type or timestamp are rejected with ErrMalformedEvent. The screenshot is
// dropped when prefs disable screenshot capture.
func NormalizeEvent(raw RawEvent, prefs RecordingPreferences) (ActivityEvent, error) {
	if err := validateRawEvent(raw); err != nil {
		return ActivityEvent{}, err
	}

	event := ActivityEvent{
		ID:          strings.TrimSpace(raw.ID),
		Timestamp:   raw.Timestamp.UTC(),
		Type:        raw.Type,
		Source:      strings.TrimSpace(raw.Source),
		Title:       strings.TrimSpace(raw.Title),
		Description: raw.Description,
		URL:         strings.TrimSpace(raw.URL),
		Screenshot:  raw.Screenshot,
		Metadata:    maps.Clone(raw.Metadata),
		Content:     cloneEventContent(raw.Content),
	}
	if !prefs.CaptureScreenshots {
		event.Screenshot = ""
	}
	return event, nil
}

// CaptureFilter applies the capture policy of a profile to incoming raw events.
// Automatic captures are spaced per source by CaptureInterval; the spacing is
// measured on event timestamps, so replayed batches behave like live capture.
type CaptureFilter struct {
	mu       sync.Mutex
	interval int
	limiters map[string]*rate.Limiter
}

// NewCaptureFilter constructs a filter with no capture history.
func NewCaptureFilter() *CaptureFilter {
	return &CaptureFilter{limiters: make(map[string]*rate.Limiter)}
}

// Admit validates raw, applies the category gate and, for automatic captures,
// the per-source interval. Rejected events leave no trace in the limiter.
func (f *CaptureFilter) Admit(raw RawEvent, prefs RecordingPreferences) (ActivityEvent, CaptureDecision, error) {
	event, err := NormalizeEvent(raw, prefs)
	if err != nil {
		return ActivityEvent{}, "", err
	}
	if !ShouldCapture(event.Type, prefs) {
		return ActivityEvent{}, DecisionCategoryDisabled, nil
	}
	if raw.Automatic() && !f.allow(event.Source, event.Timestamp, prefs.CaptureInterval) {
		return ActivityEvent{}, DecisionRateLimited, nil
	}
	return event, DecisionAdmitted, nil
}

// Reset forgets every source's capture history.
func (f *CaptureFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limiters = make(map[string]*rate.Limiter)
}

func (f *CaptureFilter) allow(source string, at time.Time, intervalSeconds int) bool {
	if intervalSeconds <= 0 {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.limiters == nil || intervalSeconds != f.interval {
		f.limiters = make(map[string]*rate.Limiter)
		f.interval = intervalSeconds
	}
	limiter, ok := f.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Duration(intervalSeconds)*time.Second), 1)
		f.limiters[source] = limiter
	}
	return limiter.AllowN(at, 1)
}
