package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/worklog/internal/persistence"
)

// SessionService owns the single in-flight recording session and the archive of
// completed ones.
type SessionService struct {
	mu          sync.Mutex
	store       persistence.Store
	profiles    *ProfileService
	filter      *CaptureFilter
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	active  *RecordingSession
	archive []RecordingSession
}

// NewSessionService constructs a session service with the provided dependencies.
func NewSessionService(store persistence.Store, profiles *ProfileService, filter *CaptureFilter, idGenerator func() string, now func() time.Time) *SessionService {
	return NewSessionServiceWithLogger(store, profiles, filter, idGenerator, now, nil)
}

// NewSessionServiceWithLogger constructs a session service with a specified logger.
func NewSessionServiceWithLogger(store persistence.Store, profiles *ProfileService, filter *CaptureFilter, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SessionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if filter == nil {
		filter = NewCaptureFilter()
	}
	return &SessionService{
		store:       store,
		profiles:    profiles,
		filter:      filter,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// Load restores the in-flight session and the archive. Unreadable records are
// dropped with a warning.
func (s *SessionService) Load(ctx context.Context) {
	logger := s.loggerWith(ctx, "Load")

	var active *RecordingSession
	var rawActive json.RawMessage
	found, err := persistence.GetJSON(ctx, s.store, persistence.KeyActiveSession, &rawActive)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "active session unreadable, discarding", "error", err)
	case found:
		if session, ok := normalizeSession(rawActive); ok {
			active = &session
		} else {
			logger.WarnContext(ctx, "active session malformed, discarding")
		}
	}

	var archive []RecordingSession
	var rawArchive json.RawMessage
	found, err = persistence.GetJSON(ctx, s.store, persistence.KeySessions, &rawArchive)
	switch {
	case err != nil:
		logger.WarnContext(ctx, "session archive unreadable, starting empty", "error", err)
	case found:
		sessions, skipped, err := normalizeCollection(rawArchive, normalizeSession)
		if err != nil {
			logger.WarnContext(ctx, "session archive malformed, starting empty", "error", err)
			break
		}
		for _, session := range sessions {
			if session.Status != StatusCompleted {
				skipped++
				continue
			}
			archive = append(archive, session)
		}
		if skipped > 0 {
			logger.WarnContext(ctx, "dropped unreadable archived sessions", "skipped", skipped)
		}
	}

	// A completed session left in the active slot belongs to the archive.
	if active != nil && active.Status == StatusCompleted {
		archive = append([]RecordingSession{*active}, archive...)
		active = nil
	}

	s.mu.Lock()
	s.active = active
	s.archive = archive
	s.mu.Unlock()

	logger.DebugContext(ctx, "sessions loaded", "active", active != nil, "archived", len(archive))
}

// StartSession begins a new recording session. Only one session may be in
// flight at a time.
func (s *SessionService) StartSession(ctx context.Context, params StartSessionParams) (session RecordingSession, err error) {
	logger := s.loggerWith(ctx, "StartSession", "name", params.Name)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to start session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "session started")
	}()

	vErr := &ValidationError{}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		vErr.add("name", "session name is required")
	}
	if params.ProfileType != "" && !params.ProfileType.Valid() {
		vErr.add("profileType", fmt.Sprintf("unknown profile type %q", params.ProfileType))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	profileType := params.ProfileType
	if profileType == "" && s.profiles != nil {
		profileType = s.profiles.ActiveType(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		err = ErrSessionActive
		return
	}

	started := RecordingSession{
		ID:          s.idGenerator(),
		Name:        name,
		StartTime:   s.now().UTC(),
		Status:      StatusRecording,
		Events:      []ActivityEvent{},
		TicketID:    strings.TrimSpace(params.TicketID),
		Tags:        normalizeTags(params.Tags),
		ProfileType: profileType,
	}
	s.active = &started
	s.filter.Reset()
	s.persistActiveLocked(ctx)

	session = cloneSession(started)
	return
}

// Pause moves a recording session to paused. Pausing a paused session is a no-op.
func (s *SessionService) Pause(ctx context.Context, id string) (RecordingSession, error) {
	return s.transition(ctx, "Pause", id, StatusPaused)
}

// Resume moves a paused session back to recording. Resuming a recording
// session is a no-op.
func (s *SessionService) Resume(ctx context.Context, id string) (RecordingSession, error) {
	return s.transition(ctx, "Resume", id, StatusRecording)
}

func (s *SessionService) transition(ctx context.Context, operation, id string, target SessionStatus) (session RecordingSession, err error) {
	logger := s.loggerWith(ctx, operation, "session_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session transition failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session transitioned", "status", session.Status)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var current *RecordingSession
	current, err = s.activeLocked(id, ErrInvalidTransition)
	if err != nil {
		return
	}
	if current.Status != target {
		current.Status = target
		s.persistActiveLocked(ctx)
	}
	session = cloneSession(*current)
	return
}

// AppendEvent adds an already admitted event to the session. Events keep their
// insertion order; completed sessions reject appends.
func (s *SessionService) AppendEvent(ctx context.Context, id string, event ActivityEvent) (err error) {
	logger := s.loggerWith(ctx, "AppendEvent", "session_id", id, "event_id", event.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to append event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "event appended", "event_type", event.Type)
	}()

	vErr := &ValidationError{cause: ErrMalformedEvent}
	if strings.TrimSpace(event.ID) == "" {
		vErr.add("id", "event id is required")
	}
	if !event.Type.Valid() {
		vErr.add("type", "unknown event type")
	}
	if event.Timestamp.IsZero() {
		vErr.add("timestamp", "event timestamp is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current *RecordingSession
	current, err = s.activeLocked(id, ErrSessionCompleted)
	if err != nil {
		return
	}
	for _, existing := range current.Events {
		if existing.ID == event.ID {
			err = fieldError("id", fmt.Sprintf("event %q already recorded", event.ID))
			return
		}
	}

	current.Events = append(current.Events, cloneEvent(event))
	s.persistActiveLocked(ctx)
	return
}

// Capture runs raw through the active profile's capture policy and appends it
// to the in-flight session when admitted. Paused sessions admit nothing.
func (s *SessionService) Capture(ctx context.Context, raw RawEvent) (event ActivityEvent, decision CaptureDecision, err error) {
	logger := s.loggerWith(ctx, "Capture", "event_id", raw.ID, "source", raw.Source)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "capture rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(ctx, "capture evaluated", "decision", decision)
	}()

	if err = validateRawEvent(raw); err != nil {
		return
	}

	prefs := builtinProfiles[ProfileDeveloper].Preferences
	if s.profiles != nil {
		prefs = s.profiles.EffectivePreferences(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		err = ErrNoActiveSession
		return
	}
	if s.active.Status == StatusPaused {
		decision = DecisionSessionPaused
		return
	}

	id := strings.TrimSpace(raw.ID)
	for _, existing := range s.active.Events {
		if existing.ID == id {
			err = fieldError("id", fmt.Sprintf("event %q already recorded", id))
			return
		}
	}

	var admitted ActivityEvent
	admitted, decision, err = s.filter.Admit(raw, prefs)
	if err != nil || !decision.Admitted() {
		return
	}

	s.active.Events = append(s.active.Events, admitted)
	s.persistActiveLocked(ctx)
	event = admitted
	return
}

// Complete ends the session. It is irreversible; the session moves to the
// front of the archive.
func (s *SessionService) Complete(ctx context.Context, id string) (session RecordingSession, err error) {
	logger := s.loggerWith(ctx, "Complete", "session_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session completed", "events", len(session.Events))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	var current *RecordingSession
	current, err = s.activeLocked(id, ErrInvalidTransition)
	if err != nil {
		return
	}

	end := s.now().UTC()
	if end.Before(current.StartTime) {
		end = current.StartTime
	}
	completed := *current
	completed.Status = StatusCompleted
	completed.EndTime = &end

	s.active = nil
	s.archive = append([]RecordingSession{completed}, s.archive...)
	s.filter.Reset()
	s.persistActiveLocked(ctx)
	s.persistArchiveLocked(ctx)

	session = cloneSession(completed)
	return
}

// ActiveSession returns the in-flight session, if any.
func (s *SessionService) ActiveSession(ctx context.Context) (RecordingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return RecordingSession{}, false
	}
	return cloneSession(*s.active), true
}

// Session looks a session up by id across the in-flight slot and the archive.
func (s *SessionService) Session(ctx context.Context, id string) (RecordingSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil && s.active.ID == id {
		return cloneSession(*s.active), true
	}
	for _, session := range s.archive {
		if session.ID == id {
			return cloneSession(session), true
		}
	}
	return RecordingSession{}, false
}

// ListSessions returns the in-flight session, if any, followed by the archive
// most recent first.
func (s *SessionService) ListSessions(ctx context.Context) []RecordingSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecordingSession, 0, len(s.archive)+1)
	if s.active != nil {
		out = append(out, cloneSession(*s.active))
	}
	for _, session := range s.archive {
		out = append(out, cloneSession(session))
	}
	return out
}

// DeleteSession removes an archived session. Articles referencing it are kept.
// The in-flight session cannot be deleted.
func (s *SessionService) DeleteSession(ctx context.Context, id string) (bool, error) {
	logger := s.loggerWith(ctx, "DeleteSession", "session_id", id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil && s.active.ID == id {
		logger.WarnContext(ctx, "refusing to delete in-flight session", "error_kind", ErrorKind(ErrSessionActive))
		return false, ErrSessionActive
	}
	for i, session := range s.archive {
		if session.ID != id {
			continue
		}
		s.archive = append(s.archive[:i:i], s.archive[i+1:]...)
		s.persistArchiveLocked(ctx)
		logger.InfoContext(ctx, "session deleted")
		return true, nil
	}
	return false, nil
}

// activeLocked resolves id to the in-flight session. Archived ids yield
// completedErr so callers can tell a finished session from an unknown one.
func (s *SessionService) activeLocked(id string, completedErr error) (*RecordingSession, error) {
	if s.active != nil && s.active.ID == id {
		return s.active, nil
	}
	for _, session := range s.archive {
		if session.ID == id {
			return nil, completedErr
		}
	}
	return nil, ErrNotFound
}

func (s *SessionService) persistActiveLocked(ctx context.Context) {
	var err error
	if s.active == nil {
		err = s.deleteKey(ctx, persistence.KeyActiveSession)
	} else {
		err = persistence.PutJSON(ctx, s.store, persistence.KeyActiveSession, s.active)
	}
	if err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist active session", "error", err)
	}
}

func (s *SessionService) persistArchiveLocked(ctx context.Context) {
	archive := s.archive
	if archive == nil {
		archive = []RecordingSession{}
	}
	if err := persistence.PutJSON(ctx, s.store, persistence.KeySessions, archive); err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist session archive", "error", err)
	}
}

func (s *SessionService) deleteKey(ctx context.Context, key string) error {
	if s.store == nil {
		return nil
	}
	err := s.store.Delete(ctx, key)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil
	}
	return err
}

func cloneSession(session RecordingSession) RecordingSession {
	events := make([]ActivityEvent, len(session.Events))
	for i, event := range session.Events {
		events[i] = cloneEvent(event)
	}
	session.Events = events
	session.Tags = append([]string{}, session.Tags...)
	if session.EndTime != nil {
		end := *session.EndTime
		session.EndTime = &end
	}
	return session
}

// Elapsed returns the wall-clock time between the session start and its end,
// or now while the session is in flight. It never returns a negative duration.
func Elapsed(session RecordingSession, now time.Time) time.Duration {
	end := now
	if session.EndTime != nil {
		end = *session.EndTime
	}
	elapsed := end.Sub(session.StartTime)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// FormatDuration renders Elapsed as whole minutes and remaining seconds, e.g. "12m 05s".
func FormatDuration(session RecordingSession, now time.Time) string {
	elapsed := Elapsed(session, now)
	minutes := int(elapsed / time.Minute)
	seconds := int((elapsed % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}
