package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/worklog/internal/persistence"
)

// ProfileService holds the active profile type and the custom preference set.
type ProfileService struct {
	mu     sync.Mutex
	store  persistence.Store
	logger *slog.Logger

	active ProfileType
	custom RecordingPreferences
}

// NewProfileService constructs a profile service that starts on the developer profile.
func NewProfileService(store persistence.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: defaultLogger(logger),
		active: ProfileDeveloper,
		custom: DefaultCustomPreferences(),
	}
}

func (s *ProfileService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProfileService", operation, attrs...)
}

// Load restores the persisted profile. Unreadable data falls back to the
// developer profile with default custom preferences.
func (s *ProfileService) Load(ctx context.Context) {
	logger := s.loggerWith(ctx, "Load")

	var raw json.RawMessage
	found, err := persistence.GetJSON(ctx, s.store, persistence.KeyProfile, &raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = ProfileDeveloper
	s.custom = DefaultCustomPreferences()

	if err != nil {
		logger.WarnContext(ctx, "profile unreadable, using defaults", "error", err)
		return
	}
	if !found {
		return
	}

	rec, err := normalizeProfile(raw)
	if err != nil {
		logger.WarnContext(ctx, "profile malformed, using defaults", "error", err)
		return
	}
	s.active = rec.Type
	s.custom = *rec.CustomPreferences
	logger.DebugContext(ctx, "profile loaded", "profile_type", s.active)
}

// Profiles lists every profile in display order, the custom one carrying the
// stored custom preferences.
func (s *ProfileService) Profiles(ctx context.Context) []UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]UserProfile, 0, len(profileOrder))
	for _, t := range profileOrder {
		out = append(out, s.profileLocked(t))
	}
	return out
}

// ActiveProfile returns the currently active profile.
func (s *ProfileService) ActiveProfile(ctx context.Context) UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked(s.active)
}

// ActiveType returns the currently active profile type.
func (s *ProfileService) ActiveType(ctx context.Context) ProfileType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveProfile switches the active profile and persists the choice.
func (s *ProfileService) SetActiveProfile(ctx context.Context, t ProfileType) error {
	if !t.Valid() {
		return fieldError("type", fmt.Sprintf("unknown profile type %q", t))
	}

	s.mu.Lock()
	s.active = t
	rec := s.recordLocked()
	s.mu.Unlock()

	s.persist(ctx, rec)
	s.loggerWith(ctx, "SetActiveProfile", "profile_type", t).InfoContext(ctx, "active profile changed")
	return nil
}

// EffectivePreferences returns the capture preferences of the active profile.
func (s *ProfileService) EffectivePreferences(ctx context.Context) RecordingPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileLocked(s.active).Preferences
}

// CustomPreferences returns the stored custom preference set, active or not.
func (s *ProfileService) CustomPreferences(ctx context.Context) RecordingPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.custom
}

// UpdateCustomPreferences replaces the custom preference set. The new set is
// written immediately when the custom profile is active; otherwise it is kept
// and written with the next profile change.
func (s *ProfileService) UpdateCustomPreferences(ctx context.Context, prefs RecordingPreferences) error {
	if prefs.CaptureInterval < 0 {
		return fieldError("captureInterval", "capture interval cannot be negative")
	}

	s.mu.Lock()
	s.custom = prefs
	active := s.active
	rec := s.recordLocked()
	s.mu.Unlock()

	logger := s.loggerWith(ctx, "UpdateCustomPreferences", "profile_type", active)
	if active != ProfileCustom {
		logger.InfoContext(ctx, "custom preferences staged")
		return nil
	}
	s.persist(ctx, rec)
	logger.InfoContext(ctx, "custom preferences updated")
	return nil
}

func (s *ProfileService) profileLocked(t ProfileType) UserProfile {
	profile, ok := BuiltinProfile(t)
	if !ok {
		profile, _ = BuiltinProfile(ProfileDeveloper)
	}
	if t == ProfileCustom {
		profile.Preferences = s.custom
	}
	return profile
}

func (s *ProfileService) recordLocked() profileRecord {
	custom := s.custom
	return profileRecord{Type: s.active, CustomPreferences: &custom}
}

func (s *ProfileService) persist(ctx context.Context, rec profileRecord) {
	if err := persistence.PutJSON(ctx, s.store, persistence.KeyProfile, rec); err != nil {
		s.loggerWith(ctx, "persist").ErrorContext(ctx, "failed to persist profile", "error", err)
	}
}
