package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/worklog/internal/application"
)

type profileService interface {
	Profiles(ctx context.Context) []application.UserProfile
	ActiveProfile(ctx context.Context) application.UserProfile
	EffectivePreferences(ctx context.Context) application.RecordingPreferences
	SetActiveProfile(ctx context.Context, t application.ProfileType) error
	UpdateCustomPreferences(ctx context.Context, prefs application.RecordingPreferences) error
}

// ProfileHandler serves the active profile and custom preferences.
type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.view(r.Context()))
}

// Update applies the custom preferences first so that switching to custom in
// the same request activates the new set.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "ProfileHandler", "Update")
	if req.Preferences != nil {
		if err := h.service.UpdateCustomPreferences(r.Context(), *req.Preferences); err != nil {
			logger.WarnContext(r.Context(), "preference update failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}
	if req.Type != nil {
		if err := h.service.SetActiveProfile(r.Context(), *req.Type); err != nil {
			logger.WarnContext(r.Context(), "profile switch failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.view(r.Context()))
}

func (h *ProfileHandler) view(ctx context.Context) profileResponse {
	return profileResponse{
		Active:      h.service.ActiveProfile(ctx),
		Preferences: h.service.EffectivePreferences(ctx),
		Profiles:    h.service.Profiles(ctx),
	}
}

type profileRequest struct {
	Type        *application.ProfileType          `json:"type"`
	Preferences *application.RecordingPreferences `json:"preferences"`
}

type profileResponse struct {
	Active      application.UserProfile          `json:"active"`
	Preferences application.RecordingPreferences `json:"preferences"`
	Profiles    []application.UserProfile        `json:"profiles"`
}
