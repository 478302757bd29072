package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/worklog/internal/application"
)

type sessionService interface {
	StartSession(ctx context.Context, params application.StartSessionParams) (application.RecordingSession, error)
	Pause(ctx context.Context, id string) (application.RecordingSession, error)
	Resume(ctx context.Context, id string) (application.RecordingSession, error)
	Complete(ctx context.Context, id string) (application.RecordingSession, error)
	Capture(ctx context.Context, raw application.RawEvent) (application.ActivityEvent, application.CaptureDecision, error)
	ActiveSession(ctx context.Context) (application.RecordingSession, bool)
	ListSessions(ctx context.Context) []application.RecordingSession
}

// SessionHandler serves the session lifecycle and event ingest endpoints.
type SessionHandler struct {
	service   sessionService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service sessionService, now func() time.Time, logger *slog.Logger) *SessionHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &SessionHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// Current returns the in-flight session.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, ok := h.service.ActiveSession(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoActiveSession)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.sessionResponse(session))
}

// List returns the active session followed by the archive.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions := h.service.ListSessions(r.Context())
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, h.toDTO(session))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionsResponse{Sessions: out})
}

// Start begins a new session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}

	logger := h.log(r.Context(), "Start", "name", req.Name)
	session, err := h.service.StartSession(r.Context(), application.StartSessionParams{
		Name:        req.Name,
		ProfileType: req.ProfileType,
		TicketID:    req.TicketID,
		Tags:        req.Tags,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "session start failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", session.ID).InfoContext(r.Context(), "session started")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, h.sessionResponse(session))
}

// Pause pauses the in-flight session.
func (h *SessionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Pause", h.service.Pause)
}

// Resume resumes the in-flight session.
func (h *SessionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Resume", h.service.Resume)
}

// Complete ends the in-flight session.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Complete", h.service.Complete)
}

func (h *SessionHandler) transition(w http.ResponseWriter, r *http.Request, operation string, fn func(context.Context, string) (application.RecordingSession, error)) {
	active, ok := h.service.ActiveSession(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoActiveSession)
		return
	}

	session, err := fn(r.Context(), active.ID)
	if err != nil {
		h.log(r.Context(), operation, "session_id", active.ID).
			WarnContext(r.Context(), "session transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, h.sessionResponse(session))
}

// Ingest runs a raw event through the capture policy.
func (h *SessionHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var raw application.RawEvent
	if !h.responder.decode(r.Context(), w, r, &raw) {
		return
	}

	event, decision, err := h.service.Capture(r.Context(), raw)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !decision.Admitted() {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, captureResponse{Admitted: false, Reason: decision})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, captureResponse{Admitted: true, Event: &event})
}

func (h *SessionHandler) sessionResponse(session application.RecordingSession) sessionResponse {
	return sessionResponse{Session: h.toDTO(session)}
}

func (h *SessionHandler) toDTO(session application.RecordingSession) sessionDTO {
	now := h.now()
	return sessionDTO{
		RecordingSession: session,
		Elapsed:          application.FormatDuration(session, now),
		ElapsedSeconds:   int64(application.Elapsed(session, now) / time.Second),
	}
}

type startSessionRequest struct {
	Name        string                  `json:"name"`
	ProfileType application.ProfileType `json:"profileType"`
	TicketID    string                  `json:"ticketId"`
	Tags        []string                `json:"tags"`
}

type sessionDTO struct {
	application.RecordingSession
	Elapsed        string `json:"elapsed"`
	ElapsedSeconds int64  `json:"elapsedSeconds"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type sessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type captureResponse struct {
	Admitted bool                       `json:"admitted"`
	Reason   application.CaptureDecision `json:"reason,omitempty"`
	Event    *application.ActivityEvent  `json:"event,omitempty"`
}
