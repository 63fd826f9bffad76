// Package handler wires the administrative session endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/audit"
	"rollcall/internal/session"
	id "rollcall/pkg/domain"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// AuditEmitter receives session lifecycle events. Emission is best-effort.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler exposes session administration over HTTP.
type Handler struct {
	registry *session.Registry
	logger   *slog.Logger
	auditor  AuditEmitter
}

type Option func(*Handler)

func WithAudit(emitter AuditEmitter) Option {
	return func(h *Handler) {
		h.auditor = emitter
	}
}

// New constructs a session handler.
func New(registry *session.Registry, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{registry: registry, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) emit(ctx context.Context, action string, sessionID id.SessionID) {
	if h.auditor == nil {
		return
	}
	event := audit.Event{
		Category:  audit.CategoryOperations,
		Timestamp: requestcontext.Now(ctx),
		SessionID: sessionID,
		Action:    action,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.Error("audit emit failed", "action", action, "error", err)
	}
}

// RegisterAdmin mounts the admin session endpoints on the router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/sessions", h.HandleCreate)
	r.Get("/sessions", h.HandleList)
	r.Post("/sessions/{sessionID}/close", h.HandleClose)
}

// HandleCreate handles POST /admin/sessions.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateSessionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	s, err := h.registry.Create(ctx, session.CreateParams{
		Title:     req.Title,
		CreatedBy: req.ParsedCreatedBy(),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusM:   req.RadiusMeters,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "session creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.emit(ctx, audit.ActionSessionCreated, s.ID)
	httputil.WriteJSON(w, http.StatusCreated, FromSession(s))
}

// HandleList handles GET /admin/sessions.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.registry.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSessions(sessions))
}

// HandleClose handles POST /admin/sessions/{sessionID}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	s, err := h.registry.Close(ctx, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "session close failed",
			"request_id", requestID,
			"session_id", sessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.emit(ctx, audit.ActionSessionClosed, s.ID)
	httputil.WriteJSON(w, http.StatusOK, FromSession(s))
}
