// Package handler serves the rotating session token that admin displays
// embed in their QR code.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/audit"
	"rollcall/internal/session"
	"rollcall/internal/token"
	"rollcall/internal/token/metrics"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// TokenResponse is the QR payload contract.
type TokenResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

// AuditEmitter receives token issuance events. Emission is best-effort.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler exposes token issuance over HTTP.
type Handler struct {
	registry *session.Registry
	rotator  *token.Rotator
	logger   *slog.Logger
	auditor  AuditEmitter
	metrics  *metrics.Metrics
}

type Option func(*Handler)

func WithAudit(emitter AuditEmitter) Option {
	return func(h *Handler) {
		h.auditor = emitter
	}
}

// WithMetrics attaches token poll metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// New constructs a token handler.
func New(registry *session.Registry, rotator *token.Rotator, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{registry: registry, rotator: rotator, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the token endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/token", h.HandleToken)
}

// HandleToken handles POST /token. Tokens exist only for live sessions;
// unknown and closed sessions both read as not found.
func (h *Handler) HandleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementTokenRequests()
	}

	sess, err := h.registry.Get(ctx, req.ParsedSessionID())
	if err != nil {
		if h.metrics != nil && dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.metrics.IncrementUnknownSession()
		}
		httputil.WriteError(w, err)
		return
	}
	if !h.registry.IsActive(sess) {
		if h.metrics != nil {
			h.metrics.IncrementUnknownSession()
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "session is not active"))
		return
	}

	tok, err := h.rotator.Current(ctx, sess.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed",
			"request_id", requestID,
			"session_id", sess.ID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if h.auditor != nil {
		if err := h.auditor.Emit(ctx, audit.Event{
			Category:  audit.CategoryOperations,
			Timestamp: requestcontext.Now(ctx),
			SessionID: sess.ID,
			Action:    audit.ActionTokenIssued,
			RequestID: requestID,
		}); err != nil {
			h.logger.Error("audit emit failed", "action", audit.ActionTokenIssued, "error", err)
		}
	}

	httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		Token:     tok,
		SessionID: sess.ID.String(),
	})
}
