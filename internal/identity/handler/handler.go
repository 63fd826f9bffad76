// Package handler exposes the descriptor-enrollment boundary: installing the
// single reference vector an external capture pipeline produced.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/audit"
	"rollcall/internal/biometric"
	"rollcall/internal/identity"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// Store persists enrolled identities.
type Store interface {
	Save(ctx context.Context, ident *identity.Identity) error
	FindByID(ctx context.Context, userID id.UserID) (*identity.Identity, error)
}

// AuditEmitter receives enrollment events. Emission is best-effort.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler exposes identity administration over HTTP.
type Handler struct {
	store   Store
	logger  *slog.Logger
	auditor AuditEmitter
}

type Option func(*Handler)

func WithAudit(emitter AuditEmitter) Option {
	return func(h *Handler) {
		h.auditor = emitter
	}
}

// New constructs an identity handler.
func New(store Store, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{store: store, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterAdmin mounts the admin identity endpoints on the router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/students/{studentID}/descriptor", h.HandleEnrollDescriptor)
}

// EnrollDescriptorRequest is the body for PUT /admin/students/{id}/descriptor.
type EnrollDescriptorRequest struct {
	Name       string    `json:"name,omitempty"`
	Descriptor []float64 `json:"descriptor"`

	parsed biometric.Descriptor
}

// Validate enforces the fixed dimensionality at the trust boundary.
func (r *EnrollDescriptorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	descriptor, err := biometric.ParseDescriptor(r.Descriptor)
	if err != nil {
		return err
	}
	r.parsed = descriptor
	return nil
}

// HandleEnrollDescriptor handles PUT /admin/students/{studentID}/descriptor.
func (h *Handler) HandleEnrollDescriptor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	studentID, err := id.ParseUserID(chi.URLParam(r, "studentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[EnrollDescriptorRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ident := &identity.Identity{
		ID:         studentID,
		Name:       req.Name,
		Descriptor: req.parsed,
	}
	if err := h.store.Save(ctx, ident); err != nil {
		h.logger.ErrorContext(ctx, "descriptor enrollment failed",
			"request_id", requestID,
			"student_id", studentID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to store descriptor"))
		return
	}

	h.logger.InfoContext(ctx, "descriptor enrolled",
		"request_id", requestID,
		"student_id", studentID,
	)
	if h.auditor != nil {
		if err := h.auditor.Emit(ctx, audit.Event{
			Category:  audit.CategoryCompliance,
			Timestamp: requestcontext.Now(ctx),
			StudentID: studentID,
			Action:    audit.ActionDescriptorEnrolled,
			RequestID: requestID,
		}); err != nil {
			h.logger.Error("audit emit failed", "action", audit.ActionDescriptorEnrolled, "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
