// Package handler wires the claim verification endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/verify"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// Handler exposes claim verification over HTTP.
type Handler struct {
	service *verify.Service
	logger  *slog.Logger
}

// New constructs a verification handler.
func New(service *verify.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the verification endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify", h.HandleVerify)
}

// HandleVerify handles POST /verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[MarkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result := h.service.Verify(ctx, verify.Claim{
		StudentID:  req.ParsedStudentID(),
		SessionID:  req.ParsedSessionID(),
		Token:      req.QRToken,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Descriptor: req.ParsedDescriptor(),
	})

	status, resp := FromResult(result)
	httputil.WriteJSON(w, status, resp)
}
