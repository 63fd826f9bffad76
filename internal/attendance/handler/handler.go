// Package handler exposes the student-facing attendance endpoints: history
// and summary statistics.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rollcall/internal/attendance"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/platform/httputil"
	"rollcall/pkg/requestcontext"
)

// RecordStore reads stored attendance records.
type RecordStore interface {
	ListByStudent(ctx context.Context, studentID id.UserID) ([]*attendance.Record, error)
	CountVerifiedByStudent(ctx context.Context, studentID id.UserID) (int, error)
}

// SessionCounter supplies the denominator for the stats endpoint.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// Handler exposes attendance history and stats over HTTP.
type Handler struct {
	records  RecordStore
	sessions SessionCounter
	logger   *slog.Logger
}

// New constructs an attendance handler.
func New(records RecordStore, sessions SessionCounter, logger *slog.Logger) *Handler {
	return &Handler{records: records, sessions: sessions, logger: logger}
}

// Register mounts the attendance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/attendance/history/{studentID}", h.HandleHistory)
	r.Get("/attendance/stats/{studentID}", h.HandleStats)
}

// HandleHistory handles GET /attendance/history/{studentID}.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	studentID, err := id.ParseUserID(chi.URLParam(r, "studentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.records.ListByStudent(ctx, studentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"student_id", studentID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load history"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}

// HandleStats handles GET /attendance/stats/{studentID}.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	studentID, err := id.ParseUserID(chi.URLParam(r, "studentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	attended, err := h.records.CountVerifiedByStudent(ctx, studentID)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count attendance"))
		return
	}

	total, err := h.sessions.Count(ctx)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count sessions"))
		return
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(attended) / float64(total) * 100
	}

	httputil.WriteJSON(w, http.StatusOK, StatsResponse{
		Attended:   attended,
		Total:      total,
		Percentage: fmt.Sprintf("%.1f", percentage),
	})
}
