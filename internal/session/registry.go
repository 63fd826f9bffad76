package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"rollcall/internal/geo"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/requestcontext"
)

// Store persists sessions. FindByID returns (nil, nil) when the session does
// not exist; the registry maps absence to a not-found error.
type Store interface {
	Save(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	SetInactive(ctx context.Context, sessionID id.SessionID, endedAt time.Time) (*Session, error)
	Count(ctx context.Context) (int, error)
}

// Registry exposes read access to session metadata for the verification
// pipeline, plus the administrative create/close/list operations.
type Registry struct {
	store         Store
	logger        *slog.Logger
	defaultRadius float64
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaultRadius overrides the admission radius applied to sessions
// created without one.
func WithDefaultRadius(radiusM float64) RegistryOption {
	return func(r *Registry) {
		if radiusM > 0 {
			r.defaultRadius = radiusM
		}
	}
}

// NewRegistry constructs a session registry over the given store.
func NewRegistry(store Store, logger *slog.Logger, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:         store,
		logger:        logger,
		defaultRadius: DefaultRadiusM,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns a consistent snapshot of the session.
func (r *Registry) Get(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	s, err := r.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session lookup failed")
	}
	if s == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return s, nil
}

// IsActive reports whether the session currently admits claims.
func (r *Registry) IsActive(s *Session) bool {
	return s != nil && s.Active
}

// CreateParams describes a new session. Latitude and Longitude must be
// provided together or not at all.
type CreateParams struct {
	Title     string
	CreatedBy id.UserID
	Latitude  *float64
	Longitude *float64
	RadiusM   float64
}

// Create registers a new session. The anchor is set exactly once, here.
func (r *Registry) Create(ctx context.Context, params CreateParams) (*Session, error) {
	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if (params.Latitude == nil) != (params.Longitude == nil) {
		return nil, dErrors.New(dErrors.CodeValidation, "latitude and longitude must be provided together")
	}

	radius := params.RadiusM
	if radius <= 0 {
		radius = r.defaultRadius
	}

	s := &Session{
		ID:        id.NewSessionID(),
		Title:     params.Title,
		CreatedBy: params.CreatedBy,
		RadiusM:   radius,
		Active:    true,
		CreatedAt: requestcontext.Now(ctx),
	}
	if params.Latitude != nil {
		s.Anchor = &geo.Point{Lon: *params.Longitude, Lat: *params.Latitude}
	}

	if err := r.store.Save(ctx, s); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save session")
	}

	r.logger.InfoContext(ctx, "session created",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", s.ID,
		"has_anchor", s.HasAnchor(),
		"radius_m", s.RadiusM,
	)
	return s, nil
}

// Close flips the session inactive and stamps its end instant. Closing an
// already-closed session is a no-op returning the current snapshot.
func (r *Registry) Close(ctx context.Context, sessionID id.SessionID) (*Session, error) {
	s, err := r.store.SetInactive(ctx, sessionID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to close session")
	}
	if s == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}

	r.logger.InfoContext(ctx, "session closed",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
	)
	return s, nil
}

// List returns all sessions, newest first.
func (r *Registry) List(ctx context.Context) ([]*Session, error) {
	sessions, err := r.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list sessions")
	}
	return sessions, nil
}

// Count returns the total number of sessions ever created. Used by the
// attendance stats endpoint as the denominator.
func (r *Registry) Count(ctx context.Context) (int, error) {
	n, err := r.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count sessions")
	}
	return n, nil
}
