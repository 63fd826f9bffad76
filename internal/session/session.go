// Package session owns live-session metadata: the geographic anchor, the
// admission radius, and the active flag every verification consults.
package session

import (
	"time"

	"rollcall/internal/geo"
	id "rollcall/pkg/domain"
)

// DefaultRadiusM is the admission radius applied when a session is created
// without one.
const DefaultRadiusM = 50.0

// Session is a live attendance session. The anchor, once set, is immutable
// for the session's lifetime; changing it would invalidate in-flight geofence
// reasoning.
type Session struct {
	ID        id.SessionID
	Title     string
	CreatedBy id.UserID
	// Anchor is the geographic center of the geofence, stored
	// longitude-first. Nil means the session has no usable location and can
	// never admit a claim.
	Anchor    *geo.Point
	RadiusM   float64
	Active    bool
	CreatedAt time.Time
	EndedAt   *time.Time
}

// HasAnchor reports whether the session has a usable anchor location.
func (s *Session) HasAnchor() bool {
	return s.Anchor != nil
}

// Clone returns a deep copy so store snapshots stay consistent under
// concurrent reads.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Anchor != nil {
		anchor := *s.Anchor
		c.Anchor = &anchor
	}
	if s.EndedAt != nil {
		ended := *s.EndedAt
		c.EndedAt = &ended
	}
	return &c
}
