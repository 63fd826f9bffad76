package handler

import (
	"time"

	"rollcall/internal/session"
)

// SessionResponse is the JSON shape of a session. Location uses the
// [longitude, latitude] ordering of the storage convention.
type SessionResponse struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	CreatedBy    string      `json:"createdBy,omitempty"`
	Location     *[2]float64 `json:"location,omitempty"`
	RadiusMeters float64     `json:"radiusMeters"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	EndedAt      *time.Time  `json:"endedAt,omitempty"`
}

// FromSession converts a domain session to its HTTP response shape.
func FromSession(s *session.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:           s.ID.String(),
		Title:        s.Title,
		RadiusMeters: s.RadiusM,
		IsActive:     s.Active,
		CreatedAt:    s.CreatedAt,
		EndedAt:      s.EndedAt,
	}
	if !s.CreatedBy.IsNil() {
		resp.CreatedBy = s.CreatedBy.String()
	}
	if s.Anchor != nil {
		coords := s.Anchor.Coordinates()
		resp.Location = &coords
	}
	return resp
}

// FromSessions converts a list of sessions.
func FromSessions(sessions []*session.Session) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, FromSession(s))
	}
	return out
}
