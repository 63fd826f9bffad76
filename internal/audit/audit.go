// Package audit captures the decision trail around attendance verification.
// Events are emitted from domain logic and kept transport-agnostic so stores
// and sinks can fan out.
package audit

import (
	"context"
	"time"

	id "rollcall/pkg/domain"
)

// Category classifies audit events by their primary purpose. This enables
// different retention policies, storage backends, and routing.
type Category string

const (
	// CategoryCompliance covers events with attendance-register significance:
	// accepted and rejected claims. These need durable storage.
	CategoryCompliance Category = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility (token polls, session lifecycle). These can be sampled.
	CategoryOperations Category = "operations"
)

// Actions emitted by the service.
const (
	ActionAttendanceAccepted = "attendance_accepted"
	ActionAttendanceRejected = "attendance_rejected"
	ActionTokenIssued        = "session_token_issued"
	ActionSessionCreated     = "session_created"
	ActionSessionClosed      = "session_closed"
	ActionDescriptorEnrolled = "descriptor_enrolled"
)

// Event is one audit entry.
type Event struct {
	Category  Category     `json:"category"`
	Timestamp time.Time    `json:"timestamp"`
	StudentID id.UserID    `json:"-"`
	SessionID id.SessionID `json:"-"`
	Action    string       `json:"action"`
	// Decision is "accepted" or "rejected" for verification events.
	Decision string `json:"decision,omitempty"`
	// Reason carries the rejection reason code, empty for accepted claims.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// wireEvent is the JSON shape with ids flattened to strings.
type wireEvent struct {
	Event
	StudentID string `json:"student_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func idString(v interface {
	IsNil() bool
	String() string
}) string {
	if v.IsNil() {
		return ""
	}
	return v.String()
}

// Store receives audit events. Implementations must be safe for concurrent
// use; Append must not block indefinitely.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Fanout appends each event to every store, returning the first error after
// attempting all of them.
func Fanout(stores ...Store) Store {
	return fanout(stores)
}

type fanout []Store

func (f fanout) Append(ctx context.Context, event Event) error {
	var firstErr error
	for _, s := range f {
		if err := s.Append(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ReadStore is a Store that can also read events back by student.
type ReadStore interface {
	Store
	ListByStudent(ctx context.Context, studentID id.UserID) ([]Event, error)
}

// Tee fans writes out to the primary plus any secondary sinks while reads
// stay on the primary.
func Tee(primary ReadStore, sinks ...Store) ReadStore {
	return tee{primary: primary, all: Fanout(append([]Store{primary}, sinks...)...)}
}

type tee struct {
	primary ReadStore
	all     Store
}

func (t tee) Append(ctx context.Context, event Event) error {
	return t.all.Append(ctx, event)
}

func (t tee) ListByStudent(ctx context.Context, studentID id.UserID) ([]Event, error) {
	return t.primary.ListByStudent(ctx, studentID)
}
