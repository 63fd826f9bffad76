// Package attendance holds the immutable records produced by accepted
// claims. Records are append-only: the verification core never persists a
// rejected claim, so every stored record carries Verified=true.
package attendance

import (
	"time"

	"rollcall/internal/geo"
	id "rollcall/pkg/domain"
)

// Record is one accepted attendance claim. Immutable once constructed.
// StudentID and SessionID are weak references; this layer does not own
// either lifecycle.
type Record struct {
	ID        id.RecordID
	StudentID id.UserID
	SessionID id.SessionID
	Timestamp time.Time
	// Location is the claimant-reported position, stored longitude-first.
	Location geo.Point
	Verified bool
}
