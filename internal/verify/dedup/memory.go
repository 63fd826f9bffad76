// Package dedup tracks which (session, student) pairs already hold an
// accepted claim, so the reject duplicate policy can refuse repeats without
// scanning the attendance log.
package dedup

import (
	"context"
	"sync"

	id "rollcall/pkg/domain"
)

// Memory is an in-process guard for single-instance deployments and tests.
type Memory struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{claimed: make(map[string]struct{})}
}

// Reserve marks the pair as claimed. Returns false when the pair already
// holds a reservation.
func (m *Memory) Reserve(_ context.Context, sessionID id.SessionID, studentID id.UserID) (bool, error) {
	key := key(sessionID, studentID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.claimed[key]; exists {
		return false, nil
	}
	m.claimed[key] = struct{}{}
	return true, nil
}

// Release frees a reservation taken by Reserve. Used when persisting the
// record fails after the reservation succeeded.
func (m *Memory) Release(_ context.Context, sessionID id.SessionID, studentID id.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, key(sessionID, studentID))
	return nil
}

func key(sessionID id.SessionID, studentID id.UserID) string {
	return sessionID.String() + ":" + studentID.String()
}
