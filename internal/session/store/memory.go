// Package store provides session persistence: an in-memory implementation
// for tests and single-node deployments, and a PostgreSQL implementation.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"rollcall/internal/session"
	id "rollcall/pkg/domain"
)

// Memory is an in-memory session store. Reads return deep copies, so callers
// always observe a consistent snapshot and concurrent reads never block
// writers beyond the brief map access.
type Memory struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*session.Session
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[id.SessionID]*session.Session),
	}
}

func (m *Memory) Save(ctx context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *Memory) FindByID(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[sessionID].Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) SetInactive(ctx context.Context, sessionID id.SessionID, endedAt time.Time) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.sessions[sessionID]
	if s == nil {
		return nil, nil
	}
	if s.Active {
		s.Active = false
		ended := endedAt
		s.EndedAt = &ended
	}
	return s.Clone(), nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}
