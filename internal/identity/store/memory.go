// Package store provides identity persistence: in-memory and PostgreSQL.
package store

import (
	"context"
	"sync"

	"rollcall/internal/identity"
	id "rollcall/pkg/domain"
)

// Memory is an in-memory identity store.
type Memory struct {
	mu         sync.RWMutex
	identities map[id.UserID]*identity.Identity
}

// NewMemory creates an empty in-memory identity store.
func NewMemory() *Memory {
	return &Memory{
		identities: make(map[id.UserID]*identity.Identity),
	}
}

func (m *Memory) Save(ctx context.Context, ident *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities[ident.ID] = ident.Clone()
	return nil
}

func (m *Memory) FindByID(ctx context.Context, userID id.UserID) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identities[userID].Clone(), nil
}
