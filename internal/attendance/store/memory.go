// Package store provides attendance record persistence: in-memory and
// PostgreSQL. Both are append-only.
package store

import (
	"context"
	"sort"
	"sync"

	"rollcall/internal/attendance"
	id "rollcall/pkg/domain"
)

// Memory is an in-memory append-only record store.
type Memory struct {
	mu      sync.RWMutex
	records []*attendance.Record
}

// NewMemory creates an empty in-memory record store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, rec *attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	m.records = append(m.records, &stored)
	return nil
}

func (m *Memory) ListByStudent(ctx context.Context, studentID id.UserID) ([]*attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*attendance.Record
	for _, rec := range m.records {
		if rec.StudentID == studentID {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (m *Memory) CountVerifiedByStudent(ctx context.Context, studentID id.UserID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, rec := range m.records {
		if rec.StudentID == studentID && rec.Verified {
			n++
		}
	}
	return n, nil
}
