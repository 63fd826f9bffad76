package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/geo"
	"rollcall/internal/session"
	id "rollcall/pkg/domain"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) newSession(createdAt time.Time) *session.Session {
	return &session.Session{
		ID:        id.NewSessionID(),
		Title:     "Distributed Systems Lecture",
		CreatedBy: id.NewUserID(),
		Anchor:    &geo.Point{Lon: 36.8219, Lat: -1.2921},
		RadiusM:   50,
		Active:    true,
		CreatedAt: createdAt,
	}
}

func (s *MemoryStoreSuite) TestSaveAndFind() {
	sess := s.newSession(time.Now())
	s.Require().NoError(s.store.Save(s.ctx, sess))

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(sess.ID, found.ID)
	s.Equal(sess.Title, found.Title)
	s.Require().NotNil(found.Anchor)
	s.Equal(*sess.Anchor, *found.Anchor)
}

func (s *MemoryStoreSuite) TestFindMissingReturnsNil() {
	found, err := s.store.FindByID(s.ctx, id.NewSessionID())
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *MemoryStoreSuite) TestFindReturnsSnapshot() {
	sess := s.newSession(time.Now())
	s.Require().NoError(s.store.Save(s.ctx, sess))

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)

	// Mutating the snapshot must not leak into the store.
	found.Anchor.Lat = 90
	found.Title = "tampered"

	again, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.Title, again.Title)
	s.Equal(sess.Anchor.Lat, again.Anchor.Lat)
}

func (s *MemoryStoreSuite) TestSetInactive() {
	sess := s.newSession(time.Now())
	s.Require().NoError(s.store.Save(s.ctx, sess))

	endedAt := time.Now().Add(time.Hour)
	closed, err := s.store.SetInactive(s.ctx, sess.ID, endedAt)
	s.Require().NoError(err)
	s.Require().NotNil(closed)
	s.False(closed.Active)
	s.Require().NotNil(closed.EndedAt)
	s.True(closed.EndedAt.Equal(endedAt))

	// Closing again keeps the original end instant.
	closedAgain, err := s.store.SetInactive(s.ctx, sess.ID, endedAt.Add(time.Hour))
	s.Require().NoError(err)
	s.True(closedAgain.EndedAt.Equal(endedAt))
}

func (s *MemoryStoreSuite) TestSetInactiveMissing() {
	closed, err := s.store.SetInactive(s.ctx, id.NewSessionID(), time.Now())
	s.Require().NoError(err)
	s.Nil(closed)
}

func (s *MemoryStoreSuite) TestListNewestFirst() {
	base := time.Now()
	older := s.newSession(base.Add(-time.Hour))
	newer := s.newSession(base)
	s.Require().NoError(s.store.Save(s.ctx, older))
	s.Require().NoError(s.store.Save(s.ctx, newer))

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(newer.ID, list[0].ID)
	s.Equal(older.ID, list[1].ID)
}

func (s *MemoryStoreSuite) TestCount() {
	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)

	s.Require().NoError(s.store.Save(s.ctx, s.newSession(time.Now())))
	n, err = s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}
