//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/geo"
	"rollcall/internal/session"
	"rollcall/internal/session/store"
	id "rollcall/pkg/domain"
	"rollcall/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "sessions"))
}

func (s *PostgresStoreSuite) newSession(title string, active bool) *session.Session {
	return &session.Session{
		ID:        id.NewSessionID(),
		Title:     title,
		CreatedBy: id.NewUserID(),
		Anchor:    &geo.Point{Lon: 30.523, Lat: 50.45},
		RadiusM:   50,
		Active:    active,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestSaveAndFind() {
	ctx := context.Background()
	sess := s.newSession("Databases, lecture 3", true)
	s.Require().NoError(s.store.Save(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found)
	s.Equal(sess.Title, found.Title)
	s.Equal(sess.CreatedBy, found.CreatedBy)
	s.Require().NotNil(found.Anchor)
	s.Equal(sess.Anchor.Lon, found.Anchor.Lon)
	s.Equal(sess.Anchor.Lat, found.Anchor.Lat)
	s.True(found.Active)
	s.Nil(found.EndedAt)
}

func (s *PostgresStoreSuite) TestFindMissingReturnsNil() {
	found, err := s.store.FindByID(context.Background(), id.NewSessionID())
	s.Require().NoError(err)
	s.Nil(found)
}

func (s *PostgresStoreSuite) TestSaveWithoutAnchor() {
	ctx := context.Background()
	sess := s.newSession("Remote talk", true)
	sess.Anchor = nil
	s.Require().NoError(s.store.Save(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Nil(found.Anchor)
}

func (s *PostgresStoreSuite) TestSetInactiveIsIdempotent() {
	ctx := context.Background()
	sess := s.newSession("To close", true)
	s.Require().NoError(s.store.Save(ctx, sess))

	endedAt := time.Now().UTC().Truncate(time.Microsecond)
	closed, err := s.store.SetInactive(ctx, sess.ID, endedAt)
	s.Require().NoError(err)
	s.False(closed.Active)
	s.Require().NotNil(closed.EndedAt)

	// A second close must not move the end instant.
	again, err := s.store.SetInactive(ctx, sess.ID, endedAt.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(closed.EndedAt.UTC(), again.EndedAt.UTC())
}

func (s *PostgresStoreSuite) TestListNewestFirst() {
	ctx := context.Background()
	older := s.newSession("Older", true)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := s.newSession("Newer", true)
	s.Require().NoError(s.store.Save(ctx, older))
	s.Require().NoError(s.store.Save(ctx, newer))

	list, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Newer", list[0].Title)
	s.Equal("Older", list[1].Title)
}

func (s *PostgresStoreSuite) TestCount() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, s.newSession("A", true)))
	s.Require().NoError(s.store.Save(ctx, s.newSession("B", false)))

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(2, n)
}
