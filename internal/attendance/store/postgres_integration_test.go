//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/attendance"
	"rollcall/internal/attendance/store"
	"rollcall/internal/geo"
	id "rollcall/pkg/domain"
	"rollcall/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres

	studentID id.UserID
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
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "attendance_records"))
	s.studentID = id.NewUserID()
}

func (s *PostgresStoreSuite) newRecord(at time.Time) *attendance.Record {
	return &attendance.Record{
		ID:        id.NewRecordID(),
		StudentID: s.studentID,
		SessionID: id.NewSessionID(),
		Timestamp: at.UTC().Truncate(time.Microsecond),
		Location:  geo.Point{Lon: 30.523, Lat: 50.45},
		Verified:  true,
	}
}

func (s *PostgresStoreSuite) TestAppendAndListNewestFirst() {
	ctx := context.Background()
	older := s.newRecord(time.Now().Add(-time.Hour))
	newer := s.newRecord(time.Now())
	s.Require().NoError(s.store.Append(ctx, older))
	s.Require().NoError(s.store.Append(ctx, newer))

	records, err := s.store.ListByStudent(ctx, s.studentID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(newer.ID, records[0].ID)
	s.Equal(older.ID, records[1].ID)
	s.Equal(30.523, records[0].Location.Lon)
	s.Equal(50.45, records[0].Location.Lat)
	s.True(records[0].Verified)
}

func (s *PostgresStoreSuite) TestListScopedToStudent() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newRecord(time.Now())))

	other := s.newRecord(time.Now())
	other.StudentID = id.NewUserID()
	s.Require().NoError(s.store.Append(ctx, other))

	records, err := s.store.ListByStudent(ctx, s.studentID)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *PostgresStoreSuite) TestCountVerified() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, s.newRecord(time.Now())))
	s.Require().NoError(s.store.Append(ctx, s.newRecord(time.Now())))

	n, err := s.store.CountVerifiedByStudent(ctx, s.studentID)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.store.CountVerifiedByStudent(ctx, id.NewUserID())
	s.Require().NoError(err)
	s.Equal(0, n)
}
