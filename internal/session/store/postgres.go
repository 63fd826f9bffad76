package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rollcall/internal/geo"
	"rollcall/internal/session"
	id "rollcall/pkg/domain"
)

// Postgres persists sessions in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed session store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Save(ctx context.Context, s *session.Session) error {
	var lon, lat sql.NullFloat64
	if s.Anchor != nil {
		lon = sql.NullFloat64{Float64: s.Anchor.Lon, Valid: true}
		lat = sql.NullFloat64{Float64: s.Anchor.Lat, Valid: true}
	}
	query := `
		INSERT INTO sessions (id, title, created_by, anchor_lon, anchor_lat, radius_m, active, created_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := p.db.ExecContext(ctx, query,
		uuid.UUID(s.ID), s.Title, uuid.UUID(s.CreatedBy), lon, lat, s.RadiusM, s.Active, s.CreatedAt, nullTime(s.EndedAt))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (p *Postgres) FindByID(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, title, created_by, anchor_lon, anchor_lat, radius_m, active, created_at, ended_at
		FROM sessions WHERE id = $1
	`, uuid.UUID(sessionID))

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

func (p *Postgres) List(ctx context.Context) ([]*session.Session, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, title, created_by, anchor_lon, anchor_lat, radius_m, active, created_at, ended_at
		FROM sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) SetInactive(ctx context.Context, sessionID id.SessionID, endedAt time.Time) (*session.Session, error) {
	_, err := p.db.ExecContext(ctx, `
		UPDATE sessions SET active = FALSE, ended_at = COALESCE(ended_at, $2)
		WHERE id = $1
	`, uuid.UUID(sessionID), endedAt)
	if err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}
	return p.FindByID(ctx, sessionID)
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*session.Session, error) {
	var (
		sid       uuid.UUID
		createdBy uuid.UUID
		lon, lat  sql.NullFloat64
		endedAt   sql.NullTime
		s         session.Session
	)
	err := row.Scan(&sid, &s.Title, &createdBy, &lon, &lat, &s.RadiusM, &s.Active, &s.CreatedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	s.ID = id.SessionID(sid)
	s.CreatedBy = id.UserID(createdBy)
	if lon.Valid && lat.Valid {
		s.Anchor = &geo.Point{Lon: lon.Float64, Lat: lat.Float64}
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
