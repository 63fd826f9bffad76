package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"rollcall/internal/attendance"
	id "rollcall/pkg/domain"
)

// Postgres persists attendance records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed record store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Append(ctx context.Context, rec *attendance.Record) error {
	query := `
		INSERT INTO attendance_records (id, student_id, session_id, recorded_at, lon, lat, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := p.db.ExecContext(ctx, query,
		uuid.UUID(rec.ID), uuid.UUID(rec.StudentID), uuid.UUID(rec.SessionID),
		rec.Timestamp, rec.Location.Lon, rec.Location.Lat, rec.Verified)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (p *Postgres) ListByStudent(ctx context.Context, studentID id.UserID) ([]*attendance.Record, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, student_id, session_id, recorded_at, lon, lat, verified
		FROM attendance_records
		WHERE student_id = $1
		ORDER BY recorded_at DESC
	`, uuid.UUID(studentID))
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*attendance.Record
	for rows.Next() {
		var (
			rid, sid, sessID uuid.UUID
			rec              attendance.Record
		)
		if err := rows.Scan(&rid, &sid, &sessID, &rec.Timestamp, &rec.Location.Lon, &rec.Location.Lat, &rec.Verified); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.ID = id.RecordID(rid)
		rec.StudentID = id.UserID(sid)
		rec.SessionID = id.SessionID(sessID)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (p *Postgres) CountVerifiedByStudent(ctx context.Context, studentID id.UserID) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records WHERE student_id = $1 AND verified
	`, uuid.UUID(studentID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
