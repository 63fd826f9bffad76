package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rollcall/internal/biometric"
	"rollcall/internal/identity"
	id "rollcall/pkg/domain"
)

// Postgres persists identities in PostgreSQL. The reference descriptor is
// stored as a float8 array.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Save(ctx context.Context, ident *identity.Identity) error {
	query := `
		INSERT INTO identities (id, name, descriptor)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			descriptor = EXCLUDED.descriptor
	`
	_, err := p.db.ExecContext(ctx, query,
		uuid.UUID(ident.ID), ident.Name, pq.Array([]float64(ident.Descriptor)))
	if err != nil {
		return fmt.Errorf("save identity: %w", err)
	}
	return nil
}

func (p *Postgres) FindByID(ctx context.Context, userID id.UserID) (*identity.Identity, error) {
	var (
		uid        uuid.UUID
		name       string
		descriptor []float64
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, descriptor FROM identities WHERE id = $1
	`, uuid.UUID(userID)).Scan(&uid, &name, pq.Array(&descriptor))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return &identity.Identity{
		ID:         id.UserID(uid),
		Name:       name,
		Descriptor: biometric.Descriptor(descriptor),
	}, nil
}
