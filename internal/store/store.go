package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

// Log is the append-only record log: insert and read back in arrival order.
type Log interface {
	Insert(ctx context.Context, source string, r record.Record) (int64, error)
	ListAll(ctx context.Context) ([]record.Stored, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS crm_records (
	id             BIGSERIAL PRIMARY KEY,
	name           TEXT,
	company        TEXT,
	follow_up_date TEXT,
	notes          TEXT,
	source         TEXT NOT NULL DEFAULT 'email',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the crm_records table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert appends a record and returns its id. Nil fields are stored as NULL.
func (s *Store) Insert(ctx context.Context, source string, r record.Record) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO crm_records (name, company, follow_up_date, notes, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		r.Name, r.Company, r.FollowUpDate, r.Notes, source,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert crm record: %w", err)
	}
	return id, nil
}

// ListAll returns every record in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]record.Stored, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, company, follow_up_date, notes, source, created_at
		FROM crm_records
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query crm records: %w", err)
	}
	defer rows.Close()

	var out []record.Stored
	for rows.Next() {
		var r record.Stored
		if err := rows.Scan(&r.ID, &r.Name, &r.Company, &r.FollowUpDate, &r.Notes, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan crm record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate crm records: %w", err)
	}
	return out, nil
}
