package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the persistence collaborator backed by the Supabase/Postgres
// schema: leads, conversations, messages, interaction_metrics and
// system_events. Access policy (row-level security) lives in the database,
// not here.
type Postgres struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

// Pool exposes the underlying pool for maintenance jobs (dedup) that run
// their own transactions.
func (s *Postgres) Pool() *pgxpool.Pool {
	return s.pool
}
