package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ranker decides which lead in a cluster survives a merge.
type Ranker struct {
	pool *pgxpool.Pool
}

func NewRanker(pool *pgxpool.Pool) *Ranker {
	return &Ranker{pool: pool}
}

type candidate struct {
	id        uuid.UUID
	score     int
	createdAt time.Time
}

// PickSurvivor keeps the highest-scored lead in the cluster, breaking ties
// by earliest creation. Everything else is returned as a loser.
func (r *Ranker) PickSurvivor(ctx context.Context, cluster []uuid.UUID) (uuid.UUID, []uuid.UUID, error) {
	if len(cluster) == 0 {
		return uuid.Nil, nil, fmt.Errorf("empty cluster")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, score, created_at FROM leads WHERE id = ANY($1)`,
		cluster,
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("query cluster leads: %w", err)
	}
	defer rows.Close()

	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.score, &c.createdAt); err != nil {
			return uuid.Nil, nil, fmt.Errorf("scan lead: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return uuid.Nil, nil, err
	}
	if len(candidates) == 0 {
		return uuid.Nil, nil, fmt.Errorf("no leads found for cluster")
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score || (c.score == best.score && c.createdAt.Before(best.createdAt)) {
			best = c
		}
	}

	var losers []uuid.UUID
	for _, c := range candidates {
		if c.id != best.id {
			losers = append(losers, c.id)
		}
	}
	return best.id, losers, nil
}
