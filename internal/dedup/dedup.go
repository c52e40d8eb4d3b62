// Package dedup finds and collapses duplicate lead records. The same
// prospect calling twice produces two rows; they share an email or a phone
// number, and only the best-scored, oldest record should survive.
package dedup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Result summarises one dedup run.
type Result struct {
	Execute    bool            `json:"execute"`
	Clusters   int             `json:"clusters"`
	TotalItems int             `json:"total_items"`
	Deduped    int             `json:"deduped"`
	Survivors  int             `json:"survivors"`
	Details    []ClusterDetail `json:"details,omitempty"`
}

// ClusterDetail describes one duplicate cluster.
type ClusterDetail struct {
	SurvivorID uuid.UUID   `json:"survivor_id"`
	DedupedIDs []uuid.UUID `json:"deduped_ids"`
	Size       int         `json:"size"`
}

// Deduplicator orchestrates the scan-rank-merge cycle.
type Deduplicator struct {
	pool    *pgxpool.Pool
	scanner *Scanner
	ranker  *Ranker
	logger  *slog.Logger
}

func New(pool *pgxpool.Pool, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		pool:    pool,
		scanner: NewScanner(pool),
		ranker:  NewRanker(pool),
		logger:  logger,
	}
}

// Run scans for duplicate leads and, when execute is set, repoints their
// conversations to the survivor and deletes the rest. A dry run only
// reports what would happen.
func (d *Deduplicator) Run(ctx context.Context, execute bool) (*Result, error) {
	d.logger.Info("starting lead deduplication", "execute", execute)

	pairs, err := d.scanner.FindDuplicatePairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}
	d.logger.Info("found duplicate pairs", "count", len(pairs))

	clusters := clusterPairs(pairs)

	result := &Result{Execute: execute, Clusters: len(clusters)}
	for _, cluster := range clusters {
		result.TotalItems += len(cluster)

		survivor, losers, err := d.ranker.PickSurvivor(ctx, cluster)
		if err != nil {
			return nil, fmt.Errorf("rank cluster: %w", err)
		}

		if execute {
			if err := d.merge(ctx, survivor, losers); err != nil {
				return nil, fmt.Errorf("merge cluster: %w", err)
			}
		}

		result.Survivors++
		result.Deduped += len(losers)
		result.Details = append(result.Details, ClusterDetail{
			SurvivorID: survivor,
			DedupedIDs: losers,
			Size:       len(cluster),
		})
	}

	d.logger.Info("deduplication complete",
		"clusters", result.Clusters,
		"deduped", result.Deduped,
		"execute", execute,
	)
	return result, nil
}

// merge repoints the losers' conversations to the survivor and deletes the
// loser rows, all in one transaction.
func (d *Deduplicator) merge(ctx context.Context, survivor uuid.UUID, losers []uuid.UUID) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, loser := range losers {
		if _, err := tx.Exec(ctx, `
			UPDATE conversations SET lead_id = $1, updated_at = now() WHERE lead_id = $2`,
			survivor, loser,
		); err != nil {
			return fmt.Errorf("repoint conversations: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM leads WHERE id = $1`, loser); err != nil {
			return fmt.Errorf("delete duplicate lead: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// clusterPairs groups duplicate pairs into clusters with a union-find.
func clusterPairs(pairs []Pair) [][]uuid.UUID {
	parent := make(map[uuid.UUID]uuid.UUID)

	var find func(uuid.UUID) uuid.UUID
	find = func(x uuid.UUID) uuid.UUID {
		if parent[x] == x {
			return x
		}
		root := find(parent[x])
		parent[x] = root
		return root
	}
	union := func(a, b uuid.UUID) {
		if _, ok := parent[a]; !ok {
			parent[a] = a
		}
		if _, ok := parent[b]; !ok {
			parent[b] = b
		}
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for _, p := range pairs {
		union(p.A, p.B)
	}

	groups := make(map[uuid.UUID][]uuid.UUID)
	for id := range parent {
		root := find(id)
		groups[root] = append(groups[root], id)
	}

	var clusters [][]uuid.UUID
	for _, members := range groups {
		if len(members) > 1 {
			clusters = append(clusters, members)
		}
	}
	return clusters
}
