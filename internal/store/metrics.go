package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/aova-labs/aova/internal/metrics"
)

// InsertMetricsSnapshot appends one point-in-time aggregate. Snapshots are
// derived data; nothing ever updates them.
func (s *Postgres) InsertMetricsSnapshot(ctx context.Context, snap metrics.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO interaction_metrics (
			id, session_id, total_turns, avg_processing_ms, metrics_data, taken_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,now())`,
		uuid.New(), snap.SessionID, snap.Turns, snap.AvgProcessingMS, payload, snap.TakenAt,
	)
	if err != nil {
		return fmt.Errorf("insert metrics snapshot: %w", err)
	}
	return nil
}
