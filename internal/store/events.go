package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event is a write-once operational/audit record.
type Event struct {
	Type      string
	Category  string
	Severity  string // debug | info | warning | error | critical
	SessionID string
	Metadata  map[string]any
}

var validSeverities = map[string]bool{
	"debug": true, "info": true, "warning": true, "error": true, "critical": true,
}

// LogEvent appends a system event. An unknown severity is coerced to info
// rather than rejected.
func (s *Postgres) LogEvent(ctx context.Context, ev Event) error {
	if !validSeverities[ev.Severity] {
		ev.Severity = "info"
	}
	var metadata []byte
	if ev.Metadata != nil {
		var err error
		metadata, err = json.Marshal(ev.Metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO system_events (id, event_type, category, severity, session_id, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())`,
		uuid.New(), ev.Type, ev.Category, ev.Severity, ev.SessionID, metadata,
	)
	if err != nil {
		return fmt.Errorf("insert system event: %w", err)
	}
	return nil
}
