package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConversationRecord is the stored shape of a session. Raw holds the full
// serialized context for replay and audit.
type ConversationRecord struct {
	SessionID    string
	LeadID       uuid.UUID
	StartTime    time.Time
	EndTime      *time.Time
	Phase        string
	CloseReason  string
	TurnCount    int
	MessageCount int
	Raw          json.RawMessage
}

// UpsertConversation writes the session row, keyed by the unique session
// identifier. Called after every processed turn, so it overwrites freely.
func (s *Postgres) UpsertConversation(ctx context.Context, rec ConversationRecord) error {
	var leadID any
	if rec.LeadID != uuid.Nil {
		leadID = rec.LeadID
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversations (
			id, session_id, lead_id, start_time, end_time,
			final_phase, close_reason, total_turns, messages_count,
			conversation_data, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
		ON CONFLICT (session_id) DO UPDATE SET
			lead_id = EXCLUDED.lead_id,
			end_time = EXCLUDED.end_time,
			final_phase = EXCLUDED.final_phase,
			close_reason = EXCLUDED.close_reason,
			total_turns = EXCLUDED.total_turns,
			messages_count = EXCLUDED.messages_count,
			conversation_data = EXCLUDED.conversation_data,
			updated_at = now()`,
		uuid.New(), rec.SessionID, leadID, rec.StartTime, rec.EndTime,
		rec.Phase, rec.CloseReason, rec.TurnCount, rec.MessageCount, rec.Raw,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

// CloseConversation finalises the session row. Once end_time is set the row
// is never touched again.
func (s *Postgres) CloseConversation(ctx context.Context, sessionID string, endedAt time.Time, finalPhase, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE conversations
		SET end_time = $1, final_phase = $2, close_reason = $3, updated_at = now()
		WHERE session_id = $4 AND end_time IS NULL`,
		endedAt, finalPhase, reason, sessionID,
	)
	if err != nil {
		return fmt.Errorf("close conversation: %w", err)
	}
	return nil
}
