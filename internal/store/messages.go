package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageRecord is one immutable utterance row. Messages are append-only
// and ordered by created_at within a session.
type MessageRecord struct {
	SessionID       string
	Role            string
	Content         string
	AudioSeconds    float64
	Intent          string
	Sentiment       string
	Confidence      float64
	ExtractedFields json.RawMessage
	ProcessingMS    int64
	At              time.Time
}

func (s *Postgres) InsertMessage(ctx context.Context, rec MessageRecord) error {
	at := rec.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (
			id, session_id, role, content, audio_seconds,
			intent, sentiment, confidence_score, extracted_info,
			processing_time_ms, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		uuid.New(), rec.SessionID, rec.Role, rec.Content, rec.AudioSeconds,
		rec.Intent, rec.Sentiment, rec.Confidence, rec.ExtractedFields,
		rec.ProcessingMS, at,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}
