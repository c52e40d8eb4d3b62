// Package backfill replays archived conversation exports through the
// processing pipeline, so historic sessions end up scored and persisted
// like live ones.
package backfill

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aova-labs/aova/internal/processor"
)

// ExportMessage is one message inside a session export file.
type ExportMessage struct {
	ID          string          `json:"id"`
	Role        string          `json:"role"`
	Content     string          `json:"content"`
	MessageType string          `json:"message_type"`
	Timestamp   float64         `json:"timestamp"`
	Metadata    json.RawMessage `json:"metadata"`
}

// messageMetadata is the subset of export metadata we replay. Exports
// written before analysis was recorded carry none of it.
type messageMetadata struct {
	Intent          string          `json:"intent"`
	Sentiment       string          `json:"sentiment"`
	Confidence      float64         `json:"confidence"`
	ExtractedInfo   json.RawMessage `json:"extracted_info"`
	ProcessingMS    int64           `json:"processing_time_ms"`
	AudioDurationMS int64           `json:"audio_duration_ms"`
}

// SessionExport is the on-disk shape of an exported conversation.
type SessionExport struct {
	SessionID         string          `json:"session_id"`
	LeadID            string          `json:"lead_id"`
	StartTime         float64         `json:"start_time"`
	LastActivity      float64         `json:"last_activity"`
	CurrentPhase      string          `json:"current_phase"`
	Messages          []ExportMessage `json:"messages"`
	TotalInteractions int             `json:"total_interactions"`
}

// ParseExportFile reads one session export and converts its messages into
// turns ready for replay.
func ParseExportFile(path string) (*SessionExport, []processor.Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read export: %w", err)
	}

	var export SessionExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, nil, fmt.Errorf("parse export: %w", err)
	}
	if export.SessionID == "" {
		return nil, nil, fmt.Errorf("export missing session_id")
	}

	var turns []processor.Turn
	for _, m := range export.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			continue
		}
		if m.Content == "" {
			continue
		}

		t := processor.Turn{
			SessionID: export.SessionID,
			Role:      m.Role,
			Content:   m.Content,
		}

		if len(m.Metadata) > 0 {
			var meta messageMetadata
			if err := json.Unmarshal(m.Metadata, &meta); err == nil {
				t.Intent = meta.Intent
				t.Sentiment = meta.Sentiment
				t.Confidence = meta.Confidence
				t.ExtractedFields = meta.ExtractedInfo
				t.ProcessingMS = meta.ProcessingMS
				t.AudioDurationSeconds = float64(meta.AudioDurationMS) / 1000
			}
		}

		turns = append(turns, t)
	}

	return &export, turns, nil
}

// ExportDate returns the session start date for summary grouping.
func (e *SessionExport) ExportDate() string {
	if e.StartTime == 0 {
		return ""
	}
	sec := int64(e.StartTime)
	nsec := int64((e.StartTime - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC().Format("2006-01-02")
}
