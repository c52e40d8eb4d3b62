package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/aova-labs/aova/internal/lead"
	"github.com/aova-labs/aova/internal/metrics"
)

// Nop is the offline persistence collaborator: every write succeeds and
// goes nowhere. Conversations run entirely in memory when the database is
// not configured, with no conditional checks scattered through the
// pipeline.
type Nop struct{}

func (Nop) UpsertLead(context.Context, *lead.Lead) error                          { return nil }
func (Nop) UpdateLeadStatus(context.Context, uuid.UUID, lead.Status) error        { return nil }
func (Nop) UpsertConversation(context.Context, ConversationRecord) error          { return nil }
func (Nop) CloseConversation(context.Context, string, time.Time, string, string) error {
	return nil
}
func (Nop) InsertMessage(context.Context, MessageRecord) error            { return nil }
func (Nop) InsertMetricsSnapshot(context.Context, metrics.Snapshot) error { return nil }
func (Nop) LogEvent(context.Context, Event) error                         { return nil }
