package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aova-labs/aova/internal/events"
	"github.com/aova-labs/aova/internal/extractor"
	"github.com/aova-labs/aova/internal/lead"
	"github.com/aova-labs/aova/internal/metrics"
	"github.com/aova-labs/aova/internal/phase"
	"github.com/aova-labs/aova/internal/scoring"
	"github.com/aova-labs/aova/internal/session"
	"github.com/aova-labs/aova/internal/store"
)

// Turn is the per-utterance input handed to the core, already transcribed
// and (usually) already analyzed by the upstream collaborator.
type Turn struct {
	SessionID            string          `json:"session_id"`
	Role                 string          `json:"role"` // user | assistant
	Content              string          `json:"content"`
	AudioDurationSeconds float64         `json:"audio_duration_seconds,omitempty"`
	Intent               string          `json:"intent,omitempty"`
	Sentiment            string          `json:"sentiment,omitempty"`
	Confidence           float64         `json:"confidence,omitempty"`
	ExtractedFields      json.RawMessage `json:"extracted_fields,omitempty"`
	ProcessingMS         int64           `json:"processing_ms,omitempty"`
}

// Result is what a processed turn hands back: the updated lead record, the
// updated phase, and a fresh metrics snapshot.
type Result struct {
	Lead    lead.Lead        `json:"lead"`
	Phase   phase.Phase      `json:"phase"`
	Metrics metrics.Snapshot `json:"metrics"`
}

// Persister is the capability-gated persistence collaborator. store.Postgres
// implements it; store.Nop is the offline no-op.
type Persister interface {
	UpsertLead(ctx context.Context, l *lead.Lead) error
	UpdateLeadStatus(ctx context.Context, id uuid.UUID, status lead.Status) error
	UpsertConversation(ctx context.Context, rec store.ConversationRecord) error
	CloseConversation(ctx context.Context, sessionID string, endedAt time.Time, finalPhase, reason string) error
	InsertMessage(ctx context.Context, rec store.MessageRecord) error
	InsertMetricsSnapshot(ctx context.Context, snap metrics.Snapshot) error
	LogEvent(ctx context.Context, ev store.Event) error
}

// Analyzer interprets raw turns that arrive without analysis attached.
type Analyzer interface {
	Analyze(ctx context.Context, role, content string) (*extractor.Analysis, error)
}

// Publisher pushes events onto the bus.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier posts hot-lead alerts for human review.
type Notifier interface {
	PostLeadAlert(ctx context.Context, l lead.Lead, sessionID string) (string, error)
}

// Processor orchestrates the turn pipeline: phase advance, lead merge,
// re-score, metrics, persistence, events. One instance serves all sessions;
// per-session serialisation is the session manager's job.
type Processor struct {
	sessions *session.Manager
	store    Persister
	analyzer Analyzer
	events   Publisher
	notifier Notifier
	logger   *slog.Logger

	mu            sync.Mutex
	pendingAlerts map[string]uuid.UUID // slack message TS -> lead id
}

func New(st Persister, sessions *session.Manager, logger *slog.Logger) *Processor {
	return &Processor{
		sessions:      sessions,
		store:         st,
		logger:        logger,
		pendingAlerts: make(map[string]uuid.UUID),
	}
}

// WithAnalyzer attaches the LLM analysis fallback for raw turns.
func (p *Processor) WithAnalyzer(a Analyzer) *Processor { p.analyzer = a; return p }

// WithPublisher attaches the event bus.
func (p *Processor) WithPublisher(pub Publisher) *Processor { p.events = pub; return p }

// WithNotifier attaches the hot-lead alert channel.
func (p *Processor) WithNotifier(n Notifier) *Processor { p.notifier = n; return p }

func (t Turn) validate() error {
	if strings.TrimSpace(t.SessionID) == "" {
		return fmt.Errorf("turn has no session id: %w", lead.ErrValidation)
	}
	if t.Role != "user" && t.Role != "assistant" {
		return fmt.Errorf("turn role %q: %w", t.Role, lead.ErrValidation)
	}
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("turn has empty content: %w", lead.ErrValidation)
	}
	return nil
}

// ProcessTurn runs one turn through the pipeline. Validation failures on
// the extraction payload do not stop the turn: the lead is simply left
// unchanged and the error is returned alongside the result. Persistence
// failures are logged and never interrupt the conversation.
func (p *Processor) ProcessTurn(ctx context.Context, t Turn) (*Result, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}

	var res Result
	var fieldErr error

	err := p.sessions.Do(t.SessionID, func(sc *session.Context) error {
		now := time.Now().UTC()

		// Fill in analysis for raw user turns when an analyzer is wired.
		if t.Role == "user" && t.Intent == "" && len(t.ExtractedFields) == 0 && p.analyzer != nil {
			a, err := p.analyzer.Analyze(ctx, t.Role, t.Content)
			if err != nil {
				// Degraded mode: keep the conversation moving on raw content.
				p.logger.Warn("turn analysis unavailable", "session_id", t.SessionID, "error", err)
			} else {
				t.Intent = a.Intent
				t.Sentiment = a.Sentiment
				t.Confidence = a.Confidence
				t.ExtractedFields = a.Fields
			}
		}

		// Phase signals come from the prospect's side only.
		if t.Role == "user" {
			sc.Phase = phase.Advance(sc.Phase, t.Intent, t.Content)
		}

		if len(t.ExtractedFields) > 0 {
			fields, err := lead.ParseFields(t.ExtractedFields)
			if err != nil {
				fieldErr = err
				p.logger.Warn("rejected extraction payload", "session_id", t.SessionID, "error", err)
				p.logEvent(ctx, store.Event{
					Type: "extraction_rejected", Category: "pipeline", Severity: "warning",
					SessionID: t.SessionID, Metadata: map[string]any{"error": err.Error()},
				})
			} else if !fields.Empty() {
				merged := lead.Merge(sc.Lead, fields)
				if merged.ID == uuid.Nil && merged.Identified() {
					merged.ID = uuid.New()
					merged.Status = lead.StatusNew
					merged.CreatedAt = now
				}
				merged.Raw = t.ExtractedFields
				sc.Lead = merged
			}
		}

		if sc.Lead.Identified() {
			p.rescore(ctx, sc)
		}

		sc.Metrics.Record(metrics.TurnSample{
			Role:         t.Role,
			Intent:       t.Intent,
			Sentiment:    t.Sentiment,
			ProcessingMS: t.ProcessingMS,
			AudioSeconds: t.AudioDurationSeconds,
		})
		sc.Append(t.Role, t.Content, now)

		snap := sc.Metrics.Snapshot()
		p.persistTurn(ctx, sc, t, snap)

		res = Result{Lead: sc.Lead, Phase: sc.Phase, Metrics: snap}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, fieldErr
}

// rescore recomputes the derived outputs and handles the first crossing
// into the high category: auto-qualification, bus event, review alert.
func (p *Processor) rescore(ctx context.Context, sc *session.Context) {
	r := scoring.Score(sc.Lead)
	sc.Lead.Score = r.Score
	sc.Lead.Category = r.Category
	sc.Lead.Grade = r.Grade
	sc.Lead.Priority = r.Priority

	if r.Category != "high" || sc.Lead.Status != lead.StatusNew {
		return
	}
	if err := sc.Lead.MarkQualified(); err != nil {
		// High score but no contact channel yet — stays new until one lands.
		p.logger.Debug("lead not qualifiable yet", "lead_id", sc.Lead.ID, "error", err)
		return
	}

	p.logger.Info("lead qualified",
		"lead_id", sc.Lead.ID,
		"session_id", sc.ID,
		"score", r.Score,
		"grade", r.Grade,
	)

	if p.events != nil {
		if err := p.events.Publish(events.SubjectLeadQualified, map[string]any{
			"lead_id":    sc.Lead.ID.String(),
			"session_id": sc.ID,
			"score":      r.Score,
			"category":   r.Category,
			"company":    sc.Lead.Company,
		}); err != nil {
			p.logger.Error("failed to publish lead qualified", "error", err)
		}
	}

	if p.notifier != nil {
		ts, err := p.notifier.PostLeadAlert(ctx, sc.Lead, sc.ID)
		if err != nil {
			p.logger.Error("lead alert failed", "lead_id", sc.Lead.ID, "error", err)
			return
		}
		p.mu.Lock()
		p.pendingAlerts[ts] = sc.Lead.ID
		p.mu.Unlock()
	}
}

// persistTurn hands the turn's artifacts to the persistence collaborator.
// Every write failure is surfaced in the log and swallowed: the
// conversation must survive a dead database.
func (p *Processor) persistTurn(ctx context.Context, sc *session.Context, t Turn, snap metrics.Snapshot) {
	if err := p.store.InsertMessage(ctx, store.MessageRecord{
		SessionID:       sc.ID,
		Role:            t.Role,
		Content:         t.Content,
		AudioSeconds:    t.AudioDurationSeconds,
		Intent:          t.Intent,
		Sentiment:       t.Sentiment,
		Confidence:      t.Confidence,
		ExtractedFields: t.ExtractedFields,
		ProcessingMS:    t.ProcessingMS,
		At:              sc.LastActivity,
	}); err != nil {
		p.logger.Error("persist message failed", "session_id", sc.ID, "error", err)
	}

	if sc.Lead.Identified() {
		if err := p.store.UpsertLead(ctx, &sc.Lead); err != nil {
			p.logger.Error("persist lead failed", "lead_id", sc.Lead.ID, "error", err)
		}
	}

	if err := p.store.UpsertConversation(ctx, p.conversationRecord(sc)); err != nil {
		p.logger.Error("persist conversation failed", "session_id", sc.ID, "error", err)
	}

	if err := p.store.InsertMetricsSnapshot(ctx, snap); err != nil {
		p.logger.Error("persist metrics failed", "session_id", sc.ID, "error", err)
	}
}

func (p *Processor) conversationRecord(sc *session.Context) store.ConversationRecord {
	raw, err := json.Marshal(struct {
		SessionID    string            `json:"session_id"`
		Lead         lead.Lead         `json:"lead"`
		Phase        phase.Phase       `json:"phase"`
		StartedAt    time.Time         `json:"started_at"`
		LastActivity time.Time         `json:"last_activity"`
		Turns        int               `json:"turns"`
		Messages     []session.Message `json:"messages"`
	}{sc.ID, sc.Lead, sc.Phase, sc.StartedAt, sc.LastActivity, sc.Turns, sc.Messages})
	if err != nil {
		p.logger.Error("marshal conversation context failed", "session_id", sc.ID, "error", err)
	}

	return store.ConversationRecord{
		SessionID:    sc.ID,
		LeadID:       sc.Lead.ID,
		StartTime:    sc.StartedAt,
		EndTime:      sc.ClosedAt,
		Phase:        string(sc.Phase),
		CloseReason:  sc.CloseReason,
		TurnCount:    sc.Turns,
		MessageCount: len(sc.Messages),
		Raw:          raw,
	}
}

// Close finalises a session. Safe to call any number of times; only the
// first call does anything. Returns whether this call closed it.
func (p *Processor) Close(ctx context.Context, sessionID, reason string) bool {
	sc, closed := p.sessions.Close(sessionID, reason)
	if sc == nil || !closed {
		return false
	}

	p.logger.Info("session closed",
		"session_id", sessionID,
		"reason", reason,
		"final_phase", string(sc.Phase),
		"turns", sc.Turns,
	)

	if err := p.store.CloseConversation(ctx, sessionID, *sc.ClosedAt, string(sc.Phase), reason); err != nil {
		p.logger.Error("persist session close failed", "session_id", sessionID, "error", err)
	}
	if err := p.store.InsertMetricsSnapshot(ctx, sc.Metrics.Snapshot()); err != nil {
		p.logger.Error("persist final metrics failed", "session_id", sessionID, "error", err)
	}
	p.logEvent(ctx, store.Event{
		Type: "session_closed", Category: "lifecycle", Severity: "info",
		SessionID: sessionID, Metadata: map[string]any{"reason": reason, "final_phase": string(sc.Phase)},
	})

	if p.events != nil {
		if err := p.events.Publish(events.SubjectSessionClosed, map[string]any{
			"session_id":  sessionID,
			"reason":      reason,
			"final_phase": string(sc.Phase),
			"turns":       sc.Turns,
		}); err != nil {
			p.logger.Error("failed to publish session closed", "error", err)
		}
	}
	return true
}

// Session exposes a session's current context for read-only callers.
func (p *Processor) Session(sessionID string) (*session.Context, bool) {
	return p.sessions.Peek(sessionID)
}

func (p *Processor) logEvent(ctx context.Context, ev store.Event) {
	if err := p.store.LogEvent(ctx, ev); err != nil {
		p.logger.Error("persist system event failed", "event_type", ev.Type, "error", err)
	}
}

// IsValidation reports whether err is a recoverable validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, lead.ErrValidation)
}
