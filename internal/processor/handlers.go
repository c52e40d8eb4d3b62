package processor

import (
	"context"
	"encoding/json"

	"github.com/aova-labs/aova/internal/lead"
	"github.com/aova-labs/aova/internal/notify"
)

// HandleTurnEvent is the NATS handler for transcribed turns from the voice
// front end.
func (p *Processor) HandleTurnEvent(subject string, data []byte) {
	ctx := context.Background()

	var t Turn
	if err := json.Unmarshal(data, &t); err != nil {
		p.logger.Error("failed to parse turn event", "subject", subject, "error", err)
		return
	}

	if _, err := p.ProcessTurn(ctx, t); err != nil {
		if IsValidation(err) {
			p.logger.Warn("dropped invalid turn", "session_id", t.SessionID, "error", err)
		} else {
			p.logger.Error("turn processing failed", "session_id", t.SessionID, "error", err)
		}
	}
}

// HandleCloseEvent finalises a session on an external close signal (idle
// expiry, hangup, operator action).
func (p *Processor) HandleCloseEvent(subject string, data []byte) {
	var evt struct {
		SessionID string `json:"session_id"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse close event", "subject", subject, "error", err)
		return
	}
	if evt.Reason == "" {
		evt.Reason = "external"
	}
	p.Close(context.Background(), evt.SessionID, evt.Reason)
}

// HandleReaction processes Slack reactions on lead alerts: a thumbs-up
// means a rep took the lead (contacted), a thumbs-down discards it.
func (p *Processor) HandleReaction(subject string, data []byte) {
	ctx := context.Background()

	evt, err := notify.ParseReactionEvent(data)
	if err != nil {
		p.logger.Error("failed to parse reaction", "error", err)
		return
	}

	verdict := notify.ParseReaction(evt.Reaction)
	if verdict == notify.VerdictUnknown {
		return // not a review reaction
	}

	p.mu.Lock()
	leadID, ok := p.pendingAlerts[evt.MessageTS]
	if ok {
		delete(p.pendingAlerts, evt.MessageTS)
	}
	p.mu.Unlock()
	if !ok {
		return // not an alert we posted
	}

	status := lead.StatusContacted
	if verdict == notify.VerdictDiscarded {
		status = lead.StatusDisqualified
	}

	p.logger.Info("processing lead alert reaction",
		"reaction", evt.Reaction,
		"verdict", string(verdict),
		"lead_id", leadID,
	)

	if err := p.store.UpdateLeadStatus(ctx, leadID, status); err != nil {
		p.logger.Error("failed to update lead status", "lead_id", leadID, "error", err)
	}
}
