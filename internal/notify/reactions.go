package notify

import (
	"encoding/json"
	"fmt"
)

// ReactionEvent is the structure received from the slack-forwarder via NATS.
type ReactionEvent struct {
	Reaction  string `json:"reaction"`
	UserID    string `json:"user_id"`
	Channel   string `json:"channel"`
	MessageTS string `json:"message_ts"`
}

// Verdict maps a Slack reaction on a lead alert to a lifecycle decision.
type Verdict string

const (
	VerdictAccepted  Verdict = "accepted"  // a rep is taking the lead
	VerdictDiscarded Verdict = "discarded" // not worth pursuing
	VerdictUnknown   Verdict = "unknown"
)

// ParseReaction converts a Slack reaction emoji name to a verdict.
func ParseReaction(reaction string) Verdict {
	switch reaction {
	case "+1", "thumbsup":
		return VerdictAccepted
	case "-1", "thumbsdown":
		return VerdictDiscarded
	default:
		return VerdictUnknown
	}
}

// ParseReactionEvent parses the slack-forwarder's NATS payload, which wraps
// the interesting parts in a metadata map.
func ParseReactionEvent(data []byte) (*ReactionEvent, error) {
	var wrapper struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse reaction wrapper: %w", err)
	}

	evt := &ReactionEvent{
		Reaction:  wrapper.Metadata["text"],
		UserID:    wrapper.Metadata["user_id"],
		Channel:   wrapper.Metadata["channel_id"],
		MessageTS: wrapper.Metadata["message_ts"],
	}

	// Reaction names sometimes arrive wrapped in colons.
	if len(evt.Reaction) > 2 && evt.Reaction[0] == ':' && evt.Reaction[len(evt.Reaction)-1] == ':' {
		evt.Reaction = evt.Reaction[1 : len(evt.Reaction)-1]
	}

	return evt, nil
}
