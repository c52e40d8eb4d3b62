// Package session holds the per-conversation context object and the manager
// that serialises turn processing per session. There is deliberately no
// process-wide "current session": every operation receives its context
// explicitly.
package session

import (
	"time"

	"github.com/aova-labs/aova/internal/lead"
	"github.com/aova-labs/aova/internal/metrics"
	"github.com/aova-labs/aova/internal/phase"
)

// Window bounds for the retained message history: the opening messages are
// kept for continuity, the rest is a sliding tail.
const (
	keepOpening = 3
	keepRecent  = 20
)

// Message is one retained utterance inside the context window.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Context is the full mutable state of one conversation. All access goes
// through Manager.Do, which guarantees a single writer per session.
type Context struct {
	ID           string
	Lead         lead.Lead
	Phase        phase.Phase
	StartedAt    time.Time
	LastActivity time.Time
	Turns        int
	Messages     []Message
	Metrics      *metrics.Aggregator

	ClosedAt    *time.Time
	CloseReason string
}

func newContext(id string, now time.Time) *Context {
	return &Context{
		ID:           id,
		Phase:        phase.Introduction,
		StartedAt:    now,
		LastActivity: now,
		Metrics:      metrics.NewAggregator(id),
	}
}

// Closed reports whether the session has been finalised.
func (c *Context) Closed() bool { return c.ClosedAt != nil }

// Append records an utterance and trims the window, preserving the opening
// messages plus the most recent tail.
func (c *Context) Append(role, content string, at time.Time) {
	c.Messages = append(c.Messages, Message{Role: role, Content: content, At: at})
	c.Turns++
	c.LastActivity = at

	if len(c.Messages) > keepOpening+keepRecent*2 {
		opening := make([]Message, keepOpening)
		copy(opening, c.Messages[:keepOpening])
		tail := c.Messages[len(c.Messages)-keepRecent:]
		c.Messages = append(opening, tail...)
	}
}
