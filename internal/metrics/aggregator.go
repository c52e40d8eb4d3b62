// Package metrics accumulates per-turn counters for a session. Snapshots
// are point-in-time copies handed to the persistence collaborator; they are
// derived, recomputable and never mutated after creation.
package metrics

import "time"

// TurnSample is the slice of a processed turn the aggregator cares about.
type TurnSample struct {
	Role         string
	Intent       string
	Sentiment    string
	ProcessingMS int64
	AudioSeconds float64
}

// Aggregator keeps running counters for one session. It is not safe for
// concurrent use on its own; the session manager serialises access.
type Aggregator struct {
	sessionID string

	turns          int
	userTurns      int
	assistantTurns int
	processingMS   int64
	audioSeconds   float64
	sentiments     map[string]int
	intents        map[string]int
}

func NewAggregator(sessionID string) *Aggregator {
	return &Aggregator{
		sessionID:  sessionID,
		sentiments: make(map[string]int),
		intents:    make(map[string]int),
	}
}

// Record folds one turn into the running counters.
func (a *Aggregator) Record(s TurnSample) {
	a.turns++
	switch s.Role {
	case "user":
		a.userTurns++
	case "assistant":
		a.assistantTurns++
	}
	a.processingMS += s.ProcessingMS
	a.audioSeconds += s.AudioSeconds
	if s.Sentiment != "" {
		a.sentiments[s.Sentiment]++
	}
	if s.Intent != "" {
		a.intents[s.Intent]++
	}
}

// Snapshot is an immutable aggregate over a session's turns so far.
type Snapshot struct {
	SessionID         string         `json:"session_id"`
	Turns             int            `json:"turns"`
	UserTurns         int            `json:"user_turns"`
	AssistantTurns    int            `json:"assistant_turns"`
	TotalProcessingMS int64          `json:"total_processing_ms"`
	AvgProcessingMS   float64        `json:"avg_processing_ms"`
	AudioSeconds      float64        `json:"audio_seconds"`
	Sentiments        map[string]int `json:"sentiments"`
	Intents           map[string]int `json:"intents"`
	TakenAt           time.Time      `json:"taken_at"`
}

// Snapshot copies the current counters. The maps are cloned so later turns
// cannot reach back into an already-persisted snapshot.
func (a *Aggregator) Snapshot() Snapshot {
	avg := 0.0
	if a.turns > 0 {
		avg = float64(a.processingMS) / float64(a.turns)
	}
	return Snapshot{
		SessionID:         a.sessionID,
		Turns:             a.turns,
		UserTurns:         a.userTurns,
		AssistantTurns:    a.assistantTurns,
		TotalProcessingMS: a.processingMS,
		AvgProcessingMS:   avg,
		AudioSeconds:      a.audioSeconds,
		Sentiments:        cloneCounts(a.sentiments),
		Intents:           cloneCounts(a.intents),
		TakenAt:           time.Now().UTC(),
	}
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
