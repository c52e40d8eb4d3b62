package notify

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseReaction(t *testing.T) {
	tests := []struct {
		reaction string
		want     Verdict
	}{
		{"+1", VerdictAccepted},
		{"thumbsup", VerdictAccepted},
		{"-1", VerdictDiscarded},
		{"thumbsdown", VerdictDiscarded},
		{"eyes", VerdictUnknown},
		{"", VerdictUnknown},
	}

	for _, tt := range tests {
		if got := ParseReaction(tt.reaction); got != tt.want {
			t.Errorf("ParseReaction(%q) = %q, want %q", tt.reaction, got, tt.want)
		}
	}
}

func TestParseReactionEvent(t *testing.T) {
	payload := []byte(`{
		"metadata": {
			"text": ":+1:",
			"user_id": "U123",
			"channel_id": "C456",
			"message_ts": "1700000000.123"
		}
	}`)

	evt, err := ParseReactionEvent(payload)
	if err != nil {
		t.Fatalf("ParseReactionEvent: %v", err)
	}
	if evt.Reaction != "+1" {
		t.Errorf("Reaction = %q, want colons stripped", evt.Reaction)
	}
	if evt.UserID != "U123" || evt.Channel != "C456" || evt.MessageTS != "1700000000.123" {
		t.Errorf("evt = %+v", evt)
	}
}

func TestParseReactionEvent_BareName(t *testing.T) {
	evt, err := ParseReactionEvent([]byte(`{"metadata":{"text":"thumbsdown","message_ts":"1.2"}}`))
	if err != nil {
		t.Fatalf("ParseReactionEvent: %v", err)
	}
	if evt.Reaction != "thumbsdown" {
		t.Errorf("Reaction = %q", evt.Reaction)
	}
}

func TestParseReactionEvent_BadJSON(t *testing.T) {
	if _, err := ParseReactionEvent([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
