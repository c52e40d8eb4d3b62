package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aova-labs/aova/internal/lead"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

// Poster pushes hot-lead alerts into the sales channel. A reaction on the
// alert feeds back into the lead's lifecycle status.
type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// SetTestTransport redirects API calls to a test server.
func (p *Poster) SetTestTransport(url string) {
	p.apiURL = url
}

// PostLeadAlert posts a qualified-lead alert and returns the message
// timestamp (ts), which identifies later reactions on it.
func (p *Poster) PostLeadAlert(ctx context.Context, l lead.Lead, sessionID string) (string, error) {
	text := formatLeadAlert(l, sessionID)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": "React: :+1: take it | :-1: discard",
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted lead alert", "ts", slackResp.TS, "lead_id", l.ID, "score", l.Score)
	return slackResp.TS, nil
}

func formatLeadAlert(l lead.Lead, sessionID string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Hot lead* score %d/100 (grade %s, priority %s)\n", l.Score, l.Grade, l.Priority)

	who := l.Name
	if l.Title != "" {
		who += ", " + l.Title
	}
	if l.Company != "" {
		who += " @ " + l.Company
	}
	if who != "" {
		fmt.Fprintf(&b, "%s\n", who)
	}

	if l.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s", l.Budget)
		if l.Timeline != "" {
			fmt.Fprintf(&b, " | Timeline: %s", l.Timeline)
		}
		b.WriteString("\n")
	}
	if l.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", l.Email)
	}
	if l.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", l.Phone)
	}
	fmt.Fprintf(&b, "Session: %s", sessionID)
	return b.String()
}
