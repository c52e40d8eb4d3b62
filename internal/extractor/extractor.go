package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aova-labs/aova/internal/gemini"
)

type Extractor struct {
	llm    *gemini.Client
	logger *slog.Logger
}

func New(llm *gemini.Client, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Analyze interprets one raw utterance: intent, sentiment, confidence, and
// any lead fields it states. Used for turns that arrive without an upstream
// analysis attached.
func (e *Extractor) Analyze(ctx context.Context, role, content string) (*Analysis, error) {
	prompt := fmt.Sprintf(analysisUserPrompt, role, content)

	e.logger.Debug("analyzing turn", "role", role, "content_len", len(content))

	raw, err := e.llm.Complete(ctx, systemPrompt, prompt, 1024)
	if err != nil {
		return nil, fmt.Errorf("llm analysis: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		e.logger.Error("failed to parse analysis response",
			"error", err,
			"raw", raw,
		)
		return nil, fmt.Errorf("parse analysis: %w", err)
	}

	e.logger.Info("turn analyzed",
		"intent", a.Intent,
		"sentiment", a.Sentiment,
		"confidence", a.Confidence,
		"has_fields", len(a.Fields) > 0,
	)

	return &a, nil
}
