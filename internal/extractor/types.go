package extractor

import "encoding/json"

// Analysis is the structured interpretation of one raw turn: the inferred
// intent, the speaker's sentiment, how confident the model is, and any lead
// fields mentioned. Fields stays raw JSON here; lead.ParseFields validates
// it against the enumerated schema downstream, exactly as it does for
// payloads arriving pre-analyzed from an external collaborator.
type Analysis struct {
	Intent     string          `json:"intent"`
	Sentiment  string          `json:"sentiment"`
	Confidence float64         `json:"confidence"`
	Fields     json.RawMessage `json:"fields,omitempty"`
}
