package providers

import (
	"context"
)

// Completion is the raw result of one generation call: the first message's
// text content, untouched. Parsing into a question happens downstream.
type Completion struct {
	Text      string `json:"text"`
	LatencyMs int    `json:"latency_ms,omitempty"`
}

type SourceName string

const (
	SourceOpenAI SourceName = "OPENAI"
	SourceClaude SourceName = "CLAUDE"
	SourceGemini SourceName = "GEMINI"
)

type Client interface {
	Name() SourceName
	Complete(ctx context.Context, prompt string) (Completion, error)
}
