package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/quizforge/quizforge_service/internal/telemetry"
)

type Anthropic struct {
	Key, Model string
	DryRun     bool
}

func (c *Anthropic) Name() SourceName { return SourceClaude }

func (c *Anthropic) Complete(ctx context.Context, prompt string) (Completion, error) {
	// DRY_RUN mode: skip API call
	if c.DryRun {
		log := telemetry.L().With().Str("provider", string(c.Name())).Logger()
		log.Info().Msg("anthropic_dry_run_enabled")
		return Completion{Text: dryRunPayload, LatencyMs: 1}, nil
	}

	body := map[string]any{
		"model":       c.Model,
		"max_tokens":  genMaxTokens,
		"temperature": genTemperature,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(b))
	req.Header.Set("x-api-key", c.Key)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Completion{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Completion{}, errors.New("anthropic http " + resp.Status + ": " + string(raw))
	}
	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	_ = json.Unmarshal(raw, &out)
	if len(out.Content) == 0 {
		return Completion{}, errors.New("anthropic empty content")
	}

	return Completion{
		Text:      out.Content[0].Text,
		LatencyMs: int(time.Since(t0) / time.Millisecond),
	}, nil
}
