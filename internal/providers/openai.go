package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/quizforge/quizforge_service/internal/telemetry"
)

// fixed sampling config, not tunable per request
const (
	genTemperature = 0.7
	genMaxTokens   = 512
)

// dryRunPayload is what a well-behaved model should emit, used when DryRun
// skips the API call.
const dryRunPayload = `{"question":"Which planet is known as the Red Planet?","options":["Venus","Mars","Jupiter","Saturn"],"correctAnswer":"Mars","explanation":"Mars appears red because of iron oxide on its surface."}`

type OpenAI struct {
	Key, Model string
	DryRun     bool
	Limiter    *rate.Limiter
}

func NewOpenAI(key, model string, rps, burst int, dryRun bool) *OpenAI {
	if rps <= 0 {
		rps = 2
	}
	if burst <= 0 {
		burst = 2
	}
	return &OpenAI{
		Key:     key,
		Model:   model,
		DryRun:  dryRun,
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *OpenAI) Name() SourceName { return SourceOpenAI }

func (c *OpenAI) Complete(ctx context.Context, prompt string) (Completion, error) {
	// DRY_RUN mode: skip API call
	if c.DryRun {
		log := telemetry.L().With().Str("provider", string(c.Name())).Logger()
		log.Info().Msg("openai_dry_run_enabled")
		return Completion{Text: dryRunPayload, LatencyMs: 1}, nil
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Completion{}, err
		}
	}

	body := map[string]any{
		"model":             c.Model,
		"input":             prompt,
		"temperature":       genTemperature,
		"max_output_tokens": genMaxTokens,
	}

	b, _ := json.Marshal(body)
	log := telemetry.L().With().Str("provider", string(c.Name())).Int("body_len", len(b)).Logger()
	// redacted log API key
	b = bytes.ReplaceAll(b, []byte(c.Key), []byte("REDACTED"))

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/responses", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	t0 := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("openai_request_failed")
		return Completion{}, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	log.Debug().Int("body_len", len(raw)).Msg("openai_response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("status", resp.Status).
			RawJSON("body", raw).
			Msg("openai_http_error")
		return Completion{}, errors.New("openai http " + resp.Status + ": " + string(raw))
	}

	// parse: responses API; fallback to chat completions
	text := extractOpenAIText(raw)
	if strings.TrimSpace(text) == "" {
		return Completion{}, errors.New("openai: empty text")
	}

	return Completion{
		Text:      text,
		LatencyMs: int(time.Since(t0) / time.Millisecond),
	}, nil
}

// get text from Responses API or fallback Chat Completions.
func extractOpenAIText(raw []byte) string {
	// responses API: https://platform.openai.com/docs/api-reference/responses
	var r1 struct {
		OutputText string `json:"output_text"`
	}
	if json.Unmarshal(raw, &r1) == nil && strings.TrimSpace(r1.OutputText) != "" {
		return r1.OutputText
	}

	// responses API: output[].content[].text
	var r2 struct {
		Output []struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if json.Unmarshal(raw, &r2) == nil && len(r2.Output) > 0 {
		for _, c := range r2.Output[0].Content {
			if strings.TrimSpace(c.Text) != "" {
				return c.Text
			}
		}
	}

	// fallback chat completions format: choices[0].message.content
	var r3 struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if json.Unmarshal(raw, &r3) == nil && len(r3.Choices) > 0 {
		return r3.Choices[0].Message.Content
	}

	return ""
}
