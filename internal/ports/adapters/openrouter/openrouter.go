// Package openrouter implements the external ranking capability on top of
// the OpenRouter chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/viralcut/internal/types"
)

type Adapter struct {
	key     string
	model   string
	baseURL string
	client  *http.Client
}

const (
	requestTimeout = 90 * time.Second

	// maxCandidateChars bounds each candidate's text in the prompt.
	maxCandidateChars = 500
)

func New(apiKey, model, baseURL string) *Adapter {
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	baseURL = normalizeBaseURL(baseURL)
	return &Adapter{key: apiKey, model: model, baseURL: baseURL, client: &http.Client{Timeout: 5 * time.Minute}}
}

// Rank asks the model to rate each candidate 1-10 with a short
// justification, addressed by 1-based position in the submitted list. The
// result may be partial; any failure is an error the caller treats as "no
// refinement".
func (a *Adapter) Rank(ctx context.Context, candidates []types.Moment, transcriptContext string) (map[int]types.Ranking, error) {
	if len(candidates) == 0 {
		return map[int]types.Ranking{}, nil
	}

	type cand struct {
		Idx      int      `json:"idx"`
		StartSec float64  `json:"start_sec"`
		EndSec   float64  `json:"end_sec"`
		Text     string   `json:"text"`
		Score    float64  `json:"heuristic_score"`
		Emotions []string `json:"emotions,omitempty"`
		Keywords []string `json:"keywords,omitempty"`
	}
	arr := make([]cand, 0, len(candidates))
	for i, m := range candidates {
		arr = append(arr, cand{
			Idx:      i + 1,
			StartSec: m.Start,
			EndSec:   m.End,
			Text:     truncate(m.Text, maxCandidateChars),
			Score:    m.Score,
			Emotions: m.Emotions,
			Keywords: m.Keywords,
		})
	}

	prompt := map[string]any{
		"transcript_context": transcriptContext,
		"candidates":         arr,
	}
	pb, err := json.Marshal(prompt)
	if err != nil {
		return nil, fmt.Errorf("marshal prompt: %w", err)
	}

	payload := map[string]any{
		"model":  a.model,
		"stream": false,
		"messages": []map[string]any{
			{"role": "user", "content": string(buildPrompt(pb))},
		},
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name": "viralcut_rank",
				"schema": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"ratings": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"idx":           map[string]any{"type": "integer"},
									"score":         map[string]any{"type": "number"},
									"justification": map[string]any{"type": "string"},
								},
								"required": []string{"idx", "score", "justification"},
							},
						},
					},
					"required": []string{"ratings"},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := a.baseURL + "/api/v1/chat/completions"

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("openrouter timeout after %s (model=%s)", requestTimeout, a.model)
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("openrouter status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("openrouter status %d: %s", resp.StatusCode, truncate(redactSecrets(string(rb), a.key), 400))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Choices) == 0 {
		return nil, errors.New("openrouter: no choices in response")
	}

	content, err := messageContentToString(raw.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	clean, err := extractJSONObject(content)
	if err != nil {
		return nil, err
	}

	var out struct {
		Ratings []struct {
			Idx           int     `json:"idx"`
			Score         float64 `json:"score"`
			Justification string  `json:"justification"`
		} `json:"ratings"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("parse ratings: %w", err)
	}

	res := make(map[int]types.Ranking, len(out.Ratings))
	for _, r := range out.Ratings {
		if r.Idx < 1 || r.Idx > len(candidates) {
			continue
		}
		res[r.Idx] = types.Ranking{Score: r.Score, Justification: strings.TrimSpace(r.Justification)}
	}
	return res, nil
}

func buildPrompt(candsJSON []byte) []byte {
	return []byte(
		"Rate each candidate clip's viral potential on a 1-10 scale with a one-sentence justification. " +
			"Return strictly valid JSON (no markdown, no code fences) matching the provided schema, " +
			"addressing candidates by their idx. " +
			"Favor clips with a strong hook in the first seconds, a complete thought, and an emotional payoff. " +
			"Skip a candidate rather than guessing if its text is too thin to judge." +
			"\n\nInput JSON:\n" + string(candsJSON),
	)
}

func messageContentToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []any:
		// Some providers return an array of {type,text} parts.
		var b strings.Builder
		for _, it := range x {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if t, ok := m["text"].(string); ok {
				b.WriteString(t)
			}
		}
		s := b.String()
		if strings.TrimSpace(s) == "" {
			return "", errors.New("openrouter: empty content")
		}
		return s, nil
	default:
		return "", fmt.Errorf("openrouter: unexpected content type %T", v)
	}
}

func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("openrouter: empty content")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	// Best-effort: take the first JSON object found.
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}

	return "", fmt.Errorf("openrouter: could not locate JSON object in: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var (
	bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)
	authHeaderRE  = regexp.MustCompile(`(?i)(authorization\s*[:=]\s*)([^\n\r,;]+)`)
	apiKeyFieldRE = regexp.MustCompile(`(?i)(api[_-]?key\s*[:=]\s*)([^\n\r,;]+)`)
)

func redactSecrets(s, apiKey string) string {
	if s == "" {
		return s
	}
	out := s
	if apiKey != "" {
		out = strings.ReplaceAll(out, apiKey, "[REDACTED]")
	}
	out = bearerTokenRE.ReplaceAllString(out, "Bearer [REDACTED]")
	out = authHeaderRE.ReplaceAllString(out, "${1}[REDACTED]")
	out = apiKeyFieldRE.ReplaceAllString(out, "${1}[REDACTED]")
	return out
}
