// Package whisperapi transcribes audio through the hosted Whisper API.
package whisperapi

import (
	"context"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/forPelevin/viralcut/internal/types"
)

type Adapter struct {
	cli *openai.Client
}

func New(apiKey string) *Adapter {
	return &Adapter{cli: openai.NewClient(apiKey)}
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	resp, err := a.cli.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper transcription: %w", err)
	}
	if len(resp.Segments) == 0 {
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return types.Transcript{}, fmt.Errorf("whisper transcription: empty result")
		}
		// Some providers answer verbose_json without segment timing; keep
		// the transcript usable as a single span.
		return types.Transcript{Segments: []types.Segment{
			{Start: 0, End: resp.Duration, Text: text},
		}}, nil
	}

	tr := types.Transcript{Segments: make([]types.Segment, 0, len(resp.Segments))}
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start:      s.Start,
			End:        s.End,
			Text:       text,
			Confidence: confidence(s.AvgLogprob),
		})
	}
	return tr, nil
}

// confidence maps the segment's average token logprob onto [0, 1].
func confidence(avgLogprob float64) float64 {
	c := math.Exp(avgLogprob)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
