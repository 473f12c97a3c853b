// Package whispercpp transcribes audio with a local whisper.cpp binary.
// Used when no hosted transcription key is configured.
package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/viralcut/internal/types"
)

type Adapter struct {
	bin     string
	model   string
	workDir string
}

func New(binPath, modelPath, workDir string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, workDir: workDir}
}

// whisperOutput mirrors the subset of whisper.cpp's -oj JSON we consume.
type whisperOutput struct {
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

func (a *Adapter) Transcribe(ctx context.Context, audioPath string) (types.Transcript, error) {
	outPrefix := filepath.Join(a.workDir, strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))+"-whisper")
	args := []string{
		"-m", a.model,
		"-f", audioPath,
		"-oj",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}

	var out whisperOutput
	if err := json.Unmarshal(jb, &out); err != nil {
		return types.Transcript{}, fmt.Errorf("parse whisper.cpp output: %w", err)
	}

	tr := types.Transcript{Segments: make([]types.Segment, 0, len(out.Transcription))}
	for _, s := range out.Transcription {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Text:  text,
		})
	}
	return tr, nil
}
