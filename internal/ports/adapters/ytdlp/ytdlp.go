// Package ytdlp wraps the yt-dlp binary for source retrieval and the fast
// pre-existing caption route.
package ytdlp

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
	workDir string
}

func New(binPath, workDir string) *Adapter {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	return &Adapter{bin: binPath, workDir: workDir}
}

func (a *Adapter) Download(ctx context.Context, url, dst string) error {
	cmd := exec.CommandContext(ctx, a.bin,
		"-f", "bv*+ba/b",
		"--merge-output-format", "mp4",
		"--no-playlist",
		"-o", dst,
		url,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp download: %w\n%s", err, string(b))
	}
	return nil
}

// FastTranscript fetches pre-existing (manual or auto) captions without
// downloading media. Best-effort by contract: callers fall back to
// transcription on error.
func (a *Adapter) FastTranscript(ctx context.Context, url string) (types.Transcript, error) {
	dir, err := os.MkdirTemp(a.workDir, "captions-")
	if err != nil {
		return types.Transcript{}, err
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, a.bin,
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", "en.*,en",
		"--sub-format", "json3",
		"--no-playlist",
		"-o", filepath.Join(dir, "captions"),
		url,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("yt-dlp captions: %w\n%s", err, string(b))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "captions*.json3"))
	if err != nil {
		return types.Transcript{}, err
	}
	if len(matches) == 0 {
		return types.Transcript{}, fmt.Errorf("no captions available for %s", url)
	}

	jb, err := os.ReadFile(matches[0])
	if err != nil {
		return types.Transcript{}, err
	}
	return parseJSON3(jb)
}

// json3 is YouTube's timedtext format: a flat list of events carrying
// millisecond offsets and text runs.
type json3Doc struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func parseJSON3(b []byte) (types.Transcript, error) {
	var doc json3Doc
	if err := json.Unmarshal(b, &doc); err != nil {
		return types.Transcript{}, fmt.Errorf("parse json3 captions: %w", err)
	}

	var tr types.Transcript
	for _, ev := range doc.Events {
		if ev.DurationMs <= 0 {
			continue
		}
		var parts []string
		for _, seg := range ev.Segs {
			if t := strings.TrimSpace(seg.UTF8); t != "" && t != "\n" {
				parts = append(parts, t)
			}
		}
		text := strings.Join(parts, " ")
		if text == "" {
			continue
		}
		tr.Segments = append(tr.Segments, types.Segment{
			Start: float64(ev.StartMs) / 1000,
			End:   float64(ev.StartMs+ev.DurationMs) / 1000,
			Text:  text,
		})
	}
	if len(tr.Segments) == 0 {
		return types.Transcript{}, fmt.Errorf("captions contained no text events")
	}
	return tr, nil
}
