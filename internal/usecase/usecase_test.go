package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/forPelevin/viralcut/internal/types"
)

// fakeStore records every snapshot write so tests can assert on the
// sequence polling clients would observe.
type fakeStore struct {
	mu            sync.Mutex
	ingestions    map[string]types.IngestionJob
	clips         map[string]types.ClipJob
	ingestionHist []types.IngestionJob
	clipHist      []types.ClipJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ingestions: make(map[string]types.IngestionJob),
		clips:      make(map[string]types.ClipJob),
	}
}

func (s *fakeStore) GetIngestion(id string) (types.IngestionJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.ingestions[id]
	return j, ok
}

func (s *fakeStore) SetIngestion(job types.IngestionJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingestions[job.ID] = job
	s.ingestionHist = append(s.ingestionHist, job)
}

func (s *fakeStore) GetClipJob(id string) (types.ClipJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.clips[id]
	return j, ok
}

func (s *fakeStore) SetClipJob(job types.ClipJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips[job.ID] = job
	s.clipHist = append(s.clipHist, job)
}

func (s *fakeStore) ingestionHistory() []types.IngestionJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.IngestionJob, len(s.ingestionHist))
	copy(out, s.ingestionHist)
	return out
}

func (s *fakeStore) clipHistory() []types.ClipJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ClipJob, len(s.clipHist))
	copy(out, s.clipHist)
	return out
}

// fakeVideoTool writes marker files so downstream stages (and byte-level
// assertions) have real files to work with.
type fakeVideoTool struct {
	mu    sync.Mutex
	calls []string

	extractErr error
	cropErr    func(start time.Duration) error
	burnErr    error
	zoomErr    error
	thumbErr   error
	probeDur   time.Duration
	probeErr   error
}

func (f *fakeVideoTool) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeVideoTool) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeVideoTool) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	f.record("extract-audio")
	if f.extractErr != nil {
		return f.extractErr
	}
	return os.WriteFile(outWav, []byte("wav"), 0o644)
}

func (f *fakeVideoTool) Crop(_ context.Context, _, dst string, start, _ time.Duration, _ types.AspectFormat) error {
	f.record("crop")
	if f.cropErr != nil {
		if err := f.cropErr(start); err != nil {
			return err
		}
	}
	return os.WriteFile(dst, []byte("base-video"), 0o644)
}

func (f *fakeVideoTool) BurnSubtitles(_ context.Context, src, dst, _ string) error {
	f.record("burn-subtitles")
	if f.burnErr != nil {
		return f.burnErr
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append(b, []byte("+subs")...), 0o644)
}

func (f *fakeVideoTool) ZoomPan(_ context.Context, src, dst string, _ float64) error {
	f.record("zoompan")
	if f.zoomErr != nil {
		return f.zoomErr
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append(b, []byte("+zoom")...), 0o644)
}

func (f *fakeVideoTool) Thumbnail(_ context.Context, _, dst string, _ time.Duration) error {
	f.record("thumbnail")
	if f.thumbErr != nil {
		return f.thumbErr
	}
	return os.WriteFile(dst, []byte("thumb"), 0o644)
}

func (f *fakeVideoTool) ProbeDuration(_ context.Context, _ string) (time.Duration, error) {
	f.record("probe-duration")
	return f.probeDur, f.probeErr
}

type fakeASR struct {
	tr     types.Transcript
	err    error
	called bool
}

func (f *fakeASR) Transcribe(_ context.Context, _ string) (types.Transcript, error) {
	f.called = true
	return f.tr, f.err
}

type fakeCaptions struct {
	tr     types.Transcript
	err    error
	called bool
}

func (f *fakeCaptions) FastTranscript(_ context.Context, _ string) (types.Transcript, error) {
	f.called = true
	if f.err != nil {
		return types.Transcript{}, f.err
	}
	return f.tr, nil
}

type fakeDownloader struct {
	err    error
	called bool
}

func (f *fakeDownloader) Download(_ context.Context, _, dst string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, []byte("source-media"), 0o644)
}

func testTranscript() types.Transcript {
	return types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 15, Text: "Why do most creators never grow on this platform?"},
		{Start: 15, End: 30, Text: "The secret is one simple trick nobody knows!"},
		{Start: 30, End: 45, Text: "Here is how you can do it today."},
	}}
}

func waitIngestion(t *testing.T, store *fakeStore, id string) types.IngestionJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := store.GetIngestion(id)
		if ok && job.Status != types.StatusProcessing {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ingestion %s did not reach a terminal state", id)
	return types.IngestionJob{}
}

func waitClipJob(t *testing.T, store *fakeStore, id string) types.ClipJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := store.GetClipJob(id)
		if ok && job.Status != types.StatusProcessing {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("clip job %s did not reach a terminal state", id)
	return types.ClipJob{}
}

func momentAt(id string, start, end float64) types.Moment {
	return types.Moment{
		ID:    id,
		Start: start,
		End:   end,
		Score: 0.8,
		Text:  fmt.Sprintf("moment %s", id),
	}
}
