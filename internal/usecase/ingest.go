package usecase

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/forPelevin/viralcut/internal/domain/moments"
	"github.com/forPelevin/viralcut/internal/types"
)

// Progress/step snapshots written at each stage boundary. Values only ever
// grow, so polling readers see monotonically non-decreasing progress.
const (
	stepFastTranscript  = "fetch-fast-transcript"
	stepDownloadSource  = "download-source"
	stepExtractAudio    = "extract-audio"
	stepTranscribe      = "transcribe"
	stepDetectMoments   = "detect-moments"
	stepMeasureDuration = "measure-duration"
	stepCompleted       = "completed"
)

// IngestInput describes one source submission. Exactly one of URL and
// UploadPath must be set.
type IngestInput struct {
	URL        string
	UploadPath string
	// AudioOnly marks an uploaded file as pure audio: it is resampled
	// instead of demuxed and its duration stays 0.
	AudioOnly bool
}

func (in IngestInput) validate() error {
	if in.URL == "" && in.UploadPath == "" {
		return ErrNoSource
	}
	if in.URL != "" && in.UploadPath != "" {
		return ErrBothSources
	}
	if in.UploadPath != "" {
		if _, err := os.Stat(in.UploadPath); err != nil {
			return fmt.Errorf("stat upload: %w", err)
		}
	}
	return nil
}

// StartIngestion validates the submission, registers a processing job and
// spawns the pipeline. The returned id is immediately pollable.
func (u Usecase) StartIngestion(in IngestInput) (string, error) {
	if err := in.validate(); err != nil {
		return "", err
	}

	jobID := uuid.NewString()
	u.d.Store.SetIngestion(types.IngestionJob{
		ID:     jobID,
		Status: types.StatusProcessing,
	})

	// Fire-and-forget: the goroutine's completion handler performs the one
	// terminal store write. No cancellation, no internal timeouts.
	go u.runIngestion(jobID, in)
	return jobID, nil
}

func (u Usecase) runIngestion(jobID string, in IngestInput) {
	res, err := u.ingest(context.Background(), jobID, in)

	job, ok := u.d.Store.GetIngestion(jobID)
	if !ok {
		job = types.IngestionJob{ID: jobID}
	}
	if err != nil {
		u.d.Logf("ingestion %s failed: %v", jobID, err)
		job.Status = types.StatusFailed
		job.Error = err.Error()
		job.Result = nil
	} else {
		job.Status = types.StatusCompleted
		job.Progress = 100
		job.CurrentStep = stepCompleted
		job.Result = res
	}
	u.d.Store.SetIngestion(job)
}

func (u Usecase) ingest(ctx context.Context, jobID string, in IngestInput) (*types.IngestionResult, error) {
	if err := os.MkdirAll(u.ingestionDir(jobID), 0o755); err != nil {
		return nil, fmt.Errorf("prepare workspace: %w", err)
	}

	var (
		tr          types.Transcript
		transcribed bool
		mediaPath   string
		kind        types.SourceKind
	)

	if in.URL != "" {
		kind = types.SourceURL

		// Fast caption route is best-effort; failure falls through to the
		// transcription path.
		u.setIngestionStep(jobID, stepFastTranscript, 5)
		if u.d.Captions != nil {
			if t, err := u.d.Captions.FastTranscript(ctx, in.URL); err == nil {
				tr = t
				transcribed = true
			} else {
				u.d.Logf("ingestion %s: fast transcript unavailable: %v", jobID, err)
			}
		}

		// The source is needed for rendering even when captions came from
		// the fast route.
		u.setIngestionStep(jobID, stepDownloadSource, 15)
		mediaPath = u.sourcePath(jobID, ".mp4")
		if err := u.d.Downloader.Download(ctx, in.URL, mediaPath); err != nil {
			return nil, fmt.Errorf("download-source: %w", err)
		}
	} else {
		mediaPath = in.UploadPath
		kind = types.SourceUploadVideo
		if in.AudioOnly {
			kind = types.SourceUploadAudio
		}
	}

	if !transcribed {
		u.setIngestionStep(jobID, stepExtractAudio, 40)
		wav := u.audioPath(jobID)
		if err := u.d.Video.ExtractAudioMono16k(ctx, mediaPath, wav); err != nil {
			return nil, fmt.Errorf("extract-audio: %w", err)
		}

		u.setIngestionStep(jobID, stepTranscribe, 60)
		t, err := u.d.ASR.Transcribe(ctx, wav)
		if err != nil {
			return nil, fmt.Errorf("transcribe: %w", err)
		}
		tr = t
		// The WAV's only consumer has produced its output.
		_ = os.Remove(wav)
	}

	u.setIngestionStep(jobID, stepDetectMoments, 80)
	if err := moments.ValidateSegments(tr.Segments); err != nil {
		return nil, fmt.Errorf("detect-moments: %w", err)
	}
	found := u.d.Detector.Detect(ctx, tr)

	var duration float64
	if !in.AudioOnly {
		u.setIngestionStep(jobID, stepMeasureDuration, 90)
		d, err := u.d.Video.ProbeDuration(ctx, mediaPath)
		if err != nil {
			return nil, fmt.Errorf("measure-duration: %w", err)
		}
		duration = d.Seconds()
	}

	return &types.IngestionResult{
		MediaPath:  mediaPath,
		Segments:   tr.Segments,
		Moments:    found,
		Duration:   duration,
		SourceKind: kind,
	}, nil
}

// setIngestionStep writes a progress snapshot before the next stage
// begins. Progress never decreases even when stages are skipped.
func (u Usecase) setIngestionStep(jobID, step string, progress int) {
	job, ok := u.d.Store.GetIngestion(jobID)
	if !ok {
		return
	}
	job.CurrentStep = step
	if progress > job.Progress {
		job.Progress = progress
	}
	u.d.Store.SetIngestion(job)
}
