package ports

import (
	"context"
	"time"

	"github.com/forPelevin/viralcut/internal/types"
)

// VideoTool is the media-transform boundary. Every operation is an opaque
// transform on files; callers own path layout and intermediate cleanup.
type VideoTool interface {
	// ExtractAudioMono16k converts any media input to mono 16kHz WAV. Used
	// both to extract audio from video and to resample audio uploads.
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
	// Crop cuts [start, end] out of src and reframes it to format.
	Crop(ctx context.Context, src, dst string, start, end time.Duration, format types.AspectFormat) error
	// BurnSubtitles renders the ASS track at assPath into the video.
	BurnSubtitles(ctx context.Context, src, dst, assPath string) error
	// ZoomPan applies a continuous zoom-and-recenter effect over the whole
	// clip. Callers substitute a plain copy when it fails.
	ZoomPan(ctx context.Context, src, dst string, intensity float64) error
	// Thumbnail grabs a single still frame at offset into dst.
	Thumbnail(ctx context.Context, src, dst string, offset time.Duration) error
	ProbeDuration(ctx context.Context, in string) (time.Duration, error)
}

// ASR is the authoritative transcription fallback.
type ASR interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}

// CaptionSource is the fast pre-existing caption route. Best-effort: a
// failure here means "take the transcription path", not a job failure.
type CaptionSource interface {
	FastTranscript(ctx context.Context, url string) (types.Transcript, error)
}

// Downloader retrieves a remote source into a local file.
type Downloader interface {
	Download(ctx context.Context, url, dst string) error
}

// Ranker is the external ranking capability used by refinement. The result
// maps 1-based candidate positions to their re-score; the mapping may be
// partial. Any error is treated by callers as "no refinement".
type Ranker interface {
	Rank(ctx context.Context, candidates []types.Moment, transcriptContext string) (map[int]types.Ranking, error)
}

// JobStore is the shared keyed registry for both job kinds. Writes replace
// the whole entry; concurrent readers may observe any sequential snapshot.
type JobStore interface {
	GetIngestion(id string) (types.IngestionJob, bool)
	SetIngestion(job types.IngestionJob)
	GetClipJob(id string) (types.ClipJob, bool)
	SetClipJob(job types.ClipJob)
}
