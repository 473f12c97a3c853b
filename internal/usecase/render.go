package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/viralcut/internal/domain/subtitles"
	"github.com/forPelevin/viralcut/internal/types"
)

// RenderInput selects moments from a completed ingestion job and
// configures the per-clip stage chain.
type RenderInput struct {
	IngestionID string
	MomentIDs   []string
	Options     types.ClipOptions
}

// thumbnailOffset places the preview frame just past the clip start.
const thumbnailOffset = time.Second

// StartRender validates the selection against the backing ingestion job,
// registers a processing clip job and spawns the pipeline.
func (u Usecase) StartRender(in RenderInput) (string, error) {
	ing, ok := u.d.Store.GetIngestion(in.IngestionID)
	if !ok {
		return "", ErrIngestionNotFound
	}
	if ing.Status != types.StatusCompleted || ing.Result == nil {
		return "", ErrIngestionNotDone
	}
	if len(in.MomentIDs) == 0 {
		return "", ErrEmptySelection
	}

	selected := make([]types.Moment, 0, len(in.MomentIDs))
	for _, id := range in.MomentIDs {
		m, ok := findMoment(ing.Result.Moments, id)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownMoment, id)
		}
		selected = append(selected, m)
	}

	opts := in.Options
	if opts.Format == "" {
		opts.Format = types.FormatVertical
	}
	switch opts.Format {
	case types.FormatVertical, types.FormatSquare, types.FormatHorizontal:
	default:
		return "", fmt.Errorf("unknown aspect format %q", opts.Format)
	}

	jobID := uuid.NewString()
	u.d.Store.SetClipJob(types.ClipJob{
		ID:         jobID,
		Status:     types.StatusProcessing,
		TotalClips: len(selected),
	})

	go u.runRender(jobID, ing.Result, selected, opts)
	return jobID, nil
}

func (u Usecase) runRender(jobID string, res *types.IngestionResult, selected []types.Moment, opts types.ClipOptions) {
	clips, err := u.renderClips(context.Background(), jobID, res, selected, opts)

	job, ok := u.d.Store.GetClipJob(jobID)
	if !ok {
		job = types.ClipJob{ID: jobID, TotalClips: len(selected)}
	}
	if err != nil {
		// Only workspace preparation can fail the whole batch; per-clip
		// failures land inside the result sequence.
		u.d.Logf("render %s failed: %v", jobID, err)
		job.Status = types.StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = types.StatusCompleted
		job.Progress = 100
		job.CurrentStep = stepCompleted
		job.ProcessedClips = job.TotalClips
		job.Result = clips
	}
	u.d.Store.SetClipJob(job)
}

// renderClips processes moments strictly in order. One clip's failure
// never aborts the batch: a failed moment contributes a non-ready entry
// and the loop continues.
func (u Usecase) renderClips(ctx context.Context, jobID string, res *types.IngestionResult, selected []types.Moment, opts types.ClipOptions) ([]types.ProcessedClip, error) {
	dir := u.renderDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare workspace: %w", err)
	}

	total := len(selected)
	clips := make([]types.ProcessedClip, 0, total)
	for i, m := range selected {
		u.setRenderProgress(jobID, i, total)

		clipID := uuid.NewString()
		clip, err := u.renderOne(ctx, dir, clipID, res, m, opts)
		if err != nil {
			u.d.Logf("render %s: clip %d/%d (moment %s) failed: %v", jobID, i+1, total, m.ID, err)
			clips = append(clips, types.ProcessedClip{
				ID:     clipID,
				Moment: m,
				Ready:  false,
				Error:  err.Error(),
			})
			continue
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

// renderOne runs the fixed stage chain for one moment: crop/format,
// optional caption burn-in, optional pan/zoom, thumbnail. Each consumed
// intermediate is deleted as soon as its successor exists.
func (u Usecase) renderOne(ctx context.Context, dir, clipID string, res *types.IngestionResult, m types.Moment, opts types.ClipOptions) (types.ProcessedClip, error) {
	start := dur(m.Start)
	end := dur(m.End)

	current := clipBasePath(dir, clipID)
	if err := u.d.Video.Crop(ctx, res.MediaPath, current, start, end, opts.Format); err != nil {
		return types.ProcessedClip{}, fmt.Errorf("crop: %w", err)
	}

	if opts.AddCaptions {
		track := subtitles.RenderMomentASS(res.Segments, m, subtitles.Options{
			AddEmojis: opts.AddEmojis,
			Pick:      u.d.Pick,
		})
		assPath := clipSubtitlePath(dir, clipID)
		if err := os.WriteFile(assPath, []byte(track), 0o644); err != nil {
			removeAll(current)
			return types.ProcessedClip{}, fmt.Errorf("caption: %w", err)
		}

		captioned := clipCaptionedPath(dir, clipID)
		if err := u.d.Video.BurnSubtitles(ctx, current, captioned, assPath); err != nil {
			removeAll(current, assPath)
			return types.ProcessedClip{}, fmt.Errorf("caption: %w", err)
		}
		removeAll(current, assPath)
		current = captioned
	}

	final := clipFinalPath(dir, clipID)
	if opts.AddZoomPan {
		if err := u.d.Video.ZoomPan(ctx, current, final, 1.0); err != nil {
			// Pan/zoom is best-effort: ship the pre-effect video verbatim.
			u.d.Logf("clip %s: zoompan failed, using plain clip: %v", clipID, err)
			if err := copyFile(current, final); err != nil {
				removeAll(current)
				return types.ProcessedClip{}, fmt.Errorf("zoompan fallback copy: %w", err)
			}
		}
		removeAll(current)
	} else {
		if err := os.Rename(current, final); err != nil {
			removeAll(current)
			return types.ProcessedClip{}, fmt.Errorf("finalize clip: %w", err)
		}
	}

	thumb := clipThumbnailPath(dir, clipID)
	if err := u.d.Video.Thumbnail(ctx, final, thumb, thumbnailOffset); err != nil {
		return types.ProcessedClip{}, fmt.Errorf("thumbnail: %w", err)
	}

	return types.ProcessedClip{
		ID:            clipID,
		VideoPath:     final,
		ThumbnailPath: thumb,
		Duration:      m.End - m.Start,
		Moment:        m,
		Ready:         true,
	}, nil
}

// setRenderProgress reports floor(index/total*100) before an item starts.
func (u Usecase) setRenderProgress(jobID string, index, total int) {
	job, ok := u.d.Store.GetClipJob(jobID)
	if !ok {
		return
	}
	job.Progress = index * 100 / total
	job.CurrentStep = fmt.Sprintf("clip %d/%d", index+1, total)
	job.ProcessedClips = index
	u.d.Store.SetClipJob(job)
}

func findMoment(ms []types.Moment, id string) (types.Moment, bool) {
	for _, m := range ms {
		if m.ID == id {
			return m, true
		}
	}
	return types.Moment{}, false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func removeAll(paths ...string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
