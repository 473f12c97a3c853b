package moments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/forPelevin/viralcut/internal/types"
)

// emissionBar is the minimum heuristic score a window needs to become a
// candidate moment.
const emissionBar = 0.5

// overlapTolerance absorbs sub-frame jitter from ASR backends whose
// segment boundaries touch.
const overlapTolerance = 0.25

var ErrEmptyTranscript = errors.New("transcript has no segments")

// ValidateSegments rejects transcripts the window scan cannot reason
// about: unsorted segments, inverted spans, or overlaps beyond tolerance.
// Noisy upstream output fails ingestion instead of being silently
// reordered.
func ValidateSegments(segments []types.Segment) error {
	if len(segments) == 0 {
		return ErrEmptyTranscript
	}
	for i, s := range segments {
		if s.End < s.Start {
			return fmt.Errorf("segment %d: end %.2f before start %.2f", i, s.End, s.Start)
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if s.Start < prev.Start {
			return fmt.Errorf("segment %d: out of order (start %.2f after %.2f)", i, s.Start, prev.Start)
		}
		if prev.End-s.Start > overlapTolerance {
			return fmt.Errorf("segment %d: overlaps previous by %.2fs", i, prev.End-s.Start)
		}
	}
	return nil
}

// BuildWindows emits every contiguous segment window whose duration lies
// in [minDur, maxDur] and whose heuristic score clears the emission bar.
// For each start index the end index only grows, so the scan breaks as
// soon as a window exceeds maxDur. Quadratic on purpose: every qualifying
// (i, j) pair is a candidate, and ingestion bounds segment counts upstream.
func BuildWindows(segments []types.Segment, minDur, maxDur time.Duration) []types.Moment {
	if minDur <= 0 {
		minDur = time.Second
	}
	if maxDur <= 0 || maxDur < minDur {
		return nil
	}

	var out []types.Moment
	for i := 0; i < len(segments); i++ {
		start := segments[i].Start
		for j := i; j < len(segments); j++ {
			end := segments[j].End
			win := dur(end - start)
			if win > maxDur {
				break
			}
			if win < minDur || end <= start {
				continue
			}
			res := ScoreWindow(segments[i : j+1])
			if res.Score <= emissionBar {
				continue
			}
			out = append(out, types.Moment{
				ID:       uuid.NewString(),
				Start:    start,
				End:      end,
				Score:    res.Score,
				Reason:   res.Reason,
				Text:     joinSegmentText(segments[i : j+1]),
				Emotions: res.Emotions,
				Keywords: res.Keywords,
			})
		}
	}
	return out
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
