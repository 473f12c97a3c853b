package moments

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/forPelevin/viralcut/internal/ports"
	"github.com/forPelevin/viralcut/internal/types"
)

// Options bounds the detector. Zero values fall back to defaults.
type Options struct {
	MinMoment time.Duration
	MaxMoment time.Duration
	// PromptTopN caps how many heuristic candidates go to the ranking
	// service; FinalTopK caps the detector output.
	PromptTopN int
	FinalTopK  int

	Logf func(format string, args ...any)
}

const (
	defaultMinMoment  = 15 * time.Second
	defaultMaxMoment  = 60 * time.Second
	defaultPromptTopN = 20
	defaultFinalTopK  = 10

	// maxContextChars bounds the transcript prefix sent along with ranking
	// requests.
	maxContextChars = 4000
)

// Detector composes the heuristic scan with best-effort external
// refinement.
type Detector struct {
	ranker ports.Ranker
	opts   Options
}

// NewDetector builds a detector. A nil ranker disables refinement; the
// heuristic ordering is used as-is.
func NewDetector(ranker ports.Ranker, opts Options) Detector {
	if opts.MinMoment <= 0 {
		opts.MinMoment = defaultMinMoment
	}
	if opts.MaxMoment <= 0 {
		opts.MaxMoment = defaultMaxMoment
	}
	if opts.PromptTopN <= 0 {
		opts.PromptTopN = defaultPromptTopN
	}
	if opts.FinalTopK <= 0 {
		opts.FinalTopK = defaultFinalTopK
	}
	if opts.Logf == nil {
		opts.Logf = func(string, ...any) {}
	}
	return Detector{ranker: ranker, opts: opts}
}

// Detect turns a transcript into a bounded, score-ordered list of moments.
// Ordering is purely by score; ties keep discovery order.
func (d Detector) Detect(ctx context.Context, tr types.Transcript) []types.Moment {
	cands := BuildWindows(tr.Segments, d.opts.MinMoment, d.opts.MaxMoment)
	if len(cands) == 0 {
		return nil
	}

	sortByScore(cands)
	if len(cands) > d.opts.PromptTopN {
		cands = cands[:d.opts.PromptTopN]
	}

	cands = d.refine(ctx, cands, tr)

	sortByScore(cands)
	if len(cands) > d.opts.FinalTopK {
		cands = cands[:d.opts.FinalTopK]
	}
	return cands
}

// refine asks the ranking service to re-score the candidates. Strictly
// best-effort: any failure returns the heuristic list unchanged.
func (d Detector) refine(ctx context.Context, cands []types.Moment, tr types.Transcript) []types.Moment {
	if d.ranker == nil {
		return cands
	}
	rankings, err := d.ranker.Rank(ctx, cands, transcriptPrefix(tr))
	if err != nil {
		d.opts.Logf("refinement skipped: %v", err)
		return cands
	}
	for pos, r := range rankings {
		i := pos - 1
		if i < 0 || i >= len(cands) {
			continue
		}
		if r.Score < 1 || r.Score > 10 {
			continue
		}
		cands[i].Score = r.Score / 10
		if j := strings.TrimSpace(r.Justification); j != "" {
			cands[i].Reason = j
		}
	}
	return cands
}

func sortByScore(ms []types.Moment) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Score > ms[j].Score })
}

func transcriptPrefix(tr types.Transcript) string {
	var b strings.Builder
	for _, s := range tr.Segments {
		t := strings.TrimSpace(s.Text)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t)
		if b.Len() >= maxContextChars {
			break
		}
	}
	r := []rune(b.String())
	if len(r) > maxContextChars {
		r = r[:maxContextChars]
	}
	return string(r)
}
