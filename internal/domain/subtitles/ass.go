package subtitles

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/forPelevin/viralcut/internal/domain/moments"
	"github.com/forPelevin/viralcut/internal/types"
)

// Options configures caption rendering for one clip.
type Options struct {
	// AddEmojis prepends an emotion emoji to each caption line.
	AddEmojis bool
	// Pick selects an index in [0, n). Nil uses math/rand; tests inject a
	// deterministic source.
	Pick func(n int) int
}

// RenderMomentASS builds a clip-local ASS track for one moment. Only
// segments fully contained in [moment.Start, moment.End] qualify
// (boundary-equal segments included); event times are re-based to the
// clip's own start.
func RenderMomentASS(segments []types.Segment, m types.Moment, opts Options) string {
	pick := opts.Pick
	if pick == nil {
		pick = rand.Intn
	}

	var b strings.Builder
	b.WriteString(assHeader())
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, s := range segments {
		if s.Start < m.Start || s.End > m.End {
			continue
		}
		text := sanitizeASS(s.Text)
		if text == "" {
			continue
		}
		if opts.AddEmojis {
			if e := pickEmoji(s.Text, m, pick); e != "" {
				text = e + " " + text
			}
		}
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(dur(s.Start - m.Start)))
		b.WriteString(",")
		b.WriteString(assTime(dur(s.End - m.Start)))
		b.WriteString(",Viral,,0,0,0,,")
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String()
}

// pickEmoji chooses a flourish for one caption line: a random emoji from
// one of the moment's matched emotion sets, falling back to punctuation
// and keyword heuristics on the line itself.
func pickEmoji(segmentText string, m types.Moment, pick func(int) int) string {
	if len(m.Emotions) > 0 {
		emotion := m.Emotions[pick(len(m.Emotions))]
		if set := moments.EmotionEmojis(emotion); len(set) > 0 {
			return set[pick(len(set))]
		}
	}
	if strings.Contains(segmentText, "?") {
		return "🤔"
	}
	if strings.Contains(segmentText, "!") {
		return "🔥"
	}
	lower := strings.ToLower(segmentText)
	for _, kw := range m.Keywords {
		if strings.Contains(lower, kw) {
			return "⚡"
		}
	}
	return ""
}

func assHeader() string {
	return strings.TrimSpace(`
[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Viral, Inter, 78, &H00FFFFFF, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,6,2,2, 80,80,85,1
`)
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
