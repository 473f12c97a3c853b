package moments

import (
	"strings"

	"github.com/forPelevin/viralcut/internal/types"
)

// Additive weights, tuned so that a window needs at least two strong
// signals (keywords, questions, emotional language) to clear the 0.5
// emission bar. Neutral narration with only the structural bonuses stays
// below it.
const (
	keywordWeight  = 0.15
	emotionWeight  = 0.10
	questionWeight = 0.10
	exclaimWeight  = 0.05
	punchyBonus    = 0.10
	varietyBonus   = 0.05

	// Average per-segment text length below this reads as short, punchy
	// delivery.
	punchyAvgLen = 90

	minVarietySentences = 2
	maxVarietySentences = 5
)

// ScoreResult carries everything the heuristic learned about one window.
type ScoreResult struct {
	Score    float64
	Emotions []string
	Keywords []string
	Reason   string
}

// ScoreWindow scores a contiguous run of transcript segments. The score is
// additive over keyword hits, emotion-lexicon hits, question and
// exclamation marks, plus structural bonuses, clamped to [0, 1].
func ScoreWindow(segments []types.Segment) ScoreResult {
	text := joinSegmentText(segments)
	if text == "" {
		return ScoreResult{Reason: defaultReason}
	}
	lower := strings.ToLower(text)

	var res ScoreResult
	for _, kw := range viralKeywords {
		if strings.Contains(lower, kw) {
			res.Keywords = append(res.Keywords, kw)
		}
	}
	res.Score += float64(len(res.Keywords)) * keywordWeight

	emotionHits := 0
	for _, lex := range emotionLexicons {
		matched := false
		for _, term := range lex.Terms {
			if strings.Contains(lower, term) {
				matched = true
				emotionHits++
			}
		}
		if matched {
			res.Emotions = append(res.Emotions, lex.Name)
		}
	}
	res.Score += float64(emotionHits) * emotionWeight

	questions := strings.Count(text, "?")
	exclaims := strings.Count(text, "!")
	res.Score += float64(questions) * questionWeight
	res.Score += float64(exclaims) * exclaimWeight

	if avgSegmentLen(segments) < punchyAvgLen {
		res.Score += punchyBonus
	}
	if n := sentenceCount(text); n >= minVarietySentences && n <= maxVarietySentences {
		res.Score += varietyBonus
	}

	res.Score = clamp01(res.Score)
	res.Reason = buildReason(questions > 0, exclaims > 0, len(res.Keywords) > 0, len(res.Emotions) > 2)
	return res
}

const defaultReason = "steady conversational moment"

func buildReason(question, exclaim, keyword, emotional bool) string {
	var parts []string
	if question {
		parts = append(parts, "poses a question that invites engagement")
	}
	if exclaim {
		parts = append(parts, "high-energy delivery")
	}
	if keyword {
		parts = append(parts, "contains viral hook phrases")
	}
	if emotional {
		parts = append(parts, "emotionally charged across several registers")
	}
	if len(parts) == 0 {
		return defaultReason
	}
	return strings.Join(parts, "; ")
}

func joinSegmentText(segments []types.Segment) string {
	var parts []string
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func avgSegmentLen(segments []types.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	total := 0
	for _, s := range segments {
		total += len([]rune(strings.TrimSpace(s.Text)))
	}
	return float64(total) / float64(len(segments))
}

func sentenceCount(text string) int {
	n := 0
	for _, part := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
