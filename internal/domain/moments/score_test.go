package moments

import (
	"strings"
	"testing"

	"github.com/forPelevin/viralcut/internal/types"
)

func seg(start, end float64, text string) types.Segment {
	return types.Segment{Start: start, End: end, Text: text}
}

func TestScoreWindow_Table(t *testing.T) {
	tests := []struct {
		name         string
		segments     []types.Segment
		wantAbove    float64
		wantBelow    float64
		wantEmotion  string
		wantKeyword  string
		wantInReason string
	}{
		{
			name:      "empty",
			segments:  nil,
			wantBelow: 0.01,
		},
		{
			name: "neutral narration stays under the bar",
			segments: []types.Segment{
				seg(0, 10, "We walked along the river for a while."),
				seg(10, 20, "It was a quiet afternoon in October."),
			},
			wantBelow:    emissionBar,
			wantInReason: defaultReason,
		},
		{
			name: "keywords and questions clear the bar",
			segments: []types.Segment{
				seg(0, 10, "Why do most creators never grow?"),
				seg(10, 20, "The secret is one simple trick."),
			},
			wantAbove:    emissionBar,
			wantEmotion:  "curiosity",
			wantKeyword:  "secret",
			wantInReason: "question",
		},
		{
			name: "exclamations add energy",
			segments: []types.Segment{
				seg(0, 10, "This is insane! Absolutely unbelievable!"),
			},
			wantAbove:    0.3,
			wantEmotion:  "excitement",
			wantInReason: "high-energy",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreWindow(tt.segments)
			if res.Score < 0 || res.Score > 1 {
				t.Fatalf("score out of [0,1]: %v", res.Score)
			}
			if tt.wantAbove > 0 && res.Score <= tt.wantAbove {
				t.Fatalf("expected score > %v, got %v", tt.wantAbove, res.Score)
			}
			if tt.wantBelow > 0 && res.Score > tt.wantBelow {
				t.Fatalf("expected score <= %v, got %v", tt.wantBelow, res.Score)
			}
			if tt.wantEmotion != "" && !containsStr(res.Emotions, tt.wantEmotion) {
				t.Fatalf("expected emotion %q in %v", tt.wantEmotion, res.Emotions)
			}
			if tt.wantKeyword != "" && !containsStr(res.Keywords, tt.wantKeyword) {
				t.Fatalf("expected keyword %q in %v", tt.wantKeyword, res.Keywords)
			}
			if tt.wantInReason != "" && !strings.Contains(res.Reason, tt.wantInReason) {
				t.Fatalf("expected reason to mention %q, got %q", tt.wantInReason, res.Reason)
			}
		})
	}
}

func TestScoreWindow_ClampsToOne(t *testing.T) {
	loaded := strings.Repeat("secret hack trick insane shocking why! ", 5) + "???"
	res := ScoreWindow([]types.Segment{seg(0, 10, loaded)})
	if res.Score != 1 {
		t.Fatalf("expected clamp to 1, got %v", res.Score)
	}
}

func TestScoreWindow_KeywordsAreEveryLexiconMatch(t *testing.T) {
	res := ScoreWindow([]types.Segment{
		seg(0, 10, "The SECRET trick they never tell you."),
	})
	for _, want := range []string{"secret", "trick", "never"} {
		if !containsStr(res.Keywords, want) {
			t.Fatalf("expected keyword %q in %v", want, res.Keywords)
		}
	}
}

func containsStr(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
