package moments

// Lexicons drive the heuristic scorer. Matching is case-insensitive
// substring matching over the window text; each term counts once per
// window no matter how often it repeats.

var viralKeywords = []string{
	"secret", "hack", "trick", "mistake", "never", "always",
	"shocking", "insane", "crazy", "unbelievable", "exposed",
	"truth", "free", "easy", "proven", "viral", "genius",
	"warning", "banned", "game changer",
}

type emotionLexicon struct {
	Name  string
	Terms []string
}

// Order is fixed so emotion tags come out deterministic for a given window.
var emotionLexicons = []emotionLexicon{
	{Name: "excitement", Terms: []string{
		"amazing", "incredible", "awesome", "epic", "insane",
		"can't believe", "let's go", "wow",
	}},
	{Name: "surprise", Terms: []string{
		"shocking", "unexpected", "plot twist", "turns out",
		"out of nowhere", "suddenly", "no way",
	}},
	{Name: "urgency", Terms: []string{
		"right now", "immediately", "hurry", "last chance",
		"before it's too late", "don't wait", "running out",
	}},
	{Name: "curiosity", Terms: []string{
		"why", "how", "what if", "secret", "hidden",
		"nobody knows", "mystery", "the real reason",
	}},
	{Name: "controversy", Terms: []string{
		"controversial", "unpopular opinion", "wrong", "scandal",
		"lie", "banned", "exposed", "debate",
	}},
	{Name: "positive", Terms: []string{
		"love", "best", "great", "perfect", "win", "success", "beautiful",
	}},
	{Name: "negative", Terms: []string{
		"hate", "worst", "terrible", "fail", "disaster", "awful", "broken",
	}},
}

// emotionEmojis backs the caption emoji flourish. Keys mirror
// emotionLexicons names.
var emotionEmojis = map[string][]string{
	"excitement":  {"🔥", "🚀", "🤩", "⚡"},
	"surprise":    {"😱", "🤯", "😮"},
	"urgency":     {"⏰", "🚨", "❗"},
	"curiosity":   {"🤔", "👀", "🔍"},
	"controversy": {"💥", "😤", "🗣️"},
	"positive":    {"😍", "✨", "💯"},
	"negative":    {"💀", "😡", "👎"},
}

// EmotionEmojis returns the emoji set for an emotion tag, or nil when the
// tag has none.
func EmotionEmojis(emotion string) []string {
	return emotionEmojis[emotion]
}
