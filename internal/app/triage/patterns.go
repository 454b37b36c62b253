package triage

import (
	"regexp"
	"strings"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

// crisisPatterns are checked in order; the first match wins.
var crisisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(suicide|suicidal|kill myself|end my life|want to die|better off dead)\b`),
	regexp.MustCompile(`(?i)\b(self.?harm|hurt myself|cutting|cutting myself)\b`),
	regexp.MustCompile(`(?i)\b(no reason to live|can[’']?t go on|give up on life)\b`),
	regexp.MustCompile(`(?i)\b(overdose|take pills|hang myself)\b`),
}

type emotionKeywords struct {
	emotion  domain.Emotion
	keywords []string
}

// emotionTable is ordered by domain.Emotions() declaration order so that a
// tie on score goes to the label declared first.
var emotionTable = []emotionKeywords{
	{domain.EmotionHappy, []string{"happy", "joy", "excited", "great", "wonderful", "amazing", "good", "blessed", "glad", "delighted", "cheerful", "pleased"}},
	{domain.EmotionSad, []string{"sad", "depressed", "down", "unhappy", "miserable", "hopeless", "cry", "tears", "heartbroken", "devastated", "gloomy"}},
	{domain.EmotionAnxious, []string{"anxious", "worried", "nervous", "panic", "afraid", "scared", "fear", "tense", "uneasy", "restless", "on edge"}},
	{domain.EmotionAngry, []string{"angry", "mad", "furious", "irritated", "frustrated", "annoyed", "rage", "pissed", "upset", "bitter"}},
	{domain.EmotionStressed, []string{"stressed", "overwhelmed", "pressure", "burden", "exhausted", "tired", "drained", "burnt out", "swamped", "struggling"}},
	{domain.EmotionConfused, []string{"confused", "lost", "uncertain", "unsure", "don't know", "unclear", "puzzled", "bewildered"}},
	{domain.EmotionCalm, []string{"calm", "peaceful", "relaxed", "serene", "content", "at ease", "composed", "tranquil"}},
	{domain.EmotionHopeful, []string{"hopeful", "optimistic", "looking forward", "positive", "better", "improving", "progress", "encouraged"}},
	{domain.EmotionLonely, []string{"lonely", "alone", "isolated", "disconnected", "abandoned", "empty", "solitary"}},
	{domain.EmotionAshamed, []string{"ashamed", "embarrassed", "guilty", "humiliated", "worthless", "regret"}},
}

// DetectCrisis reports whether text contains self-harm or suicide ideation
// phrasing.
func DetectCrisis(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range crisisPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// DetectEmotion returns the label whose keywords appear most often (each
// keyword counted once) in text. Equal scores go to the label declared
// first; no hit at all yields neutral.
func DetectEmotion(text string) domain.Emotion {
	lower := strings.ToLower(text)

	best := domain.EmotionNeutral
	bestScore := 0
	for _, row := range emotionTable {
		score := countContained(lower, row.keywords)
		if score > bestScore {
			best = row.emotion
			bestScore = score
		}
	}
	return best
}

// countContained counts how many of the keywords occur in text as substrings.
func countContained(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}
