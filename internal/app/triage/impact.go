package triage

import "github.com/PabloGalante/dost-companion/internal/domain"

const (
	impactWindow    = 5 // turns inspected
	impactDeciders  = 2 // most recent user emotions that decide the trend
	narrativeStart  = "starting conversation"
	narrativeListen = "listening"
	narrativeCrisis = "immediate support needed"
)

var (
	positiveEmotions = map[domain.Emotion]bool{
		domain.EmotionHappy:   true,
		domain.EmotionHopeful: true,
		domain.EmotionCalm:    true,
	}
	negativeEmotions = map[domain.Emotion]bool{
		domain.EmotionSad:      true,
		domain.EmotionAnxious:  true,
		domain.EmotionAngry:    true,
		domain.EmotionStressed: true,
	}
)

// DetectConversationImpact looks at the last few turns of history and
// guesses whether the conversation is helping the user.
func DetectConversationImpact(history []domain.Turn) domain.ConversationalImpact {
	if len(history) < 2 {
		return domain.ConversationalImpact{Trend: domain.TrendNeutral, Narrative: narrativeStart}
	}

	window := history
	if len(window) > impactWindow {
		window = window[len(window)-impactWindow:]
	}

	var (
		emotions []domain.Emotion
		stress   []domain.StressLevel
	)
	for _, t := range window {
		if t.Role != domain.RoleUser {
			continue
		}
		emotions = append(emotions, DetectEmotion(t.Content))
		stress = append(stress, AnalyzeStress(t.Content).Level)
	}

	if len(emotions) == 0 {
		return domain.ConversationalImpact{Trend: domain.TrendNeutral, Narrative: narrativeListen}
	}

	deciders := emotions
	if len(deciders) > impactDeciders {
		deciders = deciders[len(deciders)-impactDeciders:]
	}

	pos, neg := 0, 0
	for _, e := range deciders {
		if positiveEmotions[e] {
			pos++
		}
		if negativeEmotions[e] {
			neg++
		}
	}

	trend := domain.TrendNeutral
	switch {
	case pos > neg:
		trend = domain.TrendPositive
	case neg > pos:
		trend = domain.TrendConcerning
	}

	return domain.ConversationalImpact{
		Trend:             trend,
		Narrative:         trendNarrative(trend),
		RecentEmotions:    emotions,
		StressProgression: stress,
	}
}

func trendNarrative(t domain.Trend) string {
	switch t {
	case domain.TrendPositive:
		return "User seems to be feeling lighter"
	case domain.TrendConcerning:
		return "User may need more support"
	case domain.TrendCrisis:
		return narrativeCrisis
	case domain.TrendNeutral:
		fallthrough
	default:
		return "User is opening up"
	}
}
