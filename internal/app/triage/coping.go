package triage

import "github.com/PabloGalante/dost-companion/internal/domain"

var copingTable = map[domain.Emotion]domain.CopingSuggestion{
	domain.EmotionAnxious: {
		Category:      domain.CopingBreathing,
		PromptMessage: "Take a breath with me? 💙",
		Exercises: []domain.Exercise{
			{Name: "Box Breathing", ID: 1, Duration: "2 min"},
			{Name: "4-7-8 Breathing", ID: 2, Duration: "3 min"},
		},
	},
	domain.EmotionStressed: {
		Category:      domain.CopingBreathing,
		PromptMessage: "Let's slow down for a sec 💙",
		Exercises: []domain.Exercise{
			{Name: "Deep Breathing", ID: 3, Duration: "2 min"},
			{Name: "Body Scan", ID: 4, Duration: "5 min"},
		},
	},
	domain.EmotionSad: {
		Category:      domain.CopingGrounding,
		PromptMessage: "This might help a little 💙",
		Exercises: []domain.Exercise{
			{Name: "5-4-3-2-1 Grounding", ID: 5, Duration: "3 min"},
			{Name: "Gratitude Moment", ID: 6, Duration: "2 min"},
		},
	},
	domain.EmotionAngry: {
		Category:      domain.CopingRelaxation,
		PromptMessage: "Want to let some of that out? 💙",
		Exercises: []domain.Exercise{
			{Name: "Progressive Muscle Relaxation", ID: 7, Duration: "5 min"},
			{Name: "Calm Breathing", ID: 8, Duration: "2 min"},
		},
	},
	domain.EmotionLonely: {
		Category:      domain.CopingMindfulness,
		PromptMessage: "You're not alone 💙",
		Exercises: []domain.Exercise{
			{Name: "Self-Compassion", ID: 9, Duration: "3 min"},
			{Name: "Loving Kindness", ID: 10, Duration: "5 min"},
		},
	},
	domain.EmotionAshamed: {
		Category:      domain.CopingMindfulness,
		PromptMessage: "Be gentle with yourself for a minute 💙",
		Exercises: []domain.Exercise{
			{Name: "Self-Compassion", ID: 9, Duration: "3 min"},
			{Name: "Grounding Exercise", ID: 5, Duration: "3 min"},
		},
	},
}

// RecommendCoping suggests an exercise bundle. Stress only widens
// eligibility; the bundle always comes from the emotion, so an emotion
// without a bundle gets nothing even under high stress.
func RecommendCoping(emotion domain.Emotion, stress domain.StressLevel) *domain.CopingSuggestion {
	rec, ok := copingTable[emotion]
	eligible := stress == domain.StressHigh || stress == domain.StressMedium || ok
	if !eligible || !ok {
		return nil
	}

	out := rec
	out.Exercises = append([]domain.Exercise(nil), rec.Exercises...)
	return &out
}
