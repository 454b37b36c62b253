package domain

// Turn is one entry of the conversation history handed to the pipeline.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Emotion is the single dominant feeling assigned to a message.
type Emotion string

// Declaration order matters: it breaks ties between equally scored labels.
const (
	EmotionHappy      Emotion = "happy"
	EmotionSad        Emotion = "sad"
	EmotionAnxious    Emotion = "anxious"
	EmotionAngry      Emotion = "angry"
	EmotionStressed   Emotion = "stressed"
	EmotionConfused   Emotion = "confused"
	EmotionCalm       Emotion = "calm"
	EmotionHopeful    Emotion = "hopeful"
	EmotionLonely     Emotion = "lonely"
	EmotionAshamed    Emotion = "ashamed"
	EmotionNeutral    Emotion = "neutral"
	EmotionDistressed Emotion = "distressed" // crisis sentinel
)

// Emotions returns the closed vocabulary in declaration order.
func Emotions() []Emotion {
	return []Emotion{
		EmotionHappy, EmotionSad, EmotionAnxious, EmotionAngry,
		EmotionStressed, EmotionConfused, EmotionCalm, EmotionHopeful,
		EmotionLonely, EmotionAshamed, EmotionNeutral, EmotionDistressed,
	}
}

type StressLevel string

const (
	StressCritical StressLevel = "critical" // crisis detections only
	StressHigh     StressLevel = "high"
	StressMedium   StressLevel = "medium"
	StressLow      StressLevel = "low"
	StressNeutral  StressLevel = "neutral"
)

type StressAssessment struct {
	Level StressLevel `json:"level"`

	// IndicatorsFound counts high and medium stress hits only.
	IndicatorsFound    int `json:"indicators_found"`
	PositiveIndicators int `json:"positive_indicators"`
}

type Trend string

const (
	TrendPositive   Trend = "positive"
	TrendConcerning Trend = "concerning"
	TrendNeutral    Trend = "neutral"
	TrendCrisis     Trend = "crisis"
)

// ConversationalImpact summarises whether recent dialogue seems to help.
type ConversationalImpact struct {
	Trend             Trend         `json:"trend"`
	Narrative         string        `json:"narrative"`
	RecentEmotions    []Emotion     `json:"recent_emotions,omitempty"`
	StressProgression []StressLevel `json:"stress_progression,omitempty"`
}

type CopingCategory string

const (
	CopingBreathing   CopingCategory = "breathing"
	CopingGrounding   CopingCategory = "grounding"
	CopingMindfulness CopingCategory = "mindfulness"
	CopingRelaxation  CopingCategory = "relaxation"
)

type Exercise struct {
	Name     string `json:"name"`
	ID       int    `json:"id"`
	Duration string `json:"duration"`
}

type CopingSuggestion struct {
	Category      CopingCategory `json:"category"`
	PromptMessage string         `json:"message"`
	Exercises     []Exercise     `json:"exercises"`
}

// EmotionContext is the classification bundle handed to the provider
// gateway so replies can adapt to how the user feels.
type EmotionContext struct {
	Emotion     Emotion
	StressLevel StressLevel
	Impact      ConversationalImpact
}

// TriageResult is everything the caller needs to answer and persist a turn.
type TriageResult struct {
	ResponseText         string               `json:"response"`
	IsCrisis             bool                 `json:"is_crisis"`
	DetectedEmotion      Emotion              `json:"detected_emotion"`
	StressLevel          StressLevel          `json:"stress_level"`
	ConversationalImpact ConversationalImpact `json:"conversation_impact"`
	CopingSuggestion     *CopingSuggestion    `json:"coping_suggestion"`

	// ResponseSource is "crisis", "fallback" or the name of the provider
	// that produced ResponseText.
	ResponseSource string `json:"response_source"`
}
