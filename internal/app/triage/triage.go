// Package triage decides what a user sees in response to a message: crisis
// screening, emotion and stress classification, conversation trend, coping
// suggestions and the generated reply.
package triage

import (
	"context"
	"time"

	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

// SourceCrisis marks the fixed crisis reply.
const SourceCrisis = "crisis"

// CrisisResponse is delivered verbatim whenever a crisis is detected.
const CrisisResponse = `I hear you, and I want you to know that what you're feeling matters. Please know that you're not alone in this.

If you're having thoughts of hurting yourself, please reach out to a crisis helpline right away:

🇮🇳 **India Crisis Helplines:**
- **iCall**: 9152987821
- **Vandrevala Foundation**: 1860-2662-345
- **NIMHANS**: 080-46110007
- **AASRA**: 9820466726

These are trained professionals who care and want to help. Would you like to talk about what's been making you feel this way?`

// ReplyGenerator produces the assistant reply. *gateway.Gateway is the
// production implementation.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []domain.Turn, tone domain.Tone, ec *domain.EmotionContext) gateway.Reply
}

// Service runs the triage pipeline. It keeps no state between calls and is
// safe for concurrent use.
type Service struct {
	replies ReplyGenerator
}

func NewService(replies ReplyGenerator) *Service {
	return &Service{replies: replies}
}

// CrisisResult is the fixed answer for crisis messages.
func CrisisResult() domain.TriageResult {
	return domain.TriageResult{
		ResponseText:    CrisisResponse,
		IsCrisis:        true,
		DetectedEmotion: domain.EmotionDistressed,
		StressLevel:     domain.StressCritical,
		ConversationalImpact: domain.ConversationalImpact{
			Trend:     domain.TrendCrisis,
			Narrative: narrativeCrisis,
		},
		CopingSuggestion: nil,
		ResponseSource:   SourceCrisis,
	}
}

// Triage classifies message in the light of history (which must not
// include message itself) and produces the reply. It never fails: an
// unknown tone means friendly and provider outages end in a canned reply.
func (s *Service) Triage(ctx context.Context, message string, history []domain.Turn, tone string) domain.TriageResult {
	log := observability.LoggerFromContext(ctx)
	start := time.Now()

	// Crisis screening looks at the new message only and gates everything else.
	if DetectCrisis(message) {
		observability.CrisisDetections.Inc()
		log.Warn("crisis detected, skipping generation")
		return CrisisResult()
	}

	emotion := DetectEmotion(message)
	stress := AnalyzeStress(message)
	impact := DetectConversationImpact(history)
	coping := RecommendCoping(emotion, stress.Level)

	log.Info("message classified",
		"emotion", emotion,
		"stress_level", stress.Level,
		"stress_indicators", stress.IndicatorsFound,
		"trend", impact.Trend,
		"coping", coping != nil)

	turns := make([]domain.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, domain.Turn{Role: domain.RoleUser, Content: message})

	reply := s.replies.GenerateReply(ctx, turns, domain.ParseTone(tone), &domain.EmotionContext{
		Emotion:     emotion,
		StressLevel: stress.Level,
		Impact:      impact,
	})

	observability.TriageResults.WithLabelValues(string(emotion), string(stress.Level)).Inc()
	log.Info("triage completed",
		"source", reply.Source,
		"elapsed_ms", time.Since(start).Milliseconds())

	return domain.TriageResult{
		ResponseText:         reply.Text,
		IsCrisis:             false,
		DetectedEmotion:      emotion,
		StressLevel:          stress.Level,
		ConversationalImpact: impact,
		CopingSuggestion:     coping,
		ResponseSource:       reply.Source,
	}
}
