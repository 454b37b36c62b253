package triage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/domain"
)

func TestRecommendCoping(t *testing.T) {
	for _, stress := range []domain.StressLevel{domain.StressNeutral, domain.StressLow, domain.StressHigh} {
		got := triage.RecommendCoping(domain.EmotionAnxious, stress)
		require.NotNil(t, got, "stress %s", stress)
		assert.Equal(t, domain.CopingBreathing, got.Category)
		assert.NotEmpty(t, got.Exercises)
	}

	assert.Nil(t, triage.RecommendCoping(domain.EmotionHappy, domain.StressHigh))
	assert.Nil(t, triage.RecommendCoping(domain.EmotionNeutral, domain.StressMedium))
	assert.Nil(t, triage.RecommendCoping(domain.EmotionCalm, domain.StressNeutral))

	sad := triage.RecommendCoping(domain.EmotionSad, domain.StressNeutral)
	require.NotNil(t, sad)
	assert.Equal(t, domain.CopingGrounding, sad.Category)
}

func TestRecommendCoping_ReturnsIndependentCopies(t *testing.T) {
	first := triage.RecommendCoping(domain.EmotionLonely, domain.StressLow)
	require.NotNil(t, first)
	first.Exercises[0].Name = "mutated"

	second := triage.RecommendCoping(domain.EmotionLonely, domain.StressLow)
	assert.NotEqual(t, "mutated", second.Exercises[0].Name)
}
