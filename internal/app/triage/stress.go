package triage

import (
	"strings"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

var (
	highStressIndicators = []string{
		"overwhelmed", "can't handle", "too much", "breaking down",
		"exhausted", "burnt out", "giving up", "can't cope",
	}
	mediumStressIndicators = []string{
		"stressed", "pressure", "worried", "anxious",
		"struggling", "difficult", "hard time",
	}
	lowStressIndicators = []string{
		"calm", "relaxed", "okay", "manageable", "handling",
		"better", "improving",
	}
)

// AnalyzeStress buckets text into a stress level. A single high-stress hit
// dominates any number of calmer ones.
func AnalyzeStress(text string) domain.StressAssessment {
	lower := strings.ToLower(text)

	high := countContained(lower, highStressIndicators)
	medium := countContained(lower, mediumStressIndicators)
	low := countContained(lower, lowStressIndicators)

	level := domain.StressNeutral
	switch {
	case high > 0:
		level = domain.StressHigh
	case medium > 0:
		level = domain.StressMedium
	case low > 0:
		level = domain.StressLow
	}

	return domain.StressAssessment{
		Level:              level,
		IndicatorsFound:    high + medium,
		PositiveIndicators: low,
	}
}
