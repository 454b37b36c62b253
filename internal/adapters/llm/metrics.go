package llm

import (
	"context"
	"time"

	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

// MetricsProvider wraps a provider and records call outcomes and latency.
type MetricsProvider struct {
	domain.Provider
}

func WithMetrics(p domain.Provider) *MetricsProvider {
	return &MetricsProvider{Provider: p}
}

func (m *MetricsProvider) Generate(ctx context.Context, systemPrompt string, turns []domain.Turn) (string, error) {
	start := time.Now()
	text, err := m.Provider.Generate(ctx, systemPrompt, turns)

	outcome := "ok"
	switch {
	case ctx.Err() != nil:
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	case text == "":
		outcome = "empty"
	}

	name := m.Provider.Name()
	observability.ProviderRequests.WithLabelValues(name, outcome).Inc()
	observability.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return text, err
}
