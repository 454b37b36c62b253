// Package gateway asks generative backends for a reply, one after another,
// and falls back to canned replies when none of them answers.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/dost-companion/internal/app/fallback"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

const (
	// SourceFallback marks replies produced by the canned responder.
	SourceFallback = "fallback"

	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 30 * time.Second
)

var errEmptyReply = errors.New("provider returned empty text")

// Reply is the text shown to the user and who produced it.
type Reply struct {
	Text   string
	Source string
}

type Gateway struct {
	providers []domain.Provider
	primary   string
	persona   string
	timeout   time.Duration
	responder *fallback.Responder
}

type Option func(*Gateway)

// WithPrimary moves the named provider to the front of the chain.
func WithPrimary(name string) Option {
	return func(g *Gateway) { g.primary = name }
}

func WithPersona(persona string) Option {
	return func(g *Gateway) { g.persona = persona }
}

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New builds a gateway over providers, given in fallback order.
// A nil responder gets a clock-seeded one.
func New(providers []domain.Provider, responder *fallback.Responder, opts ...Option) *Gateway {
	if responder == nil {
		responder = fallback.NewResponder(nil)
	}
	g := &Gateway{
		providers: providers,
		persona:   DefaultPersona,
		timeout:   DefaultTimeout,
		responder: responder,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Candidates returns the providers to try, in order: the primary one (if
// it has credentials) and then every other credentialed provider in the
// order given. Names never repeat.
func Candidates(primary string, providers []domain.Provider) []domain.Provider {
	out := make([]domain.Provider, 0, len(providers))
	seen := make(map[string]bool, len(providers))

	add := func(p domain.Provider) {
		if p == nil || seen[p.Name()] || !p.Available() {
			return
		}
		seen[p.Name()] = true
		out = append(out, p)
	}

	if primary != "" {
		for _, p := range providers {
			if p != nil && p.Name() == primary {
				add(p)
				break
			}
		}
	}
	for _, p := range providers {
		add(p)
	}
	return out
}

// Candidates returns this gateway's current chain.
func (g *Gateway) Candidates() []domain.Provider {
	return Candidates(g.primary, g.providers)
}

// GenerateReply walks the provider chain and returns the first non-empty
// reply. When every provider fails, or none is configured, the canned
// responder answers instead. It never fails.
func (g *Gateway) GenerateReply(
	ctx context.Context,
	history []domain.Turn,
	tone domain.Tone,
	ec *domain.EmotionContext,
) Reply {
	log := observability.LoggerFromContext(ctx)
	system := BuildSystemPrompt(g.persona, tone, ec)

	candidates := g.Candidates()
	if len(candidates) == 0 {
		log.Warn("no provider configured, using fallback responder")
	}

	for _, p := range candidates {
		start := time.Now()
		text, err := g.try(ctx, p, system, history)
		if err != nil {
			log.Warn("provider failed",
				"provider", p.Name(),
				"elapsed_ms", time.Since(start).Milliseconds(),
				"error", err)
			continue
		}

		log.Info("provider replied",
			"provider", p.Name(),
			"elapsed_ms", time.Since(start).Milliseconds())
		return Reply{Text: text, Source: p.Name()}
	}

	emotion := domain.EmotionNeutral
	if ec != nil {
		emotion = ec.Emotion
	}

	observability.FallbackReplies.Inc()
	log.Info("using fallback responder", "candidates", len(candidates))

	return Reply{
		Text:   g.responder.Respond(lastUserMessage(history), emotion),
		Source: SourceFallback,
	}
}

// try runs one provider under its own deadline. Panics are turned into
// errors so a broken adapter only costs its own turn in the chain.
func (g *Gateway) try(ctx context.Context, p domain.Provider, system string, turns []domain.Turn) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider %s panicked: %v", p.Name(), r)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err = p.Generate(callCtx, system, turns)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errEmptyReply
	}
	return text, nil
}

func lastUserMessage(history []domain.Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == domain.RoleUser {
			return history[i].Content
		}
	}
	return ""
}
