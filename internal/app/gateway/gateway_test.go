package gateway_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/dost-companion/internal/app/fallback"
	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

type stubProvider struct {
	name      string
	available bool
	reply     string
	err       error
	delay     time.Duration
	panics    bool

	calls  int
	system string
}

func (p *stubProvider) Name() string    { return p.name }
func (p *stubProvider) Available() bool { return p.available }

func (p *stubProvider) Generate(ctx context.Context, system string, _ []domain.Turn) (string, error) {
	p.calls++
	p.system = system
	if p.panics {
		panic("adapter bug")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return p.reply, p.err
}

func ok(name, reply string) *stubProvider {
	return &stubProvider{name: name, available: true, reply: reply}
}

func failing(name string) *stubProvider {
	return &stubProvider{name: name, available: true, err: errors.New(name + " is down")}
}

var history = []domain.Turn{{Role: domain.RoleUser, Content: "hello"}}

func names(ps []domain.Provider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}

func TestCandidates_PrimaryFirstThenOrderWithoutDuplicates(t *testing.T) {
	a, b, c := ok("a", ""), ok("b", ""), ok("c", "")
	unavailable := &stubProvider{name: "d"}
	dup := ok("a", "")

	got := gateway.Candidates("c", []domain.Provider{a, b, unavailable, c, dup})
	assert.Equal(t, []string{"c", "a", "b"}, names(got))
}

func TestCandidates_UnavailablePrimaryIsSkipped(t *testing.T) {
	a, b := ok("a", ""), &stubProvider{name: "b"}

	got := gateway.Candidates("b", []domain.Provider{a, b})
	assert.Equal(t, []string{"a"}, names(got))

	assert.Empty(t, gateway.Candidates("a", nil))
}

func TestGenerateReply_FirstFailsSecondSucceeds(t *testing.T) {
	p1, p2, p3 := failing("one"), ok("two", "second answer"), ok("three", "third answer")
	g := gateway.New([]domain.Provider{p1, p2, p3}, nil)

	got := g.GenerateReply(context.Background(), history, domain.ToneFriendly, nil)

	assert.Equal(t, "second answer", got.Text)
	assert.Equal(t, "two", got.Source)
	assert.Equal(t, 1, p1.calls)
	assert.Equal(t, 1, p2.calls)
	assert.Zero(t, p3.calls)
}

func TestGenerateReply_PrimaryIsTriedFirst(t *testing.T) {
	p1, p2 := ok("one", "from one"), ok("two", "from two")
	g := gateway.New([]domain.Provider{p1, p2}, nil, gateway.WithPrimary("two"))

	got := g.GenerateReply(context.Background(), history, domain.ToneCalm, nil)

	assert.Equal(t, "two", got.Source)
	assert.Zero(t, p1.calls)
}

func TestGenerateReply_AllFailUsesFallback(t *testing.T) {
	p1, p2 := failing("one"), failing("two")
	g := gateway.New([]domain.Provider{p1, p2}, fallback.NewResponder(rand.New(rand.NewSource(1))))

	before := testutil.ToFloat64(observability.FallbackReplies)
	got := g.GenerateReply(context.Background(), history, domain.ToneFriendly, nil)

	assert.Equal(t, gateway.SourceFallback, got.Source)
	assert.Contains(t, fallback.Pool(fallback.CategoryGreeting), got.Text)
	assert.Equal(t, 1, p1.calls)
	assert.Equal(t, 1, p2.calls)
	assert.Equal(t, before+1, testutil.ToFloat64(observability.FallbackReplies))
}

func TestGenerateReply_NoProvidersUsesFallback(t *testing.T) {
	g := gateway.New(nil, nil)

	got := g.GenerateReply(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "I feel sad"}}, domain.ToneFriendly,
		&domain.EmotionContext{Emotion: domain.EmotionSad})

	assert.Equal(t, gateway.SourceFallback, got.Source)
	assert.Contains(t, fallback.AllReplies(), got.Text)
}

func TestGenerateReply_EmptyTextCountsAsFailure(t *testing.T) {
	blank, good := ok("blank", "   "), ok("good", "real reply")
	g := gateway.New([]domain.Provider{blank, good}, nil)

	got := g.GenerateReply(context.Background(), history, domain.ToneFriendly, nil)
	assert.Equal(t, "good", got.Source)
}

func TestGenerateReply_TimeoutAdvances(t *testing.T) {
	slow := &stubProvider{name: "slow", available: true, reply: "too late", delay: time.Second}
	fast := ok("fast", "on time")
	g := gateway.New([]domain.Provider{slow, fast}, nil, gateway.WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := g.GenerateReply(context.Background(), history, domain.ToneFriendly, nil)

	assert.Equal(t, "fast", got.Source)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGenerateReply_PanicIsContained(t *testing.T) {
	broken := &stubProvider{name: "broken", available: true, panics: true}
	good := ok("good", "still fine")
	g := gateway.New([]domain.Provider{broken, good}, nil)

	var got gateway.Reply
	require.NotPanics(t, func() {
		got = g.GenerateReply(context.Background(), history, domain.ToneFriendly, nil)
	})
	assert.Equal(t, "good", got.Source)
}

func TestGenerateReply_SystemPromptCarriesToneAndEmotion(t *testing.T) {
	p := ok("p", "hi")
	g := gateway.New([]domain.Provider{p}, nil, gateway.WithPersona("You are a test persona."))

	g.GenerateReply(context.Background(), history, domain.ToneMinimal, &domain.EmotionContext{
		Emotion:     domain.EmotionAnxious,
		StressLevel: domain.StressMedium,
	})

	assert.Contains(t, p.system, "You are a test persona.")
	assert.Contains(t, p.system, "Keep it short")
	assert.Contains(t, p.system, "Current user emotional state: anxious")
}
