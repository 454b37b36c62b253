// Package fallback produces canned supportive replies when no generative
// backend could answer.
package fallback

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

// Category names a reply pool.
type Category string

const (
	CategoryGreeting  Category = "greeting"
	CategoryHowAreYou Category = "how_are_you"
	CategoryGood      Category = "good"
	CategorySad       Category = "sad"
	CategoryAnxious   Category = "anxious"
	CategoryAngry     Category = "angry"
	CategoryLonely    Category = "lonely"
	CategoryTired     Category = "tired"
	CategoryConfused  Category = "confused"
	CategoryGrateful  Category = "grateful"
	CategoryDefault   Category = "default"
)

var greetingTokens = []string{
	"hi", "hii", "hello", "hey", "heya", "hola", "namaste", "yo", "sup",
	"good morning", "good afternoon", "good evening",
}

var howAreYouPatterns = []string{
	"how are you", "how r u", "how are u", "how's it going", "hows it going",
	"what's up", "whats up", "how you doing", "how have you been",
}

type keywordCategory struct {
	category Category
	keywords []string
}

// keywordCategories are tried in order; the first category with a hit wins.
var keywordCategories = []keywordCategory{
	{CategoryGood, []string{"good", "great", "happy", "awesome", "amazing", "excited", "fantastic", "wonderful"}},
	{CategorySad, []string{"sad", "down", "depressed", "crying", "upset", "heartbroken", "miserable", "unhappy"}},
	{CategoryAnxious, []string{"anxious", "worried", "nervous", "scared", "panic", "stress", "overwhelm", "afraid"}},
	{CategoryAngry, []string{"angry", "mad", "frustrated", "annoyed", "furious", "irritated", "pissed"}},
	{CategoryLonely, []string{"lonely", "alone", "isolated", "no one", "nobody", "left out"}},
	{CategoryTired, []string{"tired", "exhausted", "sleepy", "drained", "no energy", "burnt out"}},
	{CategoryConfused, []string{"confused", "don't know", "dont know", "lost", "unsure", "no idea"}},
	{CategoryGrateful, []string{"thank", "thanks", "grateful", "appreciate"}},
}

var pools = map[Category][]string{
	CategoryGreeting: {
		"Hey! 💙 So good to hear from you. What's on your mind today?",
		"Hi there! I'm right here. How's your day been so far?",
		"Hello! 😊 Tell me everything, how are you really doing?",
		"Hey you! I was hoping you'd drop by. What's going on?",
	},
	CategoryHowAreYou: {
		"I'm doing good, thanks for asking! 💙 But I'm way more curious about you. How are you feeling?",
		"Honestly? Better now that you're here. How about you, how's everything?",
		"I'm here and all ears! What's been going on with you lately?",
	},
	CategoryGood: {
		"That's amazing! 🎉 I love hearing that. What made it so good?",
		"Yay, that makes me so happy for you! Tell me more!",
		"Look at you! 💙 Moments like these deserve to be celebrated. What happened?",
	},
	CategorySad: {
		"Oh no, I'm really sorry you're feeling this way. 💙 I'm right here with you. Want to tell me what happened?",
		"That sounds really heavy. You don't have to carry it alone, I'm listening.",
		"I hear you. It's okay to feel sad, yaar. What's been weighing on you?",
	},
	CategoryAnxious: {
		"Hey, let's take a slow breath together. 💙 What's making you feel this way?",
		"That sounds like a lot to hold. You're safe here. Want to talk through what's worrying you?",
		"Anxiety is exhausting, I get it. One thing at a time, what's the biggest thing on your mind?",
	},
	CategoryAngry: {
		"Ugh, that sounds so frustrating. 😤 Let it out, what happened?",
		"You have every right to feel that way. Want to vent? I'm all ears.",
		"That would get to me too. Tell me everything, I'm on your side.",
	},
	CategoryLonely: {
		"I'm really glad you reached out. 💙 You're not alone right now, I'm here.",
		"Feeling lonely is so hard. I'm right here with you, want to talk about it?",
		"Hey, I've got time for you, always. What's been going on?",
	},
	CategoryTired: {
		"Sounds like you've been running on empty. 💙 Have you had a chance to rest at all?",
		"Being that tired is rough. What's been draining you the most?",
		"You deserve a break, honestly. What would help you recharge a little today?",
	},
	CategoryConfused: {
		"That's totally okay, not everything has to make sense right away. Want to untangle it together?",
		"Feeling stuck is hard. Let's talk it through, where do you want to start?",
		"No pressure to have it all figured out. What's the part that feels most unclear?",
	},
	CategoryGrateful: {
		"Aww, you're welcome! 💙 I'm always here for you.",
		"That means a lot, thank you! I'm really glad I could be here.",
		"Anytime, seriously. That's what friends are for. 😊",
	},
	CategoryDefault: {
		"I'm here for you. 💙 Tell me more about what's on your mind?",
		"I'm listening. How are you feeling about all of this?",
		"Thanks for sharing that with me. What's been going on lately?",
		"I hear you. Your feelings are valid, want to talk more about it?",
	},
}

// emotionCategory maps an already detected emotion to a reply pool.
func emotionCategory(e domain.Emotion) (Category, bool) {
	switch e {
	case domain.EmotionSad:
		return CategorySad, true
	case domain.EmotionAnxious, domain.EmotionStressed:
		return CategoryAnxious, true
	case domain.EmotionAngry:
		return CategoryAngry, true
	case domain.EmotionLonely:
		return CategoryLonely, true
	default:
		return "", false
	}
}

// Responder picks canned replies. It is safe for concurrent use.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder creates a Responder drawing from rng. A nil rng is seeded
// from the clock.
func NewResponder(rng *rand.Rand) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Responder{rng: rng}
}

// Respond returns a canned reply for message. It never fails.
func (r *Responder) Respond(message string, emotion domain.Emotion) string {
	return r.pick(Classify(message, emotion))
}

// Classify returns the pool Respond would draw from.
func Classify(message string, emotion domain.Emotion) Category {
	msg := strings.ToLower(strings.TrimSpace(message))

	if isGreeting(msg) {
		return CategoryGreeting
	}

	for _, p := range howAreYouPatterns {
		if strings.Contains(msg, p) {
			return CategoryHowAreYou
		}
	}

	for _, kc := range keywordCategories {
		for _, kw := range kc.keywords {
			if strings.Contains(msg, kw) {
				return kc.category
			}
		}
	}

	if c, ok := emotionCategory(emotion); ok {
		return c
	}

	return CategoryDefault
}

func isGreeting(msg string) bool {
	for _, tok := range greetingTokens {
		if msg == tok || strings.HasPrefix(msg, tok+" ") || strings.HasPrefix(msg, tok+",") {
			return true
		}
	}
	return false
}

func (r *Responder) pick(c Category) string {
	pool := pools[c]

	// rand.Rand is not safe for concurrent use
	r.mu.Lock()
	i := r.rng.Intn(len(pool))
	r.mu.Unlock()

	return pool[i]
}

// Pool returns a copy of the replies in category c.
func Pool(c Category) []string {
	return append([]string(nil), pools[c]...)
}

// AllReplies returns a copy of every reply of every pool.
func AllReplies() []string {
	var out []string
	for _, p := range pools {
		out = append(out, p...)
	}
	return out
}
