package domain

import (
	"strings"
	"time"
)

type SessionID string
type UserID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Tone is the user's preferred voice for the companion.
type Tone string

const (
	ToneCalm     Tone = "calm"     // Soft, grounding
	ToneFriendly Tone = "friendly" // Warm, chatty (default)
	ToneMinimal  Tone = "minimal"  // Short and to the point
)

// ParseTone normalises a raw tone string. Anything unrecognised,
// including the empty string, becomes ToneFriendly.
func ParseTone(s string) Tone {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case ToneCalm:
		return ToneCalm
	case ToneMinimal:
		return ToneMinimal
	default:
		return ToneFriendly
	}
}

type Timestamp = time.Time
