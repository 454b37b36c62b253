package domain

import "time"

// JournalEntryID identifies a journal entry
type JournalEntryID string

// JournalEntry is a free-form entry the user writes outside the chat
type JournalEntry struct {
	ID     JournalEntryID `json:"id"`
	UserID UserID         `json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// Mood is either chosen by the user or detected from Content
	Mood     Emotion `json:"mood"`
	IsCrisis bool    `json:"is_crisis"`

	AIReflectionEnabled bool   `json:"ai_reflection_enabled"`
	AIReflection        string `json:"ai_reflection"`
}

// IsEmotion reports whether e belongs to the closed emotion vocabulary.
func IsEmotion(e Emotion) bool {
	for _, known := range Emotions() {
		if e == known {
			return true
		}
	}
	return false
}
