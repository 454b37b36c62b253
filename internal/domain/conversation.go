package domain

// Message represents any message in a conversation (user, assistant or system)
type Message struct {
	ID        MessageID
	SessionID SessionID
	Author    Role
	Text      string
	CreatedAt Timestamp

	// Classification attached to user messages by the triage pipeline
	DetectedEmotion Emotion
	IsCrisis        bool
}

// Session represents a conversation between a user and Dost (could last days)
type Session struct {
	ID        SessionID
	UserID    UserID
	CreatedAt Timestamp
	UpdatedAt Timestamp

	PreferredTone Tone
	Title         string
}

// ToTurns converts stored messages into the chronological history the
// triage pipeline consumes.
func ToTurns(msgs []*Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		turns = append(turns, Turn{Role: m.Author, Content: m.Text})
	}
	return turns
}
