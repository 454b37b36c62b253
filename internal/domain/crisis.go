package domain

type CrisisLogID string

// CrisisLog records a detected crisis for safety follow-up.
type CrisisLog struct {
	ID            CrisisLogID `json:"id"`
	UserID        UserID      `json:"user_id"`
	SessionID     SessionID   `json:"session_id"`
	MessageID     MessageID   `json:"message_id"`
	TriggerPhrase string      `json:"trigger_phrase"`
	ResponseGiven string      `json:"response_given"`
	CreatedAt     Timestamp   `json:"created_at"`
}
