package domain

import "context"

// Provider is a text-generation backend. Implementations adapt one vendor
// API each; callers never see vendor types.
type Provider interface {
	// Name returns the provider identifier (gemini, openai, ...).
	Name() string

	// Available reports whether the provider has the credentials it needs.
	Available() bool

	// Generate returns the assistant reply for the given system prompt and
	// chronological turns.
	Generate(ctx context.Context, systemPrompt string, turns []Turn) (string, error)
}

// SessionStore defines session's persistence
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	ListSessionsByUser(ctx context.Context, userID UserID, limit int) ([]*Session, error)
	DeleteSessionsByUser(ctx context.Context, userID UserID) ([]SessionID, error)
}

// MessageStore defines message's persistence
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error

	// GetMessagesBySession returns the last `limit` messages in
	// chronological order. limit <= 0 returns all.
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
	DeleteMessagesBySession(ctx context.Context, sessionID SessionID) error
}

// CrisisLogStore keeps crisis records
type CrisisLogStore interface {
	AppendCrisisLog(ctx context.Context, entry *CrisisLog) error
	ListCrisisLogsByUser(ctx context.Context, userID UserID, limit int) ([]*CrisisLog, error)
}

// JournalStore defines the minimum operations to persist the journal
type JournalStore interface {
	AppendJournalEntry(ctx context.Context, entry *JournalEntry) error
	ListJournalEntriesByUser(ctx context.Context, userID UserID, limit int) ([]*JournalEntry, error)
}
