// Package ws serves the realtime chat channel: one websocket per session,
// JSON frames in both directions.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/PabloGalante/dost-companion/internal/app/conversation"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

const (
	FrameTyping  = "typing"
	FrameMessage = "message"

	errConversationNotFound = "Conversation not found"

	writeWait      = 10 * time.Second
	maxFrameBytes  = 64 << 10
	defaultMaxRune = 2000
)

// Conversation is the part of the conversation service the chat needs.
type Conversation interface {
	GetSessionTimeline(ctx context.Context, id domain.SessionID, limit int) (*domain.Session, []*domain.Message, error)
	SendMessage(ctx context.Context, in conversation.SendMessageInput) (*conversation.SendMessageOutput, error)
}

type inbound struct {
	Message string `json:"message"`
}

type typingFrame struct {
	Type     string `json:"type"`
	IsTyping bool   `json:"is_typing"`
}

type messageView struct {
	ID              string    `json:"id"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	DetectedEmotion string    `json:"detected_emotion,omitempty"`
	IsCrisis        bool      `json:"is_crisis,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type messageFrame struct {
	Type             string              `json:"type"`
	UserMessage      messageView         `json:"user_message"`
	AssistantMessage messageView         `json:"assistant_message"`
	Triage           domain.TriageResult `json:"triage"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// ChatHandler upgrades GET /ws/sessions/{id} and relays messages to the
// conversation service.
type ChatHandler struct {
	conv             Conversation
	upgrader         websocket.Upgrader
	maxMessageLength int
}

func NewChatHandler(conv Conversation, maxMessageLength int) *ChatHandler {
	if maxMessageLength <= 0 {
		maxMessageLength = defaultMaxRune
	}
	return &ChatHandler{
		conv: conv,
		upgrader: websocket.Upgrader{
			// Same open policy as the REST CORS headers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		maxMessageLength: maxMessageLength,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := domain.SessionID(r.PathValue("id"))
	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	if _, _, err := h.conv.GetSessionTimeline(ctx, sessionID, 1); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			_ = h.write(conn, errorFrame{Error: errConversationNotFound})
		} else {
			log.Error("loading session failed", "error", err)
			_ = h.write(conn, errorFrame{Error: "internal server error"})
		}
		return
	}

	log.Info("websocket connected")
	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read error", "error", err)
			}
			log.Info("websocket disconnected")
			return
		}

		if strings.TrimSpace(in.Message) == "" {
			if err := h.write(conn, errorFrame{Error: "message is required"}); err != nil {
				return
			}
			continue
		}
		if utf8.RuneCountInString(in.Message) > h.maxMessageLength {
			if err := h.write(conn, errorFrame{Error: "message too long"}); err != nil {
				return
			}
			continue
		}

		if err := h.write(conn, typingFrame{Type: FrameTyping, IsTyping: true}); err != nil {
			return
		}

		out, err := h.conv.SendMessage(ctx, conversation.SendMessageInput{
			SessionID: sessionID,
			Text:      in.Message,
		})
		if err != nil {
			msg := "internal server error"
			if errors.Is(err, domain.ErrSessionNotFound) {
				msg = errConversationNotFound
			} else {
				log.Error("send message failed", "error", err)
			}
			if err := h.write(conn, errorFrame{Error: msg}); err != nil {
				return
			}
			continue
		}

		frame := messageFrame{
			Type:             FrameMessage,
			UserMessage:      toView(out.UserMessage),
			AssistantMessage: toView(out.AssistantMessage),
			Triage:           out.Triage,
		}
		if err := h.write(conn, frame); err != nil {
			log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (h *ChatHandler) write(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

func toView(m *domain.Message) messageView {
	return messageView{
		ID:              string(m.ID),
		Author:          string(m.Author),
		Text:            m.Text,
		DetectedEmotion: string(m.DetectedEmotion),
		IsCrisis:        m.IsCrisis,
		CreatedAt:       m.CreatedAt,
	}
}
