package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PabloGalante/dost-companion/internal/app/conversation"
	journalapp "github.com/PabloGalante/dost-companion/internal/app/journal"
	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

// DefaultMaxMessageLength bounds user text, in characters.
const DefaultMaxMessageLength = 2000

type Server struct {
	svc     *conversation.Service
	journal *journalapp.Service
	triage  *triage.Service

	maxMessageLength int
	gatherer         prometheus.Gatherer
	extra            map[string]http.Handler
}

type Option func(*Server)

func WithMaxMessageLength(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxMessageLength = n
		}
	}
}

// WithRoute mounts an extra handler, e.g. the websocket chat endpoint.
func WithRoute(pattern string, h http.Handler) Option {
	return func(s *Server) { s.extra[pattern] = h }
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func NewServer(
	svc *conversation.Service,
	journalSvc *journalapp.Service,
	triageSvc *triage.Service,
	opts ...Option,
) http.Handler {
	s := &Server{
		svc:              svc,
		journal:          journalSvc,
		triage:           triageSvc,
		maxMessageLength: DefaultMaxMessageLength,
		gatherer:         prometheus.DefaultGatherer,
		extra:            map[string]http.Handler{},
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/messages", s.handleSendMessage)

	mux.HandleFunc("GET /users/{id}/sessions", s.handleListSessions)
	mux.HandleFunc("DELETE /users/{id}/history", s.handleDeleteHistory)
	mux.HandleFunc("GET /users/{id}/crisis-logs", s.handleListCrisisLogs)
	mux.HandleFunc("GET /users/{id}/journal", s.handleListJournal)

	mux.HandleFunc("POST /journal", s.handleCreateJournalEntry)
	mux.HandleFunc("POST /triage", s.handleTriage)

	for pattern, h := range s.extra {
		mux.Handle(pattern, h)
	}

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserID        string `json:"user_id"`
	PreferredTone string `json:"preferred_tone,omitempty"`
	Title         string `json:"title,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse  `json:"session"`
	Welcome *messageResponse `json:"welcome_message,omitempty"`
}

type sessionResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	PreferredTone string    `json:"preferred_tone"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	DetectedEmotion string    `json:"detected_emotion,omitempty"`
	IsCrisis        bool      `json:"is_crisis,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type sendMessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse     `json:"user_message"`
	AssistantMessage messageResponse     `json:"assistant_message"`
	Triage           domain.TriageResult `json:"triage"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type deleteHistoryResponse struct {
	DeletedSessions int `json:"deleted_sessions"`
}

type crisisLogsResponse struct {
	CrisisLogs []*domain.CrisisLog `json:"crisis_logs"`
}

type createJournalRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Mood    string `json:"mood,omitempty"`

	// AIReflectionEnabled defaults to true when omitted.
	AIReflectionEnabled *bool `json:"ai_reflection_enabled,omitempty"`
}

type journalResponse struct {
	Entries []*domain.JournalEntry `json:"entries"`
}

type triageRequest struct {
	Message string        `json:"message"`
	History []domain.Turn `json:"history,omitempty"`
	Tone    string        `json:"tone,omitempty"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.svc.StartSession(
		r.Context(),
		conversation.StartSessionInput{
			UserID:        domain.UserID(req.UserID),
			PreferredTone: domain.ParseTone(req.PreferredTone),
			Title:         req.Title,
		},
	)
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := createSessionResponse{
		Session: toSessionResponse(out.Session),
	}
	if out.Welcome != nil {
		m := toMessageResponse(out.Welcome)
		resp.Welcome = &m
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(r.PathValue("id"))

	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, queryLimit(r, 0))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			notFound(w, "session not found")
			return
		}
		internalError(w, r, err)
		return
	}

	resp := getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := domain.SessionID(r.PathValue("id"))

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if msg := s.validateText(req.Text); msg != "" {
		badRequest(w, msg)
		return
	}

	out, err := s.svc.SendMessage(
		r.Context(),
		conversation.SendMessageInput{
			SessionID: sessionID,
			UserID:    domain.UserID(req.UserID),
			Text:      req.Text,
		},
	)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			notFound(w, "session not found")
			return
		}
		internalError(w, r, err)
		return
	}

	resp := sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		AssistantMessage: toMessageResponse(out.AssistantMessage),
		Triage:           out.Triage,
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("id"))

	sessions, err := s.svc.ListSessions(r.Context(), userID, queryLimit(r, 50))
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: out})
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("id"))

	n, err := s.svc.DeleteHistory(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteHistoryResponse{DeletedSessions: n})
}

func (s *Server) handleListCrisisLogs(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("id"))

	logs, err := s.svc.ListCrisisLogs(r.Context(), userID, queryLimit(r, 0))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, crisisLogsResponse{CrisisLogs: logs})
}

func (s *Server) handleCreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req createJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		badRequest(w, "content is required")
		return
	}

	mood := domain.Emotion(strings.ToLower(strings.TrimSpace(req.Mood)))
	if mood != "" && !domain.IsEmotion(mood) {
		badRequest(w, "unknown mood: "+req.Mood)
		return
	}

	withReflection := true
	if req.AIReflectionEnabled != nil {
		withReflection = *req.AIReflectionEnabled
	}

	entry, err := s.journal.AddEntry(r.Context(), journalapp.AddEntryInput{
		UserID:  domain.UserID(req.UserID),
		Title:   req.Title,
		Content: req.Content,
		Mood:    mood,
		Reflect: withReflection,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("id"))

	entries, err := s.journal.GetUserJournal(r.Context(), userID, queryLimit(r, 0))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, journalResponse{Entries: entries})
}

// handleTriage classifies a message without touching any session.
func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if msg := s.validateText(req.Message); msg != "" {
		badRequest(w, msg)
		return
	}

	result := s.triage.Triage(r.Context(), req.Message, req.History, req.Tone)
	writeJSON(w, http.StatusOK, result)
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func (s *Server) validateText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "text is required"
	}
	if utf8.RuneCountInString(text) > s.maxMessageLength {
		return "message too long (max " + strconv.Itoa(s.maxMessageLength) + " characters)"
	}
	return ""
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:            string(s.ID),
		UserID:        string(s.UserID),
		Title:         s.Title,
		PreferredTone: string(s.PreferredTone),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:              string(m.ID),
		SessionID:       string(m.SessionID),
		Author:          string(m.Author),
		Text:            m.Text,
		DetectedEmotion: string(m.DetectedEmotion),
		IsCrisis:        m.IsCrisis,
		CreatedAt:       m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// queryLimit reads ?limit=N, falling back to def.
func queryLimit(r *http.Request, def int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}
