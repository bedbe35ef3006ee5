package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"botwerk-server/ai"
	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/validations"

	"github.com/sirupsen/logrus"
)

const (
	DefaultHistoryLimit = 10
	DefaultReplyTimeout = 20 * time.Second
)

// Notifier pushes realtime events to a user's open connections.
type Notifier interface {
	SendToUser(userID string, msg models.WSMessage)
}

// ChatStore is the persistence the message endpoints need. *store.Store implements it.
type ChatStore interface {
	GetChatSession(id, userID string) (*models.ChatSession, error)
	GetBotByID(id string) (*models.Bot, error)
	GetChatMessagesBySessionID(sessionID string) ([]models.ChatMessage, error)
	GetRecentChatMessages(sessionID string, limit int) ([]models.ChatMessage, error)
	AddChatMessage(sessionID, role, content string) (*models.ChatMessage, error)
	TouchChatSession(id string) error
}

type ChatOptions struct {
	HistoryLimit int
	ReplyTimeout time.Duration
}

type ChatHandler struct {
	store        ChatStore
	responder    ai.Responder
	notifier     Notifier
	historyLimit int
	replyTimeout time.Duration
	sessions     *keyedMutex
}

func NewChatHandler(s ChatStore, responder ai.Responder, notifier Notifier, opts ChatOptions) *ChatHandler {
	if opts.HistoryLimit < 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.ReplyTimeout <= 0 {
		opts.ReplyTimeout = DefaultReplyTimeout
	}
	return &ChatHandler{
		store:        s,
		responder:    responder,
		notifier:     notifier,
		historyLimit: opts.HistoryLimit,
		replyTimeout: opts.ReplyTimeout,
		sessions:     newKeyedMutex(),
	}
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.GetChatSession(r.PathValue("id"), middleware.GetUserID(r))
	if err != nil {
		writeStoreError(w, err, "Chat session not found", "Failed to fetch chat messages")
		return
	}

	messages, err := h.store.GetChatMessagesBySessionID(session.ID)
	if err != nil {
		writeStoreError(w, err, "Chat session not found", "Failed to fetch chat messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Send stores the user's message, generates and stores the bot's reply and returns both.
// Messages posted concurrently to one session are processed one at a time.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validations.ValidateSendMessage(r.Context(), req); err != nil {
		writeValidationError(w, err)
		return
	}

	userID := middleware.GetUserID(r)
	session, err := h.store.GetChatSession(r.PathValue("id"), userID)
	if err != nil {
		writeStoreError(w, err, "Chat session not found", "Failed to process chat message")
		return
	}

	bot, err := h.store.GetBotByID(session.BotID)
	if err != nil {
		writeStoreError(w, err, "Bot not found", "Failed to process chat message")
		return
	}

	unlock := h.sessions.Lock(session.ID)
	defer unlock()

	var history []models.ChatMessage
	if h.historyLimit > 0 {
		history, err = h.store.GetRecentChatMessages(session.ID, h.historyLimit)
		if err != nil {
			logrus.WithError(err).Warnf("[CHAT] Failed to load history for session %s, replying without it", session.ID)
			history = nil
		}
	}

	userMessage, err := h.store.AddChatMessage(session.ID, models.RoleUser, req.Content)
	if err != nil {
		writeStoreError(w, err, "Chat session not found", "Failed to process chat message")
		return
	}

	h.notify(userID, models.WSTypeTyping, models.TypingPayload{SessionID: session.ID, BotID: bot.ID, Typing: true})
	reply := h.reply(r.Context(), req.Content, bot, models.Turns(history))
	h.notify(userID, models.WSTypeTyping, models.TypingPayload{SessionID: session.ID, BotID: bot.ID, Typing: false})

	botMessage, err := h.store.AddChatMessage(session.ID, models.RoleAssistant, reply)
	if err != nil && reply != models.ApologyMessage {
		logrus.WithError(err).Errorf("[CHAT] Failed to store reply for session %s, storing apology", session.ID)
		botMessage, err = h.store.AddChatMessage(session.ID, models.RoleAssistant, models.ApologyMessage)
	}
	if err != nil {
		writeStoreError(w, err, "Chat session not found", "Failed to process chat message")
		return
	}

	if err := h.store.TouchChatSession(session.ID); err != nil {
		logrus.WithError(err).Warnf("[CHAT] Failed to touch session %s", session.ID)
	}

	h.notify(userID, models.WSTypeNewMessage, userMessage)
	h.notify(userID, models.WSTypeNewMessage, botMessage)

	writeJSON(w, http.StatusOK, models.ChatExchange{
		UserMessage: *userMessage,
		BotMessage:  *botMessage,
	})
}

// reply never fails: any error, panic or empty answer becomes the apology message.
func (h *ChatHandler) reply(ctx context.Context, content string, bot *models.Bot, history []models.ChatTurn) (reply string) {
	ctx, cancel := context.WithTimeout(ctx, h.replyTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			logrus.WithField("bot", bot.ID).Errorf("[CHAT] Responder panicked: %v", p)
			reply = models.ApologyMessage
		}
	}()

	reply, err := h.responder.Reply(ctx, content, bot.Config(), history)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ai.ErrEmptyReply
	}
	if err != nil {
		logrus.WithError(err).WithField("bot", bot.ID).Error("[CHAT] Failed to generate reply")
		return models.ApologyMessage
	}

	logrus.WithFields(logrus.Fields{
		"bot":      bot.ID,
		"history":  len(history),
		"duration": time.Since(start),
	}).Debug("[CHAT] Reply generated")
	return reply
}

func (h *ChatHandler) notify(userID, msgType string, payload any) {
	if h.notifier == nil {
		return
	}
	h.notifier.SendToUser(userID, models.WSMessage{Type: msgType, Payload: payload})
}
