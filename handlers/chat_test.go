package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"botwerk-server/middleware"
	"botwerk-server/models"
	"botwerk-server/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type responderFunc func(ctx context.Context, userMessage string, bot models.BotConfig, history []models.ChatTurn) (string, error)

func (f responderFunc) Reply(ctx context.Context, userMessage string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
	return f(ctx, userMessage, bot, history)
}

func echo(_ context.Context, userMessage string, _ models.BotConfig, _ []models.ChatTurn) (string, error) {
	return "echo: " + userMessage, nil
}

func messagesPath(sessionID string) string {
	return "/api/sessions/" + sessionID + "/messages"
}

func (e *testEnv) chatSetup(bot models.CreateBotRequest) (models.AuthResponse, models.ChatSession) {
	e.t.Helper()
	user := e.register("anna@example.com")
	created := e.createBot(user.Token, bot)
	return user, e.createSession(user.Token, created.ID)
}

func TestSendUsesExamples(t *testing.T) {
	env := newTestEnv(t, nil, ChatOptions{HistoryLimit: DefaultHistoryLimit})
	user, session := env.chatSetup(models.CreateBotRequest{
		Name:     "Shopbot",
		Examples: []models.Example{{UserMessage: "Was kostet das?", BotResponse: "Es kostet 10 Euro."}},
	})

	rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: "Was kostet das?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	exchange := decodeBody[models.ChatExchange](t, rec)
	assert.NotEmpty(t, exchange.UserMessage.ID)
	assert.Equal(t, models.RoleUser, exchange.UserMessage.Role)
	assert.Equal(t, "Was kostet das?", exchange.UserMessage.Content)
	assert.Equal(t, session.ID, exchange.UserMessage.SessionID)
	assert.NotEmpty(t, exchange.BotMessage.ID)
	assert.Equal(t, models.RoleAssistant, exchange.BotMessage.Role)
	assert.Equal(t, "Es kostet 10 Euro.", exchange.BotMessage.Content)
	assert.False(t, exchange.BotMessage.CreatedAt.IsZero())

	rec = env.do(http.MethodGet, messagesPath(session.ID), user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decodeBody[[]models.ChatMessage](t, rec)
	require.Len(t, messages, 2)
	assert.Equal(t, exchange.UserMessage.ID, messages[0].ID)
	assert.Equal(t, exchange.BotMessage.ID, messages[1].ID)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	env := newTestEnv(t, nil, ChatOptions{})
	user, session := env.chatSetup(models.CreateBotRequest{})

	for _, body := range []any{models.SendMessageRequest{}, map[string]any{"content": 42}} {
		rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{})
	assert.Equal(t, "Message content is required", errorMessage(t, rec))

	messages, err := env.store.GetChatMessagesBySessionID(session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSendApologizesWhenReplyFails(t *testing.T) {
	tests := []struct {
		name      string
		responder responderFunc
	}{
		{"error", func(context.Context, string, models.BotConfig, []models.ChatTurn) (string, error) {
			return "", errors.New("model unavailable")
		}},
		{"blank", func(context.Context, string, models.BotConfig, []models.ChatTurn) (string, error) {
			return "   ", nil
		}},
		{"panic", func(context.Context, string, models.BotConfig, []models.ChatTurn) (string, error) {
			panic("boom")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.responder, ChatOptions{})
			user, session := env.chatSetup(models.CreateBotRequest{})

			rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: "Hallo"})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			exchange := decodeBody[models.ChatExchange](t, rec)
			assert.Equal(t, models.ApologyMessage, exchange.BotMessage.Content)

			messages, err := env.store.GetChatMessagesBySessionID(session.ID)
			require.NoError(t, err)
			require.Len(t, messages, 2)
			assert.Equal(t, models.ApologyMessage, messages[1].Content)
		})
	}
}

func TestSendTimesOut(t *testing.T) {
	slow := func(ctx context.Context, _ string, _ models.BotConfig, _ []models.ChatTurn) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	env := newTestEnv(t, responderFunc(slow), ChatOptions{ReplyTimeout: 20 * time.Millisecond})
	user, session := env.chatSetup(models.CreateBotRequest{})

	rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: "Hallo"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ApologyMessage, decodeBody[models.ChatExchange](t, rec).BotMessage.Content)
}

func TestSendPassesRecentHistory(t *testing.T) {
	var (
		seen      [][]models.ChatTurn
		botConfig models.BotConfig
	)
	recording := func(ctx context.Context, msg string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
		seen = append(seen, history)
		botConfig = bot
		return echo(ctx, msg, bot, history)
	}
	env := newTestEnv(t, responderFunc(recording), ChatOptions{HistoryLimit: 4})
	user, session := env.chatSetup(models.CreateBotRequest{Name: "Verlauf", KnowledgeBase: "Öffnungszeiten: 9-17 Uhr"})

	for i := 1; i <= 4; i++ {
		rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: fmt.Sprintf("m%d", i)})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, seen, 4)
	assert.Empty(t, seen[0])
	assert.Equal(t, []models.ChatTurn{
		{Role: models.RoleUser, Content: "m1"},
		{Role: models.RoleAssistant, Content: "echo: m1"},
	}, seen[1])
	assert.Equal(t, []models.ChatTurn{
		{Role: models.RoleUser, Content: "m2"},
		{Role: models.RoleAssistant, Content: "echo: m2"},
		{Role: models.RoleUser, Content: "m3"},
		{Role: models.RoleAssistant, Content: "echo: m3"},
	}, seen[3])

	assert.Equal(t, "Verlauf", botConfig.Name)
	assert.Equal(t, "Öffnungszeiten: 9-17 Uhr", botConfig.KnowledgeBase)
}

func TestSendWithoutHistory(t *testing.T) {
	var lengths []int
	recording := func(ctx context.Context, msg string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
		lengths = append(lengths, len(history))
		return echo(ctx, msg, bot, history)
	}
	env := newTestEnv(t, responderFunc(recording), ChatOptions{HistoryLimit: 0})
	user, session := env.chatSetup(models.CreateBotRequest{})

	for i := 0; i < 3; i++ {
		rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: "Hallo"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []int{0, 0, 0}, lengths)
}

// failingChatStore lets individual store calls fail on top of a real store.
type failingChatStore struct {
	*store.Store
	historyErr  error
	failReplies int
}

func (f *failingChatStore) GetRecentChatMessages(sessionID string, limit int) ([]models.ChatMessage, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.Store.GetRecentChatMessages(sessionID, limit)
}

func (f *failingChatStore) AddChatMessage(sessionID, role, content string) (*models.ChatMessage, error) {
	if role == models.RoleAssistant && f.failReplies > 0 {
		f.failReplies--
		return nil, errors.New("disk I/O error")
	}
	return f.Store.AddChatMessage(sessionID, role, content)
}

func sendDirect(t *testing.T, h *ChatHandler, userID, sessionID, content string) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, http.MethodPost, messagesPath(sessionID), "", models.SendMessageRequest{Content: content})
	req.SetPathValue("id", sessionID)
	req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	h.Send(rec, req)
	return rec
}

func TestSendContinuesWithoutHistory(t *testing.T) {
	var histories [][]models.ChatTurn
	recording := func(ctx context.Context, msg string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
		histories = append(histories, history)
		return echo(ctx, msg, bot, history)
	}
	env := newTestEnv(t, nil, ChatOptions{})
	user, session := env.chatSetup(models.CreateBotRequest{})

	_, err := env.store.AddChatMessage(session.ID, models.RoleUser, "vorher")
	require.NoError(t, err)

	failing := &failingChatStore{Store: env.store, historyErr: errors.New("database is locked")}
	h := NewChatHandler(failing, responderFunc(recording), nil, ChatOptions{HistoryLimit: DefaultHistoryLimit})

	rec := sendDirect(t, h, user.User.ID, session.ID, "Hallo")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "echo: Hallo", decodeBody[models.ChatExchange](t, rec).BotMessage.Content)
	require.Len(t, histories, 1)
	assert.Empty(t, histories[0])
}

func TestSendStoresApologyWhenReplyCannotBeStored(t *testing.T) {
	env := newTestEnv(t, nil, ChatOptions{})
	user, session := env.chatSetup(models.CreateBotRequest{})

	failing := &failingChatStore{Store: env.store, failReplies: 1}
	h := NewChatHandler(failing, responderFunc(echo), nil, ChatOptions{})

	rec := sendDirect(t, h, user.User.ID, session.ID, "Hallo")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.ApologyMessage, decodeBody[models.ChatExchange](t, rec).BotMessage.Content)

	messages, err := env.store.GetChatMessagesBySessionID(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.ApologyMessage, messages[1].Content)

	failing.failReplies = 2
	rec = sendDirect(t, h, user.User.ID, session.ID, "Nochmal")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSendRejectsOverlongContent(t *testing.T) {
	env := newTestEnv(t, nil, ChatOptions{})
	user, session := env.chatSetup(models.CreateBotRequest{})

	rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: strings.Repeat("a", 20001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Message content is too long", errorMessage(t, rec))
}

func TestSendNotifies(t *testing.T) {
	env := newTestEnv(t, responderFunc(echo), ChatOptions{})
	user, session := env.chatSetup(models.CreateBotRequest{})

	rec := env.do(http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: "Hallo"})
	require.Equal(t, http.StatusOK, rec.Code)

	events := env.events.all()
	require.Len(t, events, 4)
	for _, ev := range events {
		assert.Equal(t, user.User.ID, ev.userID)
	}

	assert.Equal(t, models.WSTypeTyping, events[0].msg.Type)
	assert.Equal(t, models.TypingPayload{SessionID: session.ID, BotID: session.BotID, Typing: true}, events[0].msg.Payload)
	assert.Equal(t, models.WSTypeTyping, events[1].msg.Type)
	assert.Equal(t, models.TypingPayload{SessionID: session.ID, BotID: session.BotID, Typing: false}, events[1].msg.Payload)

	assert.Equal(t, models.WSTypeNewMessage, events[2].msg.Type)
	userMsg, ok := events[2].msg.Payload.(*models.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, "Hallo", userMsg.Content)

	assert.Equal(t, models.WSTypeNewMessage, events[3].msg.Type)
	botMsg, ok := events[3].msg.Payload.(*models.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, "echo: Hallo", botMsg.Content)
}

func TestSendSerializesPerSession(t *testing.T) {
	env := newTestEnv(t, responderFunc(echo), ChatOptions{HistoryLimit: DefaultHistoryLimit})
	user, session := env.chatSetup(models.CreateBotRequest{})

	const senders = 5
	codes := make([]int, senders)
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		req := newRequest(t, http.MethodPost, messagesPath(session.ID), user.Token, models.SendMessageRequest{Content: fmt.Sprintf("nachricht %d", i)})
		wg.Add(1)
		go func(i int, req *http.Request) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i, req)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	messages, err := env.store.GetChatMessagesBySessionID(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2*senders)
	for i := 0; i < len(messages); i += 2 {
		assert.Equal(t, models.RoleUser, messages[i].Role)
		assert.Equal(t, models.RoleAssistant, messages[i+1].Role)
		assert.Equal(t, "echo: "+messages[i].Content, messages[i+1].Content)
	}
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Equal(t, 2, k.size())

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same key must wait")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock was not handed over")
	}

	unlockB()
	assert.Eventually(t, func() bool { return k.size() == 0 }, time.Second, 5*time.Millisecond)
}
