package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// ApologyMessage is persisted as the assistant reply when no reply could be generated.
	ApologyMessage = "I'm sorry, I'm having trouble generating a response right now. Please try again."
)

type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	BotID     string    `json:"botId"`
	Title     string    `json:"title,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type ChatMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

func (m ChatMessage) Turn() ChatTurn {
	return ChatTurn{Role: m.Role, Content: m.Content}
}

// ChatTurn is one entry of the conversation context handed to a responder.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turns converts persisted messages, oldest first, into responder context.
func Turns(messages []ChatMessage) []ChatTurn {
	turns := make([]ChatTurn, len(messages))
	for i, m := range messages {
		turns[i] = m.Turn()
	}
	return turns
}

type SendMessageRequest struct {
	Content string `json:"content"`
}

type ChatExchange struct {
	UserMessage ChatMessage `json:"userMessage"`
	BotMessage  ChatMessage `json:"botMessage"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	WSTypeNewMessage = "new_message"
	WSTypeTyping     = "typing"
)

type TypingPayload struct {
	SessionID string `json:"sessionId"`
	BotID     string `json:"botId"`
	Typing    bool   `json:"typing"`
}
