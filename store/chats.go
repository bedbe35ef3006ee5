package store

import (
	"botwerk-server/models"

	"github.com/google/uuid"
)

const sessionColumns = `id, user_id, bot_id, COALESCE(title, ''), created_at, updated_at`

func scanSession(row rowScanner) (*models.ChatSession, error) {
	cs := &models.ChatSession{}
	if err := row.Scan(&cs.ID, &cs.UserID, &cs.BotID, &cs.Title, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return cs, nil
}

func (s *Store) CreateChatSession(userID, botID, title string) (*models.ChatSession, error) {
	ts := now()
	cs := &models.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		BotID:     botID,
		Title:     title,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err := s.db.Exec(`
		INSERT INTO chat_sessions (id, user_id, bot_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cs.ID, cs.UserID, cs.BotID, cs.Title, cs.CreatedAt, cs.UpdatedAt)

	if err != nil {
		return nil, err
	}
	return cs, nil
}

// GetChatSession returns the session only if userID owns it.
func (s *Store) GetChatSession(id, userID string) (*models.ChatSession, error) {
	return scanSession(s.db.QueryRow(`SELECT `+sessionColumns+` FROM chat_sessions WHERE id = ? AND user_id = ?`, id, userID))
}

// GetChatSessionsByBotID lists the user's sessions with a bot, most recently active first.
func (s *Store) GetChatSessionsByBotID(botID, userID string) ([]models.ChatSession, error) {
	rows, err := s.db.Query(`
		SELECT `+sessionColumns+` FROM chat_sessions
		WHERE bot_id = ? AND user_id = ?
		ORDER BY updated_at DESC, rowid DESC
	`, botID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.ChatSession{}
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *cs)
	}
	return sessions, rows.Err()
}

func (s *Store) TouchChatSession(id string) error {
	return affectedOrNotFound(s.db.Exec(`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, now(), id))
}

// Chat message operations

func (s *Store) AddChatMessage(sessionID, role, content string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO chat_messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt)

	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Store) queryMessages(query string, args ...any) ([]models.ChatMessage, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// GetChatMessagesBySessionID returns the whole conversation in insertion order.
func (s *Store) GetChatMessagesBySessionID(sessionID string) ([]models.ChatMessage, error) {
	return s.queryMessages(`
		SELECT id, session_id, role, content, created_at FROM chat_messages
		WHERE session_id = ? ORDER BY rowid
	`, sessionID)
}

// GetRecentChatMessages returns the last limit messages of a session, oldest first.
func (s *Store) GetRecentChatMessages(sessionID string, limit int) ([]models.ChatMessage, error) {
	return s.queryMessages(`
		SELECT id, session_id, role, content, created_at FROM (
			SELECT rowid AS seq, id, session_id, role, content, created_at FROM chat_messages
			WHERE session_id = ? ORDER BY rowid DESC LIMIT ?
		) ORDER BY seq
	`, sessionID, limit)
}
