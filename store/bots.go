package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"botwerk-server/models"

	"github.com/google/uuid"
)

const botColumns = `id, user_id, name, COALESCE(description, ''), type, COALESCE(target_audience, ''),
	COALESCE(capabilities, ''), COALESCE(knowledge_base, ''), personality, examples, status, created_at, updated_at`

func scanBot(row rowScanner) (*models.Bot, error) {
	b := &models.Bot{}
	var personality, examples sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Description, &b.Type, &b.TargetAudience,
		&b.Capabilities, &b.KnowledgeBase, &personality, &examples, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	if personality.Valid && personality.String != "" {
		var p models.BotPersonality
		if err := json.Unmarshal([]byte(personality.String), &p); err != nil {
			return nil, fmt.Errorf("bot %s personality: %w", b.ID, err)
		}
		b.Personality = &p
	}
	b.Examples = []models.Example{}
	if examples.Valid && examples.String != "" {
		if err := json.Unmarshal([]byte(examples.String), &b.Examples); err != nil {
			return nil, fmt.Errorf("bot %s examples: %w", b.ID, err)
		}
	}
	return b, nil
}

func (s *Store) queryBots(query string, args ...any) ([]models.Bot, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bots := []models.Bot{}
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, *b)
	}
	return bots, rows.Err()
}

func encodeBotJSON(b *models.Bot) (personality any, examples string, err error) {
	if b.Personality != nil {
		data, err := json.Marshal(b.Personality)
		if err != nil {
			return nil, "", err
		}
		personality = string(data)
	}
	if b.Examples == nil {
		b.Examples = []models.Example{}
	}
	data, err := json.Marshal(b.Examples)
	if err != nil {
		return nil, "", err
	}
	return personality, string(data), nil
}

// GetBotsByUserID returns the user's bots, most recently updated first.
func (s *Store) GetBotsByUserID(userID string) ([]models.Bot, error) {
	return s.queryBots(`SELECT `+botColumns+` FROM bots WHERE user_id = ? ORDER BY updated_at DESC, rowid DESC`, userID)
}

func (s *Store) GetAllBots() ([]models.Bot, error) {
	return s.queryBots(`SELECT ` + botColumns + ` FROM bots ORDER BY created_at DESC, rowid DESC`)
}

func (s *Store) GetBotByID(id string) (*models.Bot, error) {
	return scanBot(s.db.QueryRow(`SELECT `+botColumns+` FROM bots WHERE id = ?`, id))
}

// GetUserBot returns the bot only if userID owns it.
func (s *Store) GetUserBot(id, userID string) (*models.Bot, error) {
	return scanBot(s.db.QueryRow(`SELECT `+botColumns+` FROM bots WHERE id = ? AND user_id = ?`, id, userID))
}

func (s *Store) CreateBot(userID string, req models.CreateBotRequest) (*models.Bot, error) {
	req.ApplyDefaults()

	ts := now()
	bot := &models.Bot{
		ID:             uuid.New().String(),
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		Type:           req.Type,
		TargetAudience: req.TargetAudience,
		Capabilities:   req.Capabilities,
		KnowledgeBase:  req.KnowledgeBase,
		Personality:    req.Personality,
		Examples:       req.Examples,
		Status:         req.Status,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}

	personality, examples, err := encodeBotJSON(bot)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		INSERT INTO bots (id, user_id, name, description, type, target_audience, capabilities, knowledge_base,
			personality, examples, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, bot.ID, bot.UserID, bot.Name, bot.Description, bot.Type, bot.TargetAudience, bot.Capabilities,
		bot.KnowledgeBase, personality, examples, bot.Status, bot.CreatedAt, bot.UpdatedAt)

	if err != nil {
		return nil, err
	}
	return bot, nil
}

// UpdateBot applies a partial update to a bot owned by userID.
func (s *Store) UpdateBot(id, userID string, req models.UpdateBotRequest) (*models.Bot, error) {
	bot, err := s.GetUserBot(id, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(bot)
	bot.UpdatedAt = now()

	personality, examples, err := encodeBotJSON(bot)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(`
		UPDATE bots SET name = ?, description = ?, type = ?, target_audience = ?, capabilities = ?,
			knowledge_base = ?, personality = ?, examples = ?, status = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, bot.Name, bot.Description, bot.Type, bot.TargetAudience, bot.Capabilities, bot.KnowledgeBase,
		personality, examples, bot.Status, bot.UpdatedAt, bot.ID, userID)

	if err != nil {
		return nil, err
	}
	return bot, nil
}

func (s *Store) DeleteBot(id, userID string) error {
	return affectedOrNotFound(s.db.Exec(`DELETE FROM bots WHERE id = ? AND user_id = ?`, id, userID))
}

func (s *Store) DeleteBotAsAdmin(id string) error {
	return affectedOrNotFound(s.db.Exec(`DELETE FROM bots WHERE id = ?`, id))
}
