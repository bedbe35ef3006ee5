package store

import (
	"time"

	"botwerk-server/models"
)

// DashboardStats summarizes a user's bots. A conversation counts for today when it received a
// message since midnight UTC; the success rate is the share of assistant replies that were not
// the apology.
func (s *Store) DashboardStats(userID string) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	err := s.db.QueryRow(`SELECT COUNT(*) FROM bots WHERE user_id = ? AND status = ?`,
		userID, models.BotStatusActive).Scan(&stats.ActiveBots)
	if err != nil {
		return nil, err
	}

	midnight := now().Truncate(24 * time.Hour)
	err = s.db.QueryRow(`
		SELECT COUNT(DISTINCT cs.id) FROM chat_sessions cs
		JOIN chat_messages cm ON cm.session_id = cs.id
		WHERE cs.user_id = ? AND cm.created_at >= ?
	`, userID, midnight).Scan(&stats.ConversationsToday)
	if err != nil {
		return nil, err
	}

	var replies, failed int
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN cm.content = ? THEN 1 ELSE 0 END), 0)
		FROM chat_messages cm
		JOIN chat_sessions cs ON cs.id = cm.session_id
		WHERE cs.user_id = ? AND cm.role = ?
	`, models.ApologyMessage, userID, models.RoleAssistant).Scan(&replies, &failed)
	if err != nil {
		return nil, err
	}

	stats.SuccessRate = 100
	if replies > 0 {
		stats.SuccessRate = (replies - failed) * 100 / replies
	}
	return stats, nil
}
