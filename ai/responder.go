// Package ai holds the strategies that turn a user message into a bot reply.
package ai

import (
	"context"
	"errors"
	"strings"

	"botwerk-server/models"

	"github.com/sirupsen/logrus"
)

// Responder produces the bot's next message. history is chronological and excludes userMessage.
type Responder interface {
	Reply(ctx context.Context, userMessage string, bot models.BotConfig, history []models.ChatTurn) (string, error)
}

var ErrEmptyReply = errors.New("responder returned an empty reply")

// Fallback asks Primary first and Secondary when Primary fails or stays silent.
type Fallback struct {
	Primary   Responder
	Secondary Responder
}

func (f Fallback) Reply(ctx context.Context, userMessage string, bot models.BotConfig, history []models.ChatTurn) (string, error) {
	reply, err := f.Primary.Reply(ctx, userMessage, bot, history)
	if err == nil && strings.TrimSpace(reply) != "" {
		return reply, nil
	}
	if err == nil {
		err = ErrEmptyReply
	}

	logrus.WithError(err).WithField("bot", bot.Name).Warn("[AI] Primary responder failed, using fallback")
	return f.Secondary.Reply(ctx, userMessage, bot, history)
}
