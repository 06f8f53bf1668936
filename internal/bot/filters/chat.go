// Package filters decides which incoming messages the bot answers.
package filters

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// ChatFilter admits messages from people in private chats and groups.
// Channel posts, service messages and other bots are dropped.
type ChatFilter struct {
	allowGroups bool
}

func NewChatFilter(allowGroups bool) *ChatFilter {
	return &ChatFilter{allowGroups: allowGroups}
}

func (f *ChatFilter) CheckAccess(message *telego.Message) bool {
	if message == nil {
		log.WithField("component", "ChatFilter").Warn("nil message")
		return false
	}
	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
	})

	if message.From == nil {
		logger.Debug("deny: no sender (channel or service message)")
		return false
	}
	if message.From.IsBot {
		logger.WithField("telegram_id", message.From.ID).Debug("deny: sender is a bot")
		return false
	}

	switch message.Chat.Type {
	case telego.ChatTypePrivate:
		return true
	case telego.ChatTypeGroup, telego.ChatTypeSupergroup:
		if f.allowGroups {
			return true
		}
		logger.Debug("deny: group chats disabled")
		return false
	default:
		logger.Debug("deny: unsupported chat type")
		return false
	}
}
