// Package middleware holds the per-update helpers of the bot: logging,
// panic recovery and rate limiting.
package middleware

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

const maxLoggedText = 50

// LogMessage logs an incoming message with the text cut to 50 runes.
func LogMessage(message *telego.Message) {
	if message == nil {
		return
	}

	text := []rune(message.Text)
	if len(text) > maxLoggedText {
		text = append(text[:maxLoggedText], []rune("...")...)
	}

	fields := log.Fields{
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"text":      string(text),
	}
	if message.From != nil {
		fields["telegram_id"] = message.From.ID
		fields["username"] = message.From.Username
	}
	log.WithFields(fields).Debug("Incoming message")
}
