// Package bonus: telegram.go answers the /bonus and /streak chat commands.
package bonus

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/features/resources"
	"serotonyl.ru/game-backend/internal/features/users"
)

// AccountResolver maps a Telegram sender to a game account.
type AccountResolver interface {
	ResolveTelegram(ctx context.Context, telegramID int64) (*users.User, error)
}

// Sender delivers a chat reply.
type Sender interface {
	SendMessage(chatID int64, text string)
}

// TelegramHandler serves the bonus commands of the bot.
type TelegramHandler struct {
	service  *Service
	accounts AccountResolver
	sender   Sender
}

// NewTelegramHandler creates the chat command handler.
func NewTelegramHandler(service *Service, accounts AccountResolver, sender Sender) *TelegramHandler {
	return &TelegramHandler{service: service, accounts: accounts, sender: sender}
}

// HandleBonus handles /bonus: claims today's bonus for the linked account.
//
// Reply on success:
//
//	🎁 Daily bonus claimed!
//	Streak: 7 days
//	+100 food, +50 gold, +50 wood, +20 stone
func (h *TelegramHandler) HandleBonus(ctx context.Context, chatID, telegramID int64) {
	user, ok := h.resolve(ctx, chatID, telegramID)
	if !ok {
		return
	}

	res, err := h.service.ClaimToday(ctx, user.ID)
	switch {
	case err == nil:
		h.sender.SendMessage(chatID, fmt.Sprintf(
			"🎁 %s\nStreak: %s\n%s",
			res.Message, common.FormatDays(res.Streak), formatBundle(res.Bonus),
		))
	case errors.Is(err, common.ErrAlreadyClaimed):
		h.sender.SendMessage(chatID, "⏳ Daily bonus already claimed. Come back tomorrow!")
	case errors.Is(err, common.ErrUserNotFound):
		h.sender.SendMessage(chatID, "❌ Your game account has no resources yet")
	case errors.Is(err, common.ErrInvalidClaimDate):
		h.sender.SendMessage(chatID, "❌ Your last claim is dated in the future, contact support")
	default:
		h.sender.SendMessage(chatID, "❌ Could not claim the bonus, try again later")
	}
}

// HandleStreak handles /streak: shows the streak and the next grant.
func (h *TelegramHandler) HandleStreak(ctx context.Context, chatID, telegramID int64) {
	user, ok := h.resolve(ctx, chatID, telegramID)
	if !ok {
		return
	}

	st, err := h.service.GetStatus(ctx, user.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", user.ID).Error("Failed to load streak status")
		h.sender.SendMessage(chatID, "❌ Could not load your streak")
		return
	}

	status := "Not claimed yet today, send /bonus"
	if st.ClaimedToday {
		status = "✅ Claimed today"
	}
	h.sender.SendMessage(chatID, fmt.Sprintf(
		"🔥 %s, your streak\n\nCurrent streak: %s\nStatus: %s\nNext bonus: %s",
		user.DisplayName(), common.FormatDays(st.Streak), status, formatBundle(st.NextBonus),
	))
}

func (h *TelegramHandler) resolve(ctx context.Context, chatID, telegramID int64) (*users.User, bool) {
	user, err := h.accounts.ResolveTelegram(ctx, telegramID)
	if err == nil {
		return user, true
	}
	if errors.Is(err, common.ErrTelegramNotLinked) {
		h.sender.SendMessage(chatID, "🔗 Link your Telegram account in the game first")
	} else {
		log.WithError(err).WithField("telegram_id", telegramID).Error("Failed to resolve account")
		h.sender.SendMessage(chatID, "❌ Something went wrong, try again later")
	}
	return nil, false
}

func formatBundle(b resources.Bundle) string {
	return fmt.Sprintf("+%d food, +%d gold, +%d wood, +%d stone", b.Food, b.Gold, b.Wood, b.Stone)
}
