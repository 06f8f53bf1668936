// Package bonus runs the daily login bonus: streak bookkeeping per user and
// the resource grant that comes with each claim.
// models.go describes the stored login record and the claim receipts.
package bonus

import (
	"time"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/features/resources"
)

// LoginRecord is the daily_login_bonus row. A user has at most one,
// created on the first successful claim.
type LoginRecord struct {
	ID            int64       `db:"id"`
	UserID        string      `db:"user_id"`
	LastLoginDate common.Date `db:"last_login_date"` // day of the last successful claim
	Streak        int         `db:"streak"`          // consecutive claimed days, >= 1
	UpdatedAt     time.Time   `db:"updated_at"`
}

// ClaimResult is the receipt of a successful claim.
type ClaimResult struct {
	Message string           `json:"message"`
	Bonus   resources.Bundle `json:"bonus"`
	Streak  int              `json:"streak"`
}

// Status is a read-only view of a user's streak.
type Status struct {
	UserID        string           `json:"user_id"`
	Streak        int              `json:"streak"` // 0 when there is no live streak
	LastLoginDate *common.Date     `json:"last_login_date"`
	ClaimedToday  bool             `json:"claimed_today"`
	NextBonus     resources.Bundle `json:"next_bonus"` // grant of the next possible claim
	Resources     resources.Bundle `json:"resources"`
}

// AtRisk is a Telegram-linked user who claimed yesterday and not yet today.
type AtRisk struct {
	UserID        string
	TelegramID    int64
	Streak        int
	LastLoginDate common.Date
}

const (
	MessageFirstBonus = "Welcome! Here is your first daily bonus."
	MessageClaimed    = "Daily bonus claimed!"
)
