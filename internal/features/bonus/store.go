package bonus

import (
	"context"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/features/resources"
)

// LoginRecordStore reads and writes login records.
type LoginRecordStore interface {
	// Get returns nil, nil when the user has no record yet.
	Get(ctx context.Context, userID string) (*LoginRecord, error)
	// Upsert inserts or replaces the user's record.
	Upsert(ctx context.Context, rec *LoginRecord) error
}

// ResourceLedger is the part of the ledger the engine consumes.
// *resources.Repository implements it.
type ResourceLedger interface {
	GetByUserID(ctx context.Context, userID string) (*resources.Ledger, error)
	// Lock must block other writers of the same user until the unit of work ends.
	Lock(ctx context.Context, userID string) (*resources.Ledger, error)
	Credit(ctx context.Context, userID string, amount resources.Bundle) error
}

// Store gives the service its units of work.
type Store interface {
	// InTx runs fn with both stores bound to one transaction. Everything fn
	// wrote is discarded when it returns an error.
	InTx(ctx context.Context, fn func(records LoginRecordStore, ledger ResourceLedger) error) error
	// ListAtRisk returns Telegram-linked users whose last claim was on
	// lastLogin with a streak of at least minStreak.
	ListAtRisk(ctx context.Context, lastLogin common.Date, minStreak int) ([]AtRisk, error)
}
