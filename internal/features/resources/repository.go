// Package resources: repository.go runs the queries on user_resources.
// The ledger only ever grows here: credits are additive and negative
// amounts are refused before reaching SQL.
package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/db/postgres"
)

// Repository reads and credits resource ledgers.
type Repository struct {
	db postgres.Querier
}

// NewRepository binds the repository to a pool or an open transaction.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// GetByUserID returns the user's ledger or common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*Ledger, error) {
	return r.get(ctx, `
		SELECT id, user_id, food, gold, wood, stone, updated_at
		FROM user_resources
		WHERE user_id = $1
	`, userID)
}

// Lock reads the ledger with FOR UPDATE. Inside a transaction this
// serializes every writer of the same user until commit.
func (r *Repository) Lock(ctx context.Context, userID string) (*Ledger, error) {
	return r.get(ctx, `
		SELECT id, user_id, food, gold, wood, stone, updated_at
		FROM user_resources
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
}

func (r *Repository) get(ctx context.Context, query, userID string) (*Ledger, error) {
	var l Ledger
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&l.ID, &l.UserID, &l.Food, &l.Gold, &l.Wood, &l.Stone, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ledger (user_id=%s): %w", userID, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return &l, nil
}

// Credit adds amount to the user's counters.
func (r *Repository) Credit(ctx context.Context, userID string, amount Bundle) error {
	if amount.IsNegative() {
		return common.ErrInvalidAmount
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE user_resources
		SET food = food + $2,
		    gold = gold + $3,
		    wood = wood + $4,
		    stone = stone + $5,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount.Food, amount.Gold, amount.Wood, amount.Stone)
	if err != nil {
		return fmt.Errorf("failed to credit ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger (user_id=%s): %w", userID, common.ErrUserNotFound)
	}
	return nil
}
