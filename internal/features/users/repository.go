package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/db/postgres"
)

type Repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

const selectUser = `
	SELECT id, name, email, registered_at, telegram_id
	FROM users
`

// GetByTelegramID returns common.ErrTelegramNotLinked when no account carries the id.
func (r *Repository) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	u, err := r.scan(r.db.QueryRow(ctx, selectUser+"WHERE telegram_id = $1", telegramID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("telegram_id=%d: %w", telegramID, common.ErrTelegramNotLinked)
	}
	return u, err
}

func (r *Repository) scan(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.RegisteredAt, &u.TelegramID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return &u, nil
}
