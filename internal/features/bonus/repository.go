// Package bonus: repository.go runs the queries on daily_login_bonus
// and binds them together with the ledger into one transaction.
package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/db/postgres"
	"serotonyl.ru/game-backend/internal/features/resources"
)

// Repository implements LoginRecordStore on PostgreSQL.
type Repository struct {
	db postgres.Querier
}

// NewRepository binds the repository to a pool or an open transaction.
func NewRepository(db postgres.Querier) *Repository {
	return &Repository{db: db}
}

// Get returns the user's login record, or nil when there is none.
func (r *Repository) Get(ctx context.Context, userID string) (*LoginRecord, error) {
	query := `
		SELECT id, user_id, last_login_date, streak, updated_at
		FROM daily_login_bonus
		WHERE user_id = $1
	`
	var (
		rec  LoginRecord
		last time.Time
	)
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&rec.ID, &rec.UserID, &last, &rec.Streak, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read login record (user_id=%s): %w", userID, err)
	}
	rec.LastLoginDate = common.DateOf(last)
	return &rec, nil
}

// Upsert writes the record. user_id is unique, so a second insert turns into an update.
func (r *Repository) Upsert(ctx context.Context, rec *LoginRecord) error {
	query := `
		INSERT INTO daily_login_bonus (user_id, last_login_date, streak)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET last_login_date = EXCLUDED.last_login_date,
		    streak = EXCLUDED.streak,
		    updated_at = NOW()
		RETURNING id, updated_at
	`
	err := r.db.QueryRow(ctx, query, rec.UserID, rec.LastLoginDate.Time(), rec.Streak).
		Scan(&rec.ID, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write login record (user_id=%s): %w", rec.UserID, err)
	}
	return nil
}

// ListAtRisk returns linked users whose last claim was on lastLogin.
func (r *Repository) ListAtRisk(ctx context.Context, lastLogin common.Date, minStreak int) ([]AtRisk, error) {
	query := `
		SELECT b.user_id, u.telegram_id, b.streak, b.last_login_date
		FROM daily_login_bonus b
		JOIN users u ON u.id = b.user_id
		WHERE u.telegram_id IS NOT NULL
		  AND b.last_login_date = $1
		  AND b.streak >= $2
		ORDER BY b.streak DESC
	`
	rows, err := r.db.Query(ctx, query, lastLogin.Time(), minStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks at risk: %w", err)
	}
	defer rows.Close()

	var out []AtRisk
	for rows.Next() {
		var (
			a    AtRisk
			last time.Time
		)
		if err := rows.Scan(&a.UserID, &a.TelegramID, &a.Streak, &last); err != nil {
			return nil, fmt.Errorf("failed to scan streak: %w", err)
		}
		a.LastLoginDate = common.DateOf(last)
		out = append(out, a)
	}
	return out, rows.Err()
}

// PgStore implements Store: every unit of work is one PostgreSQL transaction.
type PgStore struct {
	db postgres.DB
}

func NewPgStore(db postgres.DB) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) InTx(ctx context.Context, fn func(records LoginRecordStore, ledger ResourceLedger) error) error {
	return postgres.InTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(NewRepository(tx), resources.NewRepository(tx))
	})
}

func (s *PgStore) ListAtRisk(ctx context.Context, lastLogin common.Date, minStreak int) ([]AtRisk, error) {
	return NewRepository(s.db).ListAtRisk(ctx, lastLogin, minStreak)
}
