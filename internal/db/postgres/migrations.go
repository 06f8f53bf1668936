package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// Migration is one versioned schema step.
type Migration struct {
	Version int
	SQL     string
}

// Migrations are embedded in the binary to keep deploys to a single artifact.
var Migrations = []Migration{
	{1, migration001Users},
	{2, migration002UserResources},
	{3, migration003DailyLoginBonus},
}

// Migrate creates schema_migrations and applies every pending migration in order.
func Migrate(ctx context.Context, db DB, migrations []Migration) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := ExecMigrationSQL(ctx, db, m.Version, m.SQL)
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.Version, err)
		}
		if applied {
			log.Infof("Migration %d applied", m.Version)
		}
	}
	return nil
}

// ExecMigrationSQL applies one migration in a transaction and records its
// version. It reports false when the version was already applied.
func ExecMigrationSQL(ctx context.Context, db DB, version int, sql string) (bool, error) {
	applied := false
	err := InTx(ctx, db, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration: %w", err)
		}
		if exists {
			return nil
		}

		if _, err := tx.Exec(ctx, sql); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", version, err)
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)", version,
		); err != nil {
			return fmt.Errorf("failed to record migration version: %w", err)
		}
		applied = true
		return nil
	})
	return applied, err
}

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    registered_at TIMESTAMP DEFAULT NOW(),
    telegram_id BIGINT UNIQUE
);
CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id);
`

var migration002UserResources = `
CREATE TABLE IF NOT EXISTS user_resources (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    food BIGINT NOT NULL DEFAULT 0 CHECK (food >= 0),
    gold BIGINT NOT NULL DEFAULT 0 CHECK (gold >= 0),
    wood BIGINT NOT NULL DEFAULT 0 CHECK (wood >= 0),
    stone BIGINT NOT NULL DEFAULT 0 CHECK (stone >= 0),
    updated_at TIMESTAMP DEFAULT NOW()
);
`

var migration003DailyLoginBonus = `
CREATE TABLE IF NOT EXISTS daily_login_bonus (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    last_login_date DATE NOT NULL,
    streak INTEGER NOT NULL DEFAULT 1 CHECK (streak >= 1),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_daily_login_bonus_last_login ON daily_login_bonus(last_login_date);
`
