// Package users reads the externally owned users table.
// The bonus engine only needs existence checks and the optional
// Telegram link; registration and credentials live elsewhere.
package users

import "time"

// User is a row of the users table.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	RegisteredAt time.Time `db:"registered_at"`
	TelegramID   *int64    `db:"telegram_id"` // nil when the account is not linked
}

// DisplayName returns the name, or the id when the name is empty.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
