// Package resources owns the per-user resource ledger (food, gold, wood, stone).
// models.go describes the ledger row and the four-counter bundle.
package resources

import "time"

// Bundle is a four-counter amount of resources. A bonus grant and a ledger
// balance share this shape.
type Bundle struct {
	Food  int64 `json:"food"`
	Gold  int64 `json:"gold"`
	Wood  int64 `json:"wood"`
	Stone int64 `json:"stone"`
}

// Add returns the counter-wise sum of b and other.
func (b Bundle) Add(other Bundle) Bundle {
	return Bundle{
		Food:  b.Food + other.Food,
		Gold:  b.Gold + other.Gold,
		Wood:  b.Wood + other.Wood,
		Stone: b.Stone + other.Stone,
	}
}

// IsNegative reports whether any counter is below zero.
func (b Bundle) IsNegative() bool {
	return b.Food < 0 || b.Gold < 0 || b.Wood < 0 || b.Stone < 0
}

// Ledger is the user_resources row. Every user has exactly one.
type Ledger struct {
	ID        int64     `db:"id"`
	UserID    string    `db:"user_id"`
	Bundle              // food, gold, wood, stone
	UpdatedAt time.Time `db:"updated_at"`
}
