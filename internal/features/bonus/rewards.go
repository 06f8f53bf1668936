// Package bonus: rewards.go holds the grant table.
package bonus

import "serotonyl.ru/game-backend/internal/features/resources"

// WeeklyStreak is the streak value with the flat weekly grant.
// Only the literal 7 matches; 14, 21 and so on use the linear formula.
const WeeklyStreak = 7

var (
	firstDayBonus = resources.Bundle{Food: 50, Gold: 20, Wood: 30, Stone: 10}
	weeklyBonus   = resources.Bundle{Food: 100, Gold: 50, Wood: 50, Stone: 20}
)

// BonusTable returns the grant for a streak value.
//
//	streak 1 → 50 food, 20 gold, 30 wood, 10 stone
//	streak 7 → 100 food, 50 gold, 50 wood, 20 stone
//	other    → 10×s food, 5×s gold, 5×s wood, 2×s stone
//
// Values below 1 are treated as 1.
func BonusTable(streak int) resources.Bundle {
	switch {
	case streak <= 1:
		return firstDayBonus
	case streak == WeeklyStreak:
		return weeklyBonus
	default:
		s := int64(streak)
		return resources.Bundle{Food: 10 * s, Gold: 5 * s, Wood: 5 * s, Stone: 2 * s}
	}
}
