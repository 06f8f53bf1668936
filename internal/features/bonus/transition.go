package bonus

import "serotonyl.ru/game-backend/internal/common"

// Transition classifies a claim against the stored login record.
type Transition int

const (
	NoRecord        Transition = iota // first claim ever
	ClaimedToday                      // rejected, nothing changes
	ConsecutiveDay                    // last claim was yesterday
	StreakBroken                      // gap of two days or more
	ClockRegression                   // last claim is after today, rejected
)

func (t Transition) String() string {
	switch t {
	case NoRecord:
		return "no_record"
	case ClaimedToday:
		return "claimed_today"
	case ConsecutiveDay:
		return "consecutive_day"
	case StreakBroken:
		return "streak_broken"
	case ClockRegression:
		return "clock_regression"
	}
	return "unknown"
}

// Classify compares rec (nil when absent) with the claim day.
func Classify(rec *LoginRecord, today common.Date) Transition {
	if rec == nil {
		return NoRecord
	}
	switch gap := today.DaysSince(rec.LastLoginDate); {
	case gap == 0:
		return ClaimedToday
	case gap == 1:
		return ConsecutiveDay
	case gap < 0:
		return ClockRegression
	default:
		return StreakBroken
	}
}

// NextStreak returns the transition and the streak after a claim on today.
// For rejected transitions the streak is the stored one, unchanged.
func NextStreak(rec *LoginRecord, today common.Date) (Transition, int) {
	t := Classify(rec, today)
	switch t {
	case NoRecord, StreakBroken:
		return t, 1
	case ConsecutiveDay:
		return t, rec.Streak + 1
	default:
		return t, rec.Streak
	}
}
