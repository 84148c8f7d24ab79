package gamification

import "time"

// NextStreak computes the streak counters after activity on "today".
// A gap of exactly one calendar day extends the streak, same-day activity
// leaves it unchanged, anything else (including no prior activity) resets
// it to 1. longestStreak tracks the running maximum.
func NextStreak(current, longest int, lastActivity *time.Time, today time.Time) (int, int) {
	day := today.UTC().Truncate(24 * time.Hour)

	switch {
	case lastActivity == nil:
		current = 1
	default:
		last := lastActivity.UTC().Truncate(24 * time.Hour)
		days := int(day.Sub(last).Hours() / 24)
		switch days {
		case 0:
			// already active today
		case 1:
			current++
		default:
			current = 1
		}
	}

	if current > longest {
		longest = current
	}
	return current, longest
}
