package gamification

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	today := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	fiveDaysAgo := today.AddDate(0, 0, -5)

	tests := []struct {
		name         string
		current      int
		longest      int
		lastActivity *time.Time
		wantCurrent  int
		wantLongest  int
	}{
		{"first ever activity", 0, 0, nil, 1, 1},
		{"active yesterday extends", 5, 7, &yesterday, 6, 7},
		{"already active today unchanged", 5, 7, &today, 5, 7},
		{"five day gap resets", 5, 7, &fiveDaysAgo, 1, 7},
		{"extension updates longest", 7, 7, &yesterday, 8, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := NextStreak(tt.current, tt.longest, tt.lastActivity, today)
			if current != tt.wantCurrent || longest != tt.wantLongest {
				t.Errorf("NextStreak = (%d, %d), want (%d, %d)",
					current, longest, tt.wantCurrent, tt.wantLongest)
			}
		})
	}
}

func TestNextStreak_TimeOfDayIrrelevant(t *testing.T) {
	// Late activity yesterday, early activity today is still a 1-day gap.
	last := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC)

	current, _ := NextStreak(3, 3, &last, today)
	if current != 4 {
		t.Errorf("streak across midnight = %d, want 4", current)
	}
}
