package models

import "testing"

func TestUserStats_Level(t *testing.T) {
	tests := []struct {
		totalXP int64
		want    int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{1000, 11},
	}
	for _, tt := range tests {
		s := &UserStats{TotalXP: tt.totalXP}
		if got := s.Level(); got != tt.want {
			t.Errorf("Level(%d XP) = %d, want %d", tt.totalXP, got, tt.want)
		}
	}
}

func TestSession_Accuracy(t *testing.T) {
	tests := []struct {
		correct   int
		completed int
		want      int
	}{
		{0, 0, 0},
		{1, 2, 50},
		{2, 3, 67}, // rounds, not truncates
		{10, 10, 100},
	}
	for _, tt := range tests {
		s := &Session{ExercisesCorrect: tt.correct, ExercisesCompleted: tt.completed}
		if got := s.Accuracy(); got != tt.want {
			t.Errorf("Accuracy(%d/%d) = %d, want %d", tt.correct, tt.completed, got, tt.want)
		}
	}
}
