package models

import "time"

// ── Core Stats Structs ───────────────────────────────────

const MaxHearts = 5

// UserStats is the learner's persistent progress. Level is always derived
// from TotalXP; it is never stored as an independent source of truth.
type UserStats struct {
	UserID             int64      `json:"user_id"`
	TotalXP            int64      `json:"total_xp"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	Hearts             int        `json:"hearts"`
	Gems               int        `json:"gems"`
	LessonsCompleted   int        `json:"lessons_completed"`
	ExercisesCompleted int        `json:"exercises_completed"`
	CorrectAnswers     int        `json:"correct_answers"`
	LastActivityDate   *time.Time `json:"last_activity_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Level is a pure function of total XP.
func (s *UserStats) Level() int {
	return int(s.TotalXP/100) + 1
}

// UserAchievement is a membership row, written at most once per
// (user, achievement) pair.
type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`
}

// DailyGoal tracks a per-day XP target, one row per user per calendar date.
type DailyGoal struct {
	UserID      int64     `json:"user_id"`
	Date        time.Time `json:"date"`
	TargetXP    int       `json:"target_xp"`
	CurrentXP   int       `json:"current_xp"`
	IsCompleted bool      `json:"is_completed"`
}

// ── Request Types ────────────────────────────────────────

type SetDailyGoalRequest struct {
	TargetXP int `json:"target_xp"`
}

// ── Response Types ───────────────────────────────────────

type StatsResponse struct {
	TotalXP            int64      `json:"total_xp"`
	Level              int        `json:"level"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	Hearts             int        `json:"hearts"`
	Gems               int        `json:"gems"`
	LessonsCompleted   int        `json:"lessons_completed"`
	ExercisesCompleted int        `json:"exercises_completed"`
	CorrectAnswers     int        `json:"correct_answers"`
	LastActivityDate   *time.Time `json:"last_activity_date,omitempty"`
	DailyGoal          *DailyGoal `json:"daily_goal,omitempty"`
	Achievements       []string   `json:"achievements"`
}
