package models

import "time"

// ── Session ──────────────────────────────────────────────

// AnswerRecord is appended once per graded exercise and never mutated.
type AnswerRecord struct {
	ExerciseID  int64  `json:"exercise_id"`
	UserAnswer  string `json:"user_answer"`
	IsCorrect   bool   `json:"is_correct"`
	TimeSpentMs int64  `json:"time_spent_ms"`
}

// Session is one attempt at a lesson. It is owned exclusively by the engine
// that created it (server engine or client offline store) and becomes
// immutable once IsCompleted is set, except for sync bookkeeping.
type Session struct {
	ID                   string         `json:"id"`
	UserID               int64          `json:"user_id"`
	LessonID             int64          `json:"lesson_id"`
	Exercises            []Exercise     `json:"exercises"`
	CurrentExerciseIndex int            `json:"current_exercise_index"`
	Answers              []AnswerRecord `json:"answers"`
	StartedAt            time.Time      `json:"started_at"`
	CompletedAt          *time.Time     `json:"completed_at,omitempty"`
	XPEarned             int            `json:"xp_earned"`
	HeartsLost           int            `json:"hearts_lost"`
	ExercisesCompleted   int            `json:"exercises_completed"`
	ExercisesCorrect     int            `json:"exercises_correct"`
	TimeSpentMs          int64          `json:"time_spent_ms"`
	IsCompleted          bool           `json:"is_completed"`
}

// Accuracy returns round(correct/completed*100), 0 for an empty session.
func (s *Session) Accuracy() int {
	if s.ExercisesCompleted == 0 {
		return 0
	}
	return int(float64(s.ExercisesCorrect)/float64(s.ExercisesCompleted)*100 + 0.5)
}

// SessionSummary is the terminal outcome of a completed session.
type SessionSummary struct {
	XPEarned           int   `json:"xp_earned"`
	HeartsLost         int   `json:"hearts_lost"`
	Accuracy           int   `json:"accuracy"`
	TimeSpentMs        int64 `json:"time_spent_ms"`
	ExercisesCompleted int   `json:"exercises_completed"`
	ExercisesCorrect   int   `json:"exercises_correct"`
}

// LessonResult is the input to the reward cascade that runs exactly once
// per completed session.
type LessonResult struct {
	SessionID          string
	LessonID           int64
	XPEarned           int
	ExercisesCompleted int
	ExercisesCorrect   int
	Perfect            bool
}

// ── Request Types ────────────────────────────────────────

type StartSessionRequest struct {
	LessonID int64 `json:"lesson_id"`
}

type SubmitAnswerRequest struct {
	ExerciseID  int64  `json:"exercise_id"`
	UserAnswer  string `json:"user_answer"`
	TimeSpentMs int64  `json:"time_spent_ms"`
}

// SyncSessionRequest uploads a session that was completed offline.
// The server re-grades every answer and is the source of truth for rewards.
type SyncSessionRequest struct {
	SessionID   string       `json:"session_id"`
	LessonID    int64        `json:"lesson_id"`
	Answers     []SyncAnswer `json:"answers"`
	CompletedAt time.Time    `json:"completed_at"`
	IsOffline   bool         `json:"is_offline"`
}

type SyncAnswer struct {
	ExerciseID  int64  `json:"exercise_id"`
	UserAnswer  string `json:"user_answer"`
	TimeSpentMs int64  `json:"time_spent_ms"`
}

// ── Response Types ───────────────────────────────────────

type StartSessionResponse struct {
	SessionID       string     `json:"session_id"`
	Exercises       []Exercise `json:"exercises"`
	CurrentExercise *Exercise  `json:"current_exercise"`
}

type CurrentExerciseResponse struct {
	Exercise *Exercise `json:"exercise"`
}

type AnswerResult struct {
	IsCorrect         bool   `json:"is_correct"`
	CorrectAnswer     string `json:"correct_answer"`
	Explanation       string `json:"explanation,omitempty"`
	XPEarned          int    `json:"xp_earned"`
	HeartsLost        int    `json:"hearts_lost"`
	IsSessionComplete bool   `json:"is_session_complete"`
}

// SyncSessionResponse is returned for both first-time and repeated uploads
// of the same session id; repeats echo the recorded outcome.
type SyncSessionResponse struct {
	SessionID      string    `json:"session_id"`
	XPEarned       int       `json:"xp_earned"`
	Accuracy       int       `json:"accuracy"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalAnswers   int       `json:"total_answers"`
	SyncedAt       time.Time `json:"synced_at"`
}
