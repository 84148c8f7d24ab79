package gamification

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lingo-learn/backend/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so the same store can run
// standalone or inside a caller's transaction (the sync ledger claims and
// credits atomically that way).
type DBTX interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type Store struct {
	db DBTX
}

func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// ── Core Stats CRUD ─────────────────────────────────────

func (s *Store) GetOrCreateStats(userID int64) (*models.UserStats, error) {
	_, err := s.db.Exec(
		`INSERT INTO user_stats (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user stats: %w", err)
	}

	var st models.UserStats
	err = s.db.QueryRow(
		`SELECT user_id, total_xp, current_streak, longest_streak, hearts, gems,
		        lessons_completed, exercises_completed, correct_answers,
		        last_activity_date, created_at, updated_at
		 FROM user_stats WHERE user_id = $1`,
		userID,
	).Scan(&st.UserID, &st.TotalXP, &st.CurrentStreak, &st.LongestStreak,
		&st.Hearts, &st.Gems, &st.LessonsCompleted, &st.ExercisesCompleted,
		&st.CorrectAnswers, &st.LastActivityDate, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return &st, nil
}

// ── XP / Hearts / Gems ──────────────────────────────────

func (s *Store) AddXP(userID int64, amount int) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET total_xp = total_xp + $2, updated_at = NOW()
		 WHERE user_id = $1`,
		userID, amount,
	)
	return err
}

// LoseHeart decrements hearts with a floor of 0 and returns the remainder.
func (s *Store) LoseHeart(userID int64) (int, error) {
	var hearts int
	err := s.db.QueryRow(
		`UPDATE user_stats SET hearts = GREATEST(hearts - 1, 0), updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING hearts`,
		userID,
	).Scan(&hearts)
	if err != nil {
		return 0, fmt.Errorf("lose heart: %w", err)
	}
	return hearts, nil
}

// RestoreHearts refills hearts up to the cap.
func (s *Store) RestoreHearts(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET hearts = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, models.MaxHearts,
	)
	return err
}

// RestoreAllHearts is the daily refill used by the background worker.
func (s *Store) RestoreAllHearts() (int64, error) {
	res, err := s.db.Exec(
		`UPDATE user_stats SET hearts = $1, updated_at = NOW() WHERE hearts < $1`,
		models.MaxHearts,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) EarnGems(userID int64, amount int) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET gems = gems + $2, updated_at = NOW() WHERE user_id = $1`,
		userID, amount,
	)
	return err
}

// ── Counters / Streak ───────────────────────────────────

func (s *Store) IncrementLessonCounters(userID int64, exercisesCompleted, correctAnswers int) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET
		    lessons_completed = lessons_completed + 1,
		    exercises_completed = exercises_completed + $2,
		    correct_answers = correct_answers + $3,
		    updated_at = NOW()
		 WHERE user_id = $1`,
		userID, exercisesCompleted, correctAnswers,
	)
	return err
}

func (s *Store) UpdateStreakData(userID int64, currentStreak, longestStreak int, lastActivity time.Time) error {
	_, err := s.db.Exec(
		`UPDATE user_stats SET
		    current_streak = $2, longest_streak = $3, last_activity_date = $4,
		    updated_at = NOW()
		 WHERE user_id = $1`,
		userID, currentStreak, longestStreak, lastActivity,
	)
	return err
}

// ── Daily Goal ──────────────────────────────────────────

func (s *Store) GetOrCreateDailyGoal(userID int64, date time.Time) (*models.DailyGoal, error) {
	day := date.UTC().Format("2006-01-02")
	_, err := s.db.Exec(
		`INSERT INTO daily_goals (user_id, goal_date) VALUES ($1, $2)
		 ON CONFLICT (user_id, goal_date) DO NOTHING`,
		userID, day,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert daily goal: %w", err)
	}

	var g models.DailyGoal
	err = s.db.QueryRow(
		`SELECT user_id, goal_date, target_xp, current_xp, is_completed
		 FROM daily_goals WHERE user_id = $1 AND goal_date = $2`,
		userID, day,
	).Scan(&g.UserID, &g.Date, &g.TargetXP, &g.CurrentXP, &g.IsCompleted)
	if err != nil {
		return nil, fmt.Errorf("get daily goal: %w", err)
	}
	return &g, nil
}

func (s *Store) UpdateDailyGoal(userID int64, date time.Time, currentXP int, isCompleted bool) error {
	_, err := s.db.Exec(
		`UPDATE daily_goals SET current_xp = $3, is_completed = $4
		 WHERE user_id = $1 AND goal_date = $2`,
		userID, date.UTC().Format("2006-01-02"), currentXP, isCompleted,
	)
	return err
}

func (s *Store) SetDailyGoalTarget(userID int64, date time.Time, targetXP int) error {
	day := date.UTC().Format("2006-01-02")
	_, err := s.db.Exec(
		`INSERT INTO daily_goals (user_id, goal_date, target_xp) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, goal_date) DO UPDATE SET target_xp = EXCLUDED.target_xp`,
		userID, day, targetXP,
	)
	return err
}

// ── Achievements ────────────────────────────────────────

func (s *Store) GetUserAchievements(userID int64) ([]models.UserAchievement, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, achievement_id, earned_at
		 FROM user_achievements WHERE user_id = $1 ORDER BY earned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get achievements: %w", err)
	}
	defer rows.Close()

	achievements := []models.UserAchievement{}
	for rows.Next() {
		var a models.UserAchievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementID, &a.EarnedAt); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// AwardAchievement inserts the membership row at most once. It reports
// whether this call actually granted it, so the caller credits the
// achievement's rewards exactly once.
func (s *Store) AwardAchievement(userID int64, achievementID string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO user_achievements (user_id, achievement_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID,
	)
	if err != nil {
		return false, err
	}
	rows, _ := res.RowsAffected()
	return rows > 0, nil
}

// ── XP Event Log ────────────────────────────────────────

func (s *Store) LogXPEvent(userID int64, eventType string, xpAmount int, metadata map[string]interface{}) error {
	var metaJSON *string
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			str := string(b)
			metaJSON = &str
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO xp_events (user_id, event_type, xp_amount, metadata)
		 VALUES ($1, $2, $3, $4)`,
		userID, eventType, xpAmount, metaJSON,
	)
	return err
}
