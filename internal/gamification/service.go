package gamification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lingo-learn/backend/internal/models"
)

// DailyGoalGemBonus is credited once per day when the goal is first reached.
const DailyGoalGemBonus = 5

// StatsStore is the persistence surface the service needs. Store backs it
// in the server; MemoryStore backs it in tests.
type StatsStore interface {
	GetOrCreateStats(userID int64) (*models.UserStats, error)
	AddXP(userID int64, amount int) error
	LoseHeart(userID int64) (int, error)
	RestoreHearts(userID int64) error
	RestoreAllHearts() (int64, error)
	EarnGems(userID int64, amount int) error
	IncrementLessonCounters(userID int64, exercisesCompleted, correctAnswers int) error
	UpdateStreakData(userID int64, currentStreak, longestStreak int, lastActivity time.Time) error
	GetOrCreateDailyGoal(userID int64, date time.Time) (*models.DailyGoal, error)
	UpdateDailyGoal(userID int64, date time.Time, currentXP int, isCompleted bool) error
	SetDailyGoalTarget(userID int64, date time.Time, targetXP int) error
	GetUserAchievements(userID int64) ([]models.UserAchievement, error)
	AwardAchievement(userID int64, achievementID string) (bool, error)
	LogXPEvent(userID int64, eventType string, xpAmount int, metadata map[string]interface{}) error
}

type Service struct {
	store StatsStore
}

func NewService(store StatsStore) *Service {
	return &Service{store: store}
}

// ── Hearts ──────────────────────────────────────────────

// LoseHeart removes one heart (floor 0) and returns the remaining count.
func (s *Service) LoseHeart(userID int64) (int, error) {
	if _, err := s.store.GetOrCreateStats(userID); err != nil {
		return 0, err
	}
	return s.store.LoseHeart(userID)
}

func (s *Service) RestoreHearts(userID int64) error {
	if _, err := s.store.GetOrCreateStats(userID); err != nil {
		return err
	}
	return s.store.RestoreHearts(userID)
}

func (s *Service) EarnGems(userID int64, amount int) error {
	return s.store.EarnGems(userID, amount)
}

// ── Streak ──────────────────────────────────────────────

func (s *Service) UpdateStreak(userID int64) error {
	stats, err := s.store.GetOrCreateStats(userID)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	current, longest := NextStreak(stats.CurrentStreak, stats.LongestStreak, stats.LastActivityDate, today)

	return s.store.UpdateStreakData(userID, current, longest, today)
}

// ── Daily Goal ──────────────────────────────────────────

// UpdateDailyGoalProgress accumulates XP into today's goal. Crossing the
// target for the first time today awards the gem bonus exactly once; the
// before/after threshold check makes a retried cascade safe.
func (s *Service) UpdateDailyGoalProgress(userID int64, xpEarned int) error {
	today := time.Now().UTC()
	goal, err := s.store.GetOrCreateDailyGoal(userID, today)
	if err != nil {
		return fmt.Errorf("get daily goal: %w", err)
	}

	wasCompleted := goal.CurrentXP >= goal.TargetXP
	goal.CurrentXP += xpEarned
	nowCompleted := goal.CurrentXP >= goal.TargetXP

	if err := s.store.UpdateDailyGoal(userID, today, goal.CurrentXP, nowCompleted); err != nil {
		return fmt.Errorf("update daily goal: %w", err)
	}

	if !wasCompleted && nowCompleted {
		if err := s.store.EarnGems(userID, DailyGoalGemBonus); err != nil {
			log.Printf("[gamification] failed to award daily goal gems for user %d: %v", userID, err)
		}
		s.store.LogXPEvent(userID, "daily_goal", 0, map[string]interface{}{
			"gems_awarded": DailyGoalGemBonus,
			"target":       goal.TargetXP,
		})
	}
	return nil
}

func (s *Service) SetDailyGoal(userID int64, targetXP int) error {
	if targetXP < 10 || targetXP > 500 {
		return fmt.Errorf("target must be between 10 and 500 XP")
	}
	if _, err := s.store.GetOrCreateStats(userID); err != nil {
		return err
	}
	return s.store.SetDailyGoalTarget(userID, time.Now().UTC(), targetXP)
}

// ── Lesson Completion Cascade ───────────────────────────

// ApplyLessonCompletion runs the reward cascade for one completed session:
// XP commit, counters, streak, achievement sweep, daily goal. Each sub-step
// is independently idempotent; session-level exactly-once is the caller's
// responsibility (live sessions complete once, synced sessions are deduped
// by the sync ledger).
func (s *Service) ApplyLessonCompletion(userID int64, result models.LessonResult) error {
	if _, err := s.store.GetOrCreateStats(userID); err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	if result.XPEarned > 0 {
		if err := s.store.AddXP(userID, result.XPEarned); err != nil {
			return fmt.Errorf("add xp: %w", err)
		}
		s.store.LogXPEvent(userID, "lesson_complete", result.XPEarned, map[string]interface{}{
			"session_id": result.SessionID,
			"lesson_id":  result.LessonID,
			"correct":    result.ExercisesCorrect,
			"total":      result.ExercisesCompleted,
		})
	}

	if err := s.store.IncrementLessonCounters(userID, result.ExercisesCompleted, result.ExercisesCorrect); err != nil {
		log.Printf("[gamification] failed to update counters for user %d: %v", userID, err)
	}

	if err := s.UpdateStreak(userID); err != nil {
		log.Printf("[gamification] failed to update streak for user %d: %v", userID, err)
	}

	if err := s.sweepAchievements(userID, result.Perfect); err != nil {
		log.Printf("[gamification] achievement sweep failed for user %d: %v", userID, err)
	}

	if err := s.UpdateDailyGoalProgress(userID, result.XPEarned); err != nil {
		log.Printf("[gamification] failed to update daily goal for user %d: %v", userID, err)
	}

	return nil
}

// sweepAchievements grants every newly-satisfied catalogue entry. Secondary
// rewards (achievement XP/gems) are credited but do not re-enter the sweep.
func (s *Service) sweepAchievements(userID int64, perfectLesson bool) error {
	stats, err := s.store.GetOrCreateStats(userID)
	if err != nil {
		return err
	}

	for _, id := range QualifiedAchievements(stats, perfectLesson) {
		granted, err := s.store.AwardAchievement(userID, id)
		if err != nil {
			log.Printf("[gamification] failed to award %s to user %d: %v", id, userID, err)
			continue
		}
		if !granted {
			continue
		}
		def := CatalogueByID[id]
		if def.XPReward > 0 {
			s.store.AddXP(userID, def.XPReward)
		}
		if def.GemsReward > 0 {
			s.store.EarnGems(userID, def.GemsReward)
		}
		s.store.LogXPEvent(userID, "achievement", def.XPReward, map[string]interface{}{
			"achievement_id": id,
			"gems_awarded":   def.GemsReward,
		})
	}
	return nil
}

// ── Stats ───────────────────────────────────────────────

func (s *Service) GetStats(userID int64) (*models.StatsResponse, error) {
	stats, err := s.store.GetOrCreateStats(userID)
	if err != nil {
		return nil, err
	}

	earned, err := s.store.GetUserAchievements(userID)
	if err != nil {
		earned = nil
	}
	achievements := make([]string, 0, len(earned))
	for _, a := range earned {
		achievements = append(achievements, a.AchievementID)
	}

	goal, err := s.store.GetOrCreateDailyGoal(userID, time.Now().UTC())
	if err != nil {
		goal = nil
	}

	return &models.StatsResponse{
		TotalXP:            stats.TotalXP,
		Level:              stats.Level(),
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		Hearts:             stats.Hearts,
		Gems:               stats.Gems,
		LessonsCompleted:   stats.LessonsCompleted,
		ExercisesCompleted: stats.ExercisesCompleted,
		CorrectAnswers:     stats.CorrectAnswers,
		LastActivityDate:   stats.LastActivityDate,
		DailyGoal:          goal,
		Achievements:       achievements,
	}, nil
}

// ── Background Workers ──────────────────────────────────

// StartHeartsRefillWorker restores every learner's hearts once per UTC day.
func (s *Service) StartHeartsRefillWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	log.Println("[gamification] Hearts refill worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[gamification] Hearts refill worker shutting down")
			return
		case t := <-ticker.C:
			if t.UTC().Hour() == 0 {
				n, err := s.store.RestoreAllHearts()
				if err != nil {
					log.Printf("[gamification] hearts refill failed: %v", err)
					continue
				}
				log.Printf("[gamification] refilled hearts for %d users", n)
			}
		}
	}
}
