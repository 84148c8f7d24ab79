package gamification

import (
	"strconv"
	"sync"
	"time"

	"github.com/lingo-learn/backend/internal/models"
)

// MemoryStore keeps stats in process memory with the same semantics as the
// SQL store: hearts clamp to [0, MaxHearts], achievement rows are written
// at most once, daily goals hold one row per user per calendar date. The
// server composition uses Store; MemoryStore backs tests.
type MemoryStore struct {
	mu           sync.Mutex
	stats        map[int64]*models.UserStats
	achievements map[int64][]models.UserAchievement
	goals        map[string]*models.DailyGoal
	events       []XPEvent
	nextID       int64
}

// XPEvent mirrors one xp_events row.
type XPEvent struct {
	UserID    int64
	EventType string
	XPAmount  int
	Metadata  map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stats:        make(map[int64]*models.UserStats),
		achievements: make(map[int64][]models.UserAchievement),
		goals:        make(map[string]*models.DailyGoal),
	}
}

func (m *MemoryStore) GetOrCreateStats(userID int64) (*models.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(userID)
	clone := *st
	return &clone, nil
}

func (m *MemoryStore) getOrCreateLocked(userID int64) *models.UserStats {
	st, ok := m.stats[userID]
	if !ok {
		now := time.Now().UTC()
		st = &models.UserStats{
			UserID:    userID,
			Hearts:    models.MaxHearts,
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.stats[userID] = st
	}
	return st
}

func (m *MemoryStore) AddXP(userID int64, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreateLocked(userID).TotalXP += int64(amount)
	return nil
}

func (m *MemoryStore) LoseHeart(userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(userID)
	if st.Hearts > 0 {
		st.Hearts--
	}
	return st.Hearts, nil
}

func (m *MemoryStore) RestoreHearts(userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreateLocked(userID).Hearts = models.MaxHearts
	return nil
}

func (m *MemoryStore) RestoreAllHearts() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, st := range m.stats {
		if st.Hearts < models.MaxHearts {
			st.Hearts = models.MaxHearts
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) EarnGems(userID int64, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getOrCreateLocked(userID).Gems += amount
	return nil
}

func (m *MemoryStore) IncrementLessonCounters(userID int64, exercisesCompleted, correctAnswers int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(userID)
	st.LessonsCompleted++
	st.ExercisesCompleted += exercisesCompleted
	st.CorrectAnswers += correctAnswers
	return nil
}

func (m *MemoryStore) UpdateStreakData(userID int64, currentStreak, longestStreak int, lastActivity time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(userID)
	st.CurrentStreak = currentStreak
	st.LongestStreak = longestStreak
	st.LastActivityDate = &lastActivity
	return nil
}

func goalKey(userID int64, date time.Time) string {
	return date.UTC().Format("2006-01-02") + "/" + strconv.FormatInt(userID, 10)
}

func (m *MemoryStore) GetOrCreateDailyGoal(userID int64, date time.Time) (*models.DailyGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.goalLocked(userID, date)
	clone := *g
	return &clone, nil
}

func (m *MemoryStore) goalLocked(userID int64, date time.Time) *models.DailyGoal {
	key := goalKey(userID, date)
	g, ok := m.goals[key]
	if !ok {
		g = &models.DailyGoal{
			UserID:   userID,
			Date:     date.UTC().Truncate(24 * time.Hour),
			TargetXP: 50,
		}
		m.goals[key] = g
	}
	return g
}

func (m *MemoryStore) UpdateDailyGoal(userID int64, date time.Time, currentXP int, isCompleted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.goalLocked(userID, date)
	g.CurrentXP = currentXP
	g.IsCompleted = isCompleted
	return nil
}

func (m *MemoryStore) SetDailyGoalTarget(userID int64, date time.Time, targetXP int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goalLocked(userID, date).TargetXP = targetXP
	return nil
}

func (m *MemoryStore) GetUserAchievements(userID int64) ([]models.UserAchievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.UserAchievement{}, m.achievements[userID]...), nil
}

func (m *MemoryStore) AwardAchievement(userID int64, achievementID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.achievements[userID] {
		if a.AchievementID == achievementID {
			return false, nil
		}
	}
	m.nextID++
	m.achievements[userID] = append(m.achievements[userID], models.UserAchievement{
		ID:            m.nextID,
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now().UTC(),
	})
	return true, nil
}

func (m *MemoryStore) LogXPEvent(userID int64, eventType string, xpAmount int, metadata map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, XPEvent{
		UserID:    userID,
		EventType: eventType,
		XPAmount:  xpAmount,
		Metadata:  metadata,
	})
	return nil
}

// Events returns a copy of the recorded event log.
func (m *MemoryStore) Events() []XPEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]XPEvent{}, m.events...)
}
