package gamification

import "github.com/lingo-learn/backend/internal/models"

// AchievementKind is the closed set of achievement triggers. The sweep in
// QualifiedAchievements switches exhaustively over it.
type AchievementKind string

const (
	KindStreak        AchievementKind = "streak"
	KindXP            AchievementKind = "xp"
	KindLessons       AchievementKind = "lessons"
	KindPerfectLesson AchievementKind = "perfect_lesson"
)

// AchievementDef is a static catalogue entry. Requirement is interpreted
// per kind: streak days, total XP, or lessons completed. Perfect-lesson
// achievements are one-shot flags and ignore Requirement.
type AchievementDef struct {
	ID          string
	Kind        AchievementKind
	Name        string
	Description string
	Requirement int
	XPReward    int
	GemsReward  int
}

// Catalogue is the static achievement catalogue, ordered for stable sweeps.
var Catalogue = []AchievementDef{
	{ID: "streak_3", Kind: KindStreak, Name: "Getting Started", Description: "3-day streak", Requirement: 3, XPReward: 10, GemsReward: 10},
	{ID: "streak_7", Kind: KindStreak, Name: "Week Warrior", Description: "7-day streak", Requirement: 7, XPReward: 25, GemsReward: 25},
	{ID: "streak_30", Kind: KindStreak, Name: "Monthly Master", Description: "30-day streak", Requirement: 30, XPReward: 100, GemsReward: 100},
	{ID: "streak_100", Kind: KindStreak, Name: "Centurion", Description: "100-day streak", Requirement: 100, XPReward: 500, GemsReward: 500},
	{ID: "xp_100", Kind: KindXP, Name: "First Hundred", Description: "Earn 100 total XP", Requirement: 100, XPReward: 10, GemsReward: 5},
	{ID: "xp_1000", Kind: KindXP, Name: "Rising Star", Description: "Earn 1,000 total XP", Requirement: 1000, XPReward: 50, GemsReward: 25},
	{ID: "xp_10000", Kind: KindXP, Name: "Powerhouse", Description: "Earn 10,000 total XP", Requirement: 10000, XPReward: 200, GemsReward: 100},
	{ID: "lessons_1", Kind: KindLessons, Name: "First Steps", Description: "Complete your first lesson", Requirement: 1, XPReward: 10, GemsReward: 50},
	{ID: "lessons_10", Kind: KindLessons, Name: "Dedicated", Description: "Complete 10 lessons", Requirement: 10, XPReward: 50, GemsReward: 25},
	{ID: "lessons_50", Kind: KindLessons, Name: "Scholar", Description: "Complete 50 lessons", Requirement: 50, XPReward: 150, GemsReward: 75},
	{ID: "perfect_lesson", Kind: KindPerfectLesson, Name: "Flawless", Description: "Finish a lesson with no mistakes", XPReward: 25, GemsReward: 10},
}

// CatalogueByID indexes the catalogue for reward lookups.
var CatalogueByID = func() map[string]AchievementDef {
	m := make(map[string]AchievementDef, len(Catalogue))
	for _, def := range Catalogue {
		m[def.ID] = def
	}
	return m
}()

// QualifiedAchievements returns the catalogue ids the user currently
// satisfies. The caller filters out already-earned ids and awards the rest;
// the grant itself is idempotent at the store level. Rewards credited for a
// grant do not feed back into this sweep, which keeps a single pass
// terminating.
func QualifiedAchievements(stats *models.UserStats, perfectLesson bool) []string {
	var earned []string
	for _, def := range Catalogue {
		qualified := false
		switch def.Kind {
		case KindStreak:
			qualified = stats.CurrentStreak >= def.Requirement
		case KindXP:
			qualified = stats.TotalXP >= int64(def.Requirement)
		case KindLessons:
			qualified = stats.LessonsCompleted >= def.Requirement
		case KindPerfectLesson:
			qualified = perfectLesson
		}
		if qualified {
			earned = append(earned, def.ID)
		}
	}
	return earned
}
