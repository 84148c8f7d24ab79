package gamification

import (
	"testing"

	"github.com/lingo-learn/backend/internal/models"
)

func TestQualifiedAchievements_Thresholds(t *testing.T) {
	stats := &models.UserStats{
		TotalXP:          1200,
		CurrentStreak:    7,
		LessonsCompleted: 1,
	}

	got := toSet(QualifiedAchievements(stats, false))

	want := []string{"streak_3", "streak_7", "xp_100", "xp_1000", "lessons_1"}
	for _, id := range want {
		if !got[id] {
			t.Errorf("expected %s to qualify", id)
		}
	}
	for _, id := range []string{"streak_30", "xp_10000", "lessons_10", "perfect_lesson"} {
		if got[id] {
			t.Errorf("did not expect %s to qualify", id)
		}
	}
}

func TestQualifiedAchievements_PerfectLesson(t *testing.T) {
	stats := &models.UserStats{}

	if got := toSet(QualifiedAchievements(stats, true)); !got["perfect_lesson"] {
		t.Error("perfect lesson should qualify perfect_lesson")
	}
	if got := toSet(QualifiedAchievements(stats, false)); got["perfect_lesson"] {
		t.Error("imperfect lesson should not qualify perfect_lesson")
	}
}

func TestCatalogue_KindsAreClosed(t *testing.T) {
	known := map[AchievementKind]bool{
		KindStreak:        true,
		KindXP:            true,
		KindLessons:       true,
		KindPerfectLesson: true,
	}
	for _, def := range Catalogue {
		if !known[def.Kind] {
			t.Errorf("achievement %s has unknown kind %q", def.ID, def.Kind)
		}
	}
}

func TestCatalogue_IDsUniqueAndIndexed(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Catalogue {
		if seen[def.ID] {
			t.Errorf("duplicate achievement id %s", def.ID)
		}
		seen[def.ID] = true
		if _, ok := CatalogueByID[def.ID]; !ok {
			t.Errorf("achievement %s missing from index", def.ID)
		}
	}
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
