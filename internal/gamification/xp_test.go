package gamification

import (
	"testing"

	"github.com/lingo-learn/backend/internal/models"
)

func TestXPForExercise_TimeMultipliers(t *testing.T) {
	translation := models.Exercise{Type: models.ExerciseTranslation, DifficultyLevel: 1}

	tests := []struct {
		name        string
		ex          models.Exercise
		timeSpentMs int64
		want        int
	}{
		{"translation fast bonus", translation, 5_000, 12},   // 10 * 1.2
		{"translation normal", translation, 30_000, 10},      // 10 * 1.0
		{"translation slow penalty", translation, 90_000, 8}, // 10 * 0.8
		{"boundary 10s is not fast", translation, 10_000, 10},
		{"boundary 60s is not slow", translation, 60_000, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := XPForExercise(tt.ex, tt.timeSpentMs); got != tt.want {
				t.Errorf("XPForExercise = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestXPForExercise_FloorNeverBelowMinimum(t *testing.T) {
	// 5 * 1 * 0.8 = 4.0, floored then clamped to the minimum
	ex := models.Exercise{Type: models.ExerciseMultipleChoice, DifficultyLevel: 0}
	if got := XPForExercise(ex, 90_000); got != MinimumXP {
		t.Errorf("slow easy exercise = %d, want minimum %d", got, MinimumXP)
	}
}

func TestXPForExercise_DifficultyScales(t *testing.T) {
	ex := models.Exercise{Type: models.ExerciseListening, DifficultyLevel: 3}
	if got := XPForExercise(ex, 30_000); got != 24 {
		t.Errorf("difficulty 3 listening = %d, want 24", got)
	}
}

func TestXPForExercise_UnknownTypeUsesDefault(t *testing.T) {
	ex := models.Exercise{Type: "matching", DifficultyLevel: 1}
	if got := XPForExercise(ex, 30_000); got != DefaultBaseXP {
		t.Errorf("unknown type = %d, want %d", got, DefaultBaseXP)
	}
}

func TestXPForExercise_Deterministic(t *testing.T) {
	ex := models.Exercise{Type: models.ExerciseSpeaking, DifficultyLevel: 2}
	first := XPForExercise(ex, 15_000)
	for i := 0; i < 10; i++ {
		if got := XPForExercise(ex, 15_000); got != first {
			t.Fatalf("XPForExercise not deterministic: %d then %d", first, got)
		}
	}
}

func TestXPForExercise_AllValidTypesHaveBaseXP(t *testing.T) {
	for typ := range models.ValidExerciseTypes {
		if _, ok := baseXPByType[typ]; !ok {
			t.Errorf("exercise type %q has no base XP entry", typ)
		}
	}
	for typ := range baseXPByType {
		if !models.ValidExerciseTypes[typ] {
			t.Errorf("base XP lists invalid exercise type %q", typ)
		}
	}
}
