package gamification

import "github.com/lingo-learn/backend/internal/models"

// MinimumXP is the hard floor for any correct answer.
const MinimumXP = 5

// baseXPByType maps exercise types to their base XP. Types not listed
// (or unknown) fall back to DefaultBaseXP.
var baseXPByType = map[models.ExerciseType]int{
	models.ExerciseMultipleChoice: 5,
	models.ExerciseFillBlank:      5,
	models.ExerciseListening:      8,
	models.ExerciseWordOrder:      8,
	models.ExerciseSpeaking:       10,
	models.ExerciseTranslation:    10,
}

const DefaultBaseXP = 5

// XPForExercise returns the XP awarded for a correct answer.
// base = per-type base XP × max(difficulty, 1), then a time multiplier:
// under 10s ×1.2 (fast bonus), over 60s ×0.8 (slow penalty). The result is
// floored to an integer and never drops below MinimumXP.
func XPForExercise(ex models.Exercise, timeSpentMs int64) int {
	base, ok := baseXPByType[ex.Type]
	if !ok {
		base = DefaultBaseXP
	}

	difficulty := ex.DifficultyLevel
	if difficulty < 1 {
		difficulty = 1
	}

	xp := float64(base * difficulty)
	switch {
	case timeSpentMs < 10_000:
		xp *= 1.2
	case timeSpentMs > 60_000:
		xp *= 0.8
	}

	result := int(xp)
	if result < MinimumXP {
		result = MinimumXP
	}
	return result
}
