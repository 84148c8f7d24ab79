package session

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lingo-learn/backend/internal/models"
)

// ValidationOutcome is the result of grading a single answer.
type ValidationOutcome struct {
	IsCorrect     bool
	CorrectAnswer string
	Explanation   string
}

// Validate grades one answer against its exercise. It is deterministic and
// total: malformed input grades as incorrect, never panics. Comparison is
// case- and whitespace-insensitive with punctuation stripped; translation
// exercises additionally accept answers where one normalized side fully
// contains the other.
func Validate(ex models.Exercise, userAnswer string) ValidationOutcome {
	outcome := ValidationOutcome{CorrectAnswer: ex.CorrectAnswer}

	want := normalizeAnswer(ex.CorrectAnswer)
	got := normalizeAnswer(userAnswer)
	if want == "" || got == "" {
		outcome.Explanation = explanationFor(ex, false)
		return outcome
	}

	switch ex.Type {
	case models.ExerciseTranslation:
		outcome.IsCorrect = strings.Contains(got, want) || strings.Contains(want, got)
	default:
		outcome.IsCorrect = got == want
	}

	outcome.Explanation = explanationFor(ex, outcome.IsCorrect)
	return outcome
}

func explanationFor(ex models.Exercise, correct bool) string {
	if correct {
		return ""
	}
	return fmt.Sprintf("The correct answer is %q.", ex.CorrectAnswer)
}

// normalizeAnswer lowercases, strips punctuation and symbols, and collapses
// all whitespace runs to single spaces.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
