package session

import (
	"testing"

	"github.com/lingo-learn/backend/internal/models"
)

func TestValidate_ExactMatchNormalization(t *testing.T) {
	ex := models.Exercise{
		Type:          models.ExerciseFillBlank,
		CorrectAnswer: "Bonjour",
	}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"exact", "Bonjour", true},
		{"case insensitive", "bonjour", true},
		{"surrounding whitespace", "  bonjour  ", true},
		{"trailing punctuation", "bonjour!", true},
		{"wrong word", "bonsoir", false},
		{"empty", "", false},
		{"only punctuation", "!?.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(ex, tt.answer).IsCorrect; got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestValidate_WhitespaceCollapsed(t *testing.T) {
	ex := models.Exercise{
		Type:          models.ExerciseWordOrder,
		CorrectAnswer: "je suis content",
	}
	if !Validate(ex, "Je  suis\tcontent.").IsCorrect {
		t.Error("collapsed whitespace and stripped punctuation should match")
	}
	if Validate(ex, "je content suis").IsCorrect {
		t.Error("word order matters for word_order exercises")
	}
}

func TestValidate_TranslationContainment(t *testing.T) {
	ex := models.Exercise{
		Type:          models.ExerciseTranslation,
		CorrectAnswer: "the cat",
	}

	// Longer user answer containing the expected translation passes.
	if !Validate(ex, "it is the cat").IsCorrect {
		t.Error("answer containing the correct translation should pass")
	}
	// And the other direction: a shorter answer contained in the expected one.
	long := models.Exercise{Type: models.ExerciseTranslation, CorrectAnswer: "it is the cat"}
	if !Validate(long, "the cat").IsCorrect {
		t.Error("answer contained in the correct translation should pass")
	}
	if Validate(ex, "the dog").IsCorrect {
		t.Error("unrelated answer should fail")
	}
}

func TestValidate_TranslationEmptyAnswerNeverMatches(t *testing.T) {
	// "" is a substring of everything; the empty-side guard must catch it.
	ex := models.Exercise{Type: models.ExerciseTranslation, CorrectAnswer: "hola"}
	if Validate(ex, "").IsCorrect {
		t.Error("empty answer must not pass by vacuous containment")
	}
	if Validate(ex, "   !!!").IsCorrect {
		t.Error("answer that normalizes to empty must not pass")
	}
}

func TestValidate_MalformedExercise(t *testing.T) {
	// No correct answer configured: grade incorrect, do not panic.
	ex := models.Exercise{Type: models.ExerciseMultipleChoice}
	outcome := Validate(ex, "anything")
	if outcome.IsCorrect {
		t.Error("exercise without a correct answer must grade incorrect")
	}
}

func TestValidate_ExplanationOnlyWhenWrong(t *testing.T) {
	ex := models.Exercise{Type: models.ExerciseMultipleChoice, CorrectAnswer: "chien"}

	if got := Validate(ex, "chien"); got.Explanation != "" {
		t.Errorf("correct answer should carry no explanation, got %q", got.Explanation)
	}
	wrong := Validate(ex, "chat")
	if wrong.Explanation == "" {
		t.Error("wrong answer should carry an explanation")
	}
	if wrong.CorrectAnswer != "chien" {
		t.Errorf("outcome should echo the correct answer, got %q", wrong.CorrectAnswer)
	}
}

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  a  b  ", "a b"},
		{"C'est   la vie.", "cest la vie"},
		{"ÉCOLE", "école"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeAnswer(tt.in); got != tt.want {
			t.Errorf("normalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
