package models

import "time"

// ── Exercise Types ───────────────────────────────────────

type ExerciseType string

const (
	ExerciseMultipleChoice ExerciseType = "multiple_choice"
	ExerciseTranslation    ExerciseType = "translation"
	ExerciseListening      ExerciseType = "listening"
	ExerciseSpeaking       ExerciseType = "speaking"
	ExerciseFillBlank      ExerciseType = "fill_blank"
	ExerciseWordOrder      ExerciseType = "word_order"
)

// ValidExerciseTypes is the closed set of gradable exercise types.
var ValidExerciseTypes = map[ExerciseType]bool{
	ExerciseMultipleChoice: true,
	ExerciseTranslation:    true,
	ExerciseListening:      true,
	ExerciseSpeaking:       true,
	ExerciseFillBlank:      true,
	ExerciseWordOrder:      true,
}

// Exercise is read-only reference data. A session snapshots the lesson's
// exercise list at start time and never re-fetches it mid-session.
type Exercise struct {
	ID              int64        `json:"id"`
	LessonID        int64        `json:"lesson_id"`
	Type            ExerciseType `json:"type"`
	Question        string       `json:"question"`
	CorrectAnswer   string       `json:"correct_answer,omitempty"`
	Options         []string     `json:"options,omitempty"`
	DifficultyLevel int          `json:"difficulty_level"`
	OrderIndex      int          `json:"order_index"`
}

// Sanitized returns a copy with the correct answer stripped. Exercises must
// never carry their answers past the engine's trust boundary.
func (e Exercise) Sanitized() Exercise {
	e.CorrectAnswer = ""
	return e
}

// ── Course / Lesson (consumed content collaborator) ──────

type Course struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Language    string   `json:"language"`
	Description string   `json:"description,omitempty"`
	Lessons     []Lesson `json:"lessons,omitempty"`
}

type Lesson struct {
	ID            int64     `json:"id"`
	CourseID      int64     `json:"course_id"`
	Title         string    `json:"title"`
	OrderIndex    int       `json:"order_index"`
	ExerciseCount int       `json:"exercise_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// LessonContent is the download payload the offline client caches: a lesson
// together with its full exercises, answers included.
type LessonContent struct {
	Lesson    Lesson     `json:"lesson"`
	Exercises []Exercise `json:"exercises"`
}
