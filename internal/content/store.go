// Package content provides read-only access to the course catalogue.
// Authoring and listing endpoints live elsewhere; the session engine and
// the sync endpoint only need exercises and course structure from here.
package content

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetExercisesByLesson returns the lesson's exercises in order. The slice
// includes correct answers; callers must sanitize before crossing the
// trust boundary.
func (s *Store) GetExercisesByLesson(lessonID int64) ([]models.Exercise, error) {
	rows, err := s.db.Query(
		`SELECT id, lesson_id, type, question, correct_answer, COALESCE(options, 'null'), difficulty_level, order_index
		 FROM exercises WHERE lesson_id = $1 ORDER BY order_index`,
		lessonID,
	)
	if err != nil {
		return nil, fmt.Errorf("get exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		var e models.Exercise
		var options []byte
		if err := rows.Scan(&e.ID, &e.LessonID, &e.Type, &e.Question, &e.CorrectAnswer,
			&options, &e.DifficultyLevel, &e.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if len(options) > 0 {
			json.Unmarshal(options, &e.Options)
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

func (s *Store) GetLesson(lessonID int64) (*models.Lesson, error) {
	var l models.Lesson
	err := s.db.QueryRow(
		`SELECT l.id, l.course_id, l.title, l.order_index, l.created_at,
		        (SELECT COUNT(*) FROM exercises e WHERE e.lesson_id = l.id)
		 FROM lessons l WHERE l.id = $1`,
		lessonID,
	).Scan(&l.ID, &l.CourseID, &l.Title, &l.OrderIndex, &l.CreatedAt, &l.ExerciseCount)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("lesson")
	}
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	return &l, nil
}

// GetCourseStructure returns the course with its lesson list (no exercises).
func (s *Store) GetCourseStructure(courseID int64) (*models.Course, error) {
	var c models.Course
	var description sql.NullString
	err := s.db.QueryRow(
		`SELECT id, title, language, description FROM courses WHERE id = $1`,
		courseID,
	).Scan(&c.ID, &c.Title, &c.Language, &description)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("course")
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	c.Description = description.String

	rows, err := s.db.Query(
		`SELECT l.id, l.course_id, l.title, l.order_index, l.created_at,
		        (SELECT COUNT(*) FROM exercises e WHERE e.lesson_id = l.id)
		 FROM lessons l WHERE l.course_id = $1 ORDER BY l.order_index`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get course lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.OrderIndex, &l.CreatedAt, &l.ExerciseCount); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		c.Lessons = append(c.Lessons, l)
	}
	if c.Lessons == nil {
		c.Lessons = []models.Lesson{}
	}
	return &c, rows.Err()
}
