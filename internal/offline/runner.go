package offline

import (
	"time"

	"github.com/google/uuid"
	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/gamification"
	"github.com/lingo-learn/backend/internal/models"
	"github.com/lingo-learn/backend/internal/session"
)

// Runner plays a cached lesson with no server round-trips. Grading and XP
// use the same rules the server applies, so the numbers shown offline match
// what the sync endpoint will later confirm.
type Runner struct {
	store *Store

	sessionID string
	lessonID  int64
	exercises []models.Exercise
	index     int
	answers   []models.SyncAnswer
	correct   int
	xpEarned  int
	startedAt time.Time
}

// NewRunner starts a local session against a downloaded lesson.
func NewRunner(store *Store, lessonID int64) (*Runner, error) {
	content, err := store.GetOfflineLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if len(content.Exercises) == 0 {
		return nil, apperr.NotFound("lesson")
	}
	return &Runner{
		store:     store,
		sessionID: uuid.NewString(),
		lessonID:  lessonID,
		exercises: content.Exercises,
		startedAt: time.Now().UTC(),
	}, nil
}

func (r *Runner) SessionID() string { return r.sessionID }

// Current returns the exercise to present next, or nil when done.
func (r *Runner) Current() *models.Exercise {
	if r.index >= len(r.exercises) {
		return nil
	}
	ex := r.exercises[r.index]
	return &ex
}

func (r *Runner) Remaining() int {
	return len(r.exercises) - r.index
}

// Submit grades the current exercise and advances. Completing the last
// exercise saves a pending progress entry for the sync coordinator.
func (r *Runner) Submit(userAnswer string, timeSpentMs int64) (*models.AnswerResult, error) {
	if r.index >= len(r.exercises) {
		return nil, apperr.Conflict("session already completed")
	}

	ex := r.exercises[r.index]
	outcome := session.Validate(ex, userAnswer)

	result := &models.AnswerResult{
		IsCorrect:     outcome.IsCorrect,
		CorrectAnswer: outcome.CorrectAnswer,
		Explanation:   outcome.Explanation,
	}
	if outcome.IsCorrect {
		r.correct++
		result.XPEarned = gamification.XPForExercise(ex, timeSpentMs)
		r.xpEarned += result.XPEarned
	}

	r.answers = append(r.answers, models.SyncAnswer{
		ExerciseID:  ex.ID,
		UserAnswer:  userAnswer,
		TimeSpentMs: timeSpentMs,
	})
	r.index++

	if r.index == len(r.exercises) {
		result.IsSessionComplete = true
		if err := r.store.SaveOfflineProgress(ProgressEntry{
			SessionID:   r.sessionID,
			LessonID:    r.lessonID,
			Answers:     r.answers,
			CompletedAt: time.Now().UTC(),
		}); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Summary reports the local outcome. The server-side re-grade during sync
// remains authoritative for rewards.
func (r *Runner) Summary() models.SessionSummary {
	return models.SessionSummary{
		XPEarned:           r.xpEarned,
		Accuracy:           accuracy(r.correct, len(r.answers)),
		TimeSpentMs:        totalTime(r.answers),
		ExercisesCompleted: len(r.answers),
		ExercisesCorrect:   r.correct,
	}
}

func accuracy(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(correct)/float64(total)*100 + 0.5)
}

func totalTime(answers []models.SyncAnswer) int64 {
	var total int64
	for _, a := range answers {
		total += a.TimeSpentMs
	}
	return total
}
