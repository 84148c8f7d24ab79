package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/gamification"
	"github.com/lingo-learn/backend/internal/models"
)

// ContentSource is the consumed content collaborator.
type ContentSource interface {
	GetExercisesByLesson(lessonID int64) ([]models.Exercise, error)
}

// Rewards is the consumed user-stats collaborator. LoseHeart fires
// immediately on a wrong answer; ApplyLessonCompletion is the reward
// cascade that must run exactly once per completed session.
type Rewards interface {
	LoseHeart(userID int64) (int, error)
	ApplyLessonCompletion(userID int64, result models.LessonResult) error
}

// Engine owns in-progress sessions: it sequences exercises, grades answers,
// and finalizes sessions. All dependencies are injected at construction.
type Engine struct {
	repo    Repository
	content ContentSource
	rewards Rewards

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes submit/complete for one session id. Refs counts
// holders and waiters so the map entry can be freed once the last one
// releases; a goroutine that acquired the entry before removal keeps it
// alive through its ref.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewEngine(repo Repository, content ContentSource, rewards Rewards) *Engine {
	return &Engine{
		repo:    repo,
		content: content,
		rewards: rewards,
		locks:   make(map[string]*sessionLock),
	}
}

func (e *Engine) acquireLock(sessionID string) *sessionLock {
	e.mu.Lock()
	l, ok := e.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		e.locks[sessionID] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return l
}

func (e *Engine) releaseLock(sessionID string, l *sessionLock) {
	l.mu.Unlock()

	e.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(e.locks, sessionID)
	}
	e.mu.Unlock()
}

// Start snapshots the lesson's exercises and creates a new session.
func (e *Engine) Start(userID, lessonID int64) (*models.Session, error) {
	exercises, err := e.content.GetExercisesByLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, apperr.NotFound("lesson")
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		LessonID:  lessonID,
		Exercises: exercises,
		Answers:   []models.AnswerRecord{},
		StartedAt: time.Now().UTC(),
	}

	if err := e.repo.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CurrentExercise returns the exercise at the session's cursor with the
// correct answer stripped, or nil once every exercise has been answered.
func (e *Engine) CurrentExercise(userID int64, sessionID string) (*models.Exercise, error) {
	sess, err := e.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.CurrentExerciseIndex >= len(sess.Exercises) {
		return nil, nil
	}
	ex := sess.Exercises[sess.CurrentExerciseIndex].Sanitized()
	return &ex, nil
}

// SubmitAnswer grades the answer for the exercise at the current index,
// applies rewards, advances the cursor, and finalizes the session when the
// last exercise has been answered.
func (e *Engine) SubmitAnswer(userID int64, sessionID string, req models.SubmitAnswerRequest) (*models.AnswerResult, error) {
	lock := e.acquireLock(sessionID)
	defer e.releaseLock(sessionID, lock)

	sess, err := e.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsCompleted {
		return nil, apperr.Conflict("session already completed")
	}

	current := sess.Exercises[sess.CurrentExerciseIndex]
	if req.ExerciseID != current.ID {
		return nil, apperr.Validation("exercise %d is not the current exercise", req.ExerciseID)
	}

	outcome := Validate(current, req.UserAnswer)

	result := &models.AnswerResult{
		IsCorrect:     outcome.IsCorrect,
		CorrectAnswer: outcome.CorrectAnswer,
		Explanation:   outcome.Explanation,
	}

	if outcome.IsCorrect {
		xp := gamification.XPForExercise(current, req.TimeSpentMs)
		sess.XPEarned += xp
		sess.ExercisesCorrect++
		result.XPEarned = xp
	} else {
		if _, err := e.rewards.LoseHeart(sess.UserID); err != nil {
			log.Printf("[session] failed to deduct heart for user %d: %v", sess.UserID, err)
		}
		sess.HeartsLost++
	}
	result.HeartsLost = sess.HeartsLost

	sess.Answers = append(sess.Answers, models.AnswerRecord{
		ExerciseID:  current.ID,
		UserAnswer:  req.UserAnswer,
		IsCorrect:   outcome.IsCorrect,
		TimeSpentMs: req.TimeSpentMs,
	})
	sess.ExercisesCompleted++
	sess.TimeSpentMs += req.TimeSpentMs
	sess.CurrentExerciseIndex++

	finished := sess.CurrentExerciseIndex >= len(sess.Exercises)
	if finished {
		now := time.Now().UTC()
		sess.IsCompleted = true
		sess.CompletedAt = &now
		result.IsSessionComplete = true
	}

	if err := e.repo.Save(sess); err != nil {
		return nil, err
	}

	if finished {
		// Reward side effects are not rolled back on later failures in the
		// same request; each sub-step of the cascade is idempotent.
		if err := e.rewards.ApplyLessonCompletion(sess.UserID, models.LessonResult{
			SessionID:          sess.ID,
			LessonID:           sess.LessonID,
			XPEarned:           sess.XPEarned,
			ExercisesCompleted: sess.ExercisesCompleted,
			ExercisesCorrect:   sess.ExercisesCorrect,
			Perfect:            sess.ExercisesCorrect == sess.ExercisesCompleted,
		}); err != nil {
			log.Printf("[session] reward cascade failed for session %s: %v", sess.ID, err)
		}
	}

	return result, nil
}

// Complete returns the summary of a finished session. It is idempotent;
// calling it before every exercise is answered is an error.
func (e *Engine) Complete(userID int64, sessionID string) (*models.SessionSummary, error) {
	lock := e.acquireLock(sessionID)
	defer e.releaseLock(sessionID, lock)

	sess, err := e.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsCompleted {
		return nil, apperr.Validation("session not completed yet: %d of %d exercises answered",
			sess.CurrentExerciseIndex, len(sess.Exercises))
	}

	return &models.SessionSummary{
		XPEarned:           sess.XPEarned,
		HeartsLost:         sess.HeartsLost,
		Accuracy:           sess.Accuracy(),
		TimeSpentMs:        sess.TimeSpentMs,
		ExercisesCompleted: sess.ExercisesCompleted,
		ExercisesCorrect:   sess.ExercisesCorrect,
	}, nil
}

// loadOwned fetches a session and hides its existence from other users.
func (e *Engine) loadOwned(userID int64, sessionID string) (*models.Session, error) {
	sess, err := e.repo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, apperr.NotFound("session")
	}
	return sess, nil
}
