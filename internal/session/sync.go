package session

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/gamification"
	"github.com/lingo-learn/backend/internal/models"
)

// SyncLedger records which offline session ids have already been credited.
// Claim must be atomic with the credit callback: exactly one caller wins for
// a given session id, and the recorded row and the reward writes commit or
// fail together, so a crash mid-sync never strands a claimed-but-uncredited
// session.
type SyncLedger interface {
	Lookup(sessionID string) (*models.SyncSessionResponse, bool, error)
	Claim(userID, lessonID int64, resp models.SyncSessionResponse, credit func(Rewards) error) (bool, error)
}

// SyncService is the server half of the offline sync protocol. It re-grades
// every uploaded answer and recomputes rewards server-side as the source of
// truth; a repeated session id returns the recorded outcome without
// crediting anything twice.
type SyncService struct {
	content ContentSource
	ledger  SyncLedger
}

func NewSyncService(content ContentSource, ledger SyncLedger) *SyncService {
	return &SyncService{content: content, ledger: ledger}
}

func (s *SyncService) SyncSession(userID int64, req models.SyncSessionRequest) (*models.SyncSessionResponse, error) {
	if req.SessionID == "" {
		return nil, apperr.Validation("session_id is required")
	}
	if req.LessonID == 0 {
		return nil, apperr.Validation("lesson_id is required")
	}
	if len(req.Answers) == 0 {
		return nil, apperr.Validation("answers are required")
	}

	if prev, ok, err := s.ledger.Lookup(req.SessionID); err != nil {
		return nil, err
	} else if ok {
		return prev, nil
	}

	exercises, err := s.content.GetExercisesByLesson(req.LessonID)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, apperr.NotFound("lesson")
	}

	byID := make(map[int64]models.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}

	var xpEarned, correct int
	for _, a := range req.Answers {
		ex, ok := byID[a.ExerciseID]
		if !ok {
			log.Printf("[sync] session %s references unknown exercise %d, graded incorrect", req.SessionID, a.ExerciseID)
			continue
		}
		if Validate(ex, a.UserAnswer).IsCorrect {
			correct++
			xpEarned += gamification.XPForExercise(ex, a.TimeSpentMs)
		}
	}

	total := len(req.Answers)
	resp := models.SyncSessionResponse{
		SessionID:      req.SessionID,
		XPEarned:       xpEarned,
		CorrectAnswers: correct,
		TotalAnswers:   total,
		Accuracy:       int(float64(correct)/float64(total)*100 + 0.5),
		SyncedAt:       time.Now().UTC(),
	}

	claimed, err := s.ledger.Claim(userID, req.LessonID, resp, func(rewards Rewards) error {
		return rewards.ApplyLessonCompletion(userID, models.LessonResult{
			SessionID:          req.SessionID,
			LessonID:           req.LessonID,
			XPEarned:           xpEarned,
			ExercisesCompleted: total,
			ExercisesCorrect:   correct,
			Perfect:            correct == total,
		})
	})
	if err != nil {
		return nil, &apperr.SyncError{SessionID: req.SessionID, Err: err}
	}
	if !claimed {
		prev, ok, err := s.ledger.Lookup(req.SessionID)
		if err != nil {
			return nil, err
		}
		if ok {
			return prev, nil
		}
		return nil, fmt.Errorf("sync ledger claim lost for session %s", req.SessionID)
	}

	return &resp, nil
}

// ── SQL Ledger ──────────────────────────────────────────

// SQLSyncLedger runs the ledger insert and the reward cascade in a single
// transaction, crediting through a transaction-scoped stats store.
type SQLSyncLedger struct {
	db *sql.DB
}

func NewSQLSyncLedger(db *sql.DB) *SQLSyncLedger {
	return &SQLSyncLedger{db: db}
}

func (l *SQLSyncLedger) Lookup(sessionID string) (*models.SyncSessionResponse, bool, error) {
	var resp models.SyncSessionResponse
	err := l.db.QueryRow(
		`SELECT session_id, xp_earned, accuracy, correct_answers, total_answers, synced_at
		 FROM synced_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&resp.SessionID, &resp.XPEarned, &resp.Accuracy, &resp.CorrectAnswers, &resp.TotalAnswers, &resp.SyncedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup synced session: %w", err)
	}
	return &resp, true, nil
}

func (l *SQLSyncLedger) Claim(userID, lessonID int64, resp models.SyncSessionResponse, credit func(Rewards) error) (bool, error) {
	tx, err := l.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin sync transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO synced_sessions (session_id, user_id, lesson_id, xp_earned, accuracy, correct_answers, total_answers, synced_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (session_id) DO NOTHING`,
		resp.SessionID, userID, lessonID, resp.XPEarned, resp.Accuracy, resp.CorrectAnswers, resp.TotalAnswers, resp.SyncedAt,
	)
	if err != nil {
		return false, fmt.Errorf("claim synced session: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return false, nil
	}

	if err := credit(gamification.NewService(gamification.NewStore(tx))); err != nil {
		return false, fmt.Errorf("credit synced session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit sync transaction: %w", err)
	}
	return true, nil
}

// ── In-Memory Ledger ────────────────────────────────────

type MemorySyncLedger struct {
	rewards Rewards

	mu      sync.Mutex
	entries map[string]models.SyncSessionResponse
}

func NewMemorySyncLedger(rewards Rewards) *MemorySyncLedger {
	return &MemorySyncLedger{
		rewards: rewards,
		entries: make(map[string]models.SyncSessionResponse),
	}
}

func (l *MemorySyncLedger) Lookup(sessionID string) (*models.SyncSessionResponse, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	resp, ok := l.entries[sessionID]
	if !ok {
		return nil, false, nil
	}
	return &resp, true, nil
}

func (l *MemorySyncLedger) Claim(userID, lessonID int64, resp models.SyncSessionResponse, credit func(Rewards) error) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[resp.SessionID]; exists {
		return false, nil
	}
	// Mirror the SQL ledger's rollback: a failed credit leaves no claim.
	if err := credit(l.rewards); err != nil {
		return false, err
	}
	l.entries[resp.SessionID] = resp
	return true, nil
}
