package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
)

// Repository stores live sessions. The engine owns every mutation; a
// repository only needs to persist and retrieve whole snapshots.
type Repository interface {
	Create(sess *models.Session) error
	Get(sessionID string) (*models.Session, error)
	Save(sess *models.Session) error
	Delete(sessionID string) error
}

// ── In-Memory Repository ────────────────────────────────

// MemoryRepository keeps sessions in process memory. Used by tests and the
// offline client; the server composition uses PostgresRepository so
// in-progress sessions survive a restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*models.Session)}
}

func (r *MemoryRepository) Create(sess *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[sess.ID]; exists {
		return apperr.Conflict("session %s already exists", sess.ID)
	}
	r.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (r *MemoryRepository) Get(sessionID string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperr.NotFound("session")
	}
	return cloneSession(sess), nil
}

func (r *MemoryRepository) Save(sess *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (r *MemoryRepository) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func cloneSession(sess *models.Session) *models.Session {
	c := *sess
	c.Exercises = append([]models.Exercise(nil), sess.Exercises...)
	c.Answers = append([]models.AnswerRecord(nil), sess.Answers...)
	return &c
}

// ── Postgres Repository ─────────────────────────────────

// PostgresRepository persists sessions as JSON snapshots so in-progress
// sessions survive server restarts.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.db.Exec(
		`INSERT INTO sessions (id, user_id, lesson_id, data, is_completed)
		 VALUES ($1, $2, $3, $4, $5)`,
		sess.ID, sess.UserID, sess.LessonID, data, sess.IsCompleted,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(sessionID string) (*models.Session, error) {
	var data []byte
	err := r.db.QueryRow(`SELECT data FROM sessions WHERE id = $1`, sessionID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("session")
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (r *PostgresRepository) Save(sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.db.Exec(
		`UPDATE sessions SET data = $2, is_completed = $3, updated_at = NOW() WHERE id = $1`,
		sess.ID, data, sess.IsCompleted,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE id = $1`, sessionID)
	return err
}
