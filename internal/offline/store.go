// Package offline is the client-side half of the system: a durable sqlite
// cache of course content and completed-session progress that survives
// restarts and works with no connection at all.
package offline

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const (
	contentKindCourse = "course"
	contentKindLesson = "lesson"

	downloadedCoursesKey = "downloaded_courses"
)

// ProgressEntry is one completed offline session waiting to be synced.
type ProgressEntry struct {
	SessionID   string              `json:"session_id"`
	LessonID    int64               `json:"lesson_id"`
	Answers     []models.SyncAnswer `json:"answers"`
	CompletedAt time.Time           `json:"completed_at"`
}

// DownloadEvent reports download progress to the caller.
type DownloadEvent struct {
	CourseID      int64
	LessonsDone   int
	LessonsTotal  int
	CurrentLesson string
	Percent       int
	Done          bool
}

// CourseFetcher supplies content from the server during a download.
type CourseFetcher interface {
	FetchCourse(courseID int64) (*models.Course, error)
	FetchLesson(lessonID int64) (*models.LessonContent, error)
}

type Store struct {
	db *sqlx.DB
}

// Open connects to the local cache database, creating it and its schema on
// first use.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS content (
			kind TEXT NOT NULL,
			id INTEGER NOT NULL,
			data TEXT NOT NULL,
			downloaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (kind, id)
		)`,
		`CREATE TABLE IF NOT EXISTS progress (
			session_id TEXT PRIMARY KEY,
			lesson_id INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS user_data (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init cache schema: %w", err)
		}
	}
	return nil
}

// ── Content ─────────────────────────────────────────────

// DownloadCourse fetches a course's structure and every lesson's exercises
// into the local cache. A lesson that fails to download is logged and
// skipped; the rest of the course still lands. onProgress may be nil.
func (s *Store) DownloadCourse(courseID int64, fetcher CourseFetcher, onProgress func(DownloadEvent)) error {
	notify := func(ev DownloadEvent) {
		if onProgress != nil {
			onProgress(ev)
		}
	}

	course, err := fetcher.FetchCourse(courseID)
	if err != nil {
		return fmt.Errorf("fetch course %d: %w", courseID, err)
	}
	if err := s.putContent(contentKindCourse, course.ID, course); err != nil {
		return err
	}

	total := len(course.Lessons)
	done := 0
	for _, lesson := range course.Lessons {
		notify(DownloadEvent{
			CourseID:      courseID,
			LessonsDone:   done,
			LessonsTotal:  total,
			CurrentLesson: lesson.Title,
			Percent:       percent(done, total),
		})

		content, err := fetcher.FetchLesson(lesson.ID)
		if err != nil {
			log.Printf("[offline] skipping lesson %d (%s): %v", lesson.ID, lesson.Title, err)
			continue
		}
		if err := s.putContent(contentKindLesson, lesson.ID, content); err != nil {
			return err
		}
		done++
	}

	if err := s.markCourseDownloaded(courseID); err != nil {
		return err
	}

	notify(DownloadEvent{
		CourseID:     courseID,
		LessonsDone:  done,
		LessonsTotal: total,
		Percent:      100,
		Done:         true,
	})
	return nil
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

func (s *Store) putContent(kind string, id int64, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %d: %w", kind, id, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO content (kind, id, data, downloaded_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (kind, id) DO UPDATE SET data = excluded.data, downloaded_at = excluded.downloaded_at`,
		kind, id, string(data), time.Now().UTC(),
	)
	if err != nil {
		return &apperr.StorageError{Op: fmt.Sprintf("store %s %d", kind, id), Err: err}
	}
	return nil
}

func (s *Store) getContent(kind string, id int64, v interface{}) error {
	var data string
	err := s.db.Get(&data, `SELECT data FROM content WHERE kind = $1 AND id = $2`, kind, id)
	if err == sql.ErrNoRows {
		return apperr.NotFound(kind)
	}
	if err != nil {
		return fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	return json.Unmarshal([]byte(data), v)
}

// markCourseDownloaded merges the course id into the downloaded_courses
// metadata map instead of overwriting it.
func (s *Store) markCourseDownloaded(courseID int64) error {
	downloaded, err := s.DownloadedCourses()
	if err != nil {
		return err
	}
	downloaded[strconv.FormatInt(courseID, 10)] = time.Now().UTC().Format(time.RFC3339)

	data, err := json.Marshal(downloaded)
	if err != nil {
		return fmt.Errorf("encode downloaded courses: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO user_data (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		downloadedCoursesKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("store downloaded courses: %w", err)
	}
	return nil
}

// DownloadedCourses returns course id -> download timestamp (RFC3339).
func (s *Store) DownloadedCourses() (map[string]string, error) {
	var value string
	err := s.db.Get(&value, `SELECT value FROM user_data WHERE key = $1`, downloadedCoursesKey)
	if err == sql.ErrNoRows {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load downloaded courses: %w", err)
	}
	downloaded := map[string]string{}
	if err := json.Unmarshal([]byte(value), &downloaded); err != nil {
		return nil, fmt.Errorf("decode downloaded courses: %w", err)
	}
	return downloaded, nil
}

func (s *Store) IsContentDownloaded(courseID int64) (bool, error) {
	downloaded, err := s.DownloadedCourses()
	if err != nil {
		return false, err
	}
	_, ok := downloaded[strconv.FormatInt(courseID, 10)]
	return ok, nil
}

func (s *Store) GetOfflineCourse(courseID int64) (*models.Course, error) {
	var course models.Course
	if err := s.getContent(contentKindCourse, courseID, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *Store) GetOfflineLesson(lessonID int64) (*models.LessonContent, error) {
	var content models.LessonContent
	if err := s.getContent(contentKindLesson, lessonID, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// ── Progress ────────────────────────────────────────────

// SaveOfflineProgress upserts a completed session. Saving the same session
// id twice keeps the latest attempt.
func (s *Store) SaveOfflineProgress(entry ProgressEntry) error {
	if entry.SessionID == "" {
		return apperr.Validation("session_id is required")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode progress %s: %w", entry.SessionID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO progress (session_id, lesson_id, data) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO UPDATE SET lesson_id = excluded.lesson_id, data = excluded.data`,
		entry.SessionID, entry.LessonID, string(data),
	)
	if err != nil {
		return &apperr.StorageError{Op: "store progress " + entry.SessionID, Err: err}
	}
	return nil
}

func (s *Store) GetOfflineProgress(sessionID string) (*ProgressEntry, error) {
	var data string
	err := s.db.Get(&data, `SELECT data FROM progress WHERE session_id = $1`, sessionID)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("progress")
	}
	if err != nil {
		return nil, fmt.Errorf("load progress %s: %w", sessionID, err)
	}
	var entry ProgressEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("decode progress %s: %w", sessionID, err)
	}
	return &entry, nil
}

func (s *Store) DeleteOfflineProgress(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM progress WHERE session_id = $1`, sessionID)
	if err != nil {
		return &apperr.StorageError{Op: "delete progress " + sessionID, Err: err}
	}
	return nil
}

// GetPendingProgress returns every unsynced session, oldest first.
func (s *Store) GetPendingProgress() ([]ProgressEntry, error) {
	var rows []string
	err := s.db.Select(&rows, `SELECT data FROM progress ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("load pending progress: %w", err)
	}

	entries := make([]ProgressEntry, 0, len(rows))
	for _, data := range rows {
		var entry ProgressEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			log.Printf("[offline] dropping unreadable progress row: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ── Maintenance ─────────────────────────────────────────

type StorageUsage struct {
	CourseCount   int   `json:"course_count"`
	LessonCount   int   `json:"lesson_count"`
	PendingCount  int   `json:"pending_count"`
	ContentBytes  int64 `json:"content_bytes"`
	ProgressBytes int64 `json:"progress_bytes"`
}

func (s *Store) GetStorageUsage() (*StorageUsage, error) {
	var usage StorageUsage
	err := s.db.QueryRow(
		`SELECT
			(SELECT COUNT(*) FROM content WHERE kind = $1),
			(SELECT COUNT(*) FROM content WHERE kind = $2),
			(SELECT COUNT(*) FROM progress),
			(SELECT COALESCE(SUM(LENGTH(data)), 0) FROM content),
			(SELECT COALESCE(SUM(LENGTH(data)), 0) FROM progress)`,
		contentKindCourse, contentKindLesson,
	).Scan(&usage.CourseCount, &usage.LessonCount, &usage.PendingCount,
		&usage.ContentBytes, &usage.ProgressBytes)
	if err != nil {
		return nil, fmt.Errorf("storage usage: %w", err)
	}
	return &usage, nil
}

// CleanupExpiredContent removes cached content older than maxAge. Pending
// progress is never touched: it is the only copy of unsynced results.
func (s *Store) CleanupExpiredContent(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := s.db.Exec(`DELETE FROM content WHERE downloaded_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup content: %w", err)
	}
	removed, _ := res.RowsAffected()
	return removed, nil
}
