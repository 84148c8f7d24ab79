package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/lingo-learn/backend/internal/models"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "lingo_user")
	password := getEnv("DB_PASSWORD", "lingo_password")
	dbname := getEnv("DB_NAME", "lingo_learn")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS courses (
		id          BIGSERIAL PRIMARY KEY,
		title       VARCHAR(255) NOT NULL,
		language    VARCHAR(50) NOT NULL,
		description TEXT,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS lessons (
		id          BIGSERIAL PRIMARY KEY,
		course_id   BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		title       VARCHAR(255) NOT NULL,
		order_index INT NOT NULL DEFAULT 0,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_lessons_course ON lessons(course_id, order_index);

	CREATE TABLE IF NOT EXISTS exercises (
		id               BIGSERIAL PRIMARY KEY,
		lesson_id        BIGINT NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
		type             VARCHAR(30) NOT NULL,
		question         TEXT NOT NULL,
		correct_answer   TEXT NOT NULL,
		options          JSONB,
		difficulty_level INT NOT NULL DEFAULT 1,
		order_index      INT NOT NULL DEFAULT 0,
		created_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_exercises_lesson ON exercises(lesson_id, order_index);

	CREATE TABLE IF NOT EXISTS user_stats (
		user_id             BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		total_xp            BIGINT NOT NULL DEFAULT 0,
		current_streak      INT NOT NULL DEFAULT 0,
		longest_streak      INT NOT NULL DEFAULT 0,
		hearts              INT NOT NULL DEFAULT 5 CHECK (hearts >= 0 AND hearts <= 5),
		gems                INT NOT NULL DEFAULT 0 CHECK (gems >= 0),
		lessons_completed   INT NOT NULL DEFAULT 0,
		exercises_completed INT NOT NULL DEFAULT 0,
		correct_answers     INT NOT NULL DEFAULT 0,
		last_activity_date  DATE,
		created_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at          TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS user_achievements (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		achievement_id VARCHAR(100) NOT NULL,
		earned_at      TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, achievement_id)
	);

	CREATE INDEX IF NOT EXISTS idx_achievements_user ON user_achievements(user_id);

	CREATE TABLE IF NOT EXISTS daily_goals (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		goal_date    DATE NOT NULL,
		target_xp    INT NOT NULL DEFAULT 50,
		current_xp   INT NOT NULL DEFAULT 0,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		UNIQUE(user_id, goal_date)
	);

	CREATE TABLE IF NOT EXISTS xp_events (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_type  VARCHAR(50) NOT NULL,
		xp_amount   INT NOT NULL,
		metadata    JSONB,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_xp_events_user ON xp_events(user_id, created_at);

	CREATE TABLE IF NOT EXISTS sessions (
		id           VARCHAR(64) PRIMARY KEY,
		user_id      BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		lesson_id    BIGINT NOT NULL,
		data         JSONB NOT NULL,
		is_completed BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at   TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, is_completed);

	CREATE TABLE IF NOT EXISTS synced_sessions (
		session_id      VARCHAR(64) PRIMARY KEY,
		user_id         BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		lesson_id       BIGINT NOT NULL,
		xp_earned       INT NOT NULL,
		accuracy        INT NOT NULL,
		correct_answers INT NOT NULL,
		total_answers   INT NOT NULL,
		synced_at       TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_synced_user ON synced_sessions(user_id, synced_at);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return seedDemoContent(db)
}

// seedDemoContent loads a starter course on an empty database so a fresh
// deployment has something to serve. It never touches existing content.
func seedDemoContent(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return fmt.Errorf("check courses: %w", err)
	}
	if count > 0 {
		return nil
	}

	var courseID int64
	err := db.QueryRow(
		`INSERT INTO courses (title, language, description)
		 VALUES ('French for Beginners', 'fr', 'Core vocabulary and phrases for new learners')
		 RETURNING id`,
	).Scan(&courseID)
	if err != nil {
		return fmt.Errorf("seed course: %w", err)
	}

	lessons := []struct {
		title     string
		exercises []struct {
			typ, question, answer string
			options               string
			difficulty            int
		}
	}{
		{
			title: "Greetings",
			exercises: []struct {
				typ, question, answer string
				options               string
				difficulty            int
			}{
				{"translation", "Translate: Hello", "Bonjour", "", 1},
				{"multiple_choice", "Which word means goodbye?", "Au revoir", `["Bonjour","Au revoir","Merci","Oui"]`, 1},
				{"fill_blank", "___ , ça va? (Hello)", "Salut", "", 1},
			},
		},
		{
			title: "Basics",
			exercises: []struct {
				typ, question, answer string
				options               string
				difficulty            int
			}{
				{"translation", "Translate: Thank you", "Merci", "", 1},
				{"word_order", "Arrange: suis / je / content", "je suis content", "", 2},
			},
		},
	}

	for i, l := range lessons {
		var lessonID int64
		err := db.QueryRow(
			`INSERT INTO lessons (course_id, title, order_index) VALUES ($1, $2, $3) RETURNING id`,
			courseID, l.title, i,
		).Scan(&lessonID)
		if err != nil {
			return fmt.Errorf("seed lesson %q: %w", l.title, err)
		}
		for j, e := range l.exercises {
			if !models.ValidExerciseTypes[models.ExerciseType(e.typ)] {
				return fmt.Errorf("seed exercise: unknown type %q", e.typ)
			}
			var options interface{}
			if e.options != "" {
				options = e.options
			}
			_, err := db.Exec(
				`INSERT INTO exercises (lesson_id, type, question, correct_answer, options, difficulty_level, order_index)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				lessonID, e.typ, e.question, e.answer, options, e.difficulty, j,
			)
			if err != nil {
				return fmt.Errorf("seed exercise: %w", err)
			}
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
