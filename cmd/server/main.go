package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/lingo-learn/backend/internal/auth"
	"github.com/lingo-learn/backend/internal/content"
	"github.com/lingo-learn/backend/internal/database"
	"github.com/lingo-learn/backend/internal/gamification"
	"github.com/lingo-learn/backend/internal/middleware"
	"github.com/lingo-learn/backend/internal/session"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire services
	contentStore := content.NewStore(db)
	rewards := gamification.NewService(gamification.NewStore(db))
	engine := session.NewEngine(session.NewPostgresRepository(db), contentStore, rewards)
	syncService := session.NewSyncService(contentStore, session.NewSQLSyncLedger(db))

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	contentHandler := content.NewHandler(contentStore)
	sessionHandler := session.NewHandler(engine, syncService)
	statsHandler := gamification.NewHandler(rewards)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/courses/{id}", contentHandler.GetCourse).Methods("GET")
	protected.HandleFunc("/lessons/{id}/exercises", contentHandler.GetLessonExercises).Methods("GET")

	protected.HandleFunc("/sessions/start", sessionHandler.StartSession).Methods("POST")
	protected.HandleFunc("/sessions/sync", sessionHandler.SyncSession).Methods("POST")
	protected.HandleFunc("/sessions/{id}/exercise", sessionHandler.GetCurrentExercise).Methods("GET")
	protected.HandleFunc("/sessions/{id}/answer", sessionHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/sessions/{id}/complete", sessionHandler.CompleteSession).Methods("POST")

	protected.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")
	protected.HandleFunc("/achievements", statsHandler.ListAchievements).Methods("GET")
	protected.HandleFunc("/daily-goal", statsHandler.SetDailyGoal).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Background hearts refill
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go rewards.StartHeartsRefillWorker(ctx)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
