package session

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
)

type Handler struct {
	engine *Engine
	sync   *SyncService
}

func NewHandler(engine *Engine, sync *SyncService) *Handler {
	return &Handler{engine: engine, sync: sync}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.LessonID == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "lesson_id is required"})
		return
	}

	sess, err := h.engine.Start(userID, req.LessonID)
	if err != nil {
		writeError(w, err)
		return
	}

	sanitized := make([]models.Exercise, len(sess.Exercises))
	for i, ex := range sess.Exercises {
		sanitized[i] = ex.Sanitized()
	}
	writeJSON(w, http.StatusCreated, models.StartSessionResponse{
		SessionID:       sess.ID,
		Exercises:       sanitized,
		CurrentExercise: &sanitized[0],
	})
}

func (h *Handler) GetCurrentExercise(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessionID := mux.Vars(r)["id"]
	exercise, err := h.engine.CurrentExercise(userID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CurrentExerciseResponse{Exercise: exercise})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessionID := mux.Vars(r)["id"]

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.ExerciseID == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "exercise_id is required"})
		return
	}

	result, err := h.engine.SubmitAnswer(userID, sessionID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessionID := mux.Vars(r)["id"]
	summary, err := h.engine.Complete(userID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) SyncSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SyncSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.sync.SyncSession(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	case apperr.IsConflict(err):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
