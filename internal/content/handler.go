package content

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid course ID"})
		return
	}

	course, err := h.store.GetCourseStructure(id)
	if err != nil {
		if apperr.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Course not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load course"})
		return
	}

	writeJSON(w, http.StatusOK, course)
}

// GetLessonExercises returns a lesson with its full exercises, correct
// answers included. The offline client caches these so answers can be
// checked without a connection; online sessions go through the session
// endpoints, which sanitize.
func (h *Handler) GetLessonExercises(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid lesson ID"})
		return
	}

	lesson, err := h.store.GetLesson(id)
	if err != nil {
		if apperr.IsNotFound(err) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Lesson not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load lesson"})
		return
	}

	exercises, err := h.store.GetExercisesByLesson(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load exercises"})
		return
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}

	writeJSON(w, http.StatusOK, models.LessonContent{Lesson: *lesson, Exercises: exercises})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
