package gamification

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lingo-learn/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GetStats(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get stats"})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	earned, err := h.service.store.GetUserAchievements(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get achievements"})
		return
	}

	earnedAt := make(map[string]time.Time, len(earned))
	for _, a := range earned {
		earnedAt[a.AchievementID] = a.EarnedAt
	}

	type entry struct {
		ID          string     `json:"id"`
		Name        string     `json:"name"`
		Description string     `json:"description"`
		XPReward    int        `json:"xp_reward"`
		GemsReward  int        `json:"gems_reward"`
		Earned      bool       `json:"earned"`
		EarnedAt    *time.Time `json:"earned_at,omitempty"`
	}

	catalogue := make([]entry, 0, len(Catalogue))
	for _, def := range Catalogue {
		e := entry{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			XPReward:    def.XPReward,
			GemsReward:  def.GemsReward,
		}
		if when, ok := earnedAt[def.ID]; ok {
			e.Earned = true
			e.EarnedAt = &when
		}
		catalogue = append(catalogue, e)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"achievements": catalogue})
}

func (h *Handler) SetDailyGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SetDailyGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.SetDailyGoal(userID, req.TargetXP); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"daily_goal_target": req.TargetXP})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
