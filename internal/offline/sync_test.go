package offline

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lingo-learn/backend/internal/models"
)

// fakeSyncAPI acks or rejects uploads per session id.
type fakeSyncAPI struct {
	calls  map[string]int
	reject map[string]bool
}

func newFakeSyncAPI() *fakeSyncAPI {
	return &fakeSyncAPI{calls: map[string]int{}, reject: map[string]bool{}}
}

func (f *fakeSyncAPI) SyncSession(req models.SyncSessionRequest) (*models.SyncSessionResponse, error) {
	f.calls[req.SessionID]++
	if f.reject[req.SessionID] {
		return nil, fmt.Errorf("server unavailable")
	}
	return &models.SyncSessionResponse{
		SessionID:      req.SessionID,
		XPEarned:       10,
		CorrectAnswers: len(req.Answers),
		TotalAnswers:   len(req.Answers),
		Accuracy:       100,
		SyncedAt:       time.Now().UTC(),
	}, nil
}

func saveProgress(t *testing.T, store *Store, sessionID string) {
	t.Helper()
	err := store.SaveOfflineProgress(ProgressEntry{
		SessionID:   sessionID,
		LessonID:    1,
		Answers:     []models.SyncAnswer{{ExerciseID: 101, UserAnswer: "bonjour", TimeSpentMs: 5_000}},
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveOfflineProgress(%s): %v", sessionID, err)
	}
}

func TestCoordinator_SyncClearsPending(t *testing.T) {
	store := newTestStore(t)
	api := newFakeSyncAPI()
	saveProgress(t, store, "s-1")
	saveProgress(t, store, "s-2")

	report, err := NewCoordinator(store, api).SyncOfflineProgress()
	if err != nil {
		t.Fatalf("SyncOfflineProgress: %v", err)
	}
	if report.Synced != 2 || report.Failed != 0 {
		t.Errorf("report = %+v; want 2 synced", report)
	}
	if report.XPEarned != 20 {
		t.Errorf("xp = %d, want 20", report.XPEarned)
	}

	pending, _ := store.GetPendingProgress()
	if len(pending) != 0 {
		t.Errorf("pending after sync = %d, want 0", len(pending))
	}
}

func TestCoordinator_RerunAfterSuccessIsNoOp(t *testing.T) {
	store := newTestStore(t)
	api := newFakeSyncAPI()
	saveProgress(t, store, "s-1")

	coordinator := NewCoordinator(store, api)
	if _, err := coordinator.SyncOfflineProgress(); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	report, err := coordinator.SyncOfflineProgress()
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if report.Synced != 0 {
		t.Errorf("second pass synced %d, want 0", report.Synced)
	}
	if api.calls["s-1"] != 1 {
		t.Errorf("session uploaded %d times, want 1", api.calls["s-1"])
	}
}

func TestCoordinator_FailedSessionStaysPending(t *testing.T) {
	store := newTestStore(t)
	api := newFakeSyncAPI()
	api.reject["s-1"] = true
	saveProgress(t, store, "s-1")
	saveProgress(t, store, "s-2")

	coordinator := NewCoordinator(store, api)
	report, err := coordinator.SyncOfflineProgress()
	if err != nil {
		t.Fatalf("SyncOfflineProgress: %v", err)
	}
	if report.Synced != 1 || report.Failed != 1 {
		t.Errorf("report = %+v; want 1 synced, 1 failed", report)
	}

	// The failure does not stop the pass and the entry survives for a retry.
	pending, _ := store.GetPendingProgress()
	if len(pending) != 1 || pending[0].SessionID != "s-1" {
		t.Errorf("pending = %+v; want only s-1", pending)
	}

	// Once the server recovers the retry drains it.
	api.reject["s-1"] = false
	report, _ = coordinator.SyncOfflineProgress()
	if report.Synced != 1 {
		t.Errorf("retry synced %d, want 1", report.Synced)
	}
	pending, _ = store.GetPendingProgress()
	if len(pending) != 0 {
		t.Errorf("pending after retry = %d, want 0", len(pending))
	}
}

func TestAPIClient_SyncSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sessions/sync" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header = %q", got)
		}
		var req models.SyncSessionRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(models.SyncSessionResponse{
			SessionID: req.SessionID,
			XPEarned:  12,
			SyncedAt:  time.Now().UTC(),
		})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "test-token")
	resp, err := client.SyncSession(models.SyncSessionRequest{SessionID: "s-1", LessonID: 1})
	if err != nil {
		t.Fatalf("SyncSession: %v", err)
	}
	if resp.SessionID != "s-1" || resp.XPEarned != 12 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAPIClient_SyncSessionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "session already synced differently"})
	}))
	defer server.Close()

	client := NewAPIClient(server.URL, "test-token")
	if _, err := client.SyncSession(models.SyncSessionRequest{SessionID: "s-1"}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}
