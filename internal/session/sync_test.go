package session

import (
	"errors"
	"testing"
	"time"

	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
)

func newTestSyncService() (*SyncService, *fakeRewards) {
	content := &fakeContent{exercises: map[int64][]models.Exercise{
		1: {
			{ID: 101, LessonID: 1, Type: models.ExerciseTranslation, CorrectAnswer: "Bonjour", DifficultyLevel: 1},
			{ID: 102, LessonID: 1, Type: models.ExerciseTranslation, CorrectAnswer: "Au revoir", DifficultyLevel: 1},
		},
	}}
	rewards := &fakeRewards{}
	return NewSyncService(content, NewMemorySyncLedger(rewards)), rewards
}

func syncReq(sessionID string) models.SyncSessionRequest {
	return models.SyncSessionRequest{
		SessionID: sessionID,
		LessonID:  1,
		Answers: []models.SyncAnswer{
			{ExerciseID: 101, UserAnswer: "bonjour", TimeSpentMs: 5_000},
			{ExerciseID: 102, UserAnswer: "bonne nuit", TimeSpentMs: 5_000},
		},
		CompletedAt: time.Now().UTC(),
		IsOffline:   true,
	}
}

func TestSyncService_RegradesServerSide(t *testing.T) {
	svc, rewards := newTestSyncService()

	resp, err := svc.SyncSession(7, syncReq("offline-1"))
	if err != nil {
		t.Fatalf("SyncSession: %v", err)
	}
	if resp.CorrectAnswers != 1 || resp.TotalAnswers != 2 || resp.Accuracy != 50 {
		t.Errorf("resp = %+v; want 1/2 correct, 50%% accuracy", resp)
	}
	if resp.XPEarned != 12 {
		t.Errorf("xp = %d, want 12", resp.XPEarned)
	}
	if len(rewards.completions) != 1 {
		t.Fatalf("cascade ran %d times, want 1", len(rewards.completions))
	}
}

func TestSyncService_RepeatedSessionIDIsNoOp(t *testing.T) {
	svc, rewards := newTestSyncService()

	first, err := svc.SyncSession(7, syncReq("offline-1"))
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Same session id again, even with different answers: the recorded
	// outcome comes back and nothing is credited twice.
	repeat := syncReq("offline-1")
	repeat.Answers[1].UserAnswer = "au revoir"
	second, err := svc.SyncSession(7, repeat)
	if err != nil {
		t.Fatalf("repeated sync: %v", err)
	}

	if second.XPEarned != first.XPEarned || second.CorrectAnswers != first.CorrectAnswers {
		t.Errorf("repeat changed outcome: %+v then %+v", first, second)
	}
	if len(rewards.completions) != 1 {
		t.Errorf("cascade ran %d times across repeats, want 1", len(rewards.completions))
	}
}

func TestSyncService_DistinctSessionsEachCredit(t *testing.T) {
	svc, rewards := newTestSyncService()

	for _, id := range []string{"s-1", "s-2", "s-3"} {
		if _, err := svc.SyncSession(7, syncReq(id)); err != nil {
			t.Fatalf("sync %s: %v", id, err)
		}
	}
	if len(rewards.completions) != 3 {
		t.Errorf("cascade ran %d times for 3 sessions, want 3", len(rewards.completions))
	}
}

func TestSyncService_FailedCreditReleasesClaim(t *testing.T) {
	svc, rewards := newTestSyncService()
	rewards.completionErr = errors.New("stats store down")

	if _, err := svc.SyncSession(7, syncReq("offline-1")); err == nil {
		t.Fatal("sync succeeded despite credit failure")
	}
	if len(rewards.completions) != 0 {
		t.Fatalf("cascade ran %d times on a failed sync, want 0", len(rewards.completions))
	}

	// The failed attempt must not leave a ledger entry behind, so the
	// client's retry both succeeds and credits, exactly once.
	resp, err := svc.SyncSession(7, syncReq("offline-1"))
	if err != nil {
		t.Fatalf("retry after failed credit: %v", err)
	}
	if resp.CorrectAnswers != 1 || resp.TotalAnswers != 2 {
		t.Errorf("retry resp = %+v; want 1/2 correct", resp)
	}
	if len(rewards.completions) != 1 {
		t.Errorf("cascade ran %d times after retry, want 1", len(rewards.completions))
	}
}

func TestSyncService_UnknownExerciseGradedIncorrect(t *testing.T) {
	svc, _ := newTestSyncService()

	req := syncReq("offline-1")
	req.Answers = append(req.Answers, models.SyncAnswer{ExerciseID: 999, UserAnswer: "bonjour"})

	resp, err := svc.SyncSession(7, req)
	if err != nil {
		t.Fatalf("SyncSession: %v", err)
	}
	if resp.TotalAnswers != 3 || resp.CorrectAnswers != 1 {
		t.Errorf("resp = %+v; unknown exercise must count as an incorrect answer", resp)
	}
}

func TestSyncService_RejectsMalformedUploads(t *testing.T) {
	svc, _ := newTestSyncService()

	tests := []struct {
		name   string
		mutate func(*models.SyncSessionRequest)
	}{
		{"missing session id", func(r *models.SyncSessionRequest) { r.SessionID = "" }},
		{"missing lesson id", func(r *models.SyncSessionRequest) { r.LessonID = 0 }},
		{"no answers", func(r *models.SyncSessionRequest) { r.Answers = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := syncReq("offline-1")
			tt.mutate(&req)
			if _, err := svc.SyncSession(7, req); !apperr.IsValidation(err) {
				t.Errorf("got %v, want validation error", err)
			}
		})
	}
}

func TestSyncService_UnknownLessonNotFound(t *testing.T) {
	svc, _ := newTestSyncService()

	req := syncReq("offline-1")
	req.LessonID = 42
	if _, err := svc.SyncSession(7, req); !apperr.IsNotFound(err) {
		t.Errorf("got %v, want not found", err)
	}
}
