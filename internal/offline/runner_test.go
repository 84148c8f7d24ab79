package offline

import (
	"testing"

	"github.com/lingo-learn/backend/internal/apperr"
)

func TestRunner_PlayDownloadedLesson(t *testing.T) {
	store := newTestStore(t)
	if err := store.DownloadCourse(10, newStubFetcher(), nil); err != nil {
		t.Fatalf("DownloadCourse: %v", err)
	}

	runner, err := NewRunner(store, 1)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	ex := runner.Current()
	if ex == nil || ex.ID != 101 {
		t.Fatalf("current = %+v, want exercise 101", ex)
	}

	result, err := runner.Submit("bonjour", 5_000)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !result.IsCorrect {
		t.Error("offline grading should use the same rules as the server")
	}
	if result.XPEarned != 12 {
		t.Errorf("xp = %d, want 12", result.XPEarned)
	}
	if !result.IsSessionComplete {
		t.Error("single-exercise lesson should complete on first submit")
	}

	// Completion lands a pending entry for the sync coordinator.
	pending, err := store.GetPendingProgress()
	if err != nil {
		t.Fatalf("GetPendingProgress: %v", err)
	}
	if len(pending) != 1 || pending[0].SessionID != runner.SessionID() {
		t.Errorf("pending = %+v; want the runner's session", pending)
	}

	summary := runner.Summary()
	if summary.Accuracy != 100 || summary.ExercisesCorrect != 1 {
		t.Errorf("summary = %+v", summary)
	}

	if _, err := runner.Submit("encore", 1_000); !apperr.IsConflict(err) {
		t.Errorf("submit after completion = %v, want conflict", err)
	}
}

func TestRunner_MissingLessonNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := NewRunner(store, 42); !apperr.IsNotFound(err) {
		t.Errorf("NewRunner on missing lesson = %v, want not found", err)
	}
}
