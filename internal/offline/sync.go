package offline

import (
	"log"
	"sync"

	"github.com/lingo-learn/backend/internal/models"
)

// SyncAPI is the server surface the coordinator needs.
type SyncAPI interface {
	SyncSession(req models.SyncSessionRequest) (*models.SyncSessionResponse, error)
}

// SyncReport aggregates one sync pass.
type SyncReport struct {
	Synced   int
	Failed   int
	Skipped  int
	XPEarned int
}

// Coordinator uploads pending offline progress. Local progress is deleted
// only after the server acknowledges a session, so a failed or interrupted
// sync leaves the entry pending for the next pass. The server's session-id
// ledger makes a re-upload after a lost ack harmless.
type Coordinator struct {
	store *Store
	api   SyncAPI

	mu       sync.Mutex
	inflight map[string]bool
}

func NewCoordinator(store *Store, api SyncAPI) *Coordinator {
	return &Coordinator{
		store:    store,
		api:      api,
		inflight: make(map[string]bool),
	}
}

// SyncOfflineProgress uploads every pending session once. Failures are
// logged and left pending; the pass continues with the remaining entries.
func (c *Coordinator) SyncOfflineProgress() (*SyncReport, error) {
	pending, err := c.store.GetPendingProgress()
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	for _, entry := range pending {
		if !c.claim(entry.SessionID) {
			report.Skipped++
			continue
		}

		resp, err := c.api.SyncSession(models.SyncSessionRequest{
			SessionID:   entry.SessionID,
			LessonID:    entry.LessonID,
			Answers:     entry.Answers,
			CompletedAt: entry.CompletedAt,
			IsOffline:   true,
		})
		if err != nil {
			log.Printf("[sync] session %s failed, will retry: %v", entry.SessionID, err)
			report.Failed++
			c.release(entry.SessionID)
			continue
		}

		if err := c.store.DeleteOfflineProgress(entry.SessionID); err != nil {
			log.Printf("[sync] session %s acked but local delete failed: %v", entry.SessionID, err)
		}
		report.Synced++
		report.XPEarned += resp.XPEarned
		c.release(entry.SessionID)
	}

	if report.Synced > 0 || report.Failed > 0 {
		log.Printf("[sync] pass complete: %d synced, %d failed, %d xp", report.Synced, report.Failed, report.XPEarned)
	}
	return report, nil
}

// claim marks a session id as in flight; a second concurrent pass skips it.
func (c *Coordinator) claim(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[sessionID] {
		return false
	}
	c.inflight[sessionID] = true
	return true
}

func (c *Coordinator) release(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, sessionID)
}
