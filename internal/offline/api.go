package offline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lingo-learn/backend/internal/apperr"
	"github.com/lingo-learn/backend/internal/models"
)

// APIClient talks to the server's content and sync endpoints with a bearer
// token. It satisfies CourseFetcher for downloads.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewAPIClient(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *APIClient) FetchCourse(courseID int64) (*models.Course, error) {
	var course models.Course
	if err := c.get(fmt.Sprintf("/api/v1/courses/%d", courseID), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *APIClient) FetchLesson(lessonID int64) (*models.LessonContent, error) {
	var content models.LessonContent
	if err := c.get(fmt.Sprintf("/api/v1/lessons/%d/exercises", lessonID), &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// SyncSession uploads one completed offline session. Any non-2xx status is
// an error; the caller keeps the local progress entry in that case.
func (c *APIClient) SyncSession(req models.SyncSessionRequest) (*models.SyncSessionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode sync request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/sessions/sync", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sync request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &apperr.SyncError{SessionID: req.SessionID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.SyncError{
			SessionID: req.SessionID,
			Err:       fmt.Errorf("server rejected upload: %s", readErrorBody(resp)),
		}
	}

	var result models.SyncSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode sync response: %w", err)
	}
	return &result, nil
}

func (c *APIClient) get(path string, v interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: %s", path, readErrorBody(resp))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func readErrorBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var errResp models.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Sprintf("%s (%s)", errResp.Error, resp.Status)
	}
	return resp.Status
}
