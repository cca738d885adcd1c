// Package client is a Go client for the tasks and comments REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/s1natex/tasks-comments-api/internal/tasks"
)

// Client talks to a running tasks API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	msg := e.Code
	if e.Message != "" {
		msg = e.Message
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	return out, c.do(ctx, http.MethodGet, "/tasks/", nil, &out)
}

func (c *Client) CreateTask(ctx context.Context, title string) (tasks.Task, error) {
	var out tasks.Task
	return out, c.do(ctx, http.MethodPost, "/tasks/", map[string]string{"title": title}, &out)
}

func (c *Client) GetTask(ctx context.Context, id int64) (tasks.Task, error) {
	var out tasks.Task
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, &out)
}

// UpdateTask sends only the fields that are non-nil.
func (c *Client) UpdateTask(ctx context.Context, id int64, title *string) (tasks.Task, error) {
	body := map[string]*string{}
	if title != nil {
		body["title"] = title
	}
	var out tasks.Task
	return out, c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), body, &out)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

func (c *Client) ListComments(ctx context.Context, taskID int64) ([]tasks.Comment, error) {
	var out []tasks.Comment
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d/comments/", taskID), nil, &out)
}

func (c *Client) AddComment(ctx context.Context, taskID int64, author, content string) (tasks.Comment, error) {
	body := map[string]string{"author": author, "content": content}
	var out tasks.Comment
	return out, c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d/comments/", taskID), body, &out)
}

func (c *Client) GetComment(ctx context.Context, id int64) (tasks.Comment, error) {
	var out tasks.Comment
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/comments/%d", id), nil, &out)
}

// UpdateComment sends only the fields that are non-nil.
func (c *Client) UpdateComment(ctx context.Context, id int64, author, content *string) (tasks.Comment, error) {
	body := map[string]*string{}
	if author != nil {
		body["author"] = author
	}
	if content != nil {
		body["content"] = content
	}
	var out tasks.Comment
	return out, c.do(ctx, http.MethodPut, fmt.Sprintf("/comments/%d", id), body, &out)
}

func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comments/%d", id), nil, nil)
}

// do sends body as JSON (when non-nil) and decodes the response into result
// (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil {
			apiErr.Code, apiErr.Message = errResp.Error, errResp.Message
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
