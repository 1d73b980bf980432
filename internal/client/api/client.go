// Package api is the REST client for the task and message endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/taskchat/internal/core"
	"github.com/vovakirdan/taskchat/internal/proto"
	"github.com/vovakirdan/taskchat/internal/utils"
)

const (
	headerUserID    = "X-User-Id"
	headerRequestID = "X-Request-Id"

	maxErrorBody = 4 << 10
)

// ErrNoSession is returned when a call needs a user id and the session has none.
var ErrNoSession = errors.New("user id is not set")

// Session identifies the user on whose behalf calls are made.
type Session struct {
	UserID string
}

// Valid reports whether the session carries a user id.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// TaskFilter narrows a task listing. Zero values match everything.
type TaskFilter struct {
	Status   *core.TaskStatus
	Category string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client talks to the REST endpoints of a taskchat server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *zerolog.Logger
}

// New creates a client for the server at baseURL. A nil httpClient gets a default with timeout.
func New(baseURL string, httpClient *http.Client, logger *zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{baseURL: u, http: httpClient, log: logger}, nil
}

// BaseURL returns the server root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// RecentMessages fetches up to limit messages, newest first.
func (c *Client) RecentMessages(ctx context.Context, limit int) ([]core.Message, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var resp []proto.ChatMessageResponse
	if err := c.do(ctx, http.MethodGet, "/api/messages", q, "", nil, &resp); err != nil {
		return nil, err
	}

	messages := make([]core.Message, 0, len(resp))
	for _, m := range resp {
		messages = append(messages, m.Core())
	}
	return messages, nil
}

// ListTasks fetches the session user's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context, s Session, f TaskFilter) ([]core.Task, error) {
	if !s.Valid() {
		return nil, ErrNoSession
	}

	q := url.Values{}
	if f.Status != nil {
		q.Set("status", string(*f.Status))
	}
	if category := strings.TrimSpace(f.Category); category != "" {
		q.Set("category", category)
	}

	var resp []proto.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks", q, s.UserID, nil, &resp); err != nil {
		return nil, err
	}

	list := make([]core.Task, 0, len(resp))
	for _, t := range resp {
		list = append(list, *c.owned(t, s))
	}
	return list, nil
}

// CreateTask posts a new task. Absent optional fields are sent as null.
func (c *Client) CreateTask(ctx context.Context, s Session, req proto.TaskCreateRequest) (*core.Task, error) {
	if !s.Valid() {
		return nil, ErrNoSession
	}

	var resp proto.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, s.UserID, req, &resp); err != nil {
		return nil, err
	}
	return c.owned(resp, s), nil
}

// UpdateTask sends a partial update.
func (c *Client) UpdateTask(ctx context.Context, s Session, id int64, req proto.TaskUpdateRequest) (*core.Task, error) {
	if !s.Valid() {
		return nil, ErrNoSession
	}

	var resp proto.TaskResponse
	if err := c.do(ctx, http.MethodPut, taskPath(id), nil, s.UserID, req, &resp); err != nil {
		return nil, err
	}
	return c.owned(resp, s), nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, s Session, id int64) error {
	if !s.Valid() {
		return ErrNoSession
	}
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, s.UserID, nil, nil)
}

func (c *Client) owned(resp proto.TaskResponse, s Session) *core.Task {
	task := resp.Core()
	task.UserID = s.UserID
	return &task
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, userID string, body, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := utils.NewID()
	req.Header.Set(headerRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(headerUserID, userID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	se := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return se
	}
	var body proto.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		se.Message = body.Error
	}
	return se
}
