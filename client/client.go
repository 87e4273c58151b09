// Package client is the HTTP client of the task board API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"teamboard/dto"
	"teamboard/model"
)

// Client calls the API as one logged-in user. It implements board.TaskAPI.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.RWMutex
	tokens model.TokenPair
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) Register(ctx context.Context, name, email, password string) (dto.UserResponse, error) {
	var resp dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", dto.RegisterRequest{Name: name, Email: email, Password: password}, &resp, false)
	if err != nil {
		return dto.UserResponse{}, err
	}
	c.setTokens(resp.TokenPair)
	return resp.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (dto.UserResponse, error) {
	var resp dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return dto.UserResponse{}, err
	}
	c.setTokens(resp.TokenPair)
	return resp.User, nil
}

// Refresh exchanges the refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.RLock()
	refresh := c.tokens.RefreshToken
	c.mu.RUnlock()

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/refresh", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+refresh)

	var pair model.TokenPair
	if err := c.send(req, &pair); err != nil {
		return err
	}
	c.setTokens(pair)
	return nil
}

func (c *Client) Profile(ctx context.Context) (dto.UserResponse, error) {
	var user dto.UserResponse
	return user, c.do(ctx, http.MethodGet, "/auth/profile", nil, &user, true)
}

func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var users []dto.UserResponse
	return users, c.do(ctx, http.MethodGet, "/users", nil, &users, true)
}

func (c *Client) ListTasks(ctx context.Context) ([]model.PopulatedTask, error) {
	var tasks []model.PopulatedTask
	return tasks, c.do(ctx, http.MethodGet, "/tasks", nil, &tasks, true)
}

func (c *Client) ListTasksByStatus(ctx context.Context, status model.Status) ([]model.PopulatedTask, error) {
	var tasks []model.PopulatedTask
	return tasks, c.do(ctx, http.MethodGet, "/tasks/status/"+url.PathEscape(string(status)), nil, &tasks, true)
}

func (c *Client) ListAssignedTasks(ctx context.Context) ([]model.PopulatedTask, error) {
	var tasks []model.PopulatedTask
	return tasks, c.do(ctx, http.MethodGet, "/tasks/assigned", nil, &tasks, true)
}

func (c *Client) GetTask(ctx context.Context, id string) (model.PopulatedTask, error) {
	var task model.PopulatedTask
	return task, c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task, true)
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (model.PopulatedTask, error) {
	var task model.PopulatedTask
	return task, c.do(ctx, http.MethodPost, "/tasks", req, &task, true)
}

func (c *Client) UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (model.PopulatedTask, error) {
	var task model.PopulatedTask
	return task, c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), req, &task, true)
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	var msg dto.MessageResponse
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &msg, true)
}

func (c *Client) setTokens(pair model.TokenPair) {
	c.mu.Lock()
	c.tokens = pair
	c.mu.Unlock()
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends an API call. An authenticated call rejected with 401 is retried
// once after exchanging the refresh token.
func (c *Client) do(ctx context.Context, method, path string, body, out any, auth bool) error {
	err := c.doOnce(ctx, method, path, body, out, auth)
	if !auth || !errors.Is(err, model.ErrUnauthenticated) || !c.canRefresh() {
		return err
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	if rerr := c.Refresh(ctx); rerr != nil {
		return err
	}
	return c.doOnce(ctx, method, path, body, out, auth)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any, auth bool) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if auth {
		c.mu.RLock()
		token := c.tokens.AccessToken
		c.mu.RUnlock()
		if token == "" {
			return fmt.Errorf("%w: not logged in", model.ErrUnauthenticated)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

func (c *Client) canRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens.RefreshToken != ""
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// decodeError maps an error response back onto the model error it came from.
func decodeError(resp *http.Response) error {
	var body dto.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = resp.Status
		}
	}

	kind := model.ErrorForCode(body.Code)
	if kind == nil {
		kind = statusKind(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error, kind: kind}
}

// statusKind is the fallback for responses without an error code, such as
// gin's plain 404 for unknown routes.
func statusKind(status int) error {
	switch status {
	case http.StatusBadRequest:
		return model.ErrValidation
	case http.StatusUnauthorized:
		return model.ErrUnauthenticated
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrConflict
	}
	return model.ErrStoreFailure
}

// APIError is a non-2xx response. It matches the model error named by the
// response's code with errors.Is.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}
