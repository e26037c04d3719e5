package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bonsai-cli/internal/model"
)

// DefaultTimeout bounds every request so a hung server surfaces as a failure
// instead of leaving the UI loading forever.
const DefaultTimeout = 30 * time.Second

// Client is a typed wrapper over the remote task/auth/chat/admin endpoints.
// It owns request construction, bearer-header injection and error
// normalization, and nothing else: no caching, no retries, at most one
// network attempt per call, so failures are always visible to the caller.
type Client struct {
	BaseURL string // e.g. http://localhost:8000/api
	Token   string // bearer credential; empty for unauthenticated calls

	// HTTPClient may be replaced in tests. Nil means a client with
	// DefaultTimeout.
	HTTPClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:   token,
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// do performs one request and decodes a 2xx JSON body into out (skipped when
// out is nil or the body is empty, e.g. 204 from DELETE). Non-2xx responses
// are normalized via statusErr; only the {detail} field of an error body is
// consulted.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool, out any) error {
	endpoint := method + " " + path

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &RequestError{Endpoint: endpoint, Err: err}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(raw, &e)
		return statusErr(endpoint, resp.StatusCode, e.Detail)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// ListTasks returns all tasks for the current identity, in server order.
// statusFilter ("completed"/"pending") is forwarded verbatim when non-empty.
func (c *Client) ListTasks(ctx context.Context, statusFilter string) ([]model.Task, error) {
	path := "/tasks/"
	if s := strings.TrimSpace(statusFilter); s != "" {
		path += "?status=" + url.QueryEscape(s)
	}
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, path, nil, true, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTaskInput carries the user-supplied fields; the server assigns id,
// timestamps and defaults for everything omitted.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Tags        string `json:"tags,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (model.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return model.Task{}, &ValidationError{Field: "title", Reason: "must not be blank"}
	}
	var t model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", in, true, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// UpdateTask sends a partial update: only the fields present in patch are
// changed server-side, so callers never resend whole tasks.
func (c *Client) UpdateTask(ctx context.Context, id string, patch map[string]any) (model.Task, error) {
	if strings.TrimSpace(id) == "" {
		return model.Task{}, &ValidationError{Field: "id", Reason: "must not be blank"}
	}
	var t model.Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch, true, &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// DeleteTask removes the task. Deleting an unknown id is a reportable error
// (the server answers 404), never a silent success, so callers know to drop
// stale local state.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Reason: "must not be blank"}
	}
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, true, nil)
}

// Chat sends one utterance plus the running history. The remote side keeps no
// conversation state between calls, so the full history rides along each time.
func (c *Client) Chat(ctx context.Context, message string, history []model.ChatMessage, userID string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &ValidationError{Field: "message", Reason: "must not be blank"}
	}
	if history == nil {
		history = []model.ChatMessage{}
	}
	body := struct {
		Message string              `json:"message"`
		History []model.ChatMessage `json:"history"`
		UserID  string              `json:"user_id"`
	}{Message: message, History: history, UserID: userID}

	var out struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/chat", body, true, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and the owning identity.
// Token and identity come back together so the session store can persist
// both in one step, with no window where only one is set.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, model.User, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return "", model.User{}, &ValidationError{Field: "credentials", Reason: "email and password are required"}
	}
	var out struct {
		AccessToken string     `json:"access_token"`
		TokenType   string     `json:"token_type"`
		User        model.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, false, &out); err != nil {
		return "", model.User{}, err
	}
	return out.AccessToken, out.User, nil
}

type RegisterInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. The server answers with a confirmation (and,
// depending on version, the created identity); callers log in afterwards.
func (c *Client) Register(ctx context.Context, in RegisterInput) (string, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return "", &ValidationError{Field: "profile", Reason: "email and password are required"}
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, false, &out); err != nil {
		return "", err
	}
	if out.Message == "" {
		out.Message = "registered"
	}
	return out.Message, nil
}

// AdminUsers fetches the user roster. Requires an admin-capable session; the
// server's 403 surfaces as *AuthError so the UI can show access-denied rather
// than an empty roster.
func (c *Client) AdminUsers(ctx context.Context) ([]model.AdminUser, error) {
	var users []model.AdminUser
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, true, &users); err != nil {
		return nil, err
	}
	return users, nil
}
