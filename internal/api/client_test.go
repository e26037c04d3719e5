package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bonsai-cli/internal/model"
)

func TestListTasks_AttachesBearerAndForwardsStatusFilter(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("status")
		_ = json.NewEncoder(w).Encode([]model.Task{
			{ID: "task-1", Title: "Water the garden"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "t1")
	tasks, err := c.ListTasks(context.Background(), "pending")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "Bearer t1" {
		t.Fatalf("expected Authorization 'Bearer t1', got %q", gotAuth)
	}
	if gotQuery != "pending" {
		t.Fatalf("expected status filter forwarded verbatim, got %q", gotQuery)
	}
	if len(tasks) != 1 || tasks[0].ID != "task-1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestListTasks_NoFilterOmitsQueryParam(t *testing.T) {
	var hadParam bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadParam = r.URL.Query()["status"]
		_ = json.NewEncoder(w).Encode([]model.Task{})
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "t").ListTasks(context.Background(), ""); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if hadParam {
		t.Fatal("empty filter must not produce a status query param")
	}
}

func TestCreateTask_BlankTitleIsLocalValidation(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").CreateTask(context.Background(), CreateTaskInput{Title: "   "})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("blank title must not reach the network; saw %d calls", calls)
	}
}

func TestUpdateTask_SendsPartialPatch(t *testing.T) {
	var method, path string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(model.Task{ID: "task-9", IsCompleted: true})
	}))
	defer srv.Close()

	task, err := New(srv.URL, "t").UpdateTask(context.Background(), "task-9", map[string]any{"is_completed": true})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if method != http.MethodPatch || path != "/tasks/task-9" {
		t.Fatalf("expected PATCH /tasks/task-9, got %s %s", method, path)
	}
	if len(body) != 1 || body["is_completed"] != true {
		t.Fatalf("expected a one-field patch, got %v", body)
	}
	if !task.IsCompleted {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestDeleteTask_NoContentIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := New(srv.URL, "t").DeleteTask(context.Background(), "task-1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestDeleteTask_UnknownIDSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Task not found"})
	}))
	defer srv.Close()

	err := New(srv.URL, "t").DeleteTask(context.Background(), "task-gone")
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if re.Status != http.StatusNotFound || re.Detail != "Task not found" {
		t.Fatalf("unexpected error fields: %+v", re)
	}
}

func TestAdminUsers_ForbiddenIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Not authorized. Admin role required."})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").AdminUsers(context.Background())
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestLogin_ThenFetchAttachesThatToken(t *testing.T) {
	var taskAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "a@b.com" || creds.Password != "x" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "t1",
			"token_type":   "bearer",
			"user":         model.User{ID: "u1", Email: "a@b.com", Role: model.RoleUser},
		})
	})
	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		taskAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]model.Task{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	token, user, err := New(srv.URL, "").Login(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "t1" || user.ID != "u1" || user.Role != model.RoleUser {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, user)
	}

	if _, err := New(srv.URL, token).ListTasks(context.Background(), ""); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if taskAuth != "Bearer t1" {
		t.Fatalf("expected 'Bearer t1' on subsequent fetch, got %q", taskAuth)
	}
}

func TestLogin_BadCredentialsIsAuthErrorWithDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid email or password"})
	}))
	defer srv.Close()

	_, _, err := New(srv.URL, "").Login(context.Background(), Credentials{Email: "a@b.com", Password: "wrong"})
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *AuthError, got %v", err)
	}
	if ae.Detail != "Invalid email or password" {
		t.Fatalf("expected server detail to survive, got %q", ae.Detail)
	}
}

func TestChat_SendsMessageHistoryAndUserID(t *testing.T) {
	var got struct {
		Message string              `json:"message"`
		History []model.ChatMessage `json:"history"`
		UserID  string              `json:"user_id"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "Added \"buy soil\" to your tasks."})
	}))
	defer srv.Close()

	history := []model.ChatMessage{{Role: model.ChatRoleUser, Content: "hi"}}
	reply, err := New(srv.URL, "t").Chat(context.Background(), "add buy soil", history, "u1")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got.Message != "add buy soil" || got.UserID != "u1" || len(got.History) != 1 {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if reply == "" {
		t.Fatal("expected a non-empty reply")
	}
}

func TestChat_NilHistoryMarshalsAsEmptyArray(t *testing.T) {
	var raw map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "t").Chat(context.Background(), "hello", nil, "u1"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if string(raw["history"]) != "[]" {
		t.Fatalf("expected history [], got %s", raw["history"])
	}
}

func TestTransportFailureIsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL, "t").ListTasks(context.Background(), "")
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected *RequestError for transport failure, got %v", err)
	}
}
