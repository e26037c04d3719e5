package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"bonsai-cli/internal/api"
	"bonsai-cli/internal/model"
	"bonsai-cli/internal/session"
)

// run executes the root command against an isolated config dir and returns
// stdout plus the command error.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTasksAdd_BlankTitleFailsLocally(t *testing.T) {
	_, err := run(t, t.TempDir(), "tasks", "add", "   ")
	var ve *api.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError before any network call, got %v", err)
	}
	if ve.Field != "title" {
		t.Fatalf("expected the title field flagged, got %q", ve.Field)
	}
}

func TestTasksList_WithoutSessionSaysLogIn(t *testing.T) {
	_, err := run(t, t.TempDir(), "tasks", "list")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected a login hint, got %v", err)
	}
}

func TestWhoami_ReadsStoredIdentity(t *testing.T) {
	dir := t.TempDir()
	st := session.Store{Dir: dir}
	if err := st.Save("t1", model.User{ID: "u1", Email: "a@b.com", Role: model.RoleUser}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := run(t, dir, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var envelope struct {
		Data struct {
			User model.User `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &envelope); err != nil {
		t.Fatalf("whoami output is not strict JSON: %v\n%s", err, out)
	}
	if envelope.Data.User.Email != "a@b.com" {
		t.Fatalf("unexpected identity: %+v", envelope.Data.User)
	}
}

func TestLogout_ClearsSessionAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	st := session.Store{Dir: dir}
	if err := st.Save("t1", model.User{ID: "u1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := run(t, dir, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := st.Load(); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected session cleared, got %v", err)
	}
	// Logging out with nothing stored still succeeds.
	if _, err := run(t, dir, "logout"); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestConfigSet_RoundTripsThroughShow(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "config", "set", "server", "http://somewhere:9000/api"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := run(t, dir, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "http://somewhere:9000/api") {
		t.Fatalf("expected the stored server url, got %s", out)
	}

	if _, err := run(t, dir, "config", "set", "transcript", "off"); err != nil {
		t.Fatalf("config set transcript: %v", err)
	}
	cfg, err := (session.Store{Dir: dir}).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.TranscriptDisabled {
		t.Fatal("expected the transcript disabled")
	}
	if cfg.ServerURL != "http://somewhere:9000/api" {
		t.Fatalf("setting one key must not clobber another, got %+v", cfg)
	}
}

func TestConfigSet_UnknownKeyErrors(t *testing.T) {
	_, err := run(t, t.TempDir(), "config", "set", "color", "on")
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
