package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bonsai-cli/internal/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	st := Store{Dir: t.TempDir()}
	user := model.User{ID: "u1", Email: "a@b.com", Name: "Ada", Role: model.RoleAdmin}

	if err := st.Save("t1", user); err != nil {
		t.Fatalf("Save: %v", err)
	}
	sess, err := st.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.Token != "t1" {
		t.Fatalf("expected token t1, got %q", sess.Token)
	}
	if sess.User != user {
		t.Fatalf("expected identity round-tripped, got %+v", sess.User)
	}
}

func TestLoad_NothingStoredIsErrNoSession(t *testing.T) {
	st := Store{Dir: t.TempDir()}
	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLoad_UnparseableIdentityClearsBoth(t *testing.T) {
	dir := t.TempDir()
	st := Store{Dir: dir}
	if err := st.Save("t1", model.User{ID: "u1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "identity.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupt identity: %v", err)
	}

	_, err := st.Load()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected *CorruptError, got %v", err)
	}
	// No half-valid state left behind: the next load sees a clean slate.
	for _, name := range []string{"token", "identity.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed after corruption", name)
		}
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestLoad_TokenWithoutIdentityIsCorruption(t *testing.T) {
	dir := t.TempDir()
	st := Store{Dir: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "token"), []byte("t1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := st.Load()
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected *CorruptError for partial session, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "token")); !os.IsNotExist(err) {
		t.Fatal("expected the stray token cleared")
	}
}

func TestClear_IdempotentAndCompleteTeardown(t *testing.T) {
	st := Store{Dir: t.TempDir()}
	if err := st.Save("t1", model.User{ID: "u1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := st.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
	// Logging out twice is fine.
	if err := st.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestSave_RefusesEmptyCredential(t *testing.T) {
	st := Store{Dir: t.TempDir()}
	if err := st.Save("  ", model.User{ID: "u1"}); err == nil {
		t.Fatal("expected an error saving an empty credential")
	}
}

func TestResolveServerURL_Precedence(t *testing.T) {
	t.Setenv("BONSAI_SERVER", "")

	if got := ResolveServerURL("", Config{}); got != DefaultServerURL {
		t.Fatalf("expected default, got %q", got)
	}
	if got := ResolveServerURL("", Config{ServerURL: "http://cfg:1/api"}); got != "http://cfg:1/api" {
		t.Fatalf("expected config value, got %q", got)
	}
	t.Setenv("BONSAI_SERVER", "http://env:2/api")
	if got := ResolveServerURL("", Config{ServerURL: "http://cfg:1/api"}); got != "http://env:2/api" {
		t.Fatalf("expected env to beat config, got %q", got)
	}
	if got := ResolveServerURL("http://flag:3/api", Config{ServerURL: "http://cfg:1/api"}); got != "http://flag:3/api" {
		t.Fatalf("expected flag to win, got %q", got)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	st := Store{Dir: t.TempDir()}
	cfg, err := st.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig on empty dir: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("expected zero config, got %+v", cfg)
	}

	want := Config{ServerURL: "http://x:8000/api", SpeakCommand: "say", TranscriptDisabled: true}
	if err := st.SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := st.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != want {
		t.Fatalf("config round trip: got %+v want %+v", got, want)
	}
}
