package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bonsai-cli/internal/model"
)

// The session is persisted as two entries under the config dir: the opaque
// bearer credential and the identity it belongs to. They are written together
// and cleared together; a half-valid state (one present, one missing or
// unparseable) is treated as corruption and wiped on load.

const (
	tokenFile    = "token"
	identityFile = "identity.json"
)

// ErrNoSession means no credential is stored: the caller should send the
// user to login rather than attempt protected work.
var ErrNoSession = errors.New("not logged in")

// CorruptError marks stored session state that could not be parsed. Load
// clears both entries before returning it, so retrying yields ErrNoSession.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("stored session is corrupt (%s); logged out", e.Reason)
}

type Session struct {
	Token string
	User  model.User
}

type Store struct {
	Dir string
}

// DefaultDir resolves the config dir: $BONSAI_DIR, else ~/.bonsai.
func DefaultDir() string {
	if d := strings.TrimSpace(os.Getenv("BONSAI_DIR")); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bonsai"
	}
	return filepath.Join(home, ".bonsai")
}

func (s Store) tokenPath() string    { return filepath.Join(s.Dir, tokenFile) }
func (s Store) identityPath() string { return filepath.Join(s.Dir, identityFile) }

// Save persists credential and identity together. The token is written last
// so a crash mid-save leaves an identity without a token, which Load treats
// as corruption and clears.
func (s Store) Save(token string, user model.User) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("refusing to save empty credential")
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.identityPath(), append(b, '\n'), 0o600); err != nil {
		return err
	}
	return os.WriteFile(s.tokenPath(), []byte(token+"\n"), 0o600)
}

// Load reads the stored session back. Missing both entries => ErrNoSession.
// Anything partial or unparseable => both entries are cleared and a
// *CorruptError is returned.
func (s Store) Load() (Session, error) {
	tb, terr := os.ReadFile(s.tokenPath())
	ib, ierr := os.ReadFile(s.identityPath())

	if os.IsNotExist(terr) && os.IsNotExist(ierr) {
		return Session{}, ErrNoSession
	}
	if terr != nil || ierr != nil {
		_ = s.Clear()
		return Session{}, &CorruptError{Reason: "partial session on disk"}
	}

	token := strings.TrimSpace(string(tb))
	if token == "" {
		_ = s.Clear()
		return Session{}, &CorruptError{Reason: "empty credential"}
	}

	var user model.User
	if err := json.Unmarshal(ib, &user); err != nil || strings.TrimSpace(user.ID) == "" {
		_ = s.Clear()
		return Session{}, &CorruptError{Reason: "unreadable identity"}
	}

	return Session{Token: token, User: user}, nil
}

// Clear removes both entries. Missing files are fine; logout must succeed
// even when nothing is stored.
func (s Store) Clear() error {
	var first error
	for _, p := range []string{s.tokenPath(), s.identityPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && first == nil {
			first = err
		}
	}
	return first
}
