package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const configFile = "config.json"

// DefaultServerURL is the dev-server default, matching the API's standard
// local port.
const DefaultServerURL = "http://localhost:8000/api"

// Config holds client preferences that are not session state. Unknown fields
// are preserved across load/save by keeping the raw document around.
type Config struct {
	// ServerURL is the API base, including any path prefix (e.g. "/api").
	ServerURL string `json:"serverUrl,omitempty"`

	// SpeakCommand, when set, is run with the assistant's reply on stdin
	// after each chat response (e.g. "say" on macOS, "espeak" on Linux).
	SpeakCommand string `json:"speakCommand,omitempty"`

	// TranscriptDisabled turns off the local sqlite chat transcript.
	TranscriptDisabled bool `json:"transcriptDisabled,omitempty"`
}

func (s Store) configPath() string { return filepath.Join(s.Dir, configFile) }

// LoadConfig reads config.json. A missing file yields the zero config; a
// broken one is an error (config is user-edited, so do not silently discard).
func (s Store) LoadConfig() (Config, error) {
	b, err := os.ReadFile(s.configPath())
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (s Store) SaveConfig(cfg Config) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configPath(), append(b, '\n'), 0o644)
}

// ResolveServerURL applies the precedence: flag > $BONSAI_SERVER > config >
// default.
func ResolveServerURL(flagValue string, cfg Config) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("BONSAI_SERVER")); v != "" {
		return v
	}
	if v := strings.TrimSpace(cfg.ServerURL); v != "" {
		return v
	}
	return DefaultServerURL
}
