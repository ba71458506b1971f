package chatclient

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// loadOrCreateSessionID reads the persisted session id, minting and
// storing a fresh one when none exists. When the state file cannot be
// used the session is simply ephemeral.
func loadOrCreateSessionID(statePath string) string {
	if statePath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return uuid.NewString()
		}
		statePath = filepath.Join(configDir, "geminichat", "session")
	}

	if raw, err := os.ReadFile(statePath); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(statePath), 0o700); err != nil {
		slog.Warn("session id not persisted", "error", err)
		return id
	}
	if err := os.WriteFile(statePath, []byte(id+"\n"), 0o600); err != nil {
		slog.Warn("session id not persisted", "error", err)
	}
	return id
}
