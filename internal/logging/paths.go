package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.filesearch/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".filesearch", "logs")
	}
	return filepath.Join(home, ".filesearch", "logs")
}

// DefaultLogPath returns the debug log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "filesearch.log")
}
