package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// WriteExecutable writes data to path and marks it executable.
func WriteExecutable(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0755); err != nil {
		return err
	}

	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, 0755)
}
