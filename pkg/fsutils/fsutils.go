package fsutils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CreateDir creates a directory (and any parents) if it doesn't exist.
func CreateDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteToFile writes content to a file, overwriting if it exists.
// Parent directories are created as needed.
func WriteToFile(path string, content []byte) error {
	if err := CreateDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create parent directory for %q: %w", path, err)
	}
	return os.WriteFile(path, content, 0644)
}

// WriteFileIfMissing writes content only when nothing exists at path yet.
// It reports whether the file was written.
func WriteFileIfMissing(path string, content []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if err := WriteToFile(path, content); err != nil {
		return false, err
	}
	return true, nil
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Missing or unreadable both count as "not there".
		return false
	}
	return !info.IsDir()
}

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9_.]+`)
var collapseUnderscoreRegex = regexp.MustCompile(`_+`)

// SanitizeFilename converts a string into a safe format suitable for filenames.
// It converts to lowercase, replaces spaces and disallowed characters with underscores
// and collapses consecutive underscores.
func SanitizeFilename(name string) string {
	trimmed := strings.TrimSpace(strings.ToLower(name))
	noSpaces := strings.ReplaceAll(trimmed, " ", "_")
	sanitized := nonAlphanumericRegex.ReplaceAllString(noSpaces, "_")
	collapsed := collapseUnderscoreRegex.ReplaceAllString(sanitized, "_")

	if collapsed == "" && name != "" {
		return "_"
	}
	return collapsed
}
