// Package cfgutil provides common helpers for the option structs of the
// command line front ends.
package cfgutil

import (
	"os"
	"path/filepath"
	"strings"
)

// FileExists reports whether a regular file exists at path.
func FileExists(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !fi.IsDir(), nil
}

// CleanAndExpandPath expands environment variables and a leading ~ in a
// file path and returns its cleaned form.  A relative path stays relative.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home + path[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(path))
}
