// Package locator finds the game client executable inside a user-selected
// installation directory.
package locator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrExecutableNotFound is returned when no candidate directory yields a
// client executable. Callers surface it as a configuration error.
var ErrExecutableNotFound = errors.New("game client executable not found")

// clientSubdir is the one fixed subdirectory probed after the root itself.
const clientSubdir = "element"

const executableSuffix = ".exe"

// exactNames are accepted as-is (case-insensitive).
var exactNames = []string{
	"elementclient.exe",
	"element client.exe",
}

// nameToken is the substring heuristic: a file containing this token and
// carrying the executable suffix is accepted when no exact name matched.
const nameToken = "elementclient"

// Locate returns the path of the client executable under root, checking
// the root directory itself and then the element subdirectory. Unreadable
// directories are skipped, not fatal.
func Locate(root string) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", ErrExecutableNotFound
	}
	for _, dir := range []string{root, filepath.Join(root, clientSubdir)} {
		if p := findIn(dir); p != "" {
			return p, nil
		}
	}
	return "", ErrExecutableNotFound
}

// findIn returns the first matching regular file in dir, or "".
func findIn(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	// Exact names take priority over the substring heuristic regardless of
	// directory order.
	var heuristic string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		full := filepath.Join(dir, e.Name())
		for _, want := range exactNames {
			if name == want && isRegular(full) {
				return full
			}
		}
		if heuristic == "" && strings.Contains(name, nameToken) && strings.HasSuffix(name, executableSuffix) && isRegular(full) {
			heuristic = full
		}
	}
	return heuristic
}

func isRegular(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
