// Package paths centralizes the layout of the engine's work directory and
// path canonicalization, so every package agrees on where build output and
// configuration live relative to a project root.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// WorkDirName is the per-project directory the engine writes into. It is
// never indexed as part of the submission.
const WorkDirName = ".autograde"

// WorkDir returns the engine's work directory under root.
func WorkDir(root string) string {
	return filepath.Join(root, WorkDirName)
}

// BuildDir returns where compiled classes go.
func BuildDir(root string) string {
	return filepath.Join(WorkDir(root), "build")
}

// ConfigFile returns the project configuration file path.
func ConfigFile(root string) string {
	return filepath.Join(WorkDir(root), "config.json")
}

// Canonical converts an absolute path to a root-relative, slash-separated
// path, resolving symlinks on both sides. Paths that do not exist yet are
// used as given.
func Canonical(absolutePath, root string) (string, error) {
	resolved, err := evalSymlinks(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalSymlinks(root)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// IsWithinProject reports whether path lies under root.
func IsWithinProject(path, root string) bool {
	canonical, err := Canonical(path, root)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

func evalSymlinks(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	return resolved, nil
}
