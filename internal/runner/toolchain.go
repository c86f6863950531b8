// Package runner compiles student projects and executes them under
// timeouts, including JUnit console runs. Compilation happens at most once
// per project instance; every grader sharing the project shares the result.
package runner

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"autograde/internal/config"
	"autograde/internal/errors"
)

// Toolchain holds resolved paths to the Java tools.
type Toolchain struct {
	Javac string
	Java  string
}

// FindToolchain resolves the compiler and runtime, honoring explicit paths
// from the configuration before falling back to PATH lookup. A missing tool
// is a RuntimeUnavailable error.
func FindToolchain(cfg *config.Config) (*Toolchain, error) {
	javac, err := resolveTool("javac", cfg.Toolchain.JavacPath)
	if err != nil {
		return nil, err
	}
	java, err := resolveTool("java", cfg.Toolchain.JavaPath)
	if err != nil {
		return nil, err
	}
	return &Toolchain{Javac: javac, Java: java}, nil
}

func resolveTool(name, override string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", errors.Newf(errors.RuntimeUnavailable,
				"configured path for %s does not exist: %s", name, override)
		}
		return override, nil
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Newf(errors.RuntimeUnavailable,
			"%s was not found on PATH", name)
	}
	return path, nil
}

// libJars returns the jars under the project's library directory, sorted
// for a stable classpath. A missing directory yields no jars.
func libJars(root, libDir string) []string {
	dir := libDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var jars []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".jar" {
			jars = append(jars, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(jars)
	return jars
}
