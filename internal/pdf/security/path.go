// Package security keeps file access inside configured directories.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines paths to a configured directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory.
// The directory does not have to exist yet.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathValidator{configuredDirectory: configuredDirectory}, nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// ValidatePath checks that path resolves inside the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	isWithin, err := v.IsPathWithinDirectory(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !isWithin {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}
	return nil
}

// IsPathWithinDirectory reports whether path, after resolving symlinks where
// possible, lies in the configured directory or below it.
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	realDir := resolve(absDir)
	realPath := resolve(absPath)

	// A lexically contained path must also stay contained once symlinks in
	// it are followed.
	lexical := within(absPath, absDir) || within(absPath, realDir)
	physical := within(realPath, absDir) || within(realPath, realDir)
	return lexical && physical, nil
}

// NormalizePath returns the absolute form of path, interpreting relative
// paths against the configured directory, and validates it.
func (v *PathValidator) NormalizePath(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.configuredDirectory, path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	if err := v.ValidatePath(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// Join joins elems onto the configured directory and rejects results that
// escape it, such as names taken from document text containing "..".
func (v *PathValidator) Join(elems ...string) (string, error) {
	for _, e := range elems {
		if e == "" || strings.ContainsRune(e, 0) {
			return "", fmt.Errorf("invalid path element %q", e)
		}
	}

	joined := filepath.Join(append([]string{v.configuredDirectory}, elems...)...)
	root := filepath.Clean(v.configuredDirectory)
	if joined == root || !within(joined, root) {
		return "", fmt.Errorf("path element escapes %s: %s", root, filepath.Join(elems...))
	}
	return joined, nil
}

// resolve follows symlinks for the longest existing prefix of path
func resolve(path string) string {
	path = filepath.Clean(path)
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}

	parent := filepath.Dir(path)
	if parent == path {
		return path
	}
	if _, err := os.Lstat(path); err == nil {
		// exists but cannot be resolved, e.g. a dangling link
		return path
	}
	return filepath.Join(resolve(parent), filepath.Base(path))
}

func within(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
