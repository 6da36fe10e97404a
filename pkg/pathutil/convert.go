// Package pathutil provides utilities for converting between absolute and
// relative file paths. The refactoring engine works with absolute paths
// internally but reports relative paths in previews and results.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to a path relative to rootDir.
// If the path is already relative or conversion fails, returns the original path.
// Always returns forward-slash separated paths for consistency.
func ToRelative(absolutePath, rootDir string) string {
	if absolutePath == "" || rootDir == "" {
		return absolutePath
	}

	// If already relative, return as-is (normalized)
	if !filepath.IsAbs(absolutePath) {
		return filepath.ToSlash(absolutePath)
	}

	rel, err := filepath.Rel(rootDir, absolutePath)
	if err != nil {
		// Conversion failed (e.g., different drives on Windows), return original
		return filepath.ToSlash(absolutePath)
	}

	// Don't return paths that escape the root
	if strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(absolutePath)
	}

	return filepath.ToSlash(rel)
}

// ToAbsolute converts a path to an absolute path anchored at rootDir.
// Absolute inputs are returned cleaned, relative inputs are joined with rootDir.
func ToAbsolute(path, rootDir string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, filepath.FromSlash(path))
}

// ToRelativePaths converts a slice of absolute paths to root-relative paths.
// The input slice is not modified.
func ToRelativePaths(paths []string, rootDir string) []string {
	if len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = ToRelative(p, rootDir)
	}
	return out
}
