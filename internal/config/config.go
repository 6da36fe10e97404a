// Package config loads engine configuration from a .lcr.kdl project file,
// with defaults that work for an unconfigured project root.
package config

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/lcr/internal/types"
)

// Config is the engine configuration.
type Config struct {
	Project  Project
	Load     Load
	Watch    Watch
	Keywords Keywords
}

// Project identifies the project being refactored.
type Project struct {
	Root string
	Name string
}

// Load controls the project scan.
type Load struct {
	Include      []string
	Exclude      []string
	Extensions   []string
	MaxFileSize  int64
	MaxFileCount int
}

// Watch controls staleness detection for external edits.
type Watch struct {
	Enabled    bool
	DebounceMs int
}

// Keywords points at optional reserved-word overrides.
type Keywords struct {
	OverridePath string // TOML file with additional reserved words per language
}

// Default returns the configuration used when no .lcr.kdl exists.
func Default(root string) *Config {
	if root == "" {
		root, _ = os.Getwd()
	}
	abs, err := filepath.Abs(root)
	if err == nil {
		root = abs
	}
	return &Config{
		Project: Project{Root: root, Name: filepath.Base(root)},
		Load: Load{
			Exclude:      []string{"**/node_modules/**", "**/vendor/**", "**/bin/**", "**/obj/**"},
			MaxFileSize:  types.DefaultMaxFileSize,
			MaxFileCount: types.DefaultMaxFileCount,
		},
		Watch: Watch{Enabled: false, DebounceMs: 200},
	}
}

// LoadFile loads configuration from the .lcr.kdl in root, falling back to
// defaults when the file does not exist.
func LoadFile(root string) (*Config, error) {
	cfg := Default(root)
	kdlPath := filepath.Join(cfg.Project.Root, ".lcr.kdl")
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return cfg, nil
	}
	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, err
	}
	if err := parseKDL(string(content), cfg); err != nil {
		return nil, err
	}
	// Resolve a relative root against the directory holding the config file.
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(root, cfg.Project.Root))
	}
	return cfg, nil
}
