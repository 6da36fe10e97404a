// Package version provides build and version information for lcr.
package version

import (
	"crypto/sha256"
	"fmt"
	"runtime/debug"
)

// Version is the current release version. Overridden at build time via
// -ldflags "-X github.com/standardbeagle/lcr/internal/version.Version=x.y.z".
var Version = "0.1.0"

// BuildID returns a short identifier derived from the embedded build info.
// Useful for correlating debug logs with a specific binary.
func BuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	sum := sha256.Sum256([]byte(info.String()))
	return fmt.Sprintf("%x", sum[:6])
}

// FullInfo returns a human-readable version string for CLI output.
func FullInfo() string {
	return fmt.Sprintf("Lightning Code Refactor %s (build %s)", Version, BuildID())
}
