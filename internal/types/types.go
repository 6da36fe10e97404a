package types

import "fmt"

// Common system-wide constants
const (
	// DefaultMaxFileSize limits how large a single document may be when loading
	// a project. Larger files are almost always generated code or binaries and
	// renaming across them is never intended.
	DefaultMaxFileSize = 10 * 1024 * 1024 // 10MB per file

	// DefaultMaxFileCount bounds a single project load. Covers typical
	// application codebases while preventing runaway scans of vendor trees.
	DefaultMaxFileCount = 10000
)

// DocumentID identifies a document within one project snapshot lineage.
// IDs are stable across snapshot versions: editing a document's text or path
// produces a new snapshot with the same DocumentID.
type DocumentID uint32

// ModuleID identifies a compilation unit within a project.
type ModuleID uint16

// SnapshotVersion is a monotonically increasing version number for project
// snapshots. Every derived snapshot gets the next version.
type SnapshotVersion uint64

// Position is a 1-based line/column location inside a document.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Location is a position inside a specific document.
type Location struct {
	Document DocumentID `json:"document"`
	Path     string     `json:"path"`
	Line     int        `json:"line"`
	Column   int        `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}
