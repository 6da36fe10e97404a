// Package provider defines the boundary to the semantic model provider: the
// collaborator that parses source text, identifies declarations and finds
// symbol occurrences. The engine consumes this interface and never inspects
// syntax trees itself; the production implementation lives in the treesitter
// subpackage.
package provider

import (
	"context"

	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// Occurrence is one raw symbol occurrence reported by the provider, before
// the reference tracker deduplicates and classifies it.
type Occurrence struct {
	Document     types.DocumentID
	Path         string
	Line         int // 1-based
	Column       int // 1-based
	Length       int // identifier length in bytes
	IsWrite      bool
	IsDefinition bool
}

// Provider is the semantic model provider consumed by the engine.
//
// All methods resolve against the snapshot they are handed; the provider may
// cache derived models keyed by snapshot version but must never mutate a
// snapshot.
type Provider interface {
	// EnsureReady performs one-time process-wide initialization (grammar
	// loading). Idempotent; the session constructor calls it before any
	// other method.
	EnsureReady() error

	// SymbolAt resolves the entity declared or referenced at a position.
	// Returns ok=false when no entity is found at the position or any
	// enclosing construct.
	SymbolAt(ctx context.Context, snap *snapshot.Project, doc types.DocumentID, pos types.Position) (types.SymbolHandle, bool, error)

	// DeclarationsIn lists every declaration in one document.
	DeclarationsIn(ctx context.Context, snap *snapshot.Project, doc types.DocumentID) ([]types.SymbolHandle, error)

	// OccurrencesIn reports every occurrence of the symbol in one document.
	OccurrencesIn(ctx context.Context, snap *snapshot.Project, doc types.DocumentID, symbol types.SymbolHandle) ([]Occurrence, error)

	// Rename produces a derived snapshot with every given site rewritten to
	// the new name. The base snapshot is left untouched.
	Rename(ctx context.Context, snap *snapshot.Project, symbol types.SymbolHandle, sites []types.ReferenceSite, newName string) (*snapshot.Project, error)
}
