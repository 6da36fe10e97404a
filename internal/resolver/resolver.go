// Package resolver turns a locator (position or name) into exactly one
// symbol handle, or a classified failure. Resolution never guesses between
// equally plausible candidates: ambiguity is always surfaced with enough
// detail for the caller to retry with a disambiguating position.
package resolver

import (
	"context"
	"sort"

	"github.com/hbollon/go-edlib"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/provider"
	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// maxSuggestions caps the "did you mean" list on not-found errors.
const maxSuggestions = 3

// Locator identifies a code entity either by position (Line/Column > 0) or by
// simple name within one document.
type Locator struct {
	Path   string // absolute document path
	Line   int    // 1-based; 0 means name-based resolution
	Column int    // 1-based; 0 means name-based resolution
	Name   string // used when no position is given
}

// positional reports whether the locator carries a position.
func (l Locator) positional() bool { return l.Line > 0 || l.Column > 0 }

// Resolver resolves locators against snapshots through the semantic provider.
type Resolver struct {
	provider provider.Provider
}

// New creates a resolver.
func New(p provider.Provider) *Resolver {
	return &Resolver{provider: p}
}

// Resolve produces exactly one handle for the locator, or a classified
// resolution error. For a fixed snapshot and locator the outcome is always
// the same.
func (r *Resolver) Resolve(ctx context.Context, snap *snapshot.Project, loc Locator) (types.SymbolHandle, error) {
	doc, ok := snap.DocumentByPath(loc.Path)
	if !ok {
		return types.SymbolHandle{}, lcrerrors.New(lcrerrors.CodeFileNotFound, "document %s is not part of the project", loc.Path)
	}

	if loc.positional() {
		if err := validateBounds(doc, loc.Line, loc.Column); err != nil {
			return types.SymbolHandle{}, err
		}
		return r.resolveAt(ctx, snap, doc, types.Position{Line: loc.Line, Column: loc.Column})
	}
	return r.resolveByName(ctx, snap, doc, loc.Name)
}

// validateBounds rejects out-of-range positions before any provider call.
func validateBounds(doc snapshot.Document, line, column int) error {
	lineCount := doc.LineCount()
	if line < 1 || line > lineCount {
		return lcrerrors.New(lcrerrors.CodeInvalidLineNumber, "line %d out of range for %s (1..%d)", line, doc.Path, lineCount).
			WithDetail("line", line).
			WithDetail("line_count", lineCount)
	}
	text, _ := doc.Line(line)
	// Column may point one past the last character (caret after the token).
	if column < 1 || column > len(text)+1 {
		return lcrerrors.New(lcrerrors.CodeInvalidColumn, "column %d out of range for %s:%d (1..%d)", column, doc.Path, line, len(text)+1).
			WithDetail("column", column).
			WithDetail("line_length", len(text))
	}
	return nil
}

// resolveAt is the primary, position-based path.
func (r *Resolver) resolveAt(ctx context.Context, snap *snapshot.Project, doc snapshot.Document, pos types.Position) (types.SymbolHandle, error) {
	handle, found, err := r.provider.SymbolAt(ctx, snap, doc.ID, pos)
	if err != nil {
		return types.SymbolHandle{}, err
	}
	if !found {
		return types.SymbolHandle{}, lcrerrors.New(lcrerrors.CodeSymbolNotFound, "no symbol at %s:%d:%d", doc.Path, pos.Line, pos.Column).
			WithDetail("line", pos.Line).
			WithDetail("column", pos.Column)
	}
	return handle, nil
}

// resolveByName is the fallback path, intentionally local to one document:
// the candidate set is the document's own declarations, never other files.
func (r *Resolver) resolveByName(ctx context.Context, snap *snapshot.Project, doc snapshot.Document, name string) (types.SymbolHandle, error) {
	if name == "" {
		return types.SymbolHandle{}, lcrerrors.New(lcrerrors.CodeMissingField, "locator needs a position or a symbol name")
	}
	decls, err := r.provider.DeclarationsIn(ctx, snap, doc.ID)
	if err != nil {
		return types.SymbolHandle{}, err
	}

	var matches []types.SymbolHandle
	for _, d := range decls {
		if d.Name == name {
			matches = append(matches, d)
		}
	}

	switch len(matches) {
	case 0:
		rerr := lcrerrors.New(lcrerrors.CodeSymbolNotFound, "no declaration named %q in %s", name, doc.Path)
		if suggestions := nearMisses(name, decls); len(suggestions) > 0 {
			rerr.WithDetail("suggestions", suggestions)
			rerr.WithRemediation("did you mean %s?", suggestions[0])
		}
		return types.SymbolHandle{}, rerr
	case 1:
		return matches[0], nil
	default:
		lines := make([]int, 0, len(matches))
		for _, m := range matches {
			for _, d := range m.Declarations {
				lines = append(lines, d.Line)
			}
		}
		sort.Ints(lines)
		return types.SymbolHandle{}, lcrerrors.New(lcrerrors.CodeSymbolAmbiguous, "%d declarations named %q in %s", len(matches), name, doc.Path).
			WithDetail("candidate_count", len(matches)).
			WithDetail("candidate_lines", lines).
			WithRemediation("retry with an explicit line/column to pick one candidate")
	}
}

// nearMisses ranks declaration names by edit distance to the requested name.
func nearMisses(name string, decls []types.SymbolHandle) []string {
	seen := make(map[string]bool)
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	for _, d := range decls {
		if d.Name == "" || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		dist := edlib.LevenshteinDistance(name, d.Name)
		if dist > 0 && dist <= len(name)/2+1 {
			candidates = append(candidates, scored{d.Name, dist})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	var out []string
	for _, c := range candidates {
		out = append(out, c.name)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
