// Package change computes the effect of an edit as a new immutable snapshot,
// without touching storage. In preview mode the document-level diffs are
// translated into PendingChange descriptions instead of being handed to the
// committer.
package change

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/provider"
	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// EditKind identifies the structural edit being requested.
type EditKind uint8

const (
	EditRename EditKind = iota
)

// Spec describes the intended edit for a resolved symbol.
type Spec struct {
	Kind    EditKind
	NewName string
	// RenameFile asks for the declaring file to be renamed when its name
	// matches the old symbol name. The physical move happens after commit.
	RenameFile bool
}

// Result is the computed effect of an edit.
type Result struct {
	// Snapshot is the derived, self-consistent snapshot carrying the edit.
	Snapshot *snapshot.Project
	// Pending is populated in preview mode only, sorted by path.
	Pending []types.PendingChange
	// FileRename is the planned post-commit file move, when implied.
	FileRename *types.PlannedFileRename
}

// Computer validates edits and builds derived snapshots through the provider.
type Computer struct {
	provider provider.Provider
	keywords *KeywordTable
}

// New creates a change computer.
func New(p provider.Provider, keywords *KeywordTable) *Computer {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	return &Computer{provider: p, keywords: keywords}
}

// Compute validates the edit for the symbol's kind, builds the new snapshot
// from the reference set, and in preview mode renders PendingChange entries
// in stable path order. The reference set must come from the same snapshot.
func (c *Computer) Compute(ctx context.Context, base *snapshot.Project, symbol types.SymbolHandle, refs types.ReferenceSet, spec Spec, preview bool) (Result, error) {
	if refs.Snapshot != base.Version() || symbol.Snapshot != base.Version() {
		return Result{}, lcrerrors.New(lcrerrors.CodeStaleSnapshot,
			"edit inputs were computed against snapshot %d/%d but base is %d", symbol.Snapshot, refs.Snapshot, base.Version())
	}
	if err := c.validate(base, symbol, spec); err != nil {
		return Result{}, err
	}

	next, err := c.provider.Rename(ctx, base, symbol, renameSites(symbol, refs), spec.NewName)
	if err != nil {
		return Result{}, err
	}

	result := Result{Snapshot: next}
	if rename, err := c.planFileRename(base, symbol, spec); err != nil {
		return Result{}, err
	} else if rename != nil {
		result.FileRename = rename
	}

	if preview {
		result.Pending = c.renderAll(base, next)
	}
	return result, nil
}

// validate applies the semantic-legality and identifier rules before any
// snapshot is derived; failures here leave no partial state anywhere.
func (c *Computer) validate(base *snapshot.Project, symbol types.SymbolHandle, spec Spec) error {
	switch symbol.Kind {
	case types.SymbolKindConstructor:
		return lcrerrors.New(lcrerrors.CodeCannotRenameConstructor, "cannot rename constructor %q directly", symbol.Name).
			WithRemediation("rename the containing type instead")
	case types.SymbolKindDestructor:
		return lcrerrors.New(lcrerrors.CodeCannotRenameDestructor, "cannot rename destructor %q directly", symbol.Name).
			WithRemediation("rename the containing type instead")
	case types.SymbolKindOperator:
		return lcrerrors.New(lcrerrors.CodeCannotRenameOperator, "cannot rename operator %q", symbol.Name).
			WithRemediation("rename the containing type instead")
	}
	if symbol.External {
		return lcrerrors.New(lcrerrors.CodeSymbolExternal, "%q is declared outside the editable project", symbol.Name).
			WithDetail("qualified_name", symbol.QualifiedName)
	}

	newName := spec.NewName
	if newName == "" {
		return lcrerrors.New(lcrerrors.CodeMissingField, "new name is required")
	}
	if newName == symbol.Name {
		return lcrerrors.New(lcrerrors.CodeSameName, "new name %q is identical to the current name", newName)
	}
	if !ValidIdentifier(newName) {
		return lcrerrors.New(lcrerrors.CodeInvalidIdentifier, "%q is not a legal identifier", newName)
	}
	for _, doc := range declaringDocs(base, symbol) {
		lang := types.LanguageForPath(doc.Path)
		if c.keywords.IsReserved(lang, newName) {
			return lcrerrors.New(lcrerrors.CodeReservedKeyword, "%q is a reserved %s keyword", newName, lang).
				WithDetail("language", string(lang))
		}
	}
	return nil
}

// renameSites joins the use sites with the declaration name tokens. The
// reference set carries uses only; the handle says where the name is
// declared, and both spellings must change together.
func renameSites(symbol types.SymbolHandle, refs types.ReferenceSet) []types.ReferenceSite {
	type key struct {
		doc  types.DocumentID
		line int
		col  int
	}
	seen := make(map[key]bool, len(refs.Sites))
	sites := make([]types.ReferenceSite, 0, len(refs.Sites)+len(symbol.Declarations))
	for _, s := range refs.Sites {
		seen[key{s.Document, s.Line, s.Column}] = true
		sites = append(sites, s)
	}
	for _, d := range symbol.Declarations {
		if seen[key{d.Document, d.Line, d.Column}] {
			continue
		}
		sites = append(sites, types.ReferenceSite{
			Document: d.Document,
			Path:     d.Path,
			Line:     d.Line,
			Column:   d.Column,
			Length:   len(symbol.Name),
			Kind:     types.ReferenceDefinition,
		})
	}
	return sites
}

// planFileRename computes the deterministic new path when the declaring
// file's name matches the old symbol name. Nothing on disk moves here.
func (c *Computer) planFileRename(base *snapshot.Project, symbol types.SymbolHandle, spec Spec) (*types.PlannedFileRename, error) {
	if !spec.RenameFile {
		return nil, nil
	}
	for _, doc := range declaringDocs(base, symbol) {
		ext := filepath.Ext(doc.Path)
		stem := strings.TrimSuffix(filepath.Base(doc.Path), ext)
		if stem != symbol.Name {
			continue
		}
		newPath := filepath.Join(filepath.Dir(doc.Path), spec.NewName+ext)
		if _, exists := base.DocumentByPath(newPath); exists {
			return nil, lcrerrors.New(lcrerrors.CodeTargetExists, "target file %s already exists", newPath).
				WithDetail("target", newPath).
				WithRemediation("choose a different name or move the existing file first")
		}
		return &types.PlannedFileRename{OldPath: doc.Path, NewPath: newPath}, nil
	}
	return nil, nil
}

// renderAll translates the snapshot diff into PendingChange entries, sorted
// by path so repeated previews are reproducible.
func (c *Computer) renderAll(base, next *snapshot.Project) []types.PendingChange {
	d := snapshot.Compare(base, next)
	pending := make([]types.PendingChange, 0, len(d.Added)+len(d.Changed)+len(d.Removed))
	for _, doc := range d.Added {
		before, after, rendered := renderPending(base.Root(), snapshot.Document{}, doc, true, false)
		pending = append(pending, types.PendingChange{Path: doc.Path, Kind: types.FileCreated, Before: before, After: after, Diff: rendered})
	}
	for _, doc := range d.Changed {
		old, _ := base.DocumentByPath(doc.Path)
		before, after, rendered := renderPending(base.Root(), old, doc, false, false)
		pending = append(pending, types.PendingChange{Path: doc.Path, Kind: types.FileModified, Before: before, After: after, Diff: rendered})
	}
	for _, doc := range d.Removed {
		before, after, rendered := renderPending(base.Root(), doc, snapshot.Document{}, false, true)
		pending = append(pending, types.PendingChange{Path: doc.Path, Kind: types.FileDeleted, Before: before, After: after, Diff: rendered})
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Path < pending[j].Path })
	return pending
}

// declaringDocs returns the distinct documents holding declaration sites.
func declaringDocs(snap *snapshot.Project, symbol types.SymbolHandle) []snapshot.Document {
	var docs []snapshot.Document
	for _, id := range symbol.DeclaringDocuments() {
		if doc, ok := snap.Document(id); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}
