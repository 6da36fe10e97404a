// Package treesitter is the production semantic model provider, built on the
// tree-sitter grammars for Go, C#, Python and JavaScript. It derives a
// per-document model (declarations plus identifier occurrences) from each
// snapshot and answers the provider contract from those models; syntax trees
// are released as soon as extraction finishes.
package treesitter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/provider"
	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// modelCacheSize bounds the number of cached per-document models. Each model
// is a few KB; 512 covers a medium project across two snapshot versions.
const modelCacheSize = 512

type modelKey struct {
	version  types.SnapshotVersion
	document types.DocumentID
}

// Provider implements provider.Provider on tree-sitter.
type Provider struct {
	readyOnce sync.Once
	readyErr  error

	mu      sync.Mutex // guards parsers and specs; tree-sitter parsers are not concurrency-safe
	specs   map[types.Language]*langSpec
	parsers map[types.Language]*tree_sitter.Parser

	models *lru.Cache[modelKey, *docModel]
}

// New creates an uninitialized provider. Call EnsureReady before use; the
// session constructor does this.
func New() *Provider {
	models, _ := lru.New[modelKey, *docModel](modelCacheSize)
	return &Provider{models: models}
}

// EnsureReady loads every grammar and prepares one parser per language.
// Idempotent and safe for concurrent callers.
func (p *Provider) EnsureReady() error {
	p.readyOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.specs = languageSpecs()
		p.parsers = make(map[types.Language]*tree_sitter.Parser, len(p.specs))
		for lang, spec := range p.specs {
			parser := tree_sitter.NewParser()
			if err := parser.SetLanguage(spec.language); err != nil {
				p.readyErr = fmt.Errorf("failed to load %s grammar: %w", lang, err)
				return
			}
			p.parsers[lang] = parser
		}
	})
	return p.readyErr
}

// model returns the derived model for one document, parsing on cache miss.
func (p *Provider) model(snap *snapshot.Project, docID types.DocumentID) (*docModel, error) {
	key := modelKey{version: snap.Version(), document: docID}
	if m, ok := p.models.Get(key); ok {
		return m, nil
	}

	doc, ok := snap.Document(docID)
	if !ok {
		return nil, lcrerrors.New(lcrerrors.CodeFileNotFound, "document %d not in snapshot %d", docID, snap.Version())
	}
	lang := types.LanguageForPath(doc.Path)

	p.mu.Lock()
	defer p.mu.Unlock()
	spec, parser := p.specs[lang], p.parsers[lang]
	if spec == nil || parser == nil {
		// Unsupported language: an empty model keeps the document inert
		// rather than failing whole-project scans.
		m := &docModel{doc: doc, lang: lang}
		p.models.Add(key, m)
		return m, nil
	}

	tree := parser.Parse([]byte(doc.Text), nil)
	if tree == nil {
		return nil, fmt.Errorf("parse returned no tree for %s", doc.Path)
	}
	defer tree.Close()

	m := buildModel(doc, lang, spec, tree)
	p.models.Add(key, m)
	return m, nil
}

// entityForName builds the handle for a simple name by collecting every
// declaration site of that name across the snapshot. A name with no in-source
// declaration yields an external handle.
func (p *Provider) entityForName(ctx context.Context, snap *snapshot.Project, name string) (types.SymbolHandle, error) {
	handle := types.SymbolHandle{
		Snapshot:      snap.Version(),
		Name:          name,
		QualifiedName: name,
	}
	for _, doc := range snap.Documents() {
		if err := ctx.Err(); err != nil {
			return types.SymbolHandle{}, lcrerrors.Wrap(lcrerrors.CodeCancelled, err, "symbol lookup cancelled")
		}
		m, err := p.model(snap, doc.ID)
		if err != nil {
			return types.SymbolHandle{}, err
		}
		for _, d := range m.decls {
			if d.name != name {
				continue
			}
			if len(handle.Declarations) == 0 {
				handle.Kind = d.kind
				handle.Static = d.static
				handle.QualifiedName = qualifiedName(snap, doc, d)
			}
			handle.Declarations = append(handle.Declarations, types.Location{
				Document: doc.ID,
				Path:     doc.Path,
				Line:     d.nameLine,
				Column:   d.nameCol,
			})
		}
	}
	handle.External = len(handle.Declarations) == 0
	return handle, nil
}

// qualifiedName prefixes the declaration's scope path with the owning module.
func qualifiedName(snap *snapshot.Project, doc snapshot.Document, d declInfo) string {
	for _, m := range snap.Modules() {
		if m.ID == doc.Module {
			return m.Name + "." + d.qualified
		}
	}
	return d.qualified
}

// SymbolAt implements provider.Provider. It finds the identifier token at the
// position, or failing that walks outward to the innermost enclosing
// declaration.
func (p *Provider) SymbolAt(ctx context.Context, snap *snapshot.Project, docID types.DocumentID, pos types.Position) (types.SymbolHandle, bool, error) {
	m, err := p.model(snap, docID)
	if err != nil {
		return types.SymbolHandle{}, false, err
	}
	offset := m.doc.OffsetOf(pos.Line, pos.Column)
	if offset < 0 {
		return types.SymbolHandle{}, false, nil
	}

	if i := m.identAt(offset); i >= 0 {
		handle, err := p.entityForName(ctx, snap, m.idents[i].name)
		if err != nil {
			return types.SymbolHandle{}, false, err
		}
		return handle, true, nil
	}
	if i := m.declAt(offset); i >= 0 {
		handle, err := p.entityForName(ctx, snap, m.decls[i].name)
		if err != nil {
			return types.SymbolHandle{}, false, err
		}
		return handle, true, nil
	}
	return types.SymbolHandle{}, false, nil
}

// DeclarationsIn implements provider.Provider. Each declaration becomes its
// own single-site handle so name-based resolution can classify ambiguity.
func (p *Provider) DeclarationsIn(ctx context.Context, snap *snapshot.Project, docID types.DocumentID) ([]types.SymbolHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, lcrerrors.Wrap(lcrerrors.CodeCancelled, err, "declaration scan cancelled")
	}
	m, err := p.model(snap, docID)
	if err != nil {
		return nil, err
	}
	handles := make([]types.SymbolHandle, 0, len(m.decls))
	for _, d := range m.decls {
		handles = append(handles, types.SymbolHandle{
			Snapshot:      snap.Version(),
			Name:          d.name,
			QualifiedName: qualifiedName(snap, m.doc, d),
			Kind:          d.kind,
			Static:        d.static,
			Declarations: []types.Location{{
				Document: docID,
				Path:     m.doc.Path,
				Line:     d.nameLine,
				Column:   d.nameCol,
			}},
		})
	}
	return handles, nil
}

// OccurrencesIn implements provider.Provider.
func (p *Provider) OccurrencesIn(ctx context.Context, snap *snapshot.Project, docID types.DocumentID, symbol types.SymbolHandle) ([]provider.Occurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, lcrerrors.Wrap(lcrerrors.CodeCancelled, err, "reference scan cancelled")
	}
	m, err := p.model(snap, docID)
	if err != nil {
		return nil, err
	}
	var out []provider.Occurrence
	for _, id := range m.idents {
		if id.name != symbol.Name {
			continue
		}
		out = append(out, provider.Occurrence{
			Document:     docID,
			Path:         m.doc.Path,
			Line:         id.line,
			Column:       id.column,
			Length:       id.length,
			IsWrite:      id.write,
			IsDefinition: id.declIndex >= 0,
		})
	}
	return out, nil
}

// Rename implements provider.Provider by splicing the new name over every
// site, per document, applying edits back-to-front so earlier offsets stay
// valid.
func (p *Provider) Rename(ctx context.Context, snap *snapshot.Project, symbol types.SymbolHandle, sites []types.ReferenceSite, newName string) (*snapshot.Project, error) {
	byDoc := make(map[types.DocumentID][]types.ReferenceSite)
	var docOrder []types.DocumentID
	for _, s := range sites {
		if _, seen := byDoc[s.Document]; !seen {
			docOrder = append(docOrder, s.Document)
		}
		byDoc[s.Document] = append(byDoc[s.Document], s)
	}
	sort.Slice(docOrder, func(i, j int) bool { return docOrder[i] < docOrder[j] })

	next := snap
	for _, docID := range docOrder {
		if err := ctx.Err(); err != nil {
			return nil, lcrerrors.Wrap(lcrerrors.CodeCancelled, err, "rename cancelled")
		}
		doc, ok := next.Document(docID)
		if !ok {
			return nil, lcrerrors.New(lcrerrors.CodeFileNotFound, "document %d vanished during rename", docID)
		}
		text, err := spliceSites(doc, byDoc[docID], symbol.Name, newName)
		if err != nil {
			return nil, err
		}
		next, _ = next.WithDocumentText(docID, text)
	}
	return next, nil
}

// spliceSites rewrites every site inside one document's text.
func spliceSites(doc snapshot.Document, sites []types.ReferenceSite, oldName, newName string) (string, error) {
	offsets := make([]int, len(sites))
	for i, s := range sites {
		off := doc.OffsetOf(s.Line, s.Column)
		if off < 0 || off+s.Length > len(doc.Text) {
			return "", fmt.Errorf("reference site %s:%d:%d out of range", doc.Path, s.Line, s.Column)
		}
		if doc.Text[off:off+s.Length] != oldName {
			return "", fmt.Errorf("reference site %s:%d:%d no longer matches %q", doc.Path, s.Line, s.Column, oldName)
		}
		offsets[i] = off
	}
	order := make([]int, len(sites))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return offsets[order[a]] > offsets[order[b]] })

	text := doc.Text
	for _, i := range order {
		off := offsets[i]
		text = text[:off] + newName + text[off+sites[i].Length:]
	}
	return text, nil
}
