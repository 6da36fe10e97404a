// Package providertest provides a scripted semantic provider for engine
// tests. Symbols and their occurrence sites are declared up front by path,
// so tests stay independent of document id assignment and of any real
// grammar.
package providertest

import (
	"context"
	"sort"

	"github.com/standardbeagle/lcr/internal/provider"
	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// Site is one scripted occurrence, addressed by path rather than document id.
type Site struct {
	Path         string
	Line         int
	Column       int
	Length       int
	IsWrite      bool
	IsDefinition bool
}

// Symbol is one scripted entity with its occurrence sites.
type Symbol struct {
	Name          string
	QualifiedName string
	Kind          types.SymbolKind
	Static        bool
	External      bool
	Sites         []Site
}

// Fake implements provider.Provider from a scripted symbol table.
type Fake struct {
	Symbols []Symbol

	// Err, when set, is returned from every resolution method.
	Err error
}

var _ provider.Provider = (*Fake)(nil)

func (f *Fake) EnsureReady() error { return nil }

// handleFor builds the snapshot-bound handle for a scripted symbol. All
// definition sites become declarations, mirroring the production provider's
// partial-type merging.
func (f *Fake) handleFor(snap *snapshot.Project, sym Symbol) types.SymbolHandle {
	h := types.SymbolHandle{
		Snapshot:      snap.Version(),
		Name:          sym.Name,
		QualifiedName: sym.QualifiedName,
		Kind:          sym.Kind,
		Static:        sym.Static,
		External:      sym.External,
	}
	if h.QualifiedName == "" {
		h.QualifiedName = sym.Name
	}
	for _, site := range sym.Sites {
		if !site.IsDefinition {
			continue
		}
		doc, ok := snap.DocumentByPath(site.Path)
		if !ok {
			continue
		}
		h.Declarations = append(h.Declarations, types.Location{
			Document: doc.ID,
			Path:     site.Path,
			Line:     site.Line,
			Column:   site.Column,
		})
	}
	sort.Slice(h.Declarations, func(i, j int) bool {
		if h.Declarations[i].Path != h.Declarations[j].Path {
			return h.Declarations[i].Path < h.Declarations[j].Path
		}
		return h.Declarations[i].Line < h.Declarations[j].Line
	})
	return h
}

func (f *Fake) SymbolAt(ctx context.Context, snap *snapshot.Project, docID types.DocumentID, pos types.Position) (types.SymbolHandle, bool, error) {
	if f.Err != nil {
		return types.SymbolHandle{}, false, f.Err
	}
	doc, ok := snap.Document(docID)
	if !ok {
		return types.SymbolHandle{}, false, nil
	}
	for _, sym := range f.Symbols {
		for _, site := range sym.Sites {
			if site.Path != doc.Path || site.Line != pos.Line {
				continue
			}
			if pos.Column >= site.Column && pos.Column < site.Column+site.Length {
				return f.handleFor(snap, sym), true, nil
			}
		}
	}
	return types.SymbolHandle{}, false, nil
}

// DeclarationsIn reports one handle per scripted definition site in the
// document, so name-based lookups can observe ambiguity.
func (f *Fake) DeclarationsIn(ctx context.Context, snap *snapshot.Project, docID types.DocumentID) ([]types.SymbolHandle, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	doc, ok := snap.Document(docID)
	if !ok {
		return nil, nil
	}
	var out []types.SymbolHandle
	for _, sym := range f.Symbols {
		for _, site := range sym.Sites {
			if site.Path != doc.Path || !site.IsDefinition {
				continue
			}
			out = append(out, types.SymbolHandle{
				Snapshot:      snap.Version(),
				Name:          sym.Name,
				QualifiedName: sym.QualifiedName,
				Kind:          sym.Kind,
				Static:        sym.Static,
				External:      sym.External,
				Declarations: []types.Location{{
					Document: doc.ID,
					Path:     site.Path,
					Line:     site.Line,
					Column:   site.Column,
				}},
			})
		}
	}
	return out, nil
}

func (f *Fake) OccurrencesIn(ctx context.Context, snap *snapshot.Project, docID types.DocumentID, symbol types.SymbolHandle) ([]provider.Occurrence, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	doc, ok := snap.Document(docID)
	if !ok {
		return nil, nil
	}
	var out []provider.Occurrence
	for _, sym := range f.Symbols {
		if sym.Name != symbol.Name {
			continue
		}
		for _, site := range sym.Sites {
			if site.Path != doc.Path {
				continue
			}
			out = append(out, provider.Occurrence{
				Document:     doc.ID,
				Path:         site.Path,
				Line:         site.Line,
				Column:       site.Column,
				Length:       site.Length,
				IsWrite:      site.IsWrite,
				IsDefinition: site.IsDefinition,
			})
		}
	}
	return out, nil
}

// Rename splices the new name into every site textually, mirroring the
// production provider's descending-offset splice.
func (f *Fake) Rename(ctx context.Context, snap *snapshot.Project, symbol types.SymbolHandle, sites []types.ReferenceSite, newName string) (*snapshot.Project, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	byDoc := make(map[types.DocumentID][]types.ReferenceSite)
	var order []types.DocumentID
	for _, site := range sites {
		if _, seen := byDoc[site.Document]; !seen {
			order = append(order, site.Document)
		}
		byDoc[site.Document] = append(byDoc[site.Document], site)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	next := snap
	for _, id := range order {
		doc, ok := next.Document(id)
		if !ok {
			continue
		}
		docSites := byDoc[id]
		sort.Slice(docSites, func(i, j int) bool {
			if docSites[i].Line != docSites[j].Line {
				return docSites[i].Line > docSites[j].Line
			}
			return docSites[i].Column > docSites[j].Column
		})
		text := doc.Text
		for _, site := range docSites {
			off := doc.OffsetOf(site.Line, site.Column)
			if off < 0 || off+site.Length > len(text) {
				continue
			}
			text = text[:off] + newName + text[off+site.Length:]
		}
		next, _ = next.WithDocumentText(id, text)
	}
	return next, nil
}
