// Package snapshot implements the immutable, versioned project model.
// A Project is never mutated in place: every edit derives a new Project with
// the next version number, and two Projects can be diffed to find the file
// operations separating them.
package snapshot

import (
	"sort"

	"github.com/standardbeagle/lcr/internal/types"
)

// Module is one compilation unit grouping documents.
type Module struct {
	ID   types.ModuleID
	Name string
}

// Project is an immutable snapshot of every document in a project.
type Project struct {
	version types.SnapshotVersion
	root    string
	modules []Module
	docs    map[types.DocumentID]Document
	byPath  map[string]types.DocumentID
}

// NewProject builds the initial snapshot (version 1) from loaded documents.
func NewProject(root string, modules []Module, docs []Document) *Project {
	p := &Project{
		version: 1,
		root:    root,
		modules: modules,
		docs:    make(map[types.DocumentID]Document, len(docs)),
		byPath:  make(map[string]types.DocumentID, len(docs)),
	}
	for _, d := range docs {
		p.docs[d.ID] = d
		p.byPath[d.Path] = d.ID
	}
	return p
}

// Version returns the snapshot version.
func (p *Project) Version() types.SnapshotVersion { return p.version }

// Root returns the project root directory.
func (p *Project) Root() string { return p.root }

// Modules returns the compilation units.
func (p *Project) Modules() []Module { return p.modules }

// Document looks a document up by id.
func (p *Project) Document(id types.DocumentID) (Document, bool) {
	d, ok := p.docs[id]
	return d, ok
}

// DocumentByPath looks a document up by absolute path.
func (p *Project) DocumentByPath(path string) (Document, bool) {
	id, ok := p.byPath[path]
	if !ok {
		return Document{}, false
	}
	return p.docs[id], true
}

// Documents returns all documents sorted by path. The slice is freshly
// allocated; callers may keep it.
func (p *Project) Documents() []Document {
	out := make([]Document, 0, len(p.docs))
	for _, d := range p.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DocumentCount returns the number of documents.
func (p *Project) DocumentCount() int { return len(p.docs) }

// derive clones the structural maps into a next-version snapshot.
func (p *Project) derive() *Project {
	next := &Project{
		version: p.version + 1,
		root:    p.root,
		modules: p.modules,
		docs:    make(map[types.DocumentID]Document, len(p.docs)),
		byPath:  make(map[string]types.DocumentID, len(p.byPath)),
	}
	for id, d := range p.docs {
		next.docs[id] = d
	}
	for path, id := range p.byPath {
		next.byPath[path] = id
	}
	return next
}

// WithDocument returns a derived snapshot holding doc (replacing any document
// with the same id).
func (p *Project) WithDocument(doc Document) *Project {
	next := p.derive()
	if old, ok := next.docs[doc.ID]; ok {
		delete(next.byPath, old.Path)
	}
	next.docs[doc.ID] = doc
	next.byPath[doc.Path] = doc.ID
	return next
}

// WithDocumentText returns a derived snapshot with the document's text
// replaced. The document keeps its id and path.
func (p *Project) WithDocumentText(id types.DocumentID, text string) (*Project, bool) {
	d, ok := p.docs[id]
	if !ok {
		return p, false
	}
	return p.WithDocument(d.WithText(text)), true
}

// WithDocumentPath returns a derived snapshot with the document moved to a
// new path.
func (p *Project) WithDocumentPath(id types.DocumentID, path string) (*Project, bool) {
	d, ok := p.docs[id]
	if !ok {
		return p, false
	}
	return p.WithDocument(d.WithPath(path)), true
}

// WithoutDocument returns a derived snapshot without the given document.
func (p *Project) WithoutDocument(id types.DocumentID) *Project {
	next := p.derive()
	if old, ok := next.docs[id]; ok {
		delete(next.byPath, old.Path)
		delete(next.docs, id)
	}
	return next
}

// AddDocument returns a derived snapshot holding a new document at path.
// The new document gets the next unused id.
func (p *Project) AddDocument(module types.ModuleID, path, text string) (*Project, Document) {
	var maxID types.DocumentID
	for id := range p.docs {
		if id > maxID {
			maxID = id
		}
	}
	doc := NewDocument(maxID+1, module, path, text)
	return p.WithDocument(doc), doc
}
