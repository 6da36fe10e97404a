package snapshot

import "sort"

// Diff describes the file-level operations separating two snapshots.
// All three lists are sorted by path.
type Diff struct {
	Added   []Document
	Changed []Document // document from the newer snapshot
	Removed []Document // document from the older snapshot
}

// Empty reports whether the diff contains no operations.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// Compare diffs next against base at the path level: a document whose path
// changed shows up as a removal of the old path and an addition of the new
// one. Content comparison uses document hashes.
func Compare(base, next *Project) Diff {
	var d Diff
	for _, doc := range next.Documents() {
		old, ok := base.DocumentByPath(doc.Path)
		switch {
		case !ok:
			d.Added = append(d.Added, doc)
		case old.Hash != doc.Hash || old.Text != doc.Text:
			d.Changed = append(d.Changed, doc)
		}
	}
	for _, doc := range base.Documents() {
		if _, ok := next.DocumentByPath(doc.Path); !ok {
			d.Removed = append(d.Removed, doc)
		}
	}
	sortByPath(d.Added)
	sortByPath(d.Changed)
	sortByPath(d.Removed)
	return d
}

func sortByPath(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
}
