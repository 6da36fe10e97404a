package snapshot

import (
	"testing"
)

func testProject() *Project {
	docs := []Document{
		NewDocument(1, 1, "/proj/app/account.go", "package app\n\nvar Balance = 0\n"),
		NewDocument(2, 1, "/proj/app/report.go", "package app\n\nfunc Report() {}\n"),
	}
	return NewProject("/proj", []Module{{ID: 1, Name: "app"}}, docs)
}

func TestNewProjectStartsAtVersionOne(t *testing.T) {
	p := testProject()
	if p.Version() != 1 {
		t.Fatalf("expected version 1, got %d", p.Version())
	}
	if p.DocumentCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", p.DocumentCount())
	}
}

func TestWithDocumentTextDerivesNewVersion(t *testing.T) {
	base := testProject()
	next, ok := base.WithDocumentText(1, "package app\n\nvar Total = 0\n")
	if !ok {
		t.Fatal("document 1 should exist")
	}

	if next.Version() != base.Version()+1 {
		t.Errorf("derived version = %d, want %d", next.Version(), base.Version()+1)
	}

	// The base snapshot must be untouched
	orig, _ := base.Document(1)
	if orig.Text != "package app\n\nvar Balance = 0\n" {
		t.Errorf("base document mutated: %q", orig.Text)
	}

	updated, _ := next.Document(1)
	if updated.Text != "package app\n\nvar Total = 0\n" {
		t.Errorf("derived document text = %q", updated.Text)
	}
	if updated.Hash == orig.Hash {
		t.Error("content hash should change with the text")
	}
}

func TestWithDocumentTextUnknownID(t *testing.T) {
	base := testProject()
	same, ok := base.WithDocumentText(99, "x")
	if ok {
		t.Fatal("unknown id should report !ok")
	}
	if same != base {
		t.Error("unknown id should return the receiver unchanged")
	}
}

func TestWithDocumentPathMovesLookup(t *testing.T) {
	base := testProject()
	next, ok := base.WithDocumentPath(1, "/proj/app/ledger.go")
	if !ok {
		t.Fatal("document 1 should exist")
	}

	if _, found := next.DocumentByPath("/proj/app/account.go"); found {
		t.Error("old path should no longer resolve")
	}
	moved, found := next.DocumentByPath("/proj/app/ledger.go")
	if !found {
		t.Fatal("new path should resolve")
	}
	if moved.ID != 1 || moved.Text != "package app\n\nvar Balance = 0\n" {
		t.Errorf("moved document lost identity or text: %+v", moved)
	}

	// Base still resolves the old path
	if _, found := base.DocumentByPath("/proj/app/account.go"); !found {
		t.Error("base lookup broken by derivation")
	}
}

func TestAddAndRemoveDocument(t *testing.T) {
	base := testProject()

	withNew, doc := base.AddDocument(1, "/proj/app/audit.go", "package app\n")
	if doc.ID != 3 {
		t.Errorf("new document id = %d, want 3", doc.ID)
	}
	if withNew.DocumentCount() != 3 {
		t.Errorf("document count = %d, want 3", withNew.DocumentCount())
	}

	without := withNew.WithoutDocument(doc.ID)
	if without.DocumentCount() != 2 {
		t.Errorf("document count after removal = %d, want 2", without.DocumentCount())
	}
	if _, found := without.DocumentByPath("/proj/app/audit.go"); found {
		t.Error("removed document should not resolve by path")
	}
	if without.Version() != withNew.Version()+1 {
		t.Error("removal should derive a new version")
	}
}

func TestDocumentsSortedByPath(t *testing.T) {
	p := testProject()
	docs := p.Documents()
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Path > docs[1].Path {
		t.Errorf("documents not sorted: %s before %s", docs[0].Path, docs[1].Path)
	}
}
