package treesitter

import (
	"context"
	"strings"
	"testing"

	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

func newReadyProvider(t *testing.T) *Provider {
	t.Helper()
	p := New()
	if err := p.EnsureReady(); err != nil {
		t.Fatal(err)
	}
	return p
}

func singleDocSnapshot(path, text string) *snapshot.Project {
	doc := snapshot.NewDocument(1, 1, path, text)
	return snapshot.NewProject("/proj", []snapshot.Module{{ID: 1, Name: "app"}}, []snapshot.Document{doc})
}

func TestEnsureReadyIdempotent(t *testing.T) {
	p := New()
	if err := p.EnsureReady(); err != nil {
		t.Fatal(err)
	}
	if err := p.EnsureReady(); err != nil {
		t.Fatal(err)
	}
}

func TestGoDeclarations(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/ledger.go", ""+
		"package app\n"+
		"\n"+
		"type Ledger struct {\n"+
		"\tbalance int\n"+
		"}\n"+
		"\n"+
		"var Count = 0\n"+
		"\n"+
		"func Open() {}\n")

	decls, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}

	byName := map[string]types.SymbolKind{}
	for _, d := range decls {
		byName[d.Name] = d.Kind
	}
	if byName["Ledger"] != types.SymbolKindStruct {
		t.Errorf("Ledger kind = %s, want struct", byName["Ledger"])
	}
	if byName["balance"] != types.SymbolKindField {
		t.Errorf("balance kind = %s, want field", byName["balance"])
	}
	if byName["Count"] != types.SymbolKindVariable {
		t.Errorf("Count kind = %s, want variable", byName["Count"])
	}
	if byName["Open"] != types.SymbolKindFunction {
		t.Errorf("Open kind = %s, want function", byName["Open"])
	}
}

func TestGoOccurrencesClassifyWrites(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/ledger.go", ""+
		"package app\n"+
		"\n"+
		"var total = 0\n"+
		"\n"+
		"func bump() {\n"+
		"\ttotal = total + 1\n"+
		"}\n")

	symbol := types.SymbolHandle{Snapshot: snap.Version(), Name: "total"}
	occs, err := p.OccurrencesIn(context.Background(), snap, 1, symbol)
	if err != nil {
		t.Fatal(err)
	}

	if len(occs) != 3 {
		t.Fatalf("occurrences = %d, want 3 (decl, write, read)", len(occs))
	}

	var defs, writes, reads int
	for _, o := range occs {
		switch {
		case o.IsDefinition:
			defs++
		case o.IsWrite:
			writes++
		default:
			reads++
		}
	}
	if defs != 1 || writes != 1 || reads != 1 {
		t.Errorf("defs/writes/reads = %d/%d/%d, want 1/1/1", defs, writes, reads)
	}
}

func TestSymbolAtMergesDeclarationsAcrossDocuments(t *testing.T) {
	p := newReadyProvider(t)
	docs := []snapshot.Document{
		snapshot.NewDocument(1, 1, "/proj/app/a.go", "package app\n\nfunc Open() {}\n"),
		snapshot.NewDocument(2, 1, "/proj/app/b.go", "package app\n\nvar f = Open\n"),
	}
	snap := snapshot.NewProject("/proj", []snapshot.Module{{ID: 1, Name: "app"}}, docs)

	// Resolve at the usage site in b.go
	handle, found, err := p.SymbolAt(context.Background(), snap, 2, types.Position{Line: 3, Column: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("usage site should resolve")
	}
	if handle.Name != "Open" || handle.Kind != types.SymbolKindFunction {
		t.Errorf("handle = %s (%s)", handle.Name, handle.Kind)
	}
	if handle.External {
		t.Error("Open is declared in the project")
	}
	if len(handle.Declarations) != 1 || handle.Declarations[0].Path != "/proj/app/a.go" {
		t.Errorf("declarations = %+v", handle.Declarations)
	}
	if !strings.HasPrefix(handle.QualifiedName, "app.") {
		t.Errorf("qualified name = %q, want module prefix", handle.QualifiedName)
	}
}

func TestSymbolAtExternalName(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/a.go", "package app\n\nvar x = make(map[string]int)\n")

	// "make" has no declaration anywhere in the project
	handle, found, err := p.SymbolAt(context.Background(), snap, 1, types.Position{Line: 3, Column: 9})
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("identifier should still resolve to an external handle")
	}
	if !handle.External || len(handle.Declarations) != 0 {
		t.Errorf("expected external handle, got %+v", handle)
	}
}

func TestSymbolAtNothingThere(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/a.go", "package app\n\n// comment line\n")

	_, found, err := p.SymbolAt(context.Background(), snap, 1, types.Position{Line: 3, Column: 4})
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("a comment should not resolve to a symbol")
	}
}

func TestRenameSplicesAllSites(t *testing.T) {
	p := newReadyProvider(t)
	docs := []snapshot.Document{
		snapshot.NewDocument(1, 1, "/proj/app/a.go", "package app\n\nfunc Open() {}\n"),
		snapshot.NewDocument(2, 1, "/proj/app/b.go", "package app\n\nvar f = Open\n"),
	}
	snap := snapshot.NewProject("/proj", []snapshot.Module{{ID: 1, Name: "app"}}, docs)

	symbol := types.SymbolHandle{Snapshot: snap.Version(), Name: "Open"}
	var sites []types.ReferenceSite
	for _, docID := range []types.DocumentID{1, 2} {
		occs, err := p.OccurrencesIn(context.Background(), snap, docID, symbol)
		if err != nil {
			t.Fatal(err)
		}
		for _, o := range occs {
			sites = append(sites, types.ReferenceSite{
				Document: o.Document, Path: o.Path,
				Line: o.Line, Column: o.Column, Length: o.Length,
			})
		}
	}
	if len(sites) != 2 {
		t.Fatalf("sites = %d, want 2", len(sites))
	}

	next, err := p.Rename(context.Background(), snap, symbol, sites, "Begin")
	if err != nil {
		t.Fatal(err)
	}

	a, _ := next.DocumentByPath("/proj/app/a.go")
	if !strings.Contains(a.Text, "func Begin() {}") {
		t.Errorf("a.go after rename: %q", a.Text)
	}
	b, _ := next.DocumentByPath("/proj/app/b.go")
	if !strings.Contains(b.Text, "var f = Begin") {
		t.Errorf("b.go after rename: %q", b.Text)
	}

	// The base snapshot still carries the old name
	origA, _ := snap.DocumentByPath("/proj/app/a.go")
	if !strings.Contains(origA.Text, "func Open() {}") {
		t.Error("rename mutated the base snapshot")
	}
}

func TestRenameRejectsMismatchedSite(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/a.go", "package app\n\nfunc Open() {}\n")

	symbol := types.SymbolHandle{Snapshot: snap.Version(), Name: "Open"}
	// Site points at "package", not "Open"
	sites := []types.ReferenceSite{{Document: 1, Path: "/proj/app/a.go", Line: 1, Column: 1, Length: 4}}

	if _, err := p.Rename(context.Background(), snap, symbol, sites, "Begin"); err == nil {
		t.Fatal("a site whose text no longer matches must fail the rename")
	}
}

func TestPythonMethodKinds(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/account.py", ""+
		"class Account:\n"+
		"    def __init__(self):\n"+
		"        self.balance = 0\n"+
		"\n"+
		"    def __del__(self):\n"+
		"        pass\n"+
		"\n"+
		"    def deposit(self, n):\n"+
		"        self.balance += n\n"+
		"\n"+
		"def helper():\n"+
		"    pass\n")

	decls, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]types.SymbolKind{}
	for _, d := range decls {
		byName[d.Name] = d.Kind
	}

	if byName["Account"] != types.SymbolKindClass {
		t.Errorf("Account kind = %s", byName["Account"])
	}
	if byName["__init__"] != types.SymbolKindConstructor {
		t.Errorf("__init__ kind = %s, want constructor", byName["__init__"])
	}
	if byName["__del__"] != types.SymbolKindDestructor {
		t.Errorf("__del__ kind = %s, want destructor", byName["__del__"])
	}
	if byName["deposit"] != types.SymbolKindMethod {
		t.Errorf("deposit kind = %s, want method", byName["deposit"])
	}
	if byName["helper"] != types.SymbolKindFunction {
		t.Errorf("helper kind = %s, want function", byName["helper"])
	}
}

func TestJavaScriptConstructor(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/web/site.js", ""+
		"class Widget {\n"+
		"  constructor() {\n"+
		"    this.count = 0;\n"+
		"  }\n"+
		"  render() {}\n"+
		"}\n")

	decls, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]types.SymbolKind{}
	for _, d := range decls {
		byName[d.Name] = d.Kind
	}
	if byName["Widget"] != types.SymbolKindClass {
		t.Errorf("Widget kind = %s", byName["Widget"])
	}
	if byName["constructor"] != types.SymbolKindConstructor {
		t.Errorf("constructor kind = %s, want constructor", byName["constructor"])
	}
	if byName["render"] != types.SymbolKindMethod {
		t.Errorf("render kind = %s, want method", byName["render"])
	}
}

func TestCSharpDeclarations(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/Account.cs", ""+
		"namespace Bank {\n"+
		"    class Account {\n"+
		"        public Account() {}\n"+
		"        public void Deposit(int n) {}\n"+
		"    }\n"+
		"}\n")

	decls, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}
	kinds := map[string][]types.SymbolKind{}
	for _, d := range decls {
		kinds[d.Name] = append(kinds[d.Name], d.Kind)
	}

	if len(kinds["Bank"]) == 0 || kinds["Bank"][0] != types.SymbolKindNamespace {
		t.Errorf("Bank kinds = %v", kinds["Bank"])
	}
	hasClass, hasCtor := false, false
	for _, k := range kinds["Account"] {
		if k == types.SymbolKindClass {
			hasClass = true
		}
		if k == types.SymbolKindConstructor {
			hasCtor = true
		}
	}
	if !hasClass || !hasCtor {
		t.Errorf("Account kinds = %v, want class and constructor", kinds["Account"])
	}
	if len(kinds["Deposit"]) == 0 || kinds["Deposit"][0] != types.SymbolKindMethod {
		t.Errorf("Deposit kinds = %v", kinds["Deposit"])
	}

	// Qualified names carry the scope path
	for _, d := range decls {
		if d.Name == "Deposit" && !strings.Contains(d.QualifiedName, "Bank.Account.Deposit") {
			t.Errorf("Deposit qualified name = %q", d.QualifiedName)
		}
	}
}

func TestUnsupportedLanguageIsInert(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/notes.md", "# heading\n\nsome prose\n")

	decls, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(decls) != 0 {
		t.Errorf("markdown should declare nothing, got %d", len(decls))
	}

	_, found, err := p.SymbolAt(context.Background(), snap, 1, types.Position{Line: 1, Column: 3})
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("markdown position should not resolve")
	}
}

func TestModelCacheServesRepeatLookups(t *testing.T) {
	p := newReadyProvider(t)
	snap := singleDocSnapshot("/proj/app/a.go", "package app\n\nfunc Open() {}\n")

	first, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.DeclarationsIn(context.Background(), snap, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatal("cached lookup disagrees with the first parse")
	}

	// A derived snapshot gets a fresh model
	next, _ := snap.WithDocumentText(1, "package app\n\nfunc Open() {}\n\nfunc Close() {}\n")
	updated, err := p.DeclarationsIn(context.Background(), next, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(updated) != 2 {
		t.Errorf("updated document should declare 2 functions, got %d", len(updated))
	}
}
