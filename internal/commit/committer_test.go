package commit

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/snapshot"
)

// memFS records operations and fails on configured paths.
type memFS struct {
	files    map[string]string
	writes   []string
	failPath string
}

func newMemFS() *memFS {
	return &memFS{files: map[string]string{}}
}

func (m *memFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if path == m.failPath {
		return fmt.Errorf("injected write failure for %s", path)
	}
	m.files[path] = string(data)
	m.writes = append(m.writes, path)
	return nil
}

func (m *memFS) Remove(path string) error {
	if path == m.failPath {
		return fmt.Errorf("injected delete failure for %s", path)
	}
	delete(m.files, path)
	return nil
}

func (m *memFS) Rename(oldPath, newPath string) error {
	if oldPath == m.failPath {
		return fmt.Errorf("injected rename failure for %s", oldPath)
	}
	m.files[newPath] = m.files[oldPath]
	delete(m.files, oldPath)
	return nil
}

func (m *memFS) MkdirAll(path string, perm fs.FileMode) error { return nil }

func baseSnapshot() *snapshot.Project {
	docs := []snapshot.Document{
		snapshot.NewDocument(1, 1, "/proj/app/a.go", "package app\n\nvar A = 1\n"),
		snapshot.NewDocument(2, 1, "/proj/app/b.go", "package app\n\nvar B = A\n"),
		snapshot.NewDocument(3, 1, "/proj/app/c.go", "package app\n\nvar C = A\n"),
	}
	return snapshot.NewProject("/proj", []snapshot.Module{{ID: 1, Name: "app"}}, docs)
}

func renameAtoTotal(base *snapshot.Project) *snapshot.Project {
	next, _ := base.WithDocumentText(1, "package app\n\nvar Total = 1\n")
	next, _ = next.WithDocumentText(2, "package app\n\nvar B = Total\n")
	next, _ = next.WithDocumentText(3, "package app\n\nvar C = Total\n")
	return next
}

func TestCommitWritesChangedFilesInPathOrder(t *testing.T) {
	fsys := newMemFS()
	base := baseSnapshot()
	c := New(fsys, base)

	result := c.Commit(context.Background(), base, renameAtoTotal(base))
	if !result.Success {
		t.Fatalf("commit failed: %v", result.Error)
	}

	want := []string{"/proj/app/a.go", "/proj/app/b.go", "/proj/app/c.go"}
	if len(result.FilesModified) != 3 {
		t.Fatalf("modified = %v", result.FilesModified)
	}
	for i, p := range want {
		if result.FilesModified[i] != p {
			t.Errorf("modified[%d] = %s, want %s", i, result.FilesModified[i], p)
		}
		if fsys.writes[i] != p {
			t.Errorf("write order[%d] = %s, want %s", i, fsys.writes[i], p)
		}
	}
	if fsys.files["/proj/app/a.go"] != "package app\n\nvar Total = 1\n" {
		t.Errorf("written content = %q", fsys.files["/proj/app/a.go"])
	}

	// The committer now holds the new snapshot
	if c.Current().Version() <= base.Version() {
		t.Error("current snapshot not advanced after commit")
	}
}

func TestCommitMidSequenceFailureKeepsPartialLists(t *testing.T) {
	fsys := newMemFS()
	fsys.failPath = "/proj/app/c.go"
	base := baseSnapshot()
	c := New(fsys, base)

	result := c.Commit(context.Background(), base, renameAtoTotal(base))

	if result.Success {
		t.Fatal("commit should fail on the injected error")
	}
	if !lcrerrors.IsCode(result.Error, lcrerrors.CodeWriteFailed) {
		t.Fatalf("error = %v, want write_failed", result.Error)
	}
	// Exactly the two completed writes are listed; nothing is rolled back
	if len(result.FilesModified) != 2 ||
		result.FilesModified[0] != "/proj/app/a.go" ||
		result.FilesModified[1] != "/proj/app/b.go" {
		t.Errorf("modified = %v, want the first two paths", result.FilesModified)
	}
	if fsys.files["/proj/app/a.go"] != "package app\n\nvar Total = 1\n" {
		t.Error("completed write should be retained")
	}

	// The held snapshot stays at base after a failed commit
	if c.Current() != base {
		t.Error("failed commit must not advance the held snapshot")
	}
}

func TestCommitRejectsStaleBase(t *testing.T) {
	fsys := newMemFS()
	base := baseSnapshot()
	c := New(fsys, base)

	// First commit advances the held snapshot
	next := renameAtoTotal(base)
	if result := c.Commit(context.Background(), base, next); !result.Success {
		t.Fatalf("setup commit failed: %v", result.Error)
	}

	// A second edit computed against the old base is rejected untouched
	stale, _ := base.WithDocumentText(1, "package app\n\nvar X = 1\n")
	result := c.Commit(context.Background(), base, stale)
	if result.Success {
		t.Fatal("stale base should be rejected")
	}
	if !lcrerrors.IsCode(result.Error, lcrerrors.CodeStaleSnapshot) {
		t.Fatalf("error = %v, want stale_snapshot", result.Error)
	}
	if result.FileCount() != 0 {
		t.Errorf("stale rejection wrote %d files", result.FileCount())
	}
}

func TestCommitHandlesCreateAndDelete(t *testing.T) {
	fsys := newMemFS()
	base := baseSnapshot()
	c := New(fsys, base)

	next, _ := base.AddDocument(1, "/proj/app/new.go", "package app\n")
	next = next.WithoutDocument(3)

	result := c.Commit(context.Background(), base, next)
	if !result.Success {
		t.Fatalf("commit failed: %v", result.Error)
	}
	if len(result.FilesCreated) != 1 || result.FilesCreated[0] != "/proj/app/new.go" {
		t.Errorf("created = %v", result.FilesCreated)
	}
	if len(result.FilesDeleted) != 1 || result.FilesDeleted[0] != "/proj/app/c.go" {
		t.Errorf("deleted = %v", result.FilesDeleted)
	}
	if _, exists := fsys.files["/proj/app/c.go"]; exists {
		t.Error("deleted file still present")
	}
}

func TestCommitCancelledBeforeAnyOperation(t *testing.T) {
	fsys := newMemFS()
	base := baseSnapshot()
	c := New(fsys, base)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Commit(ctx, base, renameAtoTotal(base))
	if result.Success {
		t.Fatal("cancelled commit should fail")
	}
	if !lcrerrors.IsCode(result.Error, lcrerrors.CodeCancelled) {
		t.Fatalf("error = %v, want operation_cancelled", result.Error)
	}
	if result.FileCount() != 0 || len(fsys.writes) != 0 {
		t.Error("cancellation before the first boundary must write nothing")
	}
}

func TestCommitEmptyDiffSucceeds(t *testing.T) {
	fsys := newMemFS()
	base := baseSnapshot()
	c := New(fsys, base)

	result := c.Commit(context.Background(), base, base)
	if !result.Success {
		t.Fatalf("no-op commit failed: %v", result.Error)
	}
	if result.FileCount() != 0 {
		t.Errorf("no-op commit touched %d files", result.FileCount())
	}
}

func TestRenameFileMovesDocumentAndSnapshotPath(t *testing.T) {
	fsys := newMemFS()
	base := baseSnapshot()
	fsys.files["/proj/app/a.go"] = "package app\n\nvar A = 1\n"
	c := New(fsys, base)

	if err := c.RenameFile("/proj/app/a.go", "/proj/app/total.go"); err != nil {
		t.Fatal(err)
	}

	if _, exists := fsys.files["/proj/app/a.go"]; exists {
		t.Error("old file still present after move")
	}
	if _, exists := fsys.files["/proj/app/total.go"]; !exists {
		t.Error("new file missing after move")
	}
	if _, ok := c.Current().DocumentByPath("/proj/app/total.go"); !ok {
		t.Error("held snapshot should track the moved path")
	}
}

func TestRenameFileFailureLeavesSnapshotUntouched(t *testing.T) {
	fsys := newMemFS()
	fsys.failPath = "/proj/app/a.go"
	base := baseSnapshot()
	c := New(fsys, base)

	err := c.RenameFile("/proj/app/a.go", "/proj/app/total.go")
	if !lcrerrors.IsCode(err, lcrerrors.CodeWriteFailed) {
		t.Fatalf("error = %v, want write_failed", err)
	}
	if _, ok := c.Current().DocumentByPath("/proj/app/a.go"); !ok {
		t.Error("failed move must keep the old snapshot path")
	}
}

func TestRenameFileUnknownPath(t *testing.T) {
	c := New(newMemFS(), baseSnapshot())
	err := c.RenameFile("/proj/app/missing.go", "/proj/app/x.go")
	if !lcrerrors.IsCode(err, lcrerrors.CodeFileNotFound) {
		t.Fatalf("error = %v, want file_not_found", err)
	}
}

func TestOSFileSystemRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fsys := OSFileSystem{}

	path := filepath.Join(dir, "sub", "f.txt")
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := fsys.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	moved := filepath.Join(dir, "sub", "g.txt")
	if err := fsys.Rename(path, moved); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(moved)
	if err != nil || string(data) != "hello" {
		t.Fatalf("read after move: %q, %v", data, err)
	}
	if err := fsys.Remove(moved); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(moved); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
}
