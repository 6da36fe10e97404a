// Package commit applies snapshot diffs to persistent storage under
// single-writer discipline. File operations run sequentially in path order so
// output lists are deterministic and a mid-sequence failure has a bounded,
// reportable blast radius; there is no multi-file rollback.
package commit

import (
	"context"
	"sort"
	"sync"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// Committer owns the session's current snapshot and is the only component
// allowed to replace it. One commit may be in flight per session; concurrent
// callers wait on the lock rather than racing.
type Committer struct {
	fs FileSystem

	mu      sync.Mutex
	current *snapshot.Project
}

// New creates a committer holding the initial snapshot.
func New(fsys FileSystem, initial *snapshot.Project) *Committer {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Committer{fs: fsys, current: initial}
}

// Current returns the held snapshot. Snapshots are immutable and safe to
// read concurrently.
func (c *Committer) Current() *snapshot.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// fileOp is one planned filesystem operation.
type fileOp struct {
	path string
	kind types.FileChangeKind
	text string
}

// Commit diffs next against base and applies the minimal file operations.
// base must still be the held snapshot; an edit computed against an older
// snapshot is rejected before anything is written. On a mid-sequence failure
// the result lists exactly the operations that completed; partial writes are
// retained, not rolled back.
func (c *Committer) Commit(ctx context.Context, base, next *snapshot.Project) types.CommitResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := types.CommitResult{
		FilesCreated:  []string{},
		FilesModified: []string{},
		FilesDeleted:  []string{},
	}

	if base != c.current {
		result.Error = lcrerrors.New(lcrerrors.CodeStaleSnapshot,
			"commit base is snapshot %d but session holds %d; recompute the change", base.Version(), c.current.Version())
		return result
	}

	d := snapshot.Compare(base, next)
	ops := make([]fileOp, 0, len(d.Added)+len(d.Changed)+len(d.Removed))
	for _, doc := range d.Added {
		ops = append(ops, fileOp{path: doc.Path, kind: types.FileCreated, text: doc.Text})
	}
	for _, doc := range d.Changed {
		ops = append(ops, fileOp{path: doc.Path, kind: types.FileModified, text: doc.Text})
	}
	for _, doc := range d.Removed {
		ops = append(ops, fileOp{path: doc.Path, kind: types.FileDeleted})
	}
	// Path order keeps write order predictable and output lists stable.
	sort.Slice(ops, func(i, j int) bool { return ops[i].path < ops[j].path })

	for _, op := range ops {
		// Cancellation is honored only between operations, never mid-write.
		if err := ctx.Err(); err != nil {
			result.Error = lcrerrors.Wrap(lcrerrors.CodeCancelled, err, "commit cancelled after %d of %d operations", result.FileCount(), len(ops))
			return result
		}
		if err := c.apply(op); err != nil {
			result.Error = err
			return result
		}
		switch op.kind {
		case types.FileCreated:
			result.FilesCreated = append(result.FilesCreated, op.path)
		case types.FileModified:
			result.FilesModified = append(result.FilesModified, op.path)
		case types.FileDeleted:
			result.FilesDeleted = append(result.FilesDeleted, op.path)
		}
	}

	c.current = next
	result.Success = true
	return result
}

func (c *Committer) apply(op fileOp) error {
	switch op.kind {
	case types.FileDeleted:
		if err := c.fs.Remove(op.path); err != nil {
			return lcrerrors.Wrap(lcrerrors.CodeDeleteFailed, err, "failed to delete %s", op.path)
		}
	case types.FileCreated:
		if err := ensureParent(c.fs, op.path); err != nil {
			return lcrerrors.Wrap(lcrerrors.CodeWriteFailed, err, "failed to create directory for %s", op.path)
		}
		fallthrough
	default:
		if err := c.fs.WriteFile(op.path, []byte(op.text), 0644); err != nil {
			return lcrerrors.Wrap(lcrerrors.CodeWriteFailed, err, "failed to write %s", op.path)
		}
	}
	return nil
}

// RenameFile performs the best-effort physical file move that follows a
// committed rename, swapping the held snapshot to the moved path on success.
// The caller treats a failure here as a warning: the committed text edits are
// the source of truth and remain consistent either way.
func (c *Committer) RenameFile(oldPath, newPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.current.DocumentByPath(oldPath)
	if !ok {
		return lcrerrors.New(lcrerrors.CodeFileNotFound, "document %s not in current snapshot", oldPath)
	}
	if err := c.fs.Rename(oldPath, newPath); err != nil {
		return lcrerrors.Wrap(lcrerrors.CodeWriteFailed, err, "failed to move %s to %s", oldPath, newPath)
	}
	c.current, _ = c.current.WithDocumentPath(doc.ID, newPath)
	return nil
}

// Replace swaps the held snapshot without touching storage. Used when the
// session reloads after external edits.
func (c *Committer) Replace(next *snapshot.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = next
}
