package ops

import (
	"context"

	"github.com/standardbeagle/lcr/internal/change"
	"github.com/standardbeagle/lcr/internal/debug"
	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/resolver"
	"github.com/standardbeagle/lcr/internal/types"
	"github.com/standardbeagle/lcr/pkg/pathutil"
)

// RenameRequest describes a rename operation. The symbol is located
// either by position (Line/Column) or by Symbol name within the file.
type RenameRequest struct {
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
	NewName string `json:"new_name"`
	// Preview computes and renders the change without writing anything.
	Preview bool `json:"preview,omitempty"`
	// RenameFile also moves the declaring file when its name matches the
	// old symbol name. The move happens after the commit succeeds.
	RenameFile bool `json:"rename_file,omitempty"`
}

// Rename runs the full pipeline: validate the request shape, resolve
// the target, enumerate references, compute the change, then either
// return the preview or commit it. Cancellation between commit file
// operations leaves already-written files in place, reported in the
// result's file lists.
func (e *Engine) Rename(ctx context.Context, req RenameRequest) types.OperationResult {
	id := newOperationID()

	if err := validatePath(req.Path); err != nil {
		return e.failed(id, req.Preview, err)
	}
	if req.NewName == "" {
		return e.failed(id, req.Preview, lcrerrors.New(lcrerrors.CodeMissingField,
			"new_name is required").WithRemediation("pass the replacement identifier"))
	}
	// Identifier shape is language-independent, so an illegal name fails
	// here, before any resolution or reference scan is paid for.
	if !change.ValidIdentifier(req.NewName) {
		return e.failed(id, req.Preview, lcrerrors.New(lcrerrors.CodeInvalidIdentifier,
			"%q is not a legal identifier", req.NewName))
	}

	base := e.sess.Snapshot()

	symbol, err := e.sess.Resolver().Resolve(ctx, base, resolver.Locator{
		Path:   req.Path,
		Line:   req.Line,
		Column: req.Column,
		Name:   req.Symbol,
	})
	if err != nil {
		return e.failed(id, req.Preview, err)
	}

	refs, err := e.sess.Tracker().FindAll(ctx, base, symbol)
	if err != nil {
		return e.failed(id, req.Preview, err)
	}

	computed, err := e.sess.Computer().Compute(ctx, base, symbol, refs, change.Spec{
		Kind:       change.EditRename,
		NewName:    req.NewName,
		RenameFile: req.RenameFile,
	}, req.Preview)
	if err != nil {
		res := e.failed(id, req.Preview, err)
		res.ReferenceCount = refs.TotalCount
		return res
	}

	if req.Preview {
		return types.OperationResult{
			OperationID:    id,
			Success:        true,
			Preview:        true,
			Snapshot:       base.Version(),
			Stale:          e.sess.Stale(),
			ReferenceCount: refs.TotalCount,
			Changes:        computed.Pending,
		}
	}

	root := e.sess.Config().Project.Root
	commitRes := e.sess.Committer().Commit(ctx, base, computed.Snapshot)

	result := types.OperationResult{
		OperationID:    id,
		Success:        commitRes.Success,
		Snapshot:       e.sess.Snapshot().Version(),
		Stale:          e.sess.Stale(),
		ReferenceCount: refs.TotalCount,
		FilesCreated:   pathutil.ToRelativePaths(commitRes.FilesCreated, root),
		FilesModified:  pathutil.ToRelativePaths(commitRes.FilesModified, root),
		FilesDeleted:   pathutil.ToRelativePaths(commitRes.FilesDeleted, root),
	}
	if commitRes.Error != nil {
		result.Error = lcrerrors.AsRecord(commitRes.Error)
		return result
	}

	if computed.FileRename != nil {
		fr := computed.FileRename
		if err := e.sess.Committer().RenameFile(fr.OldPath, fr.NewPath); err != nil {
			// The rename itself committed; a failed file move downgrades
			// to a warning rather than failing the operation.
			result.Warning = "symbol renamed but file move failed: " + err.Error()
			debug.LogCommit("file move %s -> %s failed: %v\n", fr.OldPath, fr.NewPath, err)
		}
	}

	return result
}
