// Package ops exposes the engine's operations: rename, reference
// queries, symbol resolution, and project status. Each operation takes
// a request struct, runs the pipeline against the session's current
// snapshot, and returns a JSON-stable result record. The CLI and the
// MCP server are both thin shims over this package.
package ops

import (
	"path/filepath"

	"github.com/google/uuid"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/session"
	"github.com/standardbeagle/lcr/internal/types"
)

// Engine binds the operation surface to an open session.
type Engine struct {
	sess *session.Session
}

// NewEngine creates the operation surface over an open session.
func NewEngine(s *session.Session) *Engine {
	return &Engine{sess: s}
}

// Session returns the underlying session.
func (e *Engine) Session() *session.Session {
	return e.sess
}

// validatePath checks the shape of a file path argument before any
// snapshot lookup. Relative paths are rejected rather than guessed at.
func validatePath(path string) error {
	if path == "" {
		return lcrerrors.New(lcrerrors.CodeMissingField, "file path is required").
			WithRemediation("pass the absolute path of the file containing the symbol")
	}
	if !filepath.IsAbs(path) {
		return lcrerrors.New(lcrerrors.CodeRelativePath, "file path must be absolute").
			WithDetail("path", path).
			WithRemediation("resolve the path against the project root before calling")
	}
	return nil
}

func newOperationID() string {
	return uuid.NewString()
}

func recordOf(err error) *types.OperationError {
	return lcrerrors.AsRecord(err)
}

// failed builds the error-carrying result record for an operation that
// did not change anything.
func (e *Engine) failed(id string, preview bool, err error) types.OperationResult {
	return types.OperationResult{
		OperationID: id,
		Success:     false,
		Preview:     preview,
		Snapshot:    e.sess.Snapshot().Version(),
		Stale:       e.sess.Stale(),
		Error:       lcrerrors.AsRecord(err),
	}
}
