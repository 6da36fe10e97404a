package ops

import (
	"context"

	"github.com/standardbeagle/lcr/internal/resolver"
	"github.com/standardbeagle/lcr/internal/types"
)

// QueryRequest locates a symbol for a read-only query.
type QueryRequest struct {
	Path   string `json:"path"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}

// ResolveResult is the outcome of a resolve query.
type ResolveResult struct {
	OperationID string                `json:"operation_id"`
	Success     bool                  `json:"success"`
	Snapshot    types.SnapshotVersion `json:"snapshot"`
	Stale       bool                  `json:"stale,omitempty"`
	Symbol      *types.SymbolHandle   `json:"symbol,omitempty"`
	Error       *types.OperationError `json:"error,omitempty"`
}

// ReferencesResult is the outcome of a reference query.
type ReferencesResult struct {
	OperationID string                `json:"operation_id"`
	Success     bool                  `json:"success"`
	Snapshot    types.SnapshotVersion `json:"snapshot"`
	Stale       bool                  `json:"stale,omitempty"`
	Symbol      *types.SymbolHandle   `json:"symbol,omitempty"`
	Sites       []types.ReferenceSite `json:"sites,omitempty"`
	TotalCount  int                   `json:"total_count"`
	Error       *types.OperationError `json:"error,omitempty"`
}

// StatusResult summarizes the open project.
type StatusResult struct {
	Root      string                `json:"root"`
	Snapshot  types.SnapshotVersion `json:"snapshot"`
	Documents int                   `json:"documents"`
	Modules   int                   `json:"modules"`
	Stale     bool                  `json:"stale"`
}

// Resolve locates a symbol without changing anything. Ambiguity and
// near-miss information surfaces through the structured error record.
func (e *Engine) Resolve(ctx context.Context, req QueryRequest) ResolveResult {
	id := newOperationID()
	snap := e.sess.Snapshot()

	res := ResolveResult{
		OperationID: id,
		Snapshot:    snap.Version(),
		Stale:       e.sess.Stale(),
	}

	symbol, err := e.resolve(ctx, req)
	if err != nil {
		res.Error = recordOf(err)
		return res
	}
	res.Success = true
	res.Symbol = &symbol
	return res
}

// References resolves the symbol and enumerates every site that refers
// to it across the snapshot.
func (e *Engine) References(ctx context.Context, req QueryRequest) ReferencesResult {
	id := newOperationID()
	snap := e.sess.Snapshot()

	res := ReferencesResult{
		OperationID: id,
		Snapshot:    snap.Version(),
		Stale:       e.sess.Stale(),
	}

	symbol, err := e.resolve(ctx, req)
	if err != nil {
		res.Error = recordOf(err)
		return res
	}

	refs, err := e.sess.Tracker().FindAll(ctx, snap, symbol)
	if err != nil {
		res.Error = recordOf(err)
		return res
	}

	res.Success = true
	res.Symbol = &symbol
	res.Sites = refs.Sites
	res.TotalCount = refs.TotalCount
	return res
}

// Status reports project shape and snapshot state.
func (e *Engine) Status() StatusResult {
	snap := e.sess.Snapshot()
	return StatusResult{
		Root:      snap.Root(),
		Snapshot:  snap.Version(),
		Documents: snap.DocumentCount(),
		Modules:   len(snap.Modules()),
		Stale:     e.sess.Stale(),
	}
}

func (e *Engine) resolve(ctx context.Context, req QueryRequest) (types.SymbolHandle, error) {
	if err := validatePath(req.Path); err != nil {
		return types.SymbolHandle{}, err
	}
	return e.sess.Resolver().Resolve(ctx, e.sess.Snapshot(), resolver.Locator{
		Path:   req.Path,
		Line:   req.Line,
		Column: req.Column,
		Name:   req.Symbol,
	})
}
