// Package references enumerates every use of a resolved symbol across a
// snapshot and shapes the result into the read/write taxonomy the rest of
// the engine depends on. Declaration sites are carried on the symbol handle
// and stay out of the reference set, so the total matches what a user means
// by "references". The tracker owns deduplication; the provider only
// reports raw occurrences.
package references

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	lcrerrors "github.com/standardbeagle/lcr/internal/errors"
	"github.com/standardbeagle/lcr/internal/provider"
	"github.com/standardbeagle/lcr/internal/snapshot"
	"github.com/standardbeagle/lcr/internal/types"
)

// scanConcurrency bounds the parallel per-document occurrence scans.
const scanConcurrency = 8

// Tracker finds all reference sites for a symbol.
type Tracker struct {
	provider provider.Provider
}

// New creates a tracker.
func New(p provider.Provider) *Tracker {
	return &Tracker{provider: p}
}

// FindAll enumerates every use site of the symbol in the snapshot. Pure
// declaration sites are excluded; they are listed on the handle itself and
// rewritten from there. The symbol must have been resolved against this
// exact snapshot; the total count is the authoritative "how many references
// updated" figure, so computing it from any other snapshot would be unsound.
func (t *Tracker) FindAll(ctx context.Context, snap *snapshot.Project, symbol types.SymbolHandle) (types.ReferenceSet, error) {
	if err := ctx.Err(); err != nil {
		return types.ReferenceSet{}, lcrerrors.Wrap(lcrerrors.CodeCancelled, err, "reference search cancelled")
	}
	if symbol.Snapshot != snap.Version() {
		return types.ReferenceSet{}, lcrerrors.New(lcrerrors.CodeStaleSnapshot,
			"symbol %q was resolved against snapshot %d but snapshot is now %d; re-resolve",
			symbol.Name, symbol.Snapshot, snap.Version())
	}

	docs := snap.Documents()
	var (
		mu  sync.Mutex
		all []provider.Occurrence
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for _, doc := range docs {
		g.Go(func() error {
			occs, err := t.provider.OccurrencesIn(gctx, snap, doc.ID, symbol)
			if err != nil {
				return err
			}
			if len(occs) == 0 {
				return nil
			}
			mu.Lock()
			all = append(all, occs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return types.ReferenceSet{}, lcrerrors.Wrap(lcrerrors.CodeCancelled, ctx.Err(), "reference search cancelled")
		}
		return types.ReferenceSet{}, err
	}

	sites := shape(all)
	return types.ReferenceSet{
		Symbol:     symbol,
		Snapshot:   snap.Version(),
		Sites:      sites,
		TotalCount: len(sites),
	}, nil
}

// shape drops declaration occurrences, deduplicates the rest by (document,
// line, column) and maps them onto the reference taxonomy, sorted by (path,
// line, column) so results are deterministic.
func shape(occs []provider.Occurrence) []types.ReferenceSite {
	type key struct {
		doc  types.DocumentID
		line int
		col  int
	}
	byPos := make(map[key]types.ReferenceSite, len(occs))
	for _, o := range occs {
		if o.IsDefinition {
			continue
		}
		k := key{o.Document, o.Line, o.Column}
		site := types.ReferenceSite{
			Document: o.Document,
			Path:     o.Path,
			Line:     o.Line,
			Column:   o.Column,
			Length:   o.Length,
			Kind:     classify(o),
		}
		// One logical use spanning nested constructs must not double-count;
		// the strongest classification wins.
		if existing, dup := byPos[k]; dup && existing.Kind >= site.Kind {
			continue
		}
		byPos[k] = site
	}

	sites := make([]types.ReferenceSite, 0, len(byPos))
	for _, s := range byPos {
		sites = append(sites, s)
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Path != sites[j].Path {
			return sites[i].Path < sites[j].Path
		}
		if sites[i].Line != sites[j].Line {
			return sites[i].Line < sites[j].Line
		}
		return sites[i].Column < sites[j].Column
	})
	return sites
}

func classify(o provider.Occurrence) types.ReferenceKind {
	if o.IsWrite {
		return types.ReferenceWrite
	}
	return types.ReferenceRead
}
