package queryeval

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/brightloom/filescan/internal/config"
	"github.com/brightloom/filescan/internal/enumerator"
	"github.com/brightloom/filescan/internal/ferrors"
	"github.com/brightloom/filescan/internal/index"
	"github.com/brightloom/filescan/internal/simdmatch"
	"github.com/brightloom/filescan/pkg/pathutil"
)

// cancelCheckBatch is how often (in candidates examined) the evaluator
// re-checks ctx for cancellation, per §4.8's "every ≈25-100 items".
const cancelCheckBatch = 64

// minIndexCountForTrust is the floor below which the evaluator distrusts
// the index outright and goes straight to a live scan, per §4.8's
// fallback policy — an index this small is cheaper to just rescan than
// to reason about coverage for.
const minIndexCountForTrust = 10

// Evaluator plans and runs SearchQuery requests against a CompositeIndex,
// falling back to a live filesystem scan per §4.8's coverage policy.
type Evaluator struct {
	idx  *index.CompositeIndex
	simd *simdmatch.Matcher
	opts config.IndexingOptions
}

// New builds an Evaluator over idx, using opts for default search
// locations and the live-fallback traversal's filtering rules.
func New(idx *index.CompositeIndex, opts config.IndexingOptions) *Evaluator {
	return &Evaluator{idx: idx, simd: simdmatch.New(), opts: opts}
}

// Evaluate plans and begins executing q, returning immediately with a
// Result whose Matches channel streams results as they are found.
func (e *Evaluator) Evaluate(ctx context.Context, q SearchQuery) (*Result, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	matcher, err := buildTextMatcher(q, e.simd)
	if err != nil {
		return nil, ferrors.NewQueryError("search_text", err.Error(), err)
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if q.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, q.Timeout)
	}

	out := make(chan Match, 64)
	count := &atomic.Int64{}
	started := time.Now()

	go func() {
		defer close(out)
		if cancel != nil {
			defer cancel()
		}

		seen := make(map[string]struct{})
		e.runIndexed(runCtx, q, matcher, out, count, seen)

		if runCtx.Err() == nil {
			if fallback, roots := e.shouldFallback(q); fallback {
				e.runFallback(runCtx, q, roots, matcher, out, count, seen)
			}
		}
	}()

	return &Result{Matches: out, count: count, started: started}, nil
}

func (e *Evaluator) runIndexed(ctx context.Context, q SearchQuery, tm textMatcher, out chan<- Match, count *atomic.Int64, seen map[string]struct{}) {
	candidates := e.idx.QueryCandidates(index.Candidates{
		BasePath:              q.BasePath,
		IncludeSubdirectories: q.IncludeSubdirectories,
		ExtensionFilter:       q.ExtensionFilter,
		SearchLocations:       q.SearchLocations,
	})

	for i, cand := range candidates {
		if i%cancelCheckBatch == 0 && ctx.Err() != nil {
			return
		}
		if q.MaxResults > 0 && int(count.Load()) >= q.MaxResults {
			return
		}

		m := toMatch(cand.FullPath, cand.Record)
		if !q.accepts(m, tm) {
			continue
		}

		seen[pathutil.FoldKey(m.FullPath)] = struct{}{}

		select {
		case out <- m:
			count.Add(1)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Evaluator) runFallback(ctx context.Context, q SearchQuery, roots []string, tm textMatcher, out chan<- Match, count *atomic.Int64, seen map[string]struct{}) {
	entries := enumerator.Standard(ctx, roots, e.opts)

	i := 0
	for entry := range entries {
		i++
		if i%cancelCheckBatch == 0 && ctx.Err() != nil {
			return
		}
		if q.MaxResults > 0 && int(count.Load()) >= q.MaxResults {
			return
		}

		key := pathutil.FoldKey(entry.FullPath)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		m := matchFromEntry(entry)
		if !q.accepts(m, tm) {
			continue
		}

		select {
		case out <- m:
			count.Add(1)
		case <-ctx.Done():
			return
		}
	}
}

// shouldFallback implements §4.8's fallback policy and returns the roots
// a live scan should be restricted to when one is needed.
func (e *Evaluator) shouldFallback(q SearchQuery) (bool, []string) {
	roots := q.roots(e.opts)

	if e.idx.Len() < minIndexCountForTrust {
		return true, roots
	}

	var uncovered []string
	for _, root := range roots {
		if !e.idx.ContainsPath(root) {
			uncovered = append(uncovered, root)
		}
	}
	if len(uncovered) > 0 {
		return true, uncovered
	}

	return false, nil
}

// roots resolves the effective search roots: base_path takes precedence
// over search_locations, which takes precedence over the engine's
// configured default locations.
func (q SearchQuery) roots(opts config.IndexingOptions) []string {
	if q.BasePath != "" {
		return []string{q.BasePath}
	}
	if len(q.SearchLocations) > 0 {
		return q.SearchLocations
	}
	return opts.Locations
}

func matchFromEntry(e enumerator.Entry) Match {
	dir, name := pathutil.SplitDirName(e.FullPath)
	return Match{
		FullPath:      e.FullPath,
		Name:          name,
		DirectoryPath: dir,
		Extension:     pathutil.Extension(name),
		Size:          e.Size,
		CreatedTime:   index.TimeFromTicks(e.CreatedTicks),
		ModifiedTime:  index.TimeFromTicks(e.ModifiedTicks),
		AccessedTime:  index.TimeFromTicks(e.AccessedTicks),
		Attributes:    e.Attributes,
		VolumeTag:     e.VolumeTag,
		FileRef:       e.FileRef,
		IsDirectory:   e.IsDirectory(),
		IsHidden:      e.Attributes&index.AttrHidden != 0,
		IsSystem:      e.Attributes&index.AttrSystem != 0,
	}
}
