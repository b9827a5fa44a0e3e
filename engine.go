// Package filescan is an embeddable, in-process local file search engine:
// metadata-only (name, path, extension, size, time) search over an
// in-memory index built from a volume enumeration pass and kept current
// by a filesystem change observer.
package filescan

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brightloom/filescan/internal/config"
	"github.com/brightloom/filescan/internal/enumerator"
	"github.com/brightloom/filescan/internal/index"
	"github.com/brightloom/filescan/internal/observer"
	"github.com/brightloom/filescan/internal/queryeval"
	"github.com/brightloom/filescan/internal/stringpool"
	"github.com/brightloom/filescan/pkg/pathutil"
	"golang.org/x/sync/errgroup"
)

// Re-exported so embedders only need to import this one package for the
// common path.
type (
	SearchQuery  = queryeval.SearchQuery
	SearchResult = queryeval.Result
	Match        = queryeval.Match
)

// NewTextQuery builds a SearchQuery matching text against each entry's
// full path, per queryeval.NewTextQuery.
func NewTextQuery(text string) SearchQuery { return queryeval.NewTextQuery(text) }

// SearchEngine orchestrates enumeration, indexing, monitoring, and
// querying. The zero value is not usable; use New.
type SearchEngine struct {
	mu    sync.Mutex
	state State
	opts  config.IndexingOptions

	idx       *index.CompositeIndex
	pool      *stringpool.Set
	evaluator *queryeval.Evaluator
	obs       *observer.Observer

	cancelRun context.CancelFunc
	runWG     sync.WaitGroup

	totalFiles       atomic.Int64
	totalDirectories atomic.Int64
	internAttempts   atomic.Int64

	lastIndexDuration      atomic.Int64 // nanoseconds
	indexingFilesPerSecond atomic.Value // float64
}

// New creates an idle SearchEngine. Call StartIndexing to begin building
// the index.
func New() *SearchEngine {
	e := &SearchEngine{
		idx:  index.New(),
		pool: stringpool.NewSet(),
	}
	e.evaluator = queryeval.New(e.idx, config.Default())
	e.indexingFilesPerSecond.Store(float64(0))
	return e
}

// StartIndexing begins background enumeration over opts.Locations.
// Idempotent: a second call while already indexing or monitoring is a
// no-op that returns nil.
func (e *SearchEngine) StartIndexing(ctx context.Context, opts config.IndexingOptions) error {
	e.mu.Lock()
	if e.state == Indexing || e.state == Monitoring {
		e.mu.Unlock()
		return nil
	}

	config.ApplySmartDefaults(&opts)
	if err := config.Validate(opts); err != nil {
		e.mu.Unlock()
		return err
	}

	e.opts = opts
	e.evaluator = queryeval.New(e.idx, opts)
	e.state = Indexing

	runCtx, cancel := context.WithCancel(ctx)
	e.cancelRun = cancel
	e.mu.Unlock()

	e.runWG.Add(1)
	go e.run(runCtx, opts)

	return nil
}

// StopIndexing cancels any in-progress enumeration and stops the change
// observer, returning to Idle. It blocks until both have fully stopped.
func (e *SearchEngine) StopIndexing() {
	e.mu.Lock()
	cancel := e.cancelRun
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.runWG.Wait()

	e.mu.Lock()
	e.state = Idle
	e.cancelRun = nil
	e.mu.Unlock()
}

// run performs one full enumeration pass, then — if monitoring is
// enabled — transitions to Monitoring and applies observer events until
// ctx is cancelled.
func (e *SearchEngine) run(ctx context.Context, opts config.IndexingOptions) {
	defer e.runWG.Done()

	indexCtx := ctx
	if opts.IndexingTimeoutS > 0 {
		var cancel context.CancelFunc
		indexCtx, cancel = context.WithTimeout(ctx, time.Duration(opts.IndexingTimeoutS)*time.Second)
		defer cancel()
	}

	started := time.Now()
	n := e.enumerateAndIndex(indexCtx, opts, opts.Locations)
	elapsed := time.Since(started)

	e.lastIndexDuration.Store(int64(elapsed))
	if elapsed > 0 {
		e.indexingFilesPerSecond.Store(float64(n) / elapsed.Seconds())
	}

	if ctx.Err() != nil {
		return
	}

	if !opts.EnableMonitoring {
		e.mu.Lock()
		e.state = Idle
		e.mu.Unlock()
		return
	}

	obs, err := observer.Monitor(ctx, opts.Locations, opts)
	if err != nil {
		e.mu.Lock()
		e.state = Idle
		e.mu.Unlock()
		return
	}

	e.mu.Lock()
	e.obs = obs
	e.state = Monitoring
	e.mu.Unlock()

	e.applyObserverEvents(ctx, opts, obs)
	obs.Stop()
}

// enumerateAndIndex runs the Standard walker over every location and, when
// MFT is eligible, merges in the MFT stream of each volume it can open;
// the Standard walk is not skipped for locations MFT also covers (records
// for the same path overwrite each other in the index). Entries are
// streamed through the string pool into the composite index in
// opts.BatchSize batches, and the number of entries indexed is returned.
func (e *SearchEngine) enumerateAndIndex(ctx context.Context, opts config.IndexingOptions, locations []string) int64 {
	entries := enumerator.Standard(ctx, locations, opts)
	if enumerator.MFTEligible(opts) {
		entries = e.mergeMFT(ctx, opts, locations, entries)
	}

	var n int64
	batch := make([]index.BatchItem, 0, opts.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		e.idx.AddBatch(batch)
		batch = batch[:0]
	}

	for entry := range entries {
		batch = append(batch, e.toBatchItem(entry))
		n++
		if entry.IsDirectory() {
			e.totalDirectories.Add(1)
		} else {
			e.totalFiles.Add(1)
		}
		if len(batch) >= opts.BatchSize {
			flush()
		}
	}
	flush()

	return n
}

// mergeMFT runs the MFT fast path for each location whose volume opens,
// alongside the Standard stream passed in as fallback (which already
// covers every location), fanning both into one channel. A location whose
// MFT open fails is skipped without logging.
func (e *SearchEngine) mergeMFT(ctx context.Context, opts config.IndexingOptions, locations []string, fallback <-chan enumerator.Entry) <-chan enumerator.Entry {
	out := make(chan enumerator.Entry, 256)

	g, gctx := errgroup.WithContext(ctx)
	for _, loc := range locations {
		mftEntries, err := enumerator.MFT(loc, opts)
		if err != nil {
			continue
		}
		g.Go(func() error {
			for entry := range mftEntries {
				select {
				case out <- entry:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	go func() {
		for entry := range fallback {
			select {
			case out <- entry:
			case <-ctx.Done():
			}
		}
		_ = g.Wait()
		close(out)
	}()

	return out
}

func (e *SearchEngine) toBatchItem(entry enumerator.Entry) index.BatchItem {
	directoryID, nameID, extensionID := e.pool.InternPathComponents(entry.FullPath)
	e.internAttempts.Add(3)

	dir, name := pathutil.SplitDirName(entry.FullPath)
	ext := pathutil.Extension(name)

	return index.BatchItem{
		FullPath:  entry.FullPath,
		Directory: dir,
		Extension: ext,
		Record: index.Record{
			NameID:        nameID,
			DirectoryID:   directoryID,
			ExtensionID:   extensionID,
			Size:          entry.Size,
			CreatedTicks:  entry.CreatedTicks,
			ModifiedTicks: entry.ModifiedTicks,
			AccessedTicks: entry.AccessedTicks,
			Attributes:    entry.Attributes,
			VolumeTag:     entry.VolumeTag,
			FileRef:       entry.FileRef,
		},
	}
}

// applyObserverEvents consumes obs until ctx is cancelled, applying each
// event to the index. The observer owns no index itself; this is the
// orchestrator's responsibility per the change-observer contract.
func (e *SearchEngine) applyObserverEvents(ctx context.Context, opts config.IndexingOptions, obs *observer.Observer) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-obs.Events():
			if !ok {
				return
			}
			e.applyEvent(ctx, opts, ev)
		}
	}
}

func (e *SearchEngine) applyEvent(ctx context.Context, opts config.IndexingOptions, ev observer.ChangeEvent) {
	switch ev.Type {
	case observer.Deleted:
		e.idx.Remove(ev.Path)
	case observer.Created, observer.Modified:
		entry, ok := statEntry(ev.Path)
		if !ok {
			return
		}
		item := e.toBatchItem(entry)
		e.idx.Add(item.FullPath, item.Record, item.Directory, item.Extension)
	case observer.Resync:
		e.enumerateAndIndex(ctx, opts, []string{ev.Path})
	}
}

// Refresh re-enumerates the given locations (or the engine's configured
// locations if none are given) and merges the results into the existing
// index without clearing it first.
func (e *SearchEngine) Refresh(ctx context.Context, locations ...string) error {
	e.mu.Lock()
	opts := e.opts
	e.mu.Unlock()

	if len(locations) == 0 {
		locations = opts.Locations
	}
	e.enumerateAndIndex(ctx, opts, locations)
	return nil
}

// Clear empties the index and string pool and resets every counter.
func (e *SearchEngine) Clear() {
	e.idx.Clear()
	e.pool = stringpool.NewSet()

	e.mu.Lock()
	e.evaluator = queryeval.New(e.idx, e.opts)
	e.mu.Unlock()

	e.totalFiles.Store(0)
	e.totalDirectories.Store(0)
	e.internAttempts.Store(0)
	e.lastIndexDuration.Store(0)
	e.indexingFilesPerSecond.Store(float64(0))
}

// Search runs a structured query and returns a SearchResult streaming
// matches as they are found.
func (e *SearchEngine) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	e.mu.Lock()
	eval := e.evaluator
	e.mu.Unlock()
	return eval.Evaluate(ctx, q)
}

// SearchText is the convenience form of Search over plain text.
func (e *SearchEngine) SearchText(ctx context.Context, text string) (*SearchResult, error) {
	return e.Search(ctx, NewTextQuery(text))
}

// State returns the engine's current lifecycle state.
func (e *SearchEngine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Statistics returns a point-in-time snapshot of indexed state and
// observer health.
func (e *SearchEngine) Statistics() EngineStatistics {
	stats := EngineStatistics{
		TotalFiles:             e.totalFiles.Load(),
		TotalDirectories:       e.totalDirectories.Load(),
		MemoryBytesEstimate:    int64(e.idx.Len())*recordSizeEstimate + e.pool.MemoryBytes(),
		IndexingFilesPerSecond: e.indexingFilesPerSecond.Load().(float64),
		LastIndexDuration:      time.Duration(e.lastIndexDuration.Load()),
		CacheHitRate:           e.cacheHitRate(),
	}

	e.mu.Lock()
	obs := e.obs
	e.mu.Unlock()
	if obs != nil {
		s := obs.Stats()
		stats.ObserverEventsProcessed = s.EventsProcessed
		stats.ObserverErrorCount = s.ErrorCount
	}

	return stats
}

// recordSizeEstimate approximates the resident bytes of one indexed
// Record plus its composite-index bookkeeping (primary map entry,
// secondary set membership, trie node share).
const recordSizeEstimate = 96

func (e *SearchEngine) cacheHitRate() float64 {
	attempts := e.internAttempts.Load()
	if attempts == 0 {
		return 0
	}
	unique := int64(e.pool.Names.Len() + e.pool.Directories.Len() + e.pool.Extensions.Len())
	hitRate := 1 - float64(unique)/float64(attempts)
	if hitRate < 0 {
		return 0
	}
	return hitRate
}
