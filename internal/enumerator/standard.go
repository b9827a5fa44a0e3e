package enumerator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/brightloom/filescan/internal/config"
	"github.com/brightloom/filescan/internal/debug"
	"github.com/brightloom/filescan/internal/index"
	"github.com/brightloom/filescan/pkg/pathutil"
)

// inlineDescendDepth bounds how many levels of subdirectories get
// enqueued as separate work items before a worker just recurses inline;
// this is the locality heuristic that keeps the work queue's size
// proportional to the volume's breadth rather than its total depth.
const inlineDescendDepth = 2

// Standard walks locations using the OS directory APIs with bounded
// worker parallelism, applying options' exclusion and filter rules, and
// streams matching entries on the returned channel. The channel is
// closed once every location has been fully walked or ctx is cancelled.
func Standard(ctx context.Context, locations []string, opts config.IndexingOptions) <-chan Entry {
	out := make(chan Entry, 256)

	if len(locations) == 0 {
		// No roots pushed means dirQueue's pending counter never leaves
		// zero, so it would never flip to closed and every worker would
		// block in pop() forever. Nothing to walk, so just close.
		close(out)
		return out
	}

	workers := opts.ParallelThreads
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	w := &walker{
		ctx:     ctx,
		opts:    opts,
		out:     out,
		queue:   newDirQueue(),
		gitIgn:  loadGitignore(opts),
		visited: make(map[string]struct{}),
	}

	for _, loc := range locations {
		w.queue.push(dirTask{path: pathutil.Normalize(loc), depth: 0})
	}

	go func() {
		defer close(out)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.run()
			}()
		}
		wg.Wait()
	}()

	return out
}

func loadGitignore(opts config.IndexingOptions) *config.GitignoreParser {
	if !opts.RespectGitignore || len(opts.Locations) == 0 {
		return nil
	}
	p := config.NewGitignoreParser()
	if err := p.LoadGitignore(opts.Locations[0]); err != nil {
		debug.LogIndexing("no .gitignore loaded: %v", err)
		return nil
	}
	return p
}

type dirTask struct {
	path  string
	depth int
}

// dirQueue is a thread-safe work queue with a live-item counter so workers
// can tell when the whole traversal is done, rather than racing on an
// empty check.
type dirQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []dirTask
	pending int64 // items queued or being processed
	closed  bool
}

func newDirQueue() *dirQueue {
	q := &dirQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *dirQueue) push(t dirTask) {
	q.mu.Lock()
	atomic.AddInt64(&q.pending, 1)
	q.items = append(q.items, t)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until an item is available or the queue is drained and
// closed. ok is false once there is no more work for anyone.
func (q *dirQueue) pop() (t dirTask, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return dirTask{}, false
	}
	t = q.items[0]
	q.items = q.items[1:]
	return t, true
}

// done marks one unit of work as finished; once pending reaches zero the
// queue is closed and every blocked worker wakes up to exit.
func (q *dirQueue) done() {
	if atomic.AddInt64(&q.pending, -1) == 0 {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		q.cond.Broadcast()
	}
}

type walker struct {
	ctx     context.Context
	opts    config.IndexingOptions
	out     chan<- Entry
	queue   *dirQueue
	gitIgn  *config.GitignoreParser
	visited map[string]struct{}
	visitMu sync.Mutex
}

func (w *walker) run() {
	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		default:
		}

		task, ok := w.queue.pop()
		if !ok {
			return
		}
		w.scanOne(task)
		w.queue.done()
	}
}

// drain empties the queue without processing, so done() counts stay
// consistent and other workers can still observe completion after a
// cancellation.
func (w *walker) drain() {
	for {
		_, ok := w.queue.pop()
		if !ok {
			return
		}
		w.queue.done()
	}
}

func (w *walker) scanOne(task dirTask) {
	if w.seen(task.path) {
		return
	}

	entries, err := os.ReadDir(task.path)
	if err != nil {
		debug.LogIndexing("scanner: %s: %v", task.path, err)
		return
	}

	for _, de := range entries {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		full := pathutil.Join(task.path, de.Name())

		info, err := de.Info()
		if err != nil {
			debug.LogIndexing("scanner: stat %s: %v", full, err)
			continue
		}

		if de.Type()&fs.ModeSymlink != 0 {
			if !w.opts.FollowSymlinks {
				continue
			}
			resolved, err := filepath.EvalSymlinks(full)
			if err != nil {
				continue
			}
			info, err = os.Stat(resolved)
			if err != nil {
				continue
			}
			full = pathutil.Normalize(resolved)
		}

		if info.IsDir() {
			w.handleDir(full, task.depth, info)
			continue
		}

		w.handleFile(full, info)
	}
}

func (w *walker) handleDir(full string, depth int, info os.FileInfo) {
	if w.excluded(full, true) {
		return
	}
	if depth < inlineDescendDepth {
		w.queue.push(dirTask{path: full, depth: depth + 1})
		return
	}
	// Locality heuristic: past the inline-descend depth, recurse directly
	// in this goroutine instead of growing the shared queue further.
	w.scanOne(dirTask{path: full, depth: depth + 1})
}

func (w *walker) handleFile(full string, info os.FileInfo) {
	if w.excluded(full, false) {
		return
	}

	attrs := index.Attribute(0)
	hidden := isHiddenName(filepath.Base(full))
	if hidden {
		attrs |= index.AttrHidden
	}
	if !w.opts.IncludeHidden && hidden {
		return
	}

	if w.opts.MaxFileSize > 0 && info.Size() > w.opts.MaxFileSize {
		return
	}

	size := int64(0)
	if w.opts.CollectFileSize {
		size = info.Size()
	}

	select {
	case w.out <- Entry{
		FullPath:      full,
		Size:          size,
		CreatedTicks:  ticksFromTime(info.ModTime()),
		ModifiedTicks: ticksFromTime(info.ModTime()),
		AccessedTicks: ticksFromTime(info.ModTime()),
		Attributes:    attrs,
		VolumeTag:     volumeTagOf(full),
	}:
	case <-w.ctx.Done():
	}
}

func (w *walker) excluded(full string, isDir bool) bool {
	rel := full
	if len(w.opts.Locations) > 0 {
		rel = pathutil.ToRelative(full, w.opts.Locations[0])
	}

	for _, pattern := range w.opts.ExcludedPaths {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, full); matched {
			return true
		}
	}

	if w.gitIgn != nil && w.gitIgn.ShouldIgnore(rel, isDir) {
		return true
	}

	if !isDir {
		ext := strings.TrimPrefix(filepath.Ext(full), ".")
		for _, excludedExt := range w.opts.ExcludedExtensions {
			if strings.EqualFold(ext, strings.TrimPrefix(excludedExt, ".")) {
				return true
			}
		}
	}

	return false
}

func (w *walker) seen(realPath string) bool {
	w.visitMu.Lock()
	defer w.visitMu.Unlock()
	if _, ok := w.visited[realPath]; ok {
		return true
	}
	w.visited[realPath] = struct{}{}
	return false
}

func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// volumeTagOf derives the single-character volume discriminator: the
// drive letter on a Windows-style path, or '/' otherwise.
func volumeTagOf(full string) byte {
	if len(full) >= 2 && full[1] == ':' {
		return full[0]
	}
	return '/'
}
