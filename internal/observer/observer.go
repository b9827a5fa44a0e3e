package observer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/brightloom/filescan/internal/config"
	"github.com/brightloom/filescan/internal/debug"
	"github.com/brightloom/filescan/internal/ferrors"
)

// Stats are read with atomic loads; a caller may poll them at any time,
// including while the observer is running.
type Stats struct {
	EventsProcessed uint64
	ErrorCount      uint64
}

// Observer watches one or more root directories for changes and emits
// ChangeEvents on Events(). Call Stop to release the underlying platform
// watcher; Stop is idempotent.
type Observer struct {
	opts    config.IndexingOptions
	watcher *fsnotify.Watcher
	debounce *debouncer

	events chan ChangeEvent
	roots  []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	eventsProcessed atomic.Uint64
	errorCount      atomic.Uint64

	visitMu sync.Mutex
	visited map[string]struct{}
}

// Monitor starts watching locations and returns an Observer streaming
// ChangeEvents until Stop is called or ctx is cancelled.
func Monitor(ctx context.Context, locations []string, opts config.IndexingOptions) (*Observer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.NewIOFatalError("observer.new", err)
	}

	debounceMs := opts.WatchDebounceMs
	obsCtx, cancel := context.WithCancel(ctx)

	o := &Observer{
		opts:    opts,
		watcher: w,
		events:  make(chan ChangeEvent, 256),
		roots:   locations,
		ctx:     obsCtx,
		cancel:  cancel,
		visited: make(map[string]struct{}),
	}
	o.debounce = newDebouncer(time.Duration(debounceMs)*time.Millisecond, o.emit)

	for _, loc := range locations {
		if err := o.addWatches(loc); err != nil {
			debug.LogWatch("root %s: %v", loc, err)
		}
	}

	o.wg.Add(1)
	go o.loop()

	return o, nil
}

// Events returns the channel new ChangeEvents are delivered on. It is
// closed once the observer has fully stopped.
func (o *Observer) Events() <-chan ChangeEvent {
	return o.events
}

// Stats returns a point-in-time snapshot of processed-event and
// error counters.
func (o *Observer) Stats() Stats {
	return Stats{
		EventsProcessed: o.eventsProcessed.Load(),
		ErrorCount:      o.errorCount.Load(),
	}
}

// Stop cancels the watch loop and releases the platform watcher handle.
func (o *Observer) Stop() {
	o.cancel()
	o.wg.Wait()
	_ = o.watcher.Close()
}

func (o *Observer) addWatches(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if o.shouldIgnoreDir(path) {
			return filepath.SkipDir
		}
		if o.seen(path) {
			return filepath.SkipDir
		}
		if err := o.watcher.Add(path); err != nil {
			debug.LogWatch("add watch %s: %v", path, err)
		}
		return nil
	})
}

func (o *Observer) shouldIgnoreDir(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range o.opts.ExcludedPaths {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

func (o *Observer) seen(realPath string) bool {
	resolved, err := filepath.EvalSymlinks(realPath)
	if err != nil {
		resolved = realPath
	}
	o.visitMu.Lock()
	defer o.visitMu.Unlock()
	if _, ok := o.visited[resolved]; ok {
		return true
	}
	o.visited[resolved] = struct{}{}
	return false
}

func (o *Observer) loop() {
	defer o.wg.Done()
	defer close(o.events)
	defer o.debounce.stop()

	for {
		select {
		case <-o.ctx.Done():
			return
		case ev, ok := <-o.watcher.Events:
			if !ok {
				return
			}
			o.handleEvent(ev)
		case err, ok := <-o.watcher.Errors:
			if !ok {
				return
			}
			o.errorCount.Add(1)
			debug.LogWatch("watcher error: %v", err)
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				o.resyncAll()
			}
		}
	}
}

func (o *Observer) handleEvent(ev fsnotify.Event) {
	switch {
	case ev.Op&fsnotify.Create != 0:
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !o.shouldIgnoreDir(ev.Name) {
			if err := o.addWatches(ev.Name); err != nil {
				debug.LogWatch("add watch on create %s: %v", ev.Name, err)
			}
		}
		o.debounce.add(ev.Name, Created)
	case ev.Op&fsnotify.Write != 0:
		o.debounce.add(ev.Name, Modified)
	case ev.Op&fsnotify.Remove != 0:
		o.debounce.add(ev.Name, Deleted)
	case ev.Op&fsnotify.Rename != 0:
		o.debounce.add(ev.Name, Deleted)
	}
}

// resyncAll emits a Resync event per watched root after the platform
// watcher reports a dropped-event condition; the caller is expected to
// re-enumerate each affected root rather than trust incremental events.
func (o *Observer) resyncAll() {
	for _, root := range o.roots {
		select {
		case o.events <- ChangeEvent{Type: Resync, Path: root}:
		case <-o.ctx.Done():
			return
		}
	}
}

// emit delivers one coalesced event downstream; called only through the
// debouncer (synchronously from add when the window is zero, otherwise
// from its flush timer), never directly from handleEvent.
func (o *Observer) emit(path string, t EventType) {
	select {
	case o.events <- ChangeEvent{Type: t, Path: path}:
		o.eventsProcessed.Add(1)
	case <-o.ctx.Done():
	}
}
