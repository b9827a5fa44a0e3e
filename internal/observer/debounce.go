package observer

import (
	"sync"
	"time"
)

// debouncer coalesces repeated events for the same path within a window,
// flushing the latest event type per path once the window elapses with no
// further activity. A zero window flushes immediately on every add.
type debouncer struct {
	mu      sync.Mutex
	events  map[string]EventType
	window  time.Duration
	timer   *time.Timer
	stopped bool
	// inFlight tracks AfterFunc callbacks that have already fired and may
	// still be mid-flush; stop waits on it so a caller can't close
	// whatever flush sends to while one of those callbacks is running.
	inFlight sync.WaitGroup
	flush    func(path string, t EventType)
}

func newDebouncer(window time.Duration, flush func(path string, t EventType)) *debouncer {
	return &debouncer{
		events: make(map[string]EventType),
		window: window,
		flush:  flush,
	}
}

func (d *debouncer) add(path string, t EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.window <= 0 {
		d.flush(path, t)
		return
	}

	d.events[path] = t
	if d.timer != nil && d.timer.Stop() {
		// Timer was cancelled before firing, so its AfterFunc callback
		// (and the Add it owed a Done for) never runs.
		d.inFlight.Done()
	}
	d.inFlight.Add(1)
	d.timer = time.AfterFunc(d.window, func() {
		defer d.inFlight.Done()
		d.drain()
	})
}

func (d *debouncer) drain() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	pending := d.events
	d.events = make(map[string]EventType)
	d.mu.Unlock()

	for path, t := range pending {
		d.flush(path, t)
	}
}

// stop cancels any pending timer without flushing, then blocks until any
// AfterFunc callback that had already fired before stop was called
// finishes draining. That wait is what lets a caller safely close
// whatever flush sends to right after stop returns — without it, a
// callback already mid-flush could still send after the close.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil && d.timer.Stop() {
		d.inFlight.Done()
	}
	d.mu.Unlock()

	d.inFlight.Wait()
}
