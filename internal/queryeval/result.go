package queryeval

import (
	"sync/atomic"
	"time"
)

// Result is returned immediately by Evaluate; Matches streams results as
// the evaluator finds them, Count/Elapsed are read after the channel is
// drained (closed).
type Result struct {
	Matches <-chan Match

	count   *atomic.Int64
	started time.Time
}

// Count returns the number of matches delivered so far. It is only a
// stable total once Matches has been fully drained.
func (r *Result) Count() int64 {
	return r.count.Load()
}

// Elapsed returns the wall-clock time since evaluation started.
func (r *Result) Elapsed() time.Duration {
	return time.Since(r.started)
}
