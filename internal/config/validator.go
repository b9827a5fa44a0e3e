package config

import (
	"fmt"

	"github.com/brightloom/filescan/internal/ferrors"
)

// Validate checks an IndexingOptions for values that would make starting
// an indexing session meaningless, returning a QueryError-class failure
// the caller should surface rather than silently correct.
func Validate(opts IndexingOptions) error {
	if len(opts.Locations) == 0 {
		return ferrors.NewQueryError("locations", "at least one location is required", nil)
	}
	if opts.MaxFileSize < 0 {
		return ferrors.NewQueryError("max_file_size", fmt.Sprintf("must be >= 0, got %d", opts.MaxFileSize), nil)
	}
	if opts.ParallelThreads < 0 {
		return ferrors.NewQueryError("parallel_threads", fmt.Sprintf("must be >= 0, got %d", opts.ParallelThreads), nil)
	}
	if opts.BatchSize < 0 {
		return ferrors.NewQueryError("batch_size", fmt.Sprintf("must be >= 0, got %d", opts.BatchSize), nil)
	}
	if opts.WatchDebounceMs < 0 {
		return ferrors.NewQueryError("watch_debounce_ms", fmt.Sprintf("must be >= 0, got %d", opts.WatchDebounceMs), nil)
	}
	return nil
}
