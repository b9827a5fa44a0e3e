// Package persist declares the optional on-disk persistence contract a
// SearchEngine may consume to survive process restarts. No implementation
// ships in this module, and SearchEngine in this module neither accepts
// nor calls a Gateway.
package persist

import (
	"context"

	"github.com/brightloom/filescan/internal/index"
)

// Stats summarizes a Gateway's on-disk state, mirroring the shape of
// EngineStatistics closely enough that a caller can compare the two.
type Stats struct {
	RecordCount  int64
	SizeBytes    int64
	LastOptimize int64 // ticks, 0 if never optimized
}

// Transaction batches a sequence of mutations so a Gateway implementation
// can apply them atomically and crash-safely. Commit and Rollback are
// each valid exactly once; calling either after the other is a caller
// error.
type Transaction interface {
	Add(fullPath string, rec index.Record) error
	Remove(fullPath string) error
	Update(fullPath string, rec index.Record) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Gateway is the persistence contract: every operation is asynchronous
// (accepts a context for cancellation) so a disk- or network-backed
// implementation never blocks the engine's indexing or query paths
// longer than the caller is willing to wait.
//
// Round-trip invariant: Get(ctx, p) after Add(ctx, p, r) returns r
// unchanged modulo path normalization — the Gateway must canonicalize p
// the same way internal/index and pkg/pathutil do (lowercased full path,
// forward-slash separator) before using it as a key.
type Gateway interface {
	Initialize(ctx context.Context) error

	Add(ctx context.Context, fullPath string, rec index.Record) error
	AddBatch(ctx context.Context, items []index.BatchItem) error
	AddFromStream(ctx context.Context, entries <-chan index.BatchItem) error

	Remove(ctx context.Context, fullPath string) error
	Update(ctx context.Context, fullPath string, rec index.Record) error

	Get(ctx context.Context, fullPath string) (index.Record, bool, error)
	Exists(ctx context.Context, fullPath string) (bool, error)

	Search(ctx context.Context, directoryPrefix string) ([]index.BatchItem, error)

	Clear(ctx context.Context) error
	Optimize(ctx context.Context) error
	Statistics(ctx context.Context) (Stats, error)

	BeginTransaction(ctx context.Context) (Transaction, error)

	Close() error
}
