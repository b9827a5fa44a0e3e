package filescan

import "time"

// EngineStatistics is a point-in-time snapshot of the engine's indexed
// state and observer health.
type EngineStatistics struct {
	TotalFiles              int64
	TotalDirectories        int64
	MemoryBytesEstimate     int64
	IndexingFilesPerSecond  float64
	LastIndexDuration       time.Duration
	ObserverEventsProcessed uint64
	ObserverErrorCount      uint64
	// CacheHitRate is the string pool's intern hit ratio: the fraction of
	// interned path components that referenced an already-known string
	// rather than allocating a new id. Approximated as
	// 1 - (unique ids stored / total intern attempts), since Pool does
	// not track hits and misses directly.
	CacheHitRate float64
}
