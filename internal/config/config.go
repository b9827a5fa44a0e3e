// Package config loads and validates the engine's indexing options: an
// optional .filescan.kdl file merged over coded defaults, plus gitignore
// and glob-based exclusion helpers shared by the enumerator and observer.
package config

import (
	"fmt"
	"os"
	"runtime"
)

// IndexingOptions mirrors the engine's externally visible indexing knobs.
type IndexingOptions struct {
	// Location selection.
	Locations []string // drives, mount points, or specific directories

	// Exclusions.
	ExcludedPaths      []string // glob patterns (doublestar syntax)
	ExcludedExtensions []string // extensions, leading dot optional, matched case-insensitively

	// Booleans.
	IncludeHidden    bool
	IncludeSystem    bool
	FollowSymlinks   bool
	EnableMonitoring bool
	RespectGitignore bool
	PreferMFT        bool // prefer the NTFS fast path when eligible

	// Performance knobs.
	MaxFileSize      int64 // bytes; 0 = unbounded
	ParallelThreads  int   // 0 = auto-detect (NumCPU-1, at least 1)
	BatchSize        int   // records per index batch
	CollectFileSize  bool  // false leaves Entry.Size at zero; entries are still stat'ed
	WatchDebounceMs  int   // change-event coalescing window; 0 = no coalescing
	MFTBufferBytes   int   // clamped to [64KiB, 4MiB], 4KiB-aligned
	IndexingTimeoutS int   // 0 = no timeout
}

const (
	minMFTBuffer     = 64 * 1024
	maxMFTBuffer     = 4 * 1024 * 1024
	defaultMFTBuffer = 1024 * 1024
	mftAlignment     = 4096
)

// Default returns the engine's coded default options: the fallback used
// when no .filescan.kdl file is present.
func Default() IndexingOptions {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return IndexingOptions{
		Locations:          []string{cwd},
		ExcludedPaths:      defaultExcludedPaths(),
		ExcludedExtensions: nil,
		IncludeHidden:      false,
		IncludeSystem:      false,
		FollowSymlinks:     false,
		EnableMonitoring:   true,
		RespectGitignore:   true,
		PreferMFT:          true,
		MaxFileSize:        0,
		ParallelThreads:    0,
		BatchSize:          512,
		CollectFileSize:    true,
		WatchDebounceMs:    0,
		MFTBufferBytes:     defaultMFTBuffer,
		IndexingTimeoutS:   0,
	}
}

func defaultExcludedPaths() []string {
	return []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/.cache/**",
		"**/$Recycle.Bin/**",
		"**/System Volume Information/**",
	}
}

// Load resolves options for root by layering, in order: coded defaults,
// then a .filescan.kdl file in root (if present). A missing KDL file is
// not an error.
func Load(root string) (IndexingOptions, error) {
	opts := Default()
	if root != "" {
		opts.Locations = []string{root}
	}

	fromFile, set, found, err := LoadKDL(root)
	if err != nil {
		return IndexingOptions{}, fmt.Errorf("loading .filescan.kdl: %w", err)
	}
	if found {
		opts = mergeOptions(opts, fromFile, set)
	}

	ApplySmartDefaults(&opts)
	return opts, nil
}

// mergeOptions layers override on top of base: zero-valued fields in
// override fall back to base, non-zero fields replace it. Slice fields
// replace wholesale when override sets them at all. Bool fields only
// replace base when set reports the KDL file actually mentioned them —
// otherwise a file that omits e.g. enable_monitoring would silently
// flip a true default to false, since Go can't tell "set to false" apart
// from "never set" on a bare bool.
func mergeOptions(base, override IndexingOptions, set boolFieldsSet) IndexingOptions {
	merged := base

	if len(override.Locations) > 0 {
		merged.Locations = override.Locations
	}
	if len(override.ExcludedPaths) > 0 {
		merged.ExcludedPaths = override.ExcludedPaths
	}
	if len(override.ExcludedExtensions) > 0 {
		merged.ExcludedExtensions = override.ExcludedExtensions
	}

	if set.IncludeHidden {
		merged.IncludeHidden = override.IncludeHidden
	}
	if set.IncludeSystem {
		merged.IncludeSystem = override.IncludeSystem
	}
	if set.FollowSymlinks {
		merged.FollowSymlinks = override.FollowSymlinks
	}
	if set.EnableMonitoring {
		merged.EnableMonitoring = override.EnableMonitoring
	}
	if set.RespectGitignore {
		merged.RespectGitignore = override.RespectGitignore
	}
	if set.PreferMFT {
		merged.PreferMFT = override.PreferMFT
	}
	if set.CollectFileSize {
		merged.CollectFileSize = override.CollectFileSize
	}

	if override.MaxFileSize != 0 {
		merged.MaxFileSize = override.MaxFileSize
	}
	if override.ParallelThreads != 0 {
		merged.ParallelThreads = override.ParallelThreads
	}
	if override.BatchSize != 0 {
		merged.BatchSize = override.BatchSize
	}
	if override.WatchDebounceMs != 0 {
		merged.WatchDebounceMs = override.WatchDebounceMs
	}
	if override.MFTBufferBytes != 0 {
		merged.MFTBufferBytes = override.MFTBufferBytes
	}
	if override.IndexingTimeoutS != 0 {
		merged.IndexingTimeoutS = override.IndexingTimeoutS
	}

	return merged
}

// ApplySmartDefaults fills in zero-valued performance knobs from runtime
// capability, and clamps the MFT buffer size into its valid range.
func ApplySmartDefaults(opts *IndexingOptions) {
	if opts.ParallelThreads <= 0 {
		opts.ParallelThreads = max(1, runtime.NumCPU()-1)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 512
	}
	opts.MFTBufferBytes = clampMFTBuffer(opts.MFTBufferBytes)
}

// clampMFTBuffer enforces the [64 KiB, 4 MiB] bound and 4 KiB alignment
// the MFT fast path requires of its read buffer.
func clampMFTBuffer(n int) int {
	if n <= 0 {
		n = defaultMFTBuffer
	}
	if n < minMFTBuffer {
		n = minMFTBuffer
	}
	if n > maxMFTBuffer {
		n = maxMFTBuffer
	}
	return (n / mftAlignment) * mftAlignment
}
