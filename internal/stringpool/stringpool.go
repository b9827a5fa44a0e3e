// Package stringpool interns file names, directory paths, and extensions
// into small monotonically-increasing 32-bit ids, deduplicating repeated
// strings across millions of file records.
//
// Uses an id/lookup-map interning pattern, restructured into three
// independent pools with a byte-arena backing store so repeated interning
// does not create one Go allocation per string.
package stringpool

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// chunkSize is the arena chunk size; spec targets ~16 MiB per chunk.
const chunkSize = 16 << 20

// EmptyID is reserved for the empty string across every pool.
const EmptyID uint32 = 0

type loc struct {
	chunk  uint32
	offset uint32
	length uint32
}

// Pool interns strings of one logical kind (names, directories, or
// extensions) into stable 32-bit ids. The zero value is not usable; use New.
type Pool struct {
	mu sync.RWMutex

	chunks [][]byte
	locs   []loc // index i -> location of id i+1

	// hash -> candidate ids sharing that hash, for collision resolution.
	byHash map[uint64][]uint32
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{
		chunks: [][]byte{make([]byte, 0, chunkSize)},
		byHash: make(map[uint64][]uint32),
	}
}

// Intern returns the id for s, allocating a new id on first occurrence.
// Returns EmptyID for an empty string without touching the arena or lock.
func (p *Pool) Intern(s string) uint32 {
	if len(s) == 0 {
		return EmptyID
	}

	h := xxhash.Sum64String(s)

	p.mu.RLock()
	if id, ok := p.lookupLocked(h, s); ok {
		p.mu.RUnlock()
		return id
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-check: another writer may have interned s while we waited for
	// the write lock.
	if id, ok := p.lookupLocked(h, s); ok {
		return id
	}

	l := p.appendLocked(s)
	p.locs = append(p.locs, l)
	id := uint32(len(p.locs)) // ids start at 1; 0 is EmptyID
	p.byHash[h] = append(p.byHash[h], id)
	return id
}

// lookupLocked must be called with at least mu.RLock held.
func (p *Pool) lookupLocked(h uint64, s string) (uint32, bool) {
	for _, id := range p.byHash[h] {
		if p.stringAtLocked(p.locs[id-1]) == s {
			return id, true
		}
	}
	return 0, false
}

// appendLocked copies s into the current (or a fresh) arena chunk and
// returns its location. Must be called with mu held for writing.
func (p *Pool) appendLocked(s string) loc {
	ci := len(p.chunks) - 1
	chunk := p.chunks[ci]

	if cap(chunk)-len(chunk) < len(s) {
		// Not enough room left in this chunk; start a new one. A string
		// longer than chunkSize gets its own oversized chunk.
		size := chunkSize
		if len(s) > size {
			size = len(s)
		}
		chunk = make([]byte, 0, size)
		p.chunks = append(p.chunks, chunk)
		ci = len(p.chunks) - 1
	}

	start := len(chunk)
	chunk = append(chunk, s...)
	p.chunks[ci] = chunk

	return loc{chunk: uint32(ci), offset: uint32(start), length: uint32(len(s))}
}

// stringAtLocked materializes the string at l. Must be called with mu held
// (read or write).
func (p *Pool) stringAtLocked(l loc) string {
	b := p.chunks[l.chunk][l.offset : l.offset+l.length]
	return string(b)
}

// Get resolves id to its string. Returns false for EmptyID and any id never
// issued by this pool.
func (p *Pool) Get(id uint32) (string, bool) {
	if id == EmptyID {
		return "", false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	idx := int(id) - 1
	if idx < 0 || idx >= len(p.locs) {
		return "", false
	}
	return p.stringAtLocked(p.locs[idx]), true
}

// MustGet resolves id to its string, panicking on an invalid id. Intended
// for call sites that hold an id obtained from a live FileRecord, where an
// invalid id indicates a programming error rather than caller input.
func (p *Pool) MustGet(id uint32) string {
	s, ok := p.Get(id)
	if !ok {
		panic("stringpool: invalid id")
	}
	return s
}

// Len reports the number of distinct non-empty strings interned so far.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.locs)
}

// MemoryBytes estimates the pool's resident memory (arena chunks only,
// excludes bookkeeping maps).
func (p *Pool) MemoryBytes() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var total int64
	for _, c := range p.chunks {
		total += int64(cap(c))
	}
	return total
}
