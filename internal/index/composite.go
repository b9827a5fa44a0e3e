package index

import (
	"sync"

	"github.com/brightloom/filescan/internal/pathtrie"
	"github.com/brightloom/filescan/pkg/pathutil"
)

// Candidates describes the inputs the candidate selection policy needs;
// it is the subset of a query that shapes which records are even
// considered before predicate filtering runs.
type Candidates struct {
	BasePath              string
	IncludeSubdirectories bool
	ExtensionFilter       string
	SearchLocations       []string
}

// CompositeIndex owns the primary path → record map and its secondary
// structures (directory set map, extension set map, path trie). Writers
// serialize through mu; candidate key collection happens under RLock and
// record resolution happens after RUnlock, so long queries never block
// writers.
type CompositeIndex struct {
	mu sync.RWMutex

	primary map[string]*entry // key: folded full path

	byDirectory map[string]map[string]struct{} // folded directory -> set of folded full paths
	byExtension map[string]map[string]struct{} // folded extension -> set of folded full paths

	trie *pathtrie.Index
}

type entry struct {
	fullPath string // original casing, canonical separators
	record   Record
}

// New creates an empty composite index.
func New() *CompositeIndex {
	return &CompositeIndex{
		primary:     make(map[string]*entry),
		byDirectory: make(map[string]map[string]struct{}),
		byExtension: make(map[string]map[string]struct{}),
		trie:        pathtrie.New(),
	}
}

// Add inserts or overwrites the record at fullPath. Insertion is
// idempotent by primary key: a second Add for the same path replaces it,
// removing the previous record from every secondary structure first.
func (ci *CompositeIndex) Add(fullPath string, rec Record, directory, extension string) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	ci.addLocked(fullPath, rec, directory, extension)
}

// AddBatch applies every record in one write-locked section, so a reader
// never observes a partially-applied batch.
func (ci *CompositeIndex) AddBatch(items []BatchItem) {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	for _, it := range items {
		ci.addLocked(it.FullPath, it.Record, it.Directory, it.Extension)
	}
}

// BatchItem is one record destined for AddBatch, carrying the derived
// directory and extension strings alongside the record so the index does
// not need to re-derive them from string-pool ids.
type BatchItem struct {
	FullPath  string
	Record    Record
	Directory string
	Extension string
}

func (ci *CompositeIndex) addLocked(fullPath string, rec Record, directory, extension string) {
	fullPath = pathutil.Normalize(fullPath)
	key := pathutil.FoldKey(fullPath)

	if existing, ok := ci.primary[key]; ok {
		ci.unindexLocked(key, existing)
	}

	e := &entry{fullPath: fullPath, record: rec}
	ci.primary[key] = e

	dirKey := pathutil.FoldKey(directory)
	ci.addToSet(ci.byDirectory, dirKey, key)

	if extension != "" {
		extKey := foldExtension(extension)
		ci.addToSet(ci.byExtension, extKey, key)
	}

	ci.trie.Add(fullPath, key)
}

func (ci *CompositeIndex) unindexLocked(key string, e *entry) {
	dir, ext := splitDirExt(e.fullPath)
	ci.removeFromSet(ci.byDirectory, pathutil.FoldKey(dir), key)
	if ext != "" {
		ci.removeFromSet(ci.byExtension, foldExtension(ext), key)
	}
	ci.trie.Remove(e.fullPath, key)
}

// Remove deletes the record at fullPath, returning whether one was present.
func (ci *CompositeIndex) Remove(fullPath string) bool {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	key := pathutil.FoldKey(fullPath)
	e, ok := ci.primary[key]
	if !ok {
		return false
	}
	ci.unindexLocked(key, e)
	delete(ci.primary, key)
	return true
}

// Update replaces the record at fullPath with rec, behaving as a single
// atomic remove+add: readers never observe both the old and new record.
func (ci *CompositeIndex) Update(fullPath string, rec Record, directory, extension string) bool {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	key := pathutil.FoldKey(fullPath)
	_, existed := ci.primary[key]
	ci.addLocked(fullPath, rec, directory, extension)
	return existed
}

// Get returns the record at fullPath along with its canonical full path.
func (ci *CompositeIndex) Get(fullPath string) (Record, string, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	e, ok := ci.primary[pathutil.FoldKey(fullPath)]
	if !ok {
		return Record{}, "", false
	}
	return e.record, e.fullPath, true
}

// Contains reports whether fullPath has a primary entry.
func (ci *CompositeIndex) Contains(fullPath string) bool {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	_, ok := ci.primary[pathutil.FoldKey(fullPath)]
	return ok
}

// Len returns the number of primary entries.
func (ci *CompositeIndex) Len() int {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return len(ci.primary)
}

// Clear empties every index structure.
func (ci *CompositeIndex) Clear() {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	ci.primary = make(map[string]*entry)
	ci.byDirectory = make(map[string]map[string]struct{})
	ci.byExtension = make(map[string]map[string]struct{})
	ci.trie = pathtrie.New()
}

// CandidateRecord pairs a resolved record with its canonical full path.
type CandidateRecord struct {
	FullPath string
	Record   Record
}

// QueryCandidates applies the five-rule candidate selection policy,
// collecting keys under the read lock and resolving records after
// releasing it, so the caller's subsequent predicate filtering never
// blocks a writer.
func (ci *CompositeIndex) QueryCandidates(q Candidates) []CandidateRecord {
	keys := ci.collectCandidateKeys(q)

	ci.mu.RLock()
	defer ci.mu.RUnlock()

	out := make([]CandidateRecord, 0, len(keys))
	for _, k := range keys {
		if e, ok := ci.primary[k]; ok {
			out = append(out, CandidateRecord{FullPath: e.fullPath, Record: e.record})
		}
	}
	return out
}

// ContainsPath reports whether the path trie has a node for p, i.e.
// whether p (or any of its descendants) is covered by the index.
func (ci *CompositeIndex) ContainsPath(p string) bool {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	return ci.trie.ContainsPath(p)
}

func (ci *CompositeIndex) collectCandidateKeys(q Candidates) []string {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	// Rule 1: base_path + subdirectories -> trie subtree, optionally
	// narrowed by extension.
	if q.BasePath != "" && q.IncludeSubdirectories {
		keys := ci.trie.FilesUnder(q.BasePath)
		if q.ExtensionFilter != "" {
			keys = ci.intersectWithExtension(keys, q.ExtensionFilter)
		}
		return keys
	}

	// Rule 2: base_path without subdirectories -> direct directory set.
	if q.BasePath != "" {
		return setKeys(ci.byDirectory[pathutil.FoldKey(q.BasePath)])
	}

	// Rule 3: extension filter alone.
	if q.ExtensionFilter != "" {
		return setKeys(ci.byExtension[foldExtension(q.ExtensionFilter)])
	}

	// Rule 4: union across named search locations.
	if len(q.SearchLocations) > 0 {
		seen := make(map[string]struct{})
		var out []string
		for _, loc := range q.SearchLocations {
			for _, k := range ci.trie.FilesUnder(loc) {
				if _, dup := seen[k]; !dup {
					seen[k] = struct{}{}
					out = append(out, k)
				}
			}
		}
		return out
	}

	// Rule 5: everything.
	out := make([]string, 0, len(ci.primary))
	for k := range ci.primary {
		out = append(out, k)
	}
	return out
}

func (ci *CompositeIndex) intersectWithExtension(keys []string, extension string) []string {
	set := ci.byExtension[foldExtension(extension)]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := set[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (ci *CompositeIndex) addToSet(m map[string]map[string]struct{}, setKey, memberKey string) {
	s, ok := m[setKey]
	if !ok {
		s = make(map[string]struct{})
		m[setKey] = s
	}
	s[memberKey] = struct{}{}
}

func (ci *CompositeIndex) removeFromSet(m map[string]map[string]struct{}, setKey, memberKey string) {
	s, ok := m[setKey]
	if !ok {
		return
	}
	delete(s, memberKey)
	if len(s) == 0 {
		delete(m, setKey)
	}
}

func setKeys(s map[string]struct{}) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

func splitDirExt(fullPath string) (dir, ext string) {
	idx := lastSlash(fullPath)
	if idx < 0 {
		dir = ""
	} else {
		dir = fullPath[:idx]
	}
	name := fullPath
	if idx >= 0 {
		name = fullPath[idx+1:]
	}
	dotIdx := lastDot(name)
	if dotIdx > 0 && dotIdx < len(name)-1 {
		ext = name[dotIdx+1:]
	}
	return dir, ext
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func foldExtension(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return pathutil.FoldKey(ext)
}
