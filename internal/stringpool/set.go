package stringpool

import "strings"

// Set groups the three logical pools the composite index needs: file names,
// directory paths, and extensions. Each is an independent Pool with its own
// id space.
type Set struct {
	Names       *Pool
	Directories *Pool
	Extensions  *Pool
}

// NewSet creates the three pools an engine needs for its lifetime.
func NewSet() *Set {
	return &Set{
		Names:       New(),
		Directories: New(),
		Extensions:  New(),
	}
}

// InternPathComponents splits a canonical full path into directory, name,
// and extension and interns each into its pool, returning their ids.
//
// fullPath must already be separator-normalized (forward slash) by the
// caller; this function does not re-normalize, matching the invariant that
// separator normalization happens once, at the index/query boundary.
func (s *Set) InternPathComponents(fullPath string) (directoryID, nameID, extensionID uint32) {
	dir, name := splitDirAndName(fullPath)
	ext := extensionOf(name)

	directoryID = s.Directories.Intern(dir)
	nameID = s.Names.Intern(name)
	extensionID = s.Extensions.Intern(ext)
	return
}

// splitDirAndName splits a forward-slash normalized path into its parent
// directory and final segment. The root "/" yields ("", "").
func splitDirAndName(fullPath string) (dir, name string) {
	idx := strings.LastIndexByte(fullPath, '/')
	if idx < 0 {
		return "", fullPath
	}
	return fullPath[:idx], fullPath[idx+1:]
}

// extensionOf returns the lowercased extension (without the leading dot) of
// name, or "" if name has none. A name that starts with a dot and has no
// further dot (e.g. ".gitignore") has no extension.
func extensionOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// MemoryBytes sums the resident arena memory across all three pools.
func (s *Set) MemoryBytes() int64 {
	return s.Names.MemoryBytes() + s.Directories.MemoryBytes() + s.Extensions.MemoryBytes()
}
