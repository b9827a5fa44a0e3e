// Package pathutil provides the path normalization the index and query
// evaluator both depend on.
//
// Architecture Pattern:
// filescan indexes by a canonical form of each path — forward slashes, no
// trailing separator, original casing preserved for display — and keys its
// secondary maps on the lowercased canonical form. Every component that
// looks up or inserts into the index normalizes through this package first,
// so normalize(normalize(p)) == normalize(p) holds for any p (invariant 3 in
// the data model).
package pathutil

import (
	"path/filepath"
	"strings"
)

// Normalize converts p to the engine's canonical path form: forward
// slashes, no trailing separator (except for a bare root), and all
// original-casing characters preserved. It does not resolve "." or "..";
// callers that need an absolute, resolved path should call filepath.Abs /
// filepath.Clean before Normalize.
func Normalize(p string) string {
	if p == "" {
		return p
	}

	// Replace both separator styles explicitly rather than relying on
	// filepath.ToSlash, whose behavior depends on the build OS: the
	// engine's canonical form must be stable even when indexing
	// Windows-style paths (MFT records, or test fixtures) on a
	// non-Windows build.
	p = strings.ReplaceAll(p, "\\", "/")

	// Strip a trailing slash unless it is the only character (the root).
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}

	return p
}

// IsNormalized reports whether p is already in canonical form.
func IsNormalized(p string) bool {
	return Normalize(p) == p
}

// FoldKey lowercases a normalized path for use as a secondary-index key.
// Identifier strings themselves (names, directories stored in the string
// pool) keep their original casing; only the lookup key is folded.
func FoldKey(p string) string {
	return strings.ToLower(Normalize(p))
}

// Join joins a directory and a name using the canonical separator,
// normalizing the result.
func Join(dir, name string) string {
	if dir == "" {
		return Normalize(name)
	}
	return Normalize(dir + "/" + name)
}

// Segments splits a normalized path into its path-trie segments. A leading
// volume token (a drive letter like "c:" or a leading "/" root) is kept as
// the first segment so Windows and POSIX volumes share the same trie shape.
func Segments(p string) []string {
	p = Normalize(p)
	if p == "" {
		return nil
	}

	trimmed := strings.TrimPrefix(p, "/")
	parts := strings.Split(trimmed, "/")

	out := make([]string, 0, len(parts)+1)
	if strings.HasPrefix(p, "/") {
		out = append(out, "/")
	}
	for _, seg := range parts {
		if seg == "" {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// SplitDirName splits a normalized full path into its parent directory and
// final segment. The root "/" yields ("/", "").
func SplitDirName(fullPath string) (dir, name string) {
	fullPath = Normalize(fullPath)
	idx := strings.LastIndexByte(fullPath, '/')
	if idx < 0 {
		return "", fullPath
	}
	if idx == 0 {
		return "/", fullPath[1:]
	}
	return fullPath[:idx], fullPath[idx+1:]
}

// Extension returns the lowercased extension (without the leading dot) of
// name, or "" if it has none. A name that starts with a dot and has no
// further dot (e.g. ".gitignore") has no extension.
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

// ToRelative converts an absolute path to a path relative to rootDir for
// display purposes. It falls back to the original (normalized) path if
// conversion fails or the path lies outside rootDir.
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return Normalize(absPath)
	}

	absPath = Normalize(absPath)
	rootDir = Normalize(rootDir)

	if !filepath.IsAbs(filepath.FromSlash(absPath)) {
		return absPath
	}

	rel, err := filepath.Rel(filepath.FromSlash(rootDir), filepath.FromSlash(absPath))
	if err != nil {
		return absPath
	}

	rel = Normalize(rel)
	if strings.HasPrefix(rel, "..") {
		return absPath
	}
	return rel
}
