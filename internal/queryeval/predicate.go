package queryeval

import (
	"strings"

	"github.com/brightloom/filescan/pkg/pathutil"
)

// accepts applies every predicate the query names, cheapest first: direct
// child of base_path (when subdirectories are excluded), type,
// hidden/system, size bounds, date bounds, extension, excluded paths, then
// text.
func (q SearchQuery) accepts(m Match, tm textMatcher) bool {
	// The indexed candidate-selection rules already restrict to direct
	// children when base_path is set without include_subdirectories; this
	// repeats the check so the live-fallback scan (which always walks
	// recursively) honors it too.
	if q.BasePath != "" && !q.IncludeSubdirectories {
		if pathutil.FoldKey(m.DirectoryPath) != pathutil.FoldKey(q.BasePath) {
			return false
		}
	}

	if m.IsDirectory && !q.IncludeDirectories {
		return false
	}
	if !m.IsDirectory && !q.IncludeFiles {
		return false
	}

	if m.IsHidden && !q.IncludeHidden {
		return false
	}
	if m.IsSystem && !q.IncludeSystem {
		return false
	}

	if q.MinSize > 0 && m.Size < q.MinSize {
		return false
	}
	if q.MaxSize > 0 && m.Size > q.MaxSize {
		return false
	}

	if !q.MinCreatedDate.IsZero() && m.CreatedTime.Before(q.MinCreatedDate) {
		return false
	}
	if !q.MaxCreatedDate.IsZero() && m.CreatedTime.After(q.MaxCreatedDate) {
		return false
	}
	if !q.MinModifiedDate.IsZero() && m.ModifiedTime.Before(q.MinModifiedDate) {
		return false
	}
	if !q.MaxModifiedDate.IsZero() && m.ModifiedTime.After(q.MaxModifiedDate) {
		return false
	}

	if q.ExtensionFilter != "" {
		want := strings.ToLower(strings.TrimPrefix(q.ExtensionFilter, "."))
		if m.Extension != want {
			return false
		}
	}

	for _, excluded := range q.ExcludedPaths {
		if strings.Contains(m.FullPath, excluded) {
			return false
		}
	}

	searchable := m.FullPath
	if q.SearchFileNameOnly {
		searchable = m.Name
	}
	return tm.matches(searchable)
}
