// Package queryeval plans and executes SearchQuery requests against the
// composite index, falling back to a live filesystem scan when the index
// does not yet cover the requested roots.
package queryeval

import "time"

// SearchQuery is the structured form every search ultimately compiles
// down to; NewTextQuery builds one with sane defaults.
type SearchQuery struct {
	SearchText            string
	BasePath              string
	SearchLocations       []string
	IncludeSubdirectories bool
	SearchFileNameOnly    bool
	UseRegex              bool
	CaseSensitive         bool
	ExtensionFilter       string
	IncludeFiles          bool
	IncludeDirectories    bool
	IncludeHidden         bool
	IncludeSystem         bool
	MinSize               int64
	MaxSize               int64 // 0 means unbounded
	MinCreatedDate        time.Time
	MaxCreatedDate        time.Time
	MinModifiedDate       time.Time
	MaxModifiedDate       time.Time
	ExcludedPaths         []string
	MaxResults            int // 0 means unbounded
	Timeout               time.Duration
}

// NewTextQuery builds a query matching text against each entry's full path
// (as a wildcard pattern when text contains '*' or '?', otherwise as a
// case-insensitive substring), recursing subdirectories, including both
// files and directories but excluding hidden/system entries — the
// convenience form over the structured query.
func NewTextQuery(text string) SearchQuery {
	return SearchQuery{
		SearchText:            text,
		IncludeSubdirectories: true,
		IncludeFiles:          true,
		IncludeDirectories:    true,
	}
}
