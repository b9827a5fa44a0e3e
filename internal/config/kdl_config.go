package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// boolFieldsSet records which of IndexingOptions's boolean fields a
// parsed KDL file actually set, so mergeOptions can tell "the file set
// this to false" apart from "the file never mentioned this" and leave
// the latter at the base default.
type boolFieldsSet struct {
	IncludeHidden    bool
	IncludeSystem    bool
	FollowSymlinks   bool
	EnableMonitoring bool
	RespectGitignore bool
	PreferMFT        bool
	CollectFileSize  bool
}

// LoadKDL attempts to load indexing options from a .filescan.kdl file in
// root. found is false (with a nil error) when no such file exists.
func LoadKDL(root string) (opts IndexingOptions, set boolFieldsSet, found bool, err error) {
	path := filepath.Join(root, ".filescan.kdl")

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return IndexingOptions{}, boolFieldsSet{}, false, nil
		}
		return IndexingOptions{}, boolFieldsSet{}, false, fmt.Errorf("reading %s: %w", path, err)
	}

	opts, set, err = parseKDL(string(content))
	if err != nil {
		return IndexingOptions{}, boolFieldsSet{}, false, err
	}
	return opts, set, true, nil
}

func parseKDL(content string) (IndexingOptions, boolFieldsSet, error) {
	var opts IndexingOptions
	var set boolFieldsSet

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return opts, set, fmt.Errorf("parsing KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "locations":
			opts.Locations = collectStringArgs(n)
		case "exclude_paths":
			opts.ExcludedPaths = collectStringArgs(n)
		case "exclude_extensions":
			opts.ExcludedExtensions = collectStringArgs(n)
		case "include_hidden":
			if b, ok := firstBoolArg(n); ok {
				opts.IncludeHidden = b
				set.IncludeHidden = true
			}
		case "include_system":
			if b, ok := firstBoolArg(n); ok {
				opts.IncludeSystem = b
				set.IncludeSystem = true
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(n); ok {
				opts.FollowSymlinks = b
				set.FollowSymlinks = true
			}
		case "enable_monitoring":
			if b, ok := firstBoolArg(n); ok {
				opts.EnableMonitoring = b
				set.EnableMonitoring = true
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(n); ok {
				opts.RespectGitignore = b
				set.RespectGitignore = true
			}
		case "prefer_mft":
			if b, ok := firstBoolArg(n); ok {
				opts.PreferMFT = b
				set.PreferMFT = true
			}
		case "max_file_size":
			if s, ok := firstStringArg(n); ok {
				if sz, err := parseSize(s); err == nil {
					opts.MaxFileSize = sz
				}
			} else if v, ok := firstIntArg(n); ok {
				opts.MaxFileSize = int64(v)
			}
		case "parallel_threads":
			if v, ok := firstIntArg(n); ok {
				opts.ParallelThreads = v
			}
		case "batch_size":
			if v, ok := firstIntArg(n); ok {
				opts.BatchSize = v
			}
		case "collect_file_size":
			if b, ok := firstBoolArg(n); ok {
				opts.CollectFileSize = b
				set.CollectFileSize = true
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(n); ok {
				opts.WatchDebounceMs = v
			}
		case "mft_buffer_size":
			if s, ok := firstStringArg(n); ok {
				if sz, err := parseSize(s); err == nil {
					opts.MFTBufferBytes = int(sz)
				}
			} else if v, ok := firstIntArg(n); ok {
				opts.MFTBufferBytes = v
			}
		case "indexing_timeout_sec":
			if v, ok := firstIntArg(n); ok {
				opts.IndexingTimeoutS = v
			}
		}
	}

	return opts, set, nil
}

// --- kdl-go document helpers -------------------------------------------------

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}

	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
