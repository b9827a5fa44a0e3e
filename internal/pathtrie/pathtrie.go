// Package pathtrie implements a segment-keyed trie over full paths, letting
// the composite index answer "every record at or under this path" in
// O(segments) instead of scanning the whole index.
package pathtrie

import (
	"strings"

	"github.com/brightloom/filescan/pkg/pathutil"
)

// Index is a tree rooted at a synthetic volume node. Each node maps a
// case-folded path segment to a child and holds the set of primary keys
// whose full path equals that node's path.
type Index struct {
	root *node
}

type node struct {
	children map[string]*node
	keys     map[string]struct{} // primary keys whose full path is exactly this node
	refs     int                 // number of live keys in this node's subtree (self + descendants)
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// New creates an empty trie.
func New() *Index {
	return &Index{root: newNode()}
}

// Add inserts primaryKey at the node for fullPath, creating any missing
// segment nodes along the way.
func (idx *Index) Add(fullPath, primaryKey string) {
	segs := pathutil.Segments(fullPath)
	n := idx.root
	n.refs++
	for _, seg := range segs {
		key := foldSegment(seg)
		child, ok := n.children[key]
		if !ok {
			child = newNode()
			n.children[key] = child
		}
		child.refs++
		n = child
	}
	if n.keys == nil {
		n.keys = make(map[string]struct{})
	}
	n.keys[primaryKey] = struct{}{}
}

// Remove deletes primaryKey from the node for fullPath. If the node and its
// whole subtree become empty, the now-dead path is pruned back up to (but
// not including) the root.
func (idx *Index) Remove(fullPath, primaryKey string) {
	segs := pathutil.Segments(fullPath)

	path := make([]*node, 0, len(segs)+1)
	path = append(path, idx.root)

	n := idx.root
	for _, seg := range segs {
		child, ok := n.children[foldSegment(seg)]
		if !ok {
			return // path not present; nothing to remove
		}
		path = append(path, child)
		n = child
	}

	if n.keys != nil {
		delete(n.keys, primaryKey)
		if len(n.keys) == 0 {
			n.keys = nil
		}
	}

	// Decrement refs root-to-leaf, then prune empty leaves leaf-to-root.
	for _, pn := range path {
		pn.refs--
	}
	for i := len(path) - 1; i >= 1; i-- {
		child := path[i]
		parent := path[i-1]
		if child.refs == 0 && len(child.children) == 0 {
			childSeg := foldSegment(segs[i-1])
			delete(parent.children, childSeg)
		} else {
			break
		}
	}
}

// ContainsPath reports whether the trie has a node for the full
// segmentation of fullPath (regardless of whether that node carries any
// keys directly — it may just be an ancestor of indexed paths).
func (idx *Index) ContainsPath(fullPath string) bool {
	_, ok := idx.walk(fullPath)
	return ok
}

// FilesUnder returns every primary key in the subtree rooted at prefix,
// including keys at prefix itself. Order is deterministic but unspecified
// beyond that (depth-first, map iteration order per level).
func (idx *Index) FilesUnder(prefix string) []string {
	n, ok := idx.walk(prefix)
	if !ok {
		return nil
	}

	out := make([]string, 0, n.refs)
	collect(n, &out)
	return out
}

func collect(n *node, out *[]string) {
	for k := range n.keys {
		*out = append(*out, k)
	}
	for _, c := range n.children {
		collect(c, out)
	}
}

func (idx *Index) walk(fullPath string) (*node, bool) {
	segs := pathutil.Segments(fullPath)
	n := idx.root
	for _, seg := range segs {
		child, ok := n.children[foldSegment(seg)]
		if !ok {
			return nil, false
		}
		n = child
	}
	return n, true
}

func foldSegment(seg string) string {
	return strings.ToLower(seg)
}
