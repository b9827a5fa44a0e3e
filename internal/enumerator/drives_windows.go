//go:build windows

package enumerator

import "os"

// DiscoverVolumes enumerates A:\ through Z:\ and returns the drive letters
// that actually exist, for callers that start indexing without naming
// explicit locations.
func DiscoverVolumes() []string {
	var roots []string
	for c := 'A'; c <= 'Z'; c++ {
		root := string([]rune{c, ':'}) + `\`
		if _, err := os.Stat(root); err == nil {
			roots = append(roots, root)
		}
	}
	return roots
}
