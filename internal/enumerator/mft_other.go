//go:build !windows

package enumerator

import "github.com/brightloom/filescan/internal/config"

// MFTEligible always reports false off Windows: there is no raw volume
// handle API to open, so the orchestrator silently degrades to Standard.
func MFTEligible(opts config.IndexingOptions) bool {
	return false
}

// MFT is unreachable off Windows; callers must check MFTEligible first.
func MFT(volume string, opts config.IndexingOptions) (<-chan Entry, error) {
	return nil, errMFTUnsupported
}
