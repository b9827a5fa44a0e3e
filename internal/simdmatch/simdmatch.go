// Package simdmatch implements case-insensitive substring and wildcard
// matching, dispatched across chunk widths chosen from the running CPU's
// vector capability. Go has no portable compiler intrinsic for vector
// compares without assembly, so each "tier" here is a manual unrolled
// byte-chunk loop sharing identical semantics with the scalar tier — only
// throughput differs between tiers.
package simdmatch

import (
	"strings"

	"golang.org/x/sys/cpu"
)

// Tier identifies which chunk width a Matcher is currently dispatching to.
type Tier int

const (
	TierScalar Tier = iota
	Tier128
	Tier256
)

func (t Tier) String() string {
	switch t {
	case Tier256:
		return "avx2-256"
	case Tier128:
		return "sse2-128"
	default:
		return "scalar"
	}
}

// Matcher performs case-insensitive substring and wildcard matching,
// selecting the widest chunk size the host CPU supports and the haystack
// length justifies.
type Matcher struct {
	tier Tier
}

// New detects the host's vector capability once and returns a Matcher
// that dispatches accordingly for the rest of its lifetime.
func New() *Matcher {
	m := &Matcher{tier: TierScalar}
	if cpu.X86.HasAVX2 {
		m.tier = Tier256
	} else if cpu.X86.HasSSE2 {
		m.tier = Tier128
	}
	return m
}

// Tier reports the chunk width this matcher dispatches to.
func (m *Matcher) Tier() Tier { return m.tier }

const (
	chunk256 = 32
	chunk128 = 16
)

// ContainsCI reports whether needle occurs in haystack, case-insensitively.
// All-ASCII inputs are folded inside the chunk scan; if either input has a
// non-ASCII byte, both are lowercased whole and compared with
// strings.Contains, without the chunked prefilter.
func (m *Matcher) ContainsCI(haystack, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	if len(haystack) < len(needle) {
		return false
	}

	switch {
	case m.tier == Tier256 && len(haystack) >= chunk256:
		return containsChunked(haystack, needle, chunk256)
	case m.tier >= Tier128 && len(haystack) >= chunk128:
		return containsChunked(haystack, needle, chunk128)
	default:
		return containsScalar(haystack, needle)
	}
}

// containsChunked scans haystack window-start positions grouped into
// strides of width, using the first and last byte of the needle
// (ASCII-folded) to cheaply reject a window before paying for a full
// interior compare — the byte-chunk analogue of the vectorized
// two-mask-and-verify algorithm. Non-ASCII input falls back to a
// strings.ToLower-based scalar compare, since the folded first/last-byte
// prefilter only holds for single-byte ASCII characters.
func containsChunked(haystack, needle string, width int) bool {
	if !isASCII(haystack) || !isASCII(needle) {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}

	first := asciiFold(needle[0])
	last := asciiFold(needle[len(needle)-1])
	nlen := len(needle)
	limit := len(haystack) - nlen // last valid window-start index

	for base := 0; base <= limit; base += width {
		end := base + width
		if end > limit+1 {
			end = limit + 1
		}
		for j := base; j < end; j++ {
			if asciiFold(haystack[j]) != first {
				continue
			}
			if asciiFold(haystack[j+nlen-1]) != last {
				continue
			}
			if regionMatchFold(haystack[j:j+nlen], needle) {
				return true
			}
		}
	}
	return false
}

func containsScalar(haystack, needle string) bool {
	if !isASCII(haystack) || !isASCII(needle) {
		return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
	}
	nlen := len(needle)
	limit := len(haystack) - nlen
	first := asciiFold(needle[0])
	for i := 0; i <= limit; i++ {
		if asciiFold(haystack[i]) != first {
			continue
		}
		if regionMatchFold(haystack[i:i+nlen], needle) {
			return true
		}
	}
	return false
}

func regionMatchFold(a, b string) bool {
	if isASCII(a) && isASCII(b) {
		for i := 0; i < len(a); i++ {
			if asciiFold(a[i]) != asciiFold(b[i]) {
				return false
			}
		}
		return true
	}
	return strings.EqualFold(a, b)
}

func asciiFold(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c | 0x20
	}
	return c
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// MatchesWildcard reports whether pattern occurs anywhere in text, where
// '*' matches any run of characters (including none) and '?' matches
// exactly one character, the same unanchored semantics as ContainsCI, so
// a pattern with no leading/trailing '*' still matches inside a longer
// path instead of requiring the whole string to match the glob. Matching
// is case-insensitive, mirroring the index's casing discipline.
func (m *Matcher) MatchesWildcard(text, pattern string) bool {
	return matchWildcard(foldString(text), unanchor(foldString(pattern)))
}

// unanchor wraps pattern in leading/trailing '*' (redundant, and harmless,
// if already present) so the anchored two-pointer matcher below accepts a
// match anywhere in the text rather than only a full-string match.
func unanchor(pattern string) string {
	return "*" + pattern + "*"
}

func foldString(s string) string {
	if isASCII(s) {
		b := []byte(s)
		for i := range b {
			b[i] = asciiFold(b[i])
		}
		return string(b)
	}
	return strings.ToLower(s)
}

// matchWildcard is a classic O(len(text)*len(pattern)) two-pointer glob
// matcher with backtracking on '*', operating on already-folded strings.
func matchWildcard(text, pattern string) bool {
	var ti, pi int
	var star, match int = -1, 0

	for ti < len(text) {
		if pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == text[ti]) {
			ti++
			pi++
		} else if pi < len(pattern) && pattern[pi] == '*' {
			star = pi
			match = ti
			pi++
		} else if star != -1 {
			pi = star + 1
			match++
			ti = match
		} else {
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
