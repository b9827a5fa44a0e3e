package queryeval

import (
	"regexp"
	"strings"

	"github.com/brightloom/filescan/internal/simdmatch"
)

// textMatcher decides whether one candidate's searchable text satisfies
// the query's text predicate. It is built once per query and reused
// across every candidate.
type textMatcher struct {
	accept func(text string) bool
}

func (t textMatcher) matches(text string) bool {
	if t.accept == nil {
		return true
	}
	return t.accept(text)
}

// buildTextMatcher compiles q's text predicate once, per §4.8 step 5:
// explicit regex first, then wildcard (only when use_regex is false and
// the text actually contains a wildcard), then plain substring, then the
// empty-text listing-mode accept-all.
func buildTextMatcher(q SearchQuery, simd *simdmatch.Matcher) (textMatcher, error) {
	if q.SearchText == "" {
		return textMatcher{}, nil
	}

	if q.UseRegex {
		pattern := q.SearchText
		if !q.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return textMatcher{}, err
		}
		return textMatcher{accept: re.MatchString}, nil
	}

	if hasWildcard(q.SearchText) {
		pattern := q.SearchText
		if q.CaseSensitive {
			return textMatcher{accept: func(text string) bool {
				return matchWildcardCaseSensitive(text, pattern)
			}}, nil
		}
		return textMatcher{accept: func(text string) bool {
			return simd.MatchesWildcard(text, pattern)
		}}, nil
	}

	needle := q.SearchText
	if q.CaseSensitive {
		return textMatcher{accept: func(text string) bool {
			return strings.Contains(text, needle)
		}}, nil
	}
	return textMatcher{accept: func(text string) bool {
		return simd.ContainsCI(text, needle)
	}}, nil
}

func hasWildcard(s string) bool {
	return strings.ContainsAny(s, "*?")
}

// matchWildcardCaseSensitive is the ordinal counterpart to
// simdmatch.Matcher.MatchesWildcard for case_sensitive queries: classic
// two-pointer backtracking over '*' and '?' without folding either side.
// pattern is wrapped in leading/trailing '*' so a pattern with no wildcard
// at either end still matches anywhere in text, matching ContainsCI's
// unanchored substring semantics instead of requiring a full-string match.
func matchWildcardCaseSensitive(text, rawPattern string) bool {
	pattern := "*" + rawPattern + "*"
	var ti, pi, star, match int
	star = -1
	for ti < len(text) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == text[ti]):
			ti++
			pi++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			match = ti
			pi++
		case star != -1:
			pi = star + 1
			match++
			ti = match
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
