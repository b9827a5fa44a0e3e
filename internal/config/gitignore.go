package config

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// GitignoreParser loads a .gitignore file and answers ShouldIgnore for
// paths the enumerator and observer walk, the same exclusion semantics
// git itself applies when deciding what to track.
type GitignoreParser struct {
	patterns []GitignorePattern

	// regexCache memoizes compiled patterns keyed by their regex form,
	// since the same complex pattern can recur across many .gitignore
	// files loaded in one indexing run.
	regexCache sync.Map
}

type GitignorePattern struct {
	Pattern   string
	Negate    bool
	Directory bool
	Absolute  bool

	patternType PatternType
	compiled    *regexp.Regexp
	prefix      string // set only when patternType is PatternPrefix
	suffix      string // set only when patternType is PatternSuffix
}

// PatternType classifies a pattern so matchesPattern can skip straight to
// the cheapest comparison that applies, instead of compiling every
// pattern to a regex.
type PatternType int

const (
	PatternExact PatternType = iota
	PatternPrefix
	PatternSuffix
	PatternContains
	PatternWildcard
	PatternComplex
)

// NewGitignoreParser returns an empty parser ready for LoadGitignore.
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{
		patterns: make([]GitignorePattern, 0),
	}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file
// is not an error: most directories this walks won't have one.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	gitignorePath := filepath.Join(rootPath, ".gitignore")

	file, err := os.Open(gitignorePath)
	if err != nil {
		return nil
	}
	defer file.Close()

	return gp.scanAndParsePatterns(file)
}

func (gp *GitignoreParser) scanAndParsePatterns(file *os.File) error {
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.patterns = append(gp.patterns, gp.parsePattern(line))
	}
	return scanner.Err()
}

func (gp *GitignoreParser) parsePattern(line string) GitignorePattern {
	pattern := GitignorePattern{}
	line = gp.extractPatternModifiers(&pattern, line)
	pattern.Pattern = line
	pattern.patternType, pattern.prefix, pattern.suffix, pattern.compiled = gp.classifyPattern(line)
	return pattern
}

// extractPatternModifiers strips and records the leading "!" (negate),
// trailing "/" (directory-only), and leading "/" (absolute) modifiers,
// returning the bare pattern underneath.
func (gp *GitignoreParser) extractPatternModifiers(pattern *GitignorePattern, line string) string {
	if strings.HasPrefix(line, "!") {
		pattern.Negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		pattern.Directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		pattern.Absolute = true
		line = line[1:]
	}
	return line
}

// classifyPattern picks the cheapest matcher that can decide pattern:
// an exact string, a bare prefix or suffix (for single-"*" globs like
// "*.log" or "build*"), or a compiled regex for anything with "?" or "["
// or more than one "*".
func (gp *GitignoreParser) classifyPattern(pattern string) (PatternType, string, string, *regexp.Regexp) {
	if !strings.ContainsAny(pattern, "*?[") {
		return PatternExact, pattern, pattern, nil
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "?") && !strings.Contains(pattern, "[") {
		if strings.HasPrefix(pattern, "*") && !strings.Contains(pattern[1:], "*") {
			return PatternSuffix, "", pattern[1:], nil
		}
		if strings.HasSuffix(pattern, "*") && !strings.Contains(pattern[:len(pattern)-1], "*") {
			return PatternPrefix, pattern[:len(pattern)-1], "", nil
		}
	}

	return gp.compileAndCachePattern(pattern)
}

// compileAndCachePattern compiles pattern's regex form and caches it,
// since the same complex pattern often recurs across sibling directories'
// .gitignore files.
func (gp *GitignoreParser) compileAndCachePattern(pattern string) (PatternType, string, string, *regexp.Regexp) {
	regexPattern := globToRegex(pattern)

	if cached, ok := gp.regexCache.Load(regexPattern); ok {
		return PatternComplex, "", "", cached.(*regexp.Regexp)
	}

	compiled, err := regexp.Compile(regexPattern)
	if err != nil {
		return PatternWildcard, "", "", nil
	}

	gp.regexCache.Store(regexPattern, compiled)
	return PatternComplex, "", "", compiled
}

func globToRegex(pattern string) string {
	regex := regexp.QuoteMeta(pattern)
	regex = strings.ReplaceAll(regex, `\*`, `.*`)
	regex = strings.ReplaceAll(regex, `\?`, `.`)
	regex = strings.ReplaceAll(regex, `\[`, `[`)
	regex = strings.ReplaceAll(regex, `\]`, `]`)
	return "^" + regex + "$"
}

// ShouldIgnore reports whether path is excluded by the loaded patterns.
// Patterns are applied in file order, so a later "!" negation pattern can
// un-ignore what an earlier pattern matched, mirroring git's own rule
// that the last matching pattern in the file wins.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	path = filepath.ToSlash(path)

	ignored := false
	for _, pattern := range gp.patterns {
		if gp.matchesPattern(pattern, path, isDir) {
			ignored = !pattern.Negate
		}
	}
	return ignored
}

func (gp *GitignoreParser) matchesPattern(pattern GitignorePattern, path string, isDir bool) bool {
	if pattern.Directory {
		if isDir {
			return gp.matchDirectory(pattern, path)
		}
		return gp.matchInsideDirectory(pattern, path)
	}

	if pattern.Absolute {
		return gp.fastMatchPattern(pattern, path)
	}

	// A relative pattern matches the full path or any path suffix, since
	// gitignore patterns apply at every directory depth unless anchored.
	if gp.fastMatchPattern(pattern, path) {
		return true
	}
	pathParts := strings.Split(path, "/")
	for i := 0; i < len(pathParts); i++ {
		if gp.fastMatchPattern(pattern, strings.Join(pathParts[i:], "/")) {
			return true
		}
	}
	return false
}

func (gp *GitignoreParser) fastMatchPattern(pattern GitignorePattern, path string) bool {
	switch pattern.patternType {
	case PatternExact:
		return pattern.Pattern == path
	case PatternPrefix:
		return strings.HasPrefix(path, pattern.prefix)
	case PatternSuffix:
		return strings.HasSuffix(path, pattern.suffix)
	case PatternComplex:
		return pattern.compiled.MatchString(path)
	case PatternWildcard:
		matched, _ := filepath.Match(pattern.Pattern, path)
		return matched
	default:
		return pattern.Pattern == path
	}
}

func (gp *GitignoreParser) matchDirectory(pattern GitignorePattern, path string) bool {
	if gp.fastMatchPattern(pattern, path) {
		return true
	}
	// "dir/**" also covers everything under dir, not just dir itself.
	if strings.HasSuffix(pattern.Pattern, "/**") {
		basePattern := strings.TrimSuffix(pattern.Pattern, "/**")
		if path == basePattern || strings.HasPrefix(path, basePattern+"/") {
			return true
		}
	}
	return false
}

func (gp *GitignoreParser) matchInsideDirectory(pattern GitignorePattern, path string) bool {
	if strings.HasPrefix(path, pattern.Pattern+"/") {
		return true
	}
	return gp.fastMatchPattern(pattern, path)
}
