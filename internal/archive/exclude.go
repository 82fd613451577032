package archive

import (
	"fmt"
	"regexp"
	"strings"
)

// ExcludeSet holds glob patterns for paths that should not be archived.
// Patterns follow rsync-ish rules: a bare name matches any path component,
// a pattern containing '/' is anchored to the directory being archived, and
// a trailing '/' restricts the pattern to directories.
type ExcludeSet struct {
	patterns []*excludePattern
}

type excludePattern struct {
	re       *regexp.Regexp
	original string
	dirOnly  bool
}

// NewExcludeSet compiles the given patterns. An invalid pattern is an error.
func NewExcludeSet(patterns []string) (*ExcludeSet, error) {
	set := &ExcludeSet{}
	for _, p := range patterns {
		if err := set.Add(p); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Add compiles and appends one pattern.
func (s *ExcludeSet) Add(pattern string) error {
	cp := &excludePattern{original: pattern}

	if strings.HasSuffix(pattern, "/") {
		cp.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	anchored := strings.Contains(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	reStr := globToRegex(pattern)
	if anchored {
		reStr = "^" + reStr + "$"
	} else {
		reStr = "(^|/)" + reStr + "$"
	}

	re, err := regexp.Compile(reStr)
	if err != nil {
		return fmt.Errorf("invalid exclude pattern %q: %w", cp.original, err)
	}
	cp.re = re
	s.patterns = append(s.patterns, cp)
	return nil
}

// Empty reports whether the set has no patterns.
func (s *ExcludeSet) Empty() bool {
	return s == nil || len(s.patterns) == 0
}

// Match reports whether relPath (relative to the directory being archived,
// slash-separated) is excluded.
func (s *ExcludeSet) Match(relPath string, isDir bool) bool {
	if s == nil {
		return false
	}
	for _, cp := range s.patterns {
		if cp.dirOnly && !isDir {
			continue
		}
		if cp.re.MatchString(relPath) {
			return true
		}
	}
	return false
}

// globToRegex converts a glob pattern to a regex string. '*' stops at path
// separators, '**' crosses them, '?' matches one non-separator character.
func globToRegex(pattern string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					b.WriteString("(.*/)?")
					i += 3
				} else {
					b.WriteString(".*")
					i += 2
				}
			} else {
				b.WriteString("[^/]*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}
