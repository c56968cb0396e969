package pipeline

import (
	"fmt"
	"path"
	"strings"
)

// Matcher decides whether a request path belongs to a chain.
type Matcher interface {
	Match(path string) bool
	String() string
}

// AnyMatcher accepts every path.
type AnyMatcher struct{}

// Match implements Matcher.
func (AnyMatcher) Match(string) bool { return true }

func (AnyMatcher) String() string { return "/**" }

// AntMatcher matches Ant-style patterns: '?' matches one character, '*'
// matches within a segment, and a "**" segment matches zero or more
// segments. "/images/**" therefore matches "/images" and everything below
// it. Matching is case-sensitive.
type AntMatcher struct {
	pattern  string
	segments []string
}

// NewAntMatcher compiles pattern. Patterns must be absolute.
func NewAntMatcher(pattern string) (*AntMatcher, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("path pattern %q must start with /", pattern)
	}
	segs := splitPath(pattern)
	for _, s := range segs {
		if s == "**" {
			continue
		}
		if strings.Contains(s, "**") {
			return nil, fmt.Errorf("path pattern %q: ** must be a whole segment", pattern)
		}
		if _, err := path.Match(s, ""); err != nil {
			return nil, fmt.Errorf("path pattern %q: %w", pattern, err)
		}
	}
	return &AntMatcher{pattern: pattern, segments: segs}, nil
}

// MustAntMatcher is NewAntMatcher that panics on a bad pattern.
func MustAntMatcher(pattern string) *AntMatcher {
	m, err := NewAntMatcher(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match implements Matcher.
func (m *AntMatcher) Match(p string) bool {
	return matchSegments(m.segments, splitPath(p))
}

func (m *AntMatcher) String() string { return m.pattern }

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], segs[0]); !ok {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
