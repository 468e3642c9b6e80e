// Package matching provides the pure request-matching predicates used by
// the interception engine. All matchers are compiled at rule-load time;
// evaluation never allocates pattern state and never fails.
package matching

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind identifies how a string criterion compares against a field value.
type Kind string

const (
	KindExact    Kind = "exact"
	KindPrefix   Kind = "prefix"
	KindSuffix   Kind = "suffix"
	KindContains Kind = "contains"
	KindGlob     Kind = "glob"
	KindPattern  Kind = "pattern"
)

// ValueMatcher is a compiled predicate over a single string field
// (host, path, ...). The zero value matches nothing; use Compile.
type ValueMatcher struct {
	kind    Kind
	pattern string
	re      *regexp.Regexp
}

// Compile builds a ValueMatcher for the given kind and pattern.
// Pattern kinds use Go's RE2 syntax; glob kinds use doublestar syntax
// (e.g. "*.openai.com", "/v1/**"). Invalid patterns are load-time errors.
func Compile(kind Kind, pattern string) (*ValueMatcher, error) {
	m := &ValueMatcher{kind: kind, pattern: pattern}

	switch kind {
	case KindExact, KindPrefix, KindSuffix, KindContains:
		// Literal comparisons need no compilation.
	case KindGlob:
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	case KindPattern:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.re = re
	default:
		return nil, fmt.Errorf("unknown matcher kind %q", kind)
	}

	return m, nil
}

// Kind returns the matcher's comparison kind.
func (m *ValueMatcher) Kind() Kind { return m.kind }

// Pattern returns the configured pattern.
func (m *ValueMatcher) Pattern() string { return m.pattern }

// Match reports whether value satisfies the predicate.
func (m *ValueMatcher) Match(value string) bool {
	switch m.kind {
	case KindExact:
		return value == m.pattern
	case KindPrefix:
		return strings.HasPrefix(value, m.pattern)
	case KindSuffix:
		return strings.HasSuffix(value, m.pattern)
	case KindContains:
		return strings.Contains(value, m.pattern)
	case KindGlob:
		ok, err := doublestar.Match(m.pattern, value)
		return err == nil && ok
	case KindPattern:
		return m.re != nil && m.re.MatchString(value)
	default:
		return false
	}
}

// Captures returns named capture groups for pattern matchers, or nil for
// every other kind. Non-matching values also return nil.
func (m *ValueMatcher) Captures(value string) map[string]string {
	if m.kind != KindPattern || m.re == nil {
		return nil
	}
	match := m.re.FindStringSubmatch(value)
	if match == nil {
		return nil
	}
	captures := make(map[string]string)
	for i, name := range m.re.SubexpNames() {
		if i > 0 && name != "" && i < len(match) {
			captures[name] = match[i]
		}
	}
	return captures
}

// ValidKind reports whether s names a supported matcher kind.
func ValidKind(s string) bool {
	switch Kind(s) {
	case KindExact, KindPrefix, KindSuffix, KindContains, KindGlob, KindPattern:
		return true
	}
	return false
}
