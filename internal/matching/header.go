package matching

import (
	"net/http"
	"net/url"
	"strings"
)

// MatchMethod checks if the request method matches (case-insensitive).
func MatchMethod(expected, actual string) bool {
	return strings.EqualFold(expected, actual)
}

// MatchHeaderPattern checks if a header matches a pattern.
// Supports exact values plus simple wildcard forms: prefix ("Bearer *"),
// suffix ("*.json"), and contains ("*token*"). A missing header never
// matches.
func MatchHeaderPattern(name, pattern string, headers http.Header) bool {
	actual := headers.Get(name)
	if actual == "" {
		return false
	}
	return matchWildcardValue(pattern, actual)
}

// MatchHeaders checks that every expected header matches its pattern.
func MatchHeaders(expected map[string]string, headers http.Header) bool {
	for name, pattern := range expected {
		if !MatchHeaderPattern(name, pattern, headers) {
			return false
		}
	}
	return true
}

// MatchQueryParam checks a single query parameter against a pattern,
// using the same wildcard forms as header matching. Any value of a
// repeated parameter may satisfy the pattern.
func MatchQueryParam(name, pattern string, query url.Values) bool {
	values, ok := query[name]
	if !ok {
		return false
	}
	for _, v := range values {
		if matchWildcardValue(pattern, v) {
			return true
		}
	}
	return false
}

// MatchQueryParams checks that every expected query parameter matches.
func MatchQueryParams(expected map[string]string, query url.Values) bool {
	for name, pattern := range expected {
		if !MatchQueryParam(name, pattern, query) {
			return false
		}
	}
	return true
}

func matchWildcardValue(pattern, actual string) bool {
	if !strings.Contains(pattern, "*") {
		return actual == pattern
	}
	switch {
	case strings.HasSuffix(pattern, "*") && !strings.HasPrefix(pattern, "*"):
		return strings.HasPrefix(actual, strings.TrimSuffix(pattern, "*"))
	case strings.HasPrefix(pattern, "*") && !strings.HasSuffix(pattern, "*"):
		return strings.HasSuffix(actual, strings.TrimPrefix(pattern, "*"))
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(actual, strings.Trim(pattern, "*"))
	}
	return false
}
