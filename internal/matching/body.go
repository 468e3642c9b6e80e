package matching

import (
	"regexp"
	"strings"
)

// BodyCriteria is the compiled set of body conditions for one rule.
// All configured conditions must hold (AND logic).
type BodyCriteria struct {
	equals   string
	contains string
	re       *regexp.Regexp
	jsonPath []JSONPathCondition
}

// CompileBody builds body criteria from the raw rule fields. The pattern
// is compiled eagerly so malformed regexes fail at load time; jsonPath
// conditions are compiled via CompileJSONPath.
func CompileBody(equals, contains, pattern string, jsonPath map[string]any) (*BodyCriteria, error) {
	c := &BodyCriteria{equals: equals, contains: contains}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		c.re = re
	}

	if len(jsonPath) > 0 {
		conds, err := CompileJSONPath(jsonPath)
		if err != nil {
			return nil, err
		}
		c.jsonPath = conds
	}

	return c, nil
}

// Empty reports whether no body conditions are configured.
func (c *BodyCriteria) Empty() bool {
	return c == nil || (c.equals == "" && c.contains == "" && c.re == nil && len(c.jsonPath) == 0)
}

// Match reports whether the body satisfies every configured condition.
func (c *BodyCriteria) Match(body []byte) bool {
	if c.Empty() {
		return true
	}

	if c.equals != "" && string(body) != c.equals {
		return false
	}
	if c.contains != "" && !strings.Contains(string(body), c.contains) {
		return false
	}
	if c.re != nil && !c.re.Match(body) {
		return false
	}
	if len(c.jsonPath) > 0 && !MatchJSONPath(c.jsonPath, body) {
		return false
	}

	return true
}
