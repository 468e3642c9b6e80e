package config

import (
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadFromGlob loads every rule file matching the pattern (doublestar
// syntax, so "rules/**/*.yaml" works) and merges them into one rule
// set. Files are merged in lexical path order so evaluation order is
// deterministic across hosts.
func LoadFromGlob(pattern string) (*RuleSet, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files match %q", ErrFileNotFound, pattern)
	}

	sort.Strings(paths)

	merged := &RuleSet{Version: "1.0"}
	for _, path := range paths {
		rs, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		if merged.Name == "" {
			merged.Name = rs.Name
		}
		merged.Rules = append(merged.Rules, rs.Rules...)
	}

	return merged, nil
}
