// Package config loads and saves rule sets from JSON and YAML files.
package config

import (
	"fmt"

	"github.com/getmockd/interceptd/pkg/rule"
)

// RuleSet is the on-disk collection format for interception rules.
type RuleSet struct {
	// Version is the format version, currently "1.0".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Name is an optional label for the rule set.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Rules are evaluated in order; the first match wins.
	Rules []*rule.Rule `json:"rules" yaml:"rules"`
}

// Validate checks every rule, reporting the index of the first invalid
// one. A rule set with no rules is valid; the engine forwards everything.
func (rs *RuleSet) Validate() error {
	for i, r := range rs.Rules {
		if r == nil {
			return fmt.Errorf("rules[%d]: rule is null", i)
		}
		if err := r.Validate(); err != nil {
			label := r.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			return fmt.Errorf("rules[%d] (%s): %w", i, label, err)
		}
	}
	return nil
}
