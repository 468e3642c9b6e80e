// Package rule defines the interception rule data model: what to match
// on an inbound request and what to do when it matches.
package rule

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Action determines what happens when a rule matches.
type Action string

const (
	// ActionForward passes the request through to the upstream untouched.
	ActionForward Action = "forward"
	// ActionRespond short-circuits the request with a synthesized response.
	ActionRespond Action = "respond"
)

// Rule pairs a matcher with an action. Rules are evaluated in declared
// order; the first match wins.
type Rule struct {
	// Name is a human-readable label used in logs and error messages.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Match selects which requests the rule applies to. A nil matcher
	// matches every request.
	Match *Matcher `json:"match,omitempty" yaml:"match,omitempty"`

	// Action is forward or respond.
	Action Action `json:"action" yaml:"action"`

	// Respond is the response recipe; required when Action is respond.
	Respond *ResponseTemplate `json:"respond,omitempty" yaml:"respond,omitempty"`
}

// IsEnabled reports whether the rule participates in evaluation.
func (r *Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Matcher defines the matching criteria for a rule. All populated
// criteria must hold for the rule to match (AND semantics).
type Matcher struct {
	Host         *StringMatch      `json:"host,omitempty" yaml:"host,omitempty"`
	Path         *StringMatch      `json:"path,omitempty" yaml:"path,omitempty"`
	Method       string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams  map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	BodyEquals   string            `json:"bodyEquals,omitempty" yaml:"bodyEquals,omitempty"`
	BodyContains string            `json:"bodyContains,omitempty" yaml:"bodyContains,omitempty"`
	BodyPattern  string            `json:"bodyPattern,omitempty" yaml:"bodyPattern,omitempty"`
	BodyJSONPath map[string]any    `json:"bodyJsonPath,omitempty" yaml:"bodyJsonPath,omitempty"`

	// When is an expression over the request (method, host, path, headers,
	// query, body) evaluated as a boolean predicate.
	When string `json:"when,omitempty" yaml:"when,omitempty"`
}

// Empty reports whether no criteria are populated.
func (m *Matcher) Empty() bool {
	return m == nil || (m.Host == nil && m.Path == nil && m.Method == "" &&
		len(m.Headers) == 0 && len(m.QueryParams) == 0 &&
		m.BodyEquals == "" && m.BodyContains == "" && m.BodyPattern == "" &&
		len(m.BodyJSONPath) == 0 && m.When == "")
}

// StringMatch is a one-of string predicate. Exactly one field may be
// set. A bare string in config is shorthand for Exact.
type StringMatch struct {
	Exact    string `json:"exact,omitempty" yaml:"exact,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Contains string `json:"contains,omitempty" yaml:"contains,omitempty"`
	Glob     string `json:"glob,omitempty" yaml:"glob,omitempty"`
	Pattern  string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// Kind returns the populated predicate kind and its pattern. An error
// is returned when zero or more than one field is set.
func (s *StringMatch) Kind() (kind, pattern string, err error) {
	set := 0
	for _, c := range []struct{ kind, pattern string }{
		{"exact", s.Exact},
		{"prefix", s.Prefix},
		{"suffix", s.Suffix},
		{"contains", s.Contains},
		{"glob", s.Glob},
		{"pattern", s.Pattern},
	} {
		if c.pattern != "" {
			set++
			kind, pattern = c.kind, c.pattern
		}
	}
	switch set {
	case 0:
		return "", "", fmt.Errorf("one of exact, prefix, suffix, contains, glob, pattern is required")
	case 1:
		return kind, pattern, nil
	default:
		return "", "", fmt.Errorf("only one of exact, prefix, suffix, contains, glob, pattern may be set")
	}
}

// UnmarshalJSON accepts both the object form {"contains": "x"} and a
// bare string, which is shorthand for an exact match.
func (s *StringMatch) UnmarshalJSON(data []byte) error {
	var shorthand string
	if err := json.Unmarshal(data, &shorthand); err == nil {
		*s = StringMatch{Exact: shorthand}
		return nil
	}

	type stringMatchAlias StringMatch
	var alias stringMatchAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*s = StringMatch(alias)
	return nil
}

// UnmarshalYAML mirrors the JSON shorthand: a bare scalar is an exact
// match.
func (s *StringMatch) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*s = StringMatch{Exact: value.Value}
		return nil
	}

	type stringMatchAlias StringMatch
	var alias stringMatchAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*s = StringMatch(alias)
	return nil
}

// ResponseTemplate is the recipe for a synthesized response. Header
// values and the body may contain {{...}} template expressions.
type ResponseTemplate struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile   string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`
	DelayMs    int               `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`
	JitterMs   int               `json:"jitterMs,omitempty" yaml:"jitterMs,omitempty"`
}

// UnmarshalJSON lets the body be written as an inline JSON object or
// array instead of an escaped string. Non-string bodies are stored as
// their raw JSON text.
func (r *ResponseTemplate) UnmarshalJSON(data []byte) error {
	var proxy struct {
		StatusCode int               `json:"statusCode"`
		Headers    map[string]string `json:"headers,omitempty"`
		Body       json.RawMessage   `json:"body,omitempty"`
		BodyFile   string            `json:"bodyFile,omitempty"`
		DelayMs    int               `json:"delayMs,omitempty"`
		JitterMs   int               `json:"jitterMs,omitempty"`
	}
	if err := json.Unmarshal(data, &proxy); err != nil {
		return err
	}

	r.StatusCode = proxy.StatusCode
	r.Headers = proxy.Headers
	r.BodyFile = proxy.BodyFile
	r.DelayMs = proxy.DelayMs
	r.JitterMs = proxy.JitterMs

	if len(proxy.Body) == 0 {
		r.Body = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(proxy.Body, &s); err == nil {
		r.Body = s
		return nil
	}
	r.Body = string(proxy.Body)
	return nil
}

// UnmarshalYAML lets the body be a YAML mapping or sequence, which is
// converted to its JSON text.
func (r *ResponseTemplate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping node, got %d", value.Kind)
	}

	type responseTemplateAlias ResponseTemplate
	var alias responseTemplateAlias

	var bodyNode *yaml.Node
	for i := 0; i+1 < len(value.Content); i += 2 {
		if value.Content[i].Value == "body" {
			bodyNode = value.Content[i+1]
			break
		}
	}

	if bodyNode == nil || bodyNode.Kind == yaml.ScalarNode {
		if err := value.Decode(&alias); err != nil {
			return err
		}
		*r = ResponseTemplate(alias)
		return nil
	}

	// Structured body: decode everything else with the body blanked out,
	// then convert the body node to JSON text.
	orig := *bodyNode
	*bodyNode = yaml.Node{Kind: yaml.ScalarNode, Value: "", Tag: "!!str"}
	err := value.Decode(&alias)
	*bodyNode = orig
	if err != nil {
		return err
	}
	*r = ResponseTemplate(alias)

	var bodyObj any
	if err := bodyNode.Decode(&bodyObj); err != nil {
		return fmt.Errorf("failed to decode body: %w", err)
	}
	bodyJSON, err := json.Marshal(bodyObj)
	if err != nil {
		return fmt.Errorf("failed to marshal body to JSON: %w", err)
	}
	r.Body = string(bodyJSON)
	return nil
}
