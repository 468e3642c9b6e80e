package intercept

import (
	"fmt"
	"os"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/getmockd/interceptd/internal/matching"
	"github.com/getmockd/interceptd/pkg/rule"
)

// compiledRule is the load-time compiled form of a rule. All patterns,
// globs, JSONPath expressions, and when-programs are compiled here so
// evaluation is pure computation.
type compiledRule struct {
	source  *rule.Rule
	host    *matching.ValueMatcher
	path    *matching.ValueMatcher
	body    *matching.BodyCriteria
	when    *vm.Program
	respond *compiledResponse
}

// compiledResponse holds the response recipe with the body file already
// read, so Evaluate never touches the filesystem.
type compiledResponse struct {
	statusCode int
	headers    map[string]string
	body       string
	delay      time.Duration
	jitter     time.Duration
}

// compileRules validates and compiles a rule list. The first invalid
// rule aborts with its index and name in the error.
func compileRules(rules []*rule.Rule) ([]*compiledRule, error) {
	compiled := make([]*compiledRule, 0, len(rules))
	for i, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			label := ""
			if r != nil && r.Name != "" {
				label = fmt.Sprintf(" (%s)", r.Name)
			}
			return nil, fmt.Errorf("rules[%d]%s: %w", i, label, err)
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

func compileRule(r *rule.Rule) (*compiledRule, error) {
	if r == nil {
		return nil, fmt.Errorf("rule is nil")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	cr := &compiledRule{source: r}

	if m := r.Match; m != nil {
		var err error
		if cr.host, err = compileStringMatch(m.Host); err != nil {
			return nil, fmt.Errorf("host: %w", err)
		}
		if cr.path, err = compileStringMatch(m.Path); err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}

		if cr.body, err = matching.CompileBody(m.BodyEquals, m.BodyContains, m.BodyPattern, m.BodyJSONPath); err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}

		if m.When != "" {
			program, err := expr.Compile(m.When, expr.AsBool(), expr.AllowUndefinedVariables())
			if err != nil {
				return nil, fmt.Errorf("when: %w", err)
			}
			cr.when = program
		}
	}

	if r.Respond != nil {
		resp, err := compileResponse(r.Respond)
		if err != nil {
			return nil, err
		}
		cr.respond = resp
	}

	return cr, nil
}

func compileStringMatch(s *rule.StringMatch) (*matching.ValueMatcher, error) {
	if s == nil {
		return nil, nil
	}
	kind, pattern, err := s.Kind()
	if err != nil {
		return nil, err
	}
	return matching.Compile(matching.Kind(kind), pattern)
}

func compileResponse(t *rule.ResponseTemplate) (*compiledResponse, error) {
	resp := &compiledResponse{
		statusCode: t.StatusCode,
		headers:    t.Headers,
		body:       t.Body,
		delay:      time.Duration(t.DelayMs) * time.Millisecond,
		jitter:     time.Duration(t.JitterMs) * time.Millisecond,
	}

	if t.BodyFile != "" {
		data, err := os.ReadFile(t.BodyFile)
		if err != nil {
			return nil, fmt.Errorf("bodyFile: %w", err)
		}
		resp.body = string(data)
	}

	return resp, nil
}

// matches evaluates every configured criterion against the descriptor.
// env is the pre-built when-expression environment, shared across rules
// for one evaluation.
func (c *compiledRule) matches(d *RequestDescriptor, env map[string]any) bool {
	m := c.source.Match
	if m == nil {
		return true
	}

	if m.Method != "" && !matching.MatchMethod(m.Method, d.Method) {
		return false
	}
	if c.host != nil && !c.host.Match(d.Host) {
		return false
	}
	if c.path != nil && !c.path.Match(d.Path) {
		return false
	}
	if !matching.MatchHeaders(m.Headers, d.Headers) {
		return false
	}
	if !matching.MatchQueryParams(m.QueryParams, d.Query) {
		return false
	}
	if !c.body.Empty() && !c.body.Match(d.Body) {
		return false
	}

	if c.when != nil {
		out, err := expr.Run(c.when, env)
		if err != nil {
			// A runtime failure (e.g. field access on a non-JSON body)
			// means the predicate does not hold.
			return false
		}
		b, ok := out.(bool)
		if !ok || !b {
			return false
		}
	}

	return true
}
