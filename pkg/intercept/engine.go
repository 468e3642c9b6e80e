package intercept

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/getmockd/interceptd/pkg/logging"
	"github.com/getmockd/interceptd/pkg/rule"
	"github.com/getmockd/interceptd/pkg/template"
)

// Engine evaluates interception rules against request descriptors. It
// is safe for concurrent use: the compiled rule set is an immutable
// snapshot swapped atomically on Reload, so in-flight evaluations never
// observe a partially updated set.
type Engine struct {
	logger    *slog.Logger
	sequences *template.SequenceStore
	renderer  *template.Engine
	current   atomic.Pointer[snapshot]
}

// snapshot is one immutable compiled rule set.
type snapshot struct {
	rules   []*compiledRule
	hasWhen bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New compiles the rule list into an engine. A rule that fails
// validation or compilation aborts construction; the engine never holds
// an invalid rule.
func New(rules []*rule.Rule, opts ...Option) (*Engine, error) {
	sequences := template.NewSequenceStore()
	e := &Engine{
		logger:    logging.Nop(),
		sequences: sequences,
		renderer:  template.NewWithSequences(sequences),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.Reload(rules); err != nil {
		return nil, err
	}
	return e, nil
}

// Reload compiles a new rule list and swaps it in atomically. On error
// the previous rule set stays active. Sequence counters survive the
// swap.
func (e *Engine) Reload(rules []*rule.Rule) error {
	compiled, err := compileRules(rules)
	if err != nil {
		return err
	}

	snap := &snapshot{rules: compiled}
	for _, cr := range compiled {
		if cr.when != nil {
			snap.hasWhen = true
			break
		}
	}

	e.current.Store(snap)
	e.logger.Info("rule set loaded", "rules", len(compiled))
	return nil
}

// RuleCount reports the number of rules in the active set.
func (e *Engine) RuleCount() int {
	return len(e.current.Load().rules)
}

// Evaluate runs the descriptor through the active rules in declared
// order and returns the first match's outcome, or Forward when nothing
// matches. It never fails: a response that cannot be rendered degrades
// to Forward with a logged warning.
func (e *Engine) Evaluate(ctx context.Context, d *RequestDescriptor) Outcome {
	if ctx.Err() != nil {
		return Forward()
	}

	snap := e.current.Load()

	var env map[string]any
	if snap.hasWhen {
		env = whenEnv(d)
	}

	for i, cr := range snap.rules {
		if !cr.source.IsEnabled() || !cr.matches(d, env) {
			continue
		}

		name := ruleLabel(cr.source, i)
		if cr.source.Action == rule.ActionForward {
			e.logger.Debug("rule matched, forwarding",
				"rule", name, "method", d.Method, "host", d.Host, "path", d.Path)
			return Forward()
		}

		resp, err := e.render(cr, d)
		if err != nil {
			e.logger.Warn("response render failed, forwarding",
				"rule", name, "host", d.Host, "path", d.Path, "error", err)
			return Forward()
		}

		e.logger.Debug("rule matched, responding",
			"rule", name, "method", d.Method, "host", d.Host, "path", d.Path,
			"status", resp.StatusCode)
		return Respond(resp)
	}

	e.logger.Debug("no rule matched, forwarding",
		"method", d.Method, "host", d.Host, "path", d.Path)
	return Forward()
}

// render produces the response for a matched respond rule. A panic in
// template evaluation is converted to an error so Evaluate stays total.
func (e *Engine) render(cr *compiledRule, d *RequestDescriptor) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("panic during render: %v", r)
		}
	}()

	rc := template.NewRequestContext(d.Method, d.Host, d.Path, d.URL, d.Headers, d.Query, d.Body)
	tctx := template.NewContext(rc)
	if cr.path != nil {
		tctx.Request.Captures = cr.path.Captures(d.Path)
	}

	headers := http.Header{}
	for k, v := range cr.respond.headers {
		headers.Set(k, e.renderer.Render(v, tctx))
	}

	body := e.renderer.Render(cr.respond.body, tctx)

	delay := cr.respond.delay
	if j := cr.respond.jitter; j > 0 {
		delay += time.Duration(rand.Int64N(int64(2*j+1))) - j
	}
	if delay < 0 {
		delay = 0
	}

	return &Response{
		StatusCode: cr.respond.statusCode,
		Headers:    headers,
		Body:       []byte(body),
		Delay:      delay,
	}, nil
}

// whenEnv builds the expression environment for when-predicates.
// Multi-valued headers and query params expose their first value.
func whenEnv(d *RequestDescriptor) map[string]any {
	headers := make(map[string]any, len(d.Headers))
	for k := range d.Headers {
		headers[k] = d.Headers.Get(k)
	}
	query := make(map[string]any, len(d.Query))
	for k := range d.Query {
		query[k] = d.Query.Get(k)
	}

	var body any
	trimmed := strings.TrimSpace(string(d.Body))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		_ = json.Unmarshal(d.Body, &body)
	}

	return map[string]any{
		"method":  d.Method,
		"host":    d.Host,
		"path":    d.Path,
		"url":     d.URL,
		"headers": headers,
		"query":   query,
		"body":    body,
		"rawBody": string(d.Body),
	}
}

func ruleLabel(r *rule.Rule, index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", index)
}
