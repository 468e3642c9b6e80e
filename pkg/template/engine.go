package template

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Engine substitutes {{expression}} placeholders in response templates.
// An Engine is safe for concurrent use; the attached SequenceStore
// carries its own synchronization.
type Engine struct {
	sequences *SequenceStore
}

// New creates an engine with its own sequence store.
func New() *Engine {
	return &Engine{sequences: NewSequenceStore()}
}

// NewWithSequences creates an engine sharing an existing sequence store,
// so counters survive rule-set reloads.
func NewWithSequences(store *SequenceStore) *Engine {
	return &Engine{sequences: store}
}

// placeholderRegex matches {{expression}} with optional inner whitespace.
var placeholderRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

var (
	// random.int(min, max)
	randomIntPattern = regexp.MustCompile(`^random\.int(?:\((-?\d+),\s*(-?\d+)\))?$`)
	// random.float(min, max) with optional precision
	randomFloatPattern = regexp.MustCompile(`^random\.float(?:\(([0-9.]+),\s*([0-9.]+)(?:,\s*(\d+))?\))?$`)
	// random.string(length)
	randomStringPattern = regexp.MustCompile(`^random\.string(?:\((\d+)\))?$`)
	// sequence("name") or sequence("name", start)
	sequencePattern = regexp.MustCompile(`^sequence\("([^"]+)"(?:,\s*(-?\d+))?\)$`)
	// upper(x), lower(x), default(x, fallback)
	funcCallPattern = regexp.MustCompile(`^(\w+)\((.+)\)$`)
)

// Render evaluates every placeholder in the template. Unknown
// expressions render as empty strings rather than failing the whole
// template.
func (e *Engine) Render(template string, ctx *Context) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		return e.evaluate(strings.TrimSpace(sub[1]), ctx)
	})
}

// evaluate resolves a single expression. The generation clock is used
// for time expressions so every placeholder in one render agrees on the
// timestamp.
func (e *Engine) evaluate(expr string, ctx *Context) string {
	now := time.Now()
	if ctx != nil && !ctx.Generation.Time.IsZero() {
		now = ctx.Generation.Time
	}

	switch expr {
	case "id":
		if ctx != nil {
			return ctx.Generation.ID
		}
		return ""
	case "uuid":
		return uuid.New().String()
	case "uuid.short":
		return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	case "now":
		return now.Format(time.RFC3339)
	case "timestamp", "timestamp.unix":
		return strconv.FormatInt(now.Unix(), 10)
	case "timestamp.iso":
		return now.UTC().Format(time.RFC3339Nano)
	case "timestamp.unix_ms":
		return strconv.FormatInt(now.UnixMilli(), 10)
	case "random":
		return funcRandomHex()
	case "random.int":
		return funcRandomInt(0, 100)
	case "random.float":
		return funcRandomFloat(0, 1, 6)
	case "random.string":
		return funcRandomString(10)
	}

	if result, ok := e.evaluateCall(expr, ctx); ok {
		return result
	}

	if strings.HasPrefix(expr, "request.") {
		return evaluateRequest(strings.TrimPrefix(expr, "request."), ctx)
	}

	return ""
}

// evaluateCall handles parenthesized function expressions.
func (e *Engine) evaluateCall(expr string, ctx *Context) (string, bool) {
	if m := randomIntPattern.FindStringSubmatch(expr); m != nil && m[1] != "" {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return funcRandomInt(lo, hi), true
	}

	if m := randomFloatPattern.FindStringSubmatch(expr); m != nil && m[1] != "" {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		precision := 6
		if m[3] != "" {
			precision, _ = strconv.Atoi(m[3])
		}
		return funcRandomFloat(lo, hi, precision), true
	}

	if m := randomStringPattern.FindStringSubmatch(expr); m != nil && m[1] != "" {
		length, _ := strconv.Atoi(m[1])
		return funcRandomString(length), true
	}

	if m := sequencePattern.FindStringSubmatch(expr); m != nil {
		if e.sequences == nil {
			return "", true
		}
		start := int64(1)
		if m[2] != "" {
			start, _ = strconv.ParseInt(m[2], 10, 64)
		}
		return strconv.FormatInt(e.sequences.Next(m[1], start), 10), true
	}

	if m := funcCallPattern.FindStringSubmatch(expr); m != nil {
		args := splitArgs(m[2])
		switch m[1] {
		case "upper":
			return strings.ToUpper(e.resolveArg(args[0], ctx)), true
		case "lower":
			return strings.ToLower(e.resolveArg(args[0], ctx)), true
		case "default":
			if len(args) < 2 {
				return "", true
			}
			if v := e.resolveArg(args[0], ctx); v != "" {
				return v, true
			}
			return unquote(args[1]), true
		}
	}

	return "", false
}

// resolveArg treats quoted arguments as literals and anything else as a
// nested expression.
func (e *Engine) resolveArg(arg string, ctx *Context) string {
	arg = strings.TrimSpace(arg)
	if isQuoted(arg) {
		return arg[1 : len(arg)-1]
	}
	return e.evaluate(arg, ctx)
}

// evaluateRequest resolves request.* expressions against the context.
func evaluateRequest(expr string, ctx *Context) string {
	if ctx == nil {
		return ""
	}

	parts := strings.SplitN(expr, ".", 2)
	switch parts[0] {
	case "method":
		return ctx.Request.Method
	case "host":
		return ctx.Request.Host
	case "path":
		return ctx.Request.Path
	case "url":
		return ctx.Request.URL
	case "rawBody":
		return ctx.Request.RawBody
	case "body":
		if len(parts) == 2 && ctx.Request.Body != nil {
			return bodyField(parts[1], ctx.Request.Body)
		}
	case "query":
		if len(parts) == 2 && ctx.Request.Query != nil {
			return ctx.Request.Query.Get(parts[1])
		}
	case "header":
		if len(parts) == 2 && ctx.Request.Headers != nil {
			return ctx.Request.Headers.Get(http.CanonicalHeaderKey(parts[1]))
		}
	case "capture":
		if len(parts) == 2 {
			return ctx.Request.Captures[parts[1]]
		}
	}

	return ""
}

// bodyField walks a dot path through the parsed JSON body. Array
// elements are addressed by numeric segments.
func bodyField(path string, body any) string {
	current := body
	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return ""
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return ""
			}
			current = v[idx]
		default:
			return ""
		}
	}
	return formatValue(current)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func isQuoted(s string) bool {
	return len(s) >= 2 &&
		((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\''))
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if isQuoted(s) {
		return s[1 : len(s)-1]
	}
	return s
}

// splitArgs splits comma-separated arguments, respecting quotes.
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			current.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
			current.WriteByte(ch)
		case ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}
