package rule

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr"

	"github.com/getmockd/interceptd/internal/matching"
)

// ValidationError reports a rule configuration failure with the field
// path that caused it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// validMethods are the HTTP methods accepted in a matcher.
var validMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
	"CONNECT": true,
	"TRACE":   true,
}

// headerNameRegex validates HTTP header names (RFC 7230 token).
var headerNameRegex = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+\-.^_\x60|~]+$`)

// Validate checks the rule configuration. Patterns are compiled so
// malformed rules are rejected before the engine ever sees them.
func (r *Rule) Validate() error {
	switch r.Action {
	case ActionForward, ActionRespond:
	case "":
		return &ValidationError{Field: "action", Message: "action is required"}
	default:
		return &ValidationError{Field: "action", Message: fmt.Sprintf("unknown action: %s", r.Action)}
	}

	if r.Action == ActionRespond && r.Respond == nil {
		return &ValidationError{Field: "respond", Message: "respond is required when action is respond"}
	}
	if r.Action == ActionForward && r.Respond != nil {
		return &ValidationError{Field: "respond", Message: "respond must not be set when action is forward"}
	}

	if r.Match != nil {
		if err := r.Match.validate(); err != nil {
			return err
		}
	}

	if r.Respond != nil {
		if err := r.Respond.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (m *Matcher) validate() error {
	if m.Empty() {
		return &ValidationError{Field: "match", Message: "at least one matching criterion must be specified"}
	}

	if err := validateStringMatch(m.Host, "match.host"); err != nil {
		return err
	}
	if err := validateStringMatch(m.Path, "match.path"); err != nil {
		return err
	}

	if m.Method != "" && !validMethods[m.Method] {
		return &ValidationError{
			Field:   "match.method",
			Message: fmt.Sprintf("invalid HTTP method: %s", m.Method),
		}
	}

	for name := range m.Headers {
		if !headerNameRegex.MatchString(name) {
			return &ValidationError{
				Field:   "match.headers",
				Message: fmt.Sprintf("invalid header name: %s", name),
			}
		}
	}

	if m.BodyPattern != "" {
		if _, err := regexp.Compile(m.BodyPattern); err != nil {
			return &ValidationError{
				Field:   "match.bodyPattern",
				Message: fmt.Sprintf("invalid regex: %v", err),
			}
		}
	}

	if len(m.BodyJSONPath) > 0 {
		if _, err := matching.CompileJSONPath(m.BodyJSONPath); err != nil {
			return &ValidationError{
				Field:   "match.bodyJsonPath",
				Message: err.Error(),
			}
		}
	}

	if m.When != "" {
		if _, err := expr.Compile(m.When, expr.AsBool(), expr.AllowUndefinedVariables()); err != nil {
			return &ValidationError{
				Field:   "match.when",
				Message: fmt.Sprintf("invalid expression: %v", err),
			}
		}
	}

	return nil
}

func validateStringMatch(s *StringMatch, field string) error {
	if s == nil {
		return nil
	}
	kind, pattern, err := s.Kind()
	if err != nil {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	if _, err := matching.Compile(matching.Kind(kind), pattern); err != nil {
		return &ValidationError{
			Field:   field + "." + kind,
			Message: err.Error(),
		}
	}
	return nil
}

func (t *ResponseTemplate) validate() error {
	if t.StatusCode < 100 || t.StatusCode > 599 {
		return &ValidationError{
			Field:   "respond.statusCode",
			Message: fmt.Sprintf("statusCode must be between 100 and 599, got %d", t.StatusCode),
		}
	}

	for name := range t.Headers {
		if !headerNameRegex.MatchString(name) {
			return &ValidationError{
				Field:   "respond.headers",
				Message: fmt.Sprintf("invalid header name: %s", name),
			}
		}
	}

	if t.Body != "" && t.BodyFile != "" {
		return &ValidationError{Field: "respond.body", Message: "only one of body and bodyFile may be set"}
	}

	if t.DelayMs < 0 {
		return &ValidationError{Field: "respond.delayMs", Message: "delayMs must be >= 0"}
	}
	if t.DelayMs > 30000 {
		return &ValidationError{Field: "respond.delayMs", Message: "delayMs must be <= 30000 (30 seconds)"}
	}
	if t.JitterMs < 0 {
		return &ValidationError{Field: "respond.jitterMs", Message: "jitterMs must be >= 0"}
	}
	if t.JitterMs > t.DelayMs {
		return &ValidationError{Field: "respond.jitterMs", Message: "jitterMs must be <= delayMs"}
	}

	return nil
}
