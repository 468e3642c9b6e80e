package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// JSONPathCondition is a compiled JSONPath expression paired with the
// value it must select. An expected value of {"exists": bool} turns the
// condition into a pure existence (or absence) check.
type JSONPathCondition struct {
	path     string
	expr     jp.Expr
	expected any
}

// CompileJSONPath parses each JSONPath expression up front. An
// unparseable path is a load-time error carrying the offending path.
func CompileJSONPath(conditions map[string]any) ([]JSONPathCondition, error) {
	compiled := make([]JSONPathCondition, 0, len(conditions))
	for path, expected := range conditions {
		expr, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
		}
		compiled = append(compiled, JSONPathCondition{path: path, expr: expr, expected: expected})
	}
	return compiled, nil
}

// MatchJSONPath evaluates the compiled conditions against a JSON body.
// A body that is not valid JSON matches nothing. All conditions must
// hold for a match.
func MatchJSONPath(conditions []JSONPathCondition, body []byte) bool {
	if len(conditions) == 0 {
		return true
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	for _, cond := range conditions {
		if !cond.match(data) {
			return false
		}
	}
	return true
}

func (c JSONPathCondition) match(data any) bool {
	results := c.expr.Get(data)

	if exists, ok := existenceCheck(c.expected); ok {
		return exists == (len(results) > 0)
	}

	for _, result := range results {
		if valuesEqual(result, c.expected) {
			return true
		}
	}
	return false
}

// existenceCheck detects the {"exists": bool} form of an expected value.
func existenceCheck(expected any) (want bool, ok bool) {
	m, isMap := expected.(map[string]any)
	if !isMap || len(m) != 1 {
		return false, false
	}
	b, isBool := m["exists"].(bool)
	if !isBool {
		return false, false
	}
	return b, true
}

// valuesEqual compares a selected value with the expected one, coercing
// numeric types (JSON numbers decode as float64, YAML as int).
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	an, aok := toFloat64(actual)
	en, eok := toFloat64(expected)
	if aok && eok {
		return an == en
	}

	return false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
