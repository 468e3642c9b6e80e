package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRespondRule() *Rule {
	return &Rule{
		Name:   "test",
		Match:  &Matcher{Host: &StringMatch{Contains: "api.openai.com"}},
		Action: ActionRespond,
		Respond: &ResponseTemplate{
			StatusCode: 200,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       `{"ok":true}`,
		},
	}
}

func TestValidateValidRules(t *testing.T) {
	assert.NoError(t, validRespondRule().Validate())

	forward := &Rule{
		Match:  &Matcher{Path: &StringMatch{Prefix: "/health"}},
		Action: ActionForward,
	}
	assert.NoError(t, forward.Validate())

	// A respond rule with no matcher is a catch-all.
	catchAll := &Rule{
		Action:  ActionRespond,
		Respond: &ResponseTemplate{StatusCode: 503},
	}
	assert.NoError(t, catchAll.Validate())
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rule)
		field  string
	}{
		{
			"missing action",
			func(r *Rule) { r.Action = "" },
			"action",
		},
		{
			"unknown action",
			func(r *Rule) { r.Action = "redirect" },
			"action",
		},
		{
			"respond without template",
			func(r *Rule) { r.Respond = nil },
			"respond",
		},
		{
			"forward with template",
			func(r *Rule) { r.Action = ActionForward },
			"respond",
		},
		{
			"empty matcher",
			func(r *Rule) { r.Match = &Matcher{} },
			"match",
		},
		{
			"ambiguous string match",
			func(r *Rule) { r.Match.Host = &StringMatch{Exact: "a", Contains: "b"} },
			"match.host",
		},
		{
			"invalid host regex",
			func(r *Rule) { r.Match.Host = &StringMatch{Pattern: "[bad"} },
			"match.host.pattern",
		},
		{
			"invalid path glob",
			func(r *Rule) { r.Match.Path = &StringMatch{Glob: "[a-"} },
			"match.path.glob",
		},
		{
			"invalid method",
			func(r *Rule) { r.Match.Method = "FETCH" },
			"match.method",
		},
		{
			"invalid header name",
			func(r *Rule) { r.Match.Headers = map[string]string{"bad header": "x"} },
			"match.headers",
		},
		{
			"invalid body pattern",
			func(r *Rule) { r.Match.BodyPattern = "[bad" },
			"match.bodyPattern",
		},
		{
			"invalid jsonpath",
			func(r *Rule) { r.Match.BodyJSONPath = map[string]any{"$.[oops": 1} },
			"match.bodyJsonPath",
		},
		{
			"invalid when expression",
			func(r *Rule) { r.Match.When = "method ==" },
			"match.when",
		},
		{
			"status too low",
			func(r *Rule) { r.Respond.StatusCode = 99 },
			"respond.statusCode",
		},
		{
			"status too high",
			func(r *Rule) { r.Respond.StatusCode = 600 },
			"respond.statusCode",
		},
		{
			"invalid response header name",
			func(r *Rule) { r.Respond.Headers = map[string]string{"bad header": "x"} },
			"respond.headers",
		},
		{
			"body and bodyFile both set",
			func(r *Rule) { r.Respond.BodyFile = "/tmp/body.json" },
			"respond.body",
		},
		{
			"negative delay",
			func(r *Rule) { r.Respond.DelayMs = -1 },
			"respond.delayMs",
		},
		{
			"delay too large",
			func(r *Rule) { r.Respond.DelayMs = 60000 },
			"respond.delayMs",
		},
		{
			"jitter exceeds delay",
			func(r *Rule) { r.Respond.DelayMs = 10; r.Respond.JitterMs = 20 },
			"respond.jitterMs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRespondRule()
			tt.mutate(r)

			err := r.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidateWhenExpression(t *testing.T) {
	r := validRespondRule()
	r.Match.When = `method == "POST" && body.model == "gpt-4"`
	assert.NoError(t, r.Validate())
}
