package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/interceptd/pkg/rule"
)

const validYAML = `
version: "1.0"
name: test rules
rules:
  - name: mock-openai
    match:
      host:
        contains: api.openai.com
    action: respond
    respond:
      statusCode: 200
      headers:
        Content-Type: application/json
      body:
        object: chat.completion
  - name: pass-health
    match:
      path:
        prefix: /health
    action: forward
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeFile(t, "rules.yaml", validYAML)

	rs, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0", rs.Version)
	assert.Equal(t, "test rules", rs.Name)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, "mock-openai", rs.Rules[0].Name)
	assert.Equal(t, rule.ActionRespond, rs.Rules[0].Action)
	assert.JSONEq(t, `{"object":"chat.completion"}`, rs.Rules[0].Respond.Body)
	assert.Equal(t, rule.ActionForward, rs.Rules[1].Action)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeFile(t, "rules.json", `{
		"version": "1.0",
		"rules": [
			{
				"name": "catch-all",
				"action": "respond",
				"respond": {"statusCode": 503, "body": "down"}
			}
		]
	}`)

	rs, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, 503, rs.Rules[0].Respond.StatusCode)
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, "empty.yaml", "  \n")
		_, err := LoadFromFile(path)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := LoadFromFile(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "rules: [unclosed")
		_, err := LoadFromFile(path)
		assert.ErrorIs(t, err, ErrInvalidYAML)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeFile(t, "bad.json", "{not json")
		_, err := LoadFromFile(path)
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestLoadFromFileValidation(t *testing.T) {
	// Invalid regex must fail at load, carrying the rule index.
	path := writeFile(t, "invalid.yaml", `
rules:
  - name: ok
    match:
      path:
        prefix: /v1
    action: forward
  - name: broken
    match:
      host:
        pattern: "[bad"
    action: forward
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules[1]")
	assert.Contains(t, err.Error(), "broken")
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "rules.yaml")

	rs := &RuleSet{
		Version: "1.0",
		Name:    "saved",
		Rules: []*rule.Rule{
			{
				Name:    "r1",
				Match:   &rule.Matcher{Host: &rule.StringMatch{Exact: "example.com"}},
				Action:  rule.ActionRespond,
				Respond: &rule.ResponseTemplate{StatusCode: 200, Body: "ok"},
			},
		},
	}

	require.NoError(t, SaveToFile(path, rs))

	// No temp file left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "saved", loaded.Name)
	require.Len(t, loaded.Rules, 1)
	assert.Equal(t, "r1", loaded.Rules[0].Name)
}

func TestLoadFromGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(`
rules:
  - name: second
    action: forward
    match:
      path:
        prefix: /b
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(`
rules:
  - name: first
    action: forward
    match:
      path:
        prefix: /a
`), 0644))

	rs, err := LoadFromGlob(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	require.Len(t, rs.Rules, 2)

	// Lexical file order pins evaluation order.
	assert.Equal(t, "first", rs.Rules[0].Name)
	assert.Equal(t, "second", rs.Rules[1].Name)
}

func TestLoadFromGlobNoMatches(t *testing.T) {
	_, err := LoadFromGlob(filepath.Join(t.TempDir(), "*.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)
}
