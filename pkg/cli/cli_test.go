package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/interceptd/pkg/config"
	"github.com/getmockd/interceptd/pkg/intercept"
)

func TestHasGlobMeta(t *testing.T) {
	assert.False(t, hasGlobMeta("rules.yaml"))
	assert.False(t, hasGlobMeta("/etc/interceptd/rules.json"))
	assert.True(t, hasGlobMeta("rules/*.yaml"))
	assert.True(t, hasGlobMeta("rules/**/*.yaml"))
	assert.True(t, hasGlobMeta("rules/{a,b}.yaml"))
}

func TestLoadRules(t *testing.T) {
	t.Run("missing flag", func(t *testing.T) {
		_, err := loadRules("")
		assert.Error(t, err)
	})

	t.Run("single file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - action: forward\n    match:\n      path:\n        prefix: /\n"), 0644))

		rs, err := loadRules(path)
		require.NoError(t, err)
		assert.Len(t, rs.Rules, 1)
	})
}

func TestBuildDescriptor(t *testing.T) {
	evalMethod = "post"
	evalHost = "api.openai.com"
	evalPath = "/v1/chat/completions?stream=false"
	evalBody = `{"model":"gpt-4"}`
	evalHeaders = []string{"Content-Type: application/json"}
	t.Cleanup(func() {
		evalMethod, evalHost, evalPath, evalBody, evalHeaders = "GET", "", "/", "", nil
	})

	d, err := buildDescriptor()
	require.NoError(t, err)

	assert.Equal(t, "POST", d.Method)
	assert.Equal(t, "api.openai.com", d.Host)
	assert.Equal(t, "/v1/chat/completions", d.Path)
	assert.Equal(t, "false", d.Query.Get("stream"))
	assert.Equal(t, "application/json", d.Headers.Get("Content-Type"))
	assert.Equal(t, `{"model":"gpt-4"}`, string(d.Body))
}

func TestBuildDescriptorErrors(t *testing.T) {
	evalHost = ""
	_, err := buildDescriptor()
	assert.Error(t, err)

	evalHost = "h"
	evalHeaders = []string{"no-colon"}
	t.Cleanup(func() { evalHost, evalHeaders = "", nil })
	_, err = buildDescriptor()
	assert.Error(t, err)
}

func TestStarterRules(t *testing.T) {
	rs, err := config.ParseYAML([]byte(starterRules))
	require.NoError(t, err)
	require.Len(t, rs.Rules, 1)

	engine, err := intercept.New(rs.Rules)
	require.NoError(t, err)

	out := engine.Evaluate(context.Background(), &intercept.RequestDescriptor{
		Method:  "POST",
		Host:    "api.openai.com",
		Path:    "/v1/chat/completions",
		Headers: http.Header{},
	})
	require.False(t, out.Forwarded())

	resp := out.Response()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))

	var parsed struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		Created int64  `json:"created"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &parsed))
	assert.Regexp(t, `^chatcmpl-[0-9a-f]{32}$`, parsed.ID)
	assert.Equal(t, "chat.completion", parsed.Object)
	assert.NotZero(t, parsed.Created)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")

	require.NoError(t, initCmd.RunE(initCmd, []string{path}))

	// The scaffold must load and compile cleanly.
	rs, err := config.LoadFromFile(path)
	require.NoError(t, err)
	_, err = intercept.New(rs.Rules)
	require.NoError(t, err)

	// A second run without --force refuses to overwrite.
	err = initCmd.RunE(initCmd, []string{path})
	assert.Error(t, err)

	initForce = true
	t.Cleanup(func() { initForce = false })
	assert.NoError(t, initCmd.RunE(initCmd, []string{path}))
}
