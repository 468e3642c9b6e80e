package intercept

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/interceptd/pkg/rule"
)

func TestDescriptorFromRequest(t *testing.T) {
	body := `{"model":"gpt-4"}`
	r := httptest.NewRequest(http.MethodPost, "https://api.openai.com:443/v1/chat/completions?stream=false", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	d, err := DescriptorFromRequest(r)
	require.NoError(t, err)

	assert.Equal(t, "POST", d.Method)
	assert.Equal(t, "api.openai.com", d.Host)
	assert.Equal(t, "/v1/chat/completions", d.Path)
	assert.Equal(t, "false", d.Query.Get("stream"))
	assert.Equal(t, "application/json", d.Headers.Get("Content-Type"))
	assert.Equal(t, body, string(d.Body))

	// The body is restored so the transport can still forward it.
	restored, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(restored))
}

func TestDescriptorFromRequestNoBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)

	d, err := DescriptorFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "example.com", d.Host)
	assert.Empty(t, d.Body)
}

func TestWriteResponse(t *testing.T) {
	resp := &Response{
		StatusCode: 200,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"ok":true}`),
	}

	rec := httptest.NewRecorder()
	require.NoError(t, WriteResponse(rec, resp))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestWriteResponseHonorsDelay(t *testing.T) {
	resp := &Response{
		StatusCode: 204,
		Delay:      50 * time.Millisecond,
	}

	rec := httptest.NewRecorder()
	start := time.Now()
	require.NoError(t, WriteResponse(rec, resp))

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, 204, rec.Code)
}

func TestBridgeRoundTrip(t *testing.T) {
	e := newOpenAIEngine(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := DescriptorFromRequest(r)
		require.NoError(t, err)

		out := e.Evaluate(r.Context(), d)
		if out.Forwarded() {
			w.WriteHeader(http.StatusBadGateway) // stand-in for upstream forwarding
			return
		}
		require.NoError(t, WriteResponse(w, out.Response()))
	})

	t.Run("intercepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "https://api.openai.com/v1/chat/completions", strings.NewReader(`{"model":"gpt-4"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, rec.Body.String(), "chat.completion")
	})

	t.Run("forwarded", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func newOpenAIEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New([]*rule.Rule{openaiRule()})
	require.NoError(t, err)
	return e
}
