package template

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getmockd/interceptd/internal/id"
)

// Context carries the data a template can reference: the intercepted
// request and the per-evaluation generation identity.
type Context struct {
	Request    RequestContext
	Generation Generation
}

// Generation is the identity of a single template evaluation. Every
// evaluation gets a fresh ID and timestamp so that two renders of the
// same template never share identifiers.
type Generation struct {
	ID   string
	Time time.Time
}

// NewGeneration mints a generation with a fresh 32-hex id and the
// current time. The bare-hex form composes into provider-style ids like
// "chatcmpl-<id>".
func NewGeneration() Generation {
	return Generation{ID: id.Hex(), Time: time.Now()}
}

// RequestContext exposes the intercepted request to templates.
type RequestContext struct {
	Method   string
	Host     string
	Path     string
	URL      string
	RawBody  string
	Body     any // parsed JSON, or nil
	Query    url.Values
	Headers  http.Header
	Captures map[string]string // named groups from a pattern path match
}

// NewRequestContext builds a request context and parses the body as JSON
// when it looks like JSON. A body that fails to parse is still available
// through RawBody.
func NewRequestContext(method, host, path, rawURL string, headers http.Header, query url.Values, body []byte) RequestContext {
	rc := RequestContext{
		Method:  method,
		Host:    host,
		Path:    path,
		URL:     rawURL,
		RawBody: string(body),
		Query:   query,
		Headers: headers,
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var parsed any
		if err := json.Unmarshal(body, &parsed); err == nil {
			rc.Body = parsed
		}
	}

	return rc
}

// NewContext pairs a request context with a fresh generation.
func NewContext(rc RequestContext) *Context {
	return &Context{Request: rc, Generation: NewGeneration()}
}
