// Package intercept is the decision layer of an intercepting proxy:
// given a parsed request, it either forwards it unchanged or fabricates
// a response from the first matching rule.
package intercept

import (
	"net/http"
	"net/url"
)

// RequestDescriptor is a read-only view of an inbound request, owned by
// the transport layer. The engine never mutates it.
type RequestDescriptor struct {
	// Method is the HTTP method, e.g. "POST".
	Method string

	// Host is the target host without port.
	Host string

	// Path is the URL path component.
	Path string

	// URL is the full request URL as received.
	URL string

	// Headers are the request headers in canonical form.
	Headers http.Header

	// Query holds the parsed query parameters.
	Query url.Values

	// Body is the request body, possibly empty. Reading it is the
	// transport's job; the engine only inspects the bytes.
	Body []byte
}
