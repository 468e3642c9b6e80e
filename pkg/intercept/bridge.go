package intercept

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodyBytes caps how much of a request body the engine will inspect.
const maxBodyBytes = 10 << 20 // 10MB

// DescriptorFromRequest builds a descriptor from an http.Request. The
// body is read up to a 10MB cap and restored on the request so the
// transport can still forward it upstream.
func DescriptorFromRequest(r *http.Request) (*RequestDescriptor, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	return &RequestDescriptor{
		Method:  r.Method,
		Host:    host,
		Path:    r.URL.Path,
		URL:     r.URL.String(),
		Headers: r.Header,
		Query:   r.URL.Query(),
		Body:    body,
	}, nil
}

// WriteResponse writes a synthesized response to the client, honoring
// the advisory delay. This is the transport-side half of a Respond
// outcome; Forward outcomes never reach it.
func WriteResponse(w http.ResponseWriter, resp *Response) error {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for k, values := range resp.Headers {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	// Skip the zero-byte write: it is a no-op on the wire, and for
	// bodyless statuses (204/304) net/http rejects any Write call.
	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return fmt.Errorf("failed to write response body: %w", err)
		}
	}
	return nil
}
