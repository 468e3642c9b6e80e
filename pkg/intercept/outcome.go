package intercept

import (
	"net/http"
	"time"
)

// Response is a fully rendered synthesized response. Delay is advisory:
// the engine never sleeps, the transport applies it before writing.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Delay      time.Duration
}

// Outcome is the tagged result of an evaluation: either forward the
// request upstream, or write the contained response. Exactly one of the
// two holds.
type Outcome struct {
	response *Response
}

// Forward is the pass-through outcome.
func Forward() Outcome {
	return Outcome{}
}

// Respond wraps a synthesized response.
func Respond(resp *Response) Outcome {
	return Outcome{response: resp}
}

// Forwarded reports whether the request should go upstream unchanged.
func (o Outcome) Forwarded() bool {
	return o.response == nil
}

// Response returns the synthesized response, or nil for a forward.
func (o Outcome) Response() *Response {
	return o.response
}
