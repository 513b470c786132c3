package http

import (
	"time"

	"github.com/abdul-hamid-achik/xhrkit/packages/headers"
)

type Response struct {
	StatusCode int
	// Status is the reason phrase, e.g. "OK".
	Status  string
	Headers *headers.Map
	// URL is the final URL after redirects.
	URL       string
	Body      []byte
	Duration  time.Duration
	Redirects int
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) Header(key string) string {
	v, _ := r.Headers.Get(key)
	return v
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
