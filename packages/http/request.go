package http

import (
	"encoding/base64"

	"github.com/abdul-hamid-achik/xhrkit/packages/headers"
)

// Request is an immutable snapshot of what the controller wants sent.
type Request struct {
	Method  string
	URL     string
	Headers *headers.Map
	Body    []byte
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: headers.New(),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers.Set(key, value)
	return r
}

func (r *Request) SetBody(body []byte) *Request {
	r.Body = body
	return r
}

// SetBasicAuth sets a Basic Authorization header from user and password.
func (r *Request) SetBasicAuth(user, password string) *Request {
	creds := user + ":" + password
	r.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(creds)))
	return r
}
