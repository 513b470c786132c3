package syncbridge

import (
	"fmt"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
	"github.com/abdul-hamid-achik/xhrkit/packages/headers"
)

// Description is the immutable request snapshot handed to a worker.
type Description struct {
	Method             string       `json:"method"`
	URL                string       `json:"url"`
	Headers            *headers.Map `json:"headers"`
	Body               []byte       `json:"body,omitempty"`
	TLS                config.TLS   `json:"tls"`
	RejectUnauthorized bool         `json:"rejectUnauthorized"`
	MaxRedirects       int          `json:"maxRedirects"`
	Proxy              string       `json:"proxy,omitempty"`

	ResultPath   string `json:"resultPath,omitempty"`
	SentinelPath string `json:"sentinelPath,omitempty"`
}

// Result is a completed response. Data is base64 in the result file.
type Result struct {
	URL        string       `json:"url"`
	StatusCode int          `json:"statusCode"`
	StatusText string       `json:"statusText"`
	Headers    *headers.Map `json:"headers"`
	Data       []byte       `json:"data"`
}

// Error is a failure reported by the worker.
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	// Redirect is set when the redirect policy rejected the response chain.
	Redirect bool `json:"-"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}
