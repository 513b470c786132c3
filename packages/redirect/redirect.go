// Package redirect decides how a redirect response is followed.
package redirect

import (
	"errors"
	"net"
	"net/http"
	"net/url"
)

// DefaultMax is the redirect budget browsers use.
const DefaultMax = 20

var (
	ErrTooManyRedirects = errors.New("Too many redirects")
	ErrUnsafeRedirect   = errors.New("Unsafe redirect")
)

// IsRedirect reports whether status asks the client to follow Location.
func IsRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Budget counts the redirects of one logical request.
type Budget struct {
	Count int
	Max   int
}

// NewBudget returns a budget allowing max redirects. Negative values clamp to 0.
func NewBudget(max int) *Budget {
	if max < 0 {
		max = 0
	}
	return &Budget{Max: max}
}

// Target is the next request to issue.
type Target struct {
	URL    *url.URL
	Method string
	// Host is the Host header value for URL.
	Host string
	// DropBody is set when the method was changed to GET.
	DropBody bool
}

// Next consumes one unit of budget and resolves location against current.
func (b *Budget) Next(status int, location string, current *url.URL, method string) (*Target, error) {
	b.Count++
	if b.Count > b.Max {
		return nil, ErrTooManyRedirects
	}

	next, err := current.Parse(location)
	if err != nil {
		return nil, ErrUnsafeRedirect
	}
	if next.Scheme != "http" && next.Scheme != "https" {
		return nil, ErrUnsafeRedirect
	}

	t := &Target{
		URL:    next,
		Method: method,
		Host:   HostHeader(next),
	}
	if status == http.StatusSeeOther {
		t.DropBody = method != http.MethodGet && method != http.MethodHead
		t.Method = http.MethodGet
	}
	return t, nil
}

// HostHeader returns the Host header for u: the host name, plus the port
// when it is not the scheme's default.
func HostHeader(u *url.URL) string {
	host := u.Hostname()
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}
	port := u.Port()
	if port == "" || port == DefaultPort(u.Scheme) {
		return host
	}
	return host + ":" + port
}

// DefaultPort returns the well-known port of an http(s) scheme.
func DefaultPort(scheme string) string {
	if scheme == "https" {
		return "443"
	}
	return "80"
}
