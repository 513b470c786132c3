// Package scheme selects how a resolved request URL is served.
package scheme

import (
	"errors"
	"net/url"
	"strings"
)

// Strategy is the handling strategy for a URL.
type Strategy int

const (
	HTTP Strategy = iota
	HTTPS
	File
	Data
	// Local is a URL without scheme or host; it is fetched over http
	// from localhost.
	Local
)

// LocalHost is the host used by the Local strategy.
const LocalHost = "localhost"

var ErrProtocolNotSupported = errors.New("Protocol not supported.")

func (s Strategy) String() string {
	switch s {
	case HTTP:
		return "http"
	case HTTPS:
		return "https"
	case File:
		return "file"
	case Data:
		return "data"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// Network reports whether s goes through the HTTP transport.
func (s Strategy) Network() bool {
	return s == HTTP || s == HTTPS || s == Local
}

// Select maps u to a strategy.
func Select(u *url.URL) (Strategy, error) {
	switch strings.ToLower(u.Scheme) {
	case "http":
		return HTTP, nil
	case "https":
		return HTTPS, nil
	case "file":
		return File, nil
	case "data":
		return Data, nil
	case "":
		if u.Host == "" {
			return Local, nil
		}
		return HTTP, nil
	default:
		return 0, ErrProtocolNotSupported
	}
}

// Localize returns the http URL that a Local or scheme-less URL is fetched from.
func Localize(u *url.URL) *url.URL {
	out := *u
	out.Scheme = "http"
	if out.Host == "" {
		out.Host = LocalHost
	}
	if out.Path != "" && !strings.HasPrefix(out.Path, "/") {
		out.Path = "/" + out.Path
	}
	out.Opaque = ""
	return &out
}

// FilePath returns the local filesystem path of a file: URL.
func FilePath(u *url.URL) string {
	return u.Path
}
