package output

import (
	"strings"
	"time"
)

// Exchange is one completed request as the CLI reports it.
type Exchange struct {
	Method     string
	URL        string
	Status     int
	StatusText string
	// Headers holds the CRLF separated response header lines.
	Headers  string
	Body     string
	Duration time.Duration
	Err      error
}

// HeaderLines splits Headers into "name: value" lines.
func (e *Exchange) HeaderLines() []string {
	if e.Headers == "" {
		return nil
	}
	return strings.Split(e.Headers, "\r\n")
}

// HeaderMap returns the response headers keyed by lower-case name.
func (e *Exchange) HeaderMap() map[string]string {
	lines := e.HeaderLines()
	if len(lines) == 0 {
		return nil
	}
	m := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		m[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return m
}

// Failed reports whether the request errored or got a non-2xx/3xx status.
func (e *Exchange) Failed() bool {
	return e.Err != nil || e.Status < 200 || e.Status >= 400
}
