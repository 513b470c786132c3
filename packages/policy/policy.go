package policy

import (
	"strings"

	"golang.org/x/net/http/httpguts"
)

// forbiddenRequestHeaders are not settable by callers.
// User-Agent is banned by browsers but allowed here.
var forbiddenRequestHeaders = map[string]struct{}{
	"accept-charset":                 {},
	"accept-encoding":                {},
	"access-control-request-headers": {},
	"access-control-request-method":  {},
	"connection":                     {},
	"content-length":                 {},
	"content-transfer-encoding":      {},
	"cookie":                         {},
	"cookie2":                        {},
	"date":                           {},
	"expect":                         {},
	"host":                           {},
	"keep-alive":                     {},
	"origin":                         {},
	"referer":                        {},
	"te":                             {},
	"trailer":                        {},
	"transfer-encoding":              {},
	"upgrade":                        {},
	"via":                            {},
}

var forbiddenRequestMethods = map[string]struct{}{
	"TRACE":   {},
	"TRACK":   {},
	"CONNECT": {},
}

// IsAllowedHeader reports whether a caller may set the named request header.
// Every name is allowed when checkDisabled is true.
func IsAllowedHeader(name string, checkDisabled bool) bool {
	if checkDisabled {
		return true
	}
	if name == "" {
		return false
	}
	_, forbidden := forbiddenRequestHeaders[strings.ToLower(name)]
	return !forbidden
}

// IsAllowedMethod reports whether method may be used to open a request.
// The comparison is case-insensitive.
func IsAllowedMethod(method string) bool {
	_, forbidden := forbiddenRequestMethods[strings.ToUpper(method)]
	return !forbidden
}

// ForbiddenHeaders returns the deny-list in lower case.
func ForbiddenHeaders() []string {
	names := make([]string, 0, len(forbiddenRequestHeaders))
	for name := range forbiddenRequestHeaders {
		names = append(names, name)
	}
	return names
}

// ValidHeader reports whether name is an HTTP token and value a legal
// field value.
func ValidHeader(name, value string) bool {
	return httpguts.ValidHeaderFieldName(name) && httpguts.ValidHeaderFieldValue(value)
}

// ValidMethod reports whether method is an HTTP token.
func ValidMethod(method string) bool {
	if method == "" {
		return false
	}
	for i := 0; i < len(method); i++ {
		if !httpguts.IsTokenRune(rune(method[i])) {
			return false
		}
	}
	return true
}
