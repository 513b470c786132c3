package xhr

import (
	"errors"
	"fmt"
)

// ErrorKind classifies request failures.
type ErrorKind int

const (
	// StateError is API misuse: a call made in the wrong ready state.
	StateError ErrorKind = iota + 1
	// SecurityError is a forbidden request method.
	SecurityError
	// SyntaxError is a malformed method or header.
	SyntaxError
	// ProtocolError is an unsupported URL scheme.
	ProtocolError
	// NetworkError covers URL parsing, connection and redirect failures.
	NetworkError
	// ResourceError covers local file access.
	ResourceError
	// DataURIError is an undecodable data: URL.
	DataURIError
	// ParseError is a response body that is not valid JSON.
	ParseError
)

func (k ErrorKind) String() string {
	switch k {
	case StateError:
		return "InvalidStateError"
	case SecurityError:
		return "SecurityError"
	case SyntaxError:
		return "SyntaxError"
	case ProtocolError:
		return "ProtocolError"
	case NetworkError:
		return "NetworkError"
	case ResourceError:
		return "ResourceError"
	case DataURIError:
		return "DataURIError"
	case ParseError:
		return "ParseError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by request methods and recorded for failed requests.
type Error struct {
	Kind    ErrorKind
	Message string
	// Status is the status the request reports after the failure.
	Status int
	Err    error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var xerr *Error
	return errors.As(err, &xerr) && xerr.Kind == k
}

func newError(k ErrorKind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

func wrapError(k ErrorKind, status int, err error) *Error {
	return &Error{Kind: k, Message: err.Error(), Status: status, Err: err}
}
