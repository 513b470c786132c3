package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/xhrkit/packages/xhr"
)

// Exit codes for xhrkit CLI
const (
	// ExitSuccess indicates every request succeeded
	ExitSuccess = 0

	// ExitHTTPError indicates a response with a 4xx or 5xx status
	ExitHTTPError = 1

	// ExitParseError indicates a body that could not be parsed, selected or validated
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network, protocol or local resource error
	ExitNetworkError = 4

	// ExitSecurityError indicates a refused method, malformed input or misuse
	ExitSecurityError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the process exit code for err.
type ExitError struct {
	Code int
	Err  error
	// Reported is set when the error was already printed.
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

func reported(code int, err error) error {
	return &ExitError{Code: code, Err: err, Reported: true}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsageError
}

func isReported(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Reported
}

// requestExitCode classifies a failure returned by a request object.
func requestExitCode(err error) int {
	var xerr *xhr.Error
	if !errors.As(err, &xerr) {
		return ExitNetworkError
	}
	switch xerr.Kind {
	case xhr.ParseError:
		return ExitParseError
	case xhr.StateError, xhr.SecurityError, xhr.SyntaxError:
		return ExitSecurityError
	default:
		return ExitNetworkError
	}
}
