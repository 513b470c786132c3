package syncbridge

import (
	"context"
	"errors"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	xhttp "github.com/abdul-hamid-achik/xhrkit/packages/http"
	"github.com/abdul-hamid-achik/xhrkit/packages/redirect"
)

var errnoCodes = map[syscall.Errno]string{
	syscall.ECONNREFUSED: "ECONNREFUSED",
	syscall.ECONNRESET:   "ECONNRESET",
	syscall.ETIMEDOUT:    "ETIMEDOUT",
	syscall.EHOSTUNREACH: "EHOSTUNREACH",
	syscall.ENETUNREACH:  "ENETUNREACH",
	syscall.EPIPE:        "EPIPE",
}

// Execute performs d on a fresh, non-pooled client and buffers the body.
func Execute(ctx context.Context, fs afero.Fs, logger logrus.FieldLogger, d *Description) (*Result, error) {
	tlsConfig, err := xhttp.LoadTLSConfig(fs, d.TLS, d.RejectUnauthorized)
	if err != nil {
		return nil, &Error{Message: err.Error()}
	}

	client := xhttp.NewClient(
		xhttp.WithMaxRedirects(d.MaxRedirects),
		xhttp.WithValidateSSL(d.RejectUnauthorized),
		xhttp.WithTLSConfig(tlsConfig),
		xhttp.WithProxy(d.Proxy),
		xhttp.WithLogger(logger),
	)

	resp, err := client.Do(ctx, &xhttp.Request{
		Method:  d.Method,
		URL:     d.URL,
		Headers: d.Headers,
		Body:    d.Body,
	})
	if err != nil {
		return nil, toError(err)
	}
	logger.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"ok":          resp.IsSuccess(),
		"redirects":   resp.Redirects,
		"duration_ms": resp.DurationMs(),
	}).Debug("sync request complete")

	return &Result{
		URL:        resp.URL,
		StatusCode: resp.StatusCode,
		StatusText: resp.Status,
		Headers:    resp.Headers,
		Data:       resp.Body,
	}, nil
}

func toError(err error) *Error {
	for _, rerr := range []error{redirect.ErrTooManyRedirects, redirect.ErrUnsafeRedirect} {
		if errors.Is(err, rerr) {
			return &Error{Message: rerr.Error(), Redirect: true}
		}
	}

	werr := &Error{Message: err.Error()}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		werr.Code = errnoCodes[errno]
	}
	return werr
}
