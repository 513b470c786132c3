package xhr

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
	"syscall"

	"github.com/mstoykov/k6-taskqueue-lib/taskqueue"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
	"github.com/abdul-hamid-achik/xhrkit/packages/datauri"
	"github.com/abdul-hamid-achik/xhrkit/packages/events"
	xhttp "github.com/abdul-hamid-achik/xhrkit/packages/http"
	"github.com/abdul-hamid-achik/xhrkit/packages/redirect"
	"github.com/abdul-hamid-achik/xhrkit/packages/response"
	"github.com/abdul-hamid-achik/xhrkit/packages/scheme"
	"github.com/abdul-hamid-achik/xhrkit/packages/syncbridge"
)

const readChunkSize = 16 << 10

// Send starts the request. Asynchronous sends return at once and report
// through events; synchronous sends return after Done and also return the
// failure, if any. A body is ignored for GET and HEAD.
func (x *XMLHttpRequest) Send(body []byte) error {
	if x.readyState != Opened {
		return newError(StateError, "connection must be opened before send() is called")
	}
	if x.sendFlag {
		return newError(StateError, "send has already been called")
	}
	if x.settings.Async && x.loop == nil {
		return newError(StateError, "asynchronous requests need an event loop")
	}

	u, err := x.resolveURL()
	if err != nil {
		return x.handleError(wrapError(NetworkError, 0, err))
	}
	x.settings.URL = u.String()

	strategy, err := scheme.Select(u)
	if err != nil {
		return x.handleError(wrapError(ProtocolError, 0, err))
	}

	x.logger.WithFields(logrus.Fields{
		"method": x.settings.Method,
		"url":    x.settings.URL,
		"async":  x.settings.Async,
	}).Debug("send")

	switch strategy {
	case scheme.Data:
		return x.sendData(u)
	case scheme.File:
		return x.sendFile(u)
	case scheme.Local, scheme.HTTP:
		if u.Scheme == "" {
			u = scheme.Localize(u)
			x.settings.URL = u.String()
		}
	}

	x.errorFlag = false
	req := x.buildRequest(u, body)
	if x.settings.Async {
		x.sendAsync(req)
		return nil
	}
	return x.sendSync(req)
}

// resolveURL parses the opened URL against the configured origin. Tabs and
// newlines are removed first, as browsers do.
func (x *XMLHttpRequest) resolveURL() (*url.URL, error) {
	raw := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, x.settings.URL)

	if x.settings.Origin != nil {
		return x.settings.Origin.Parse(raw)
	}
	return url.Parse(raw)
}

func (x *XMLHttpRequest) buildRequest(u *url.URL, body []byte) *xhttp.Request {
	req := xhttp.NewRequest(x.settings.Method, u.String())
	req.Headers = x.headers.Clone()
	req.SetHeader("Host", redirect.HostHeader(u))

	if x.settings.User != nil {
		password := ""
		if x.settings.Password != nil {
			password = *x.settings.Password
		}
		req.SetBasicAuth(*x.settings.User, password)
	}

	switch {
	case x.settings.Method == "GET" || x.settings.Method == "HEAD":
	case len(body) > 0:
		req.SetBody(body)
		req.SetHeader("Content-Length", strconv.Itoa(len(body)))
		if !req.Headers.Has("Content-Type") {
			req.SetHeader("Content-Type", "text/plain;charset=UTF-8")
		}
	case x.settings.Method == "POST":
		req.SetHeader("Content-Length", "0")
	}
	return req
}

func (x *XMLHttpRequest) sendData(u *url.URL) error {
	href := *u
	href.Fragment = ""
	data, err := datauri.Decode(href.String())
	if err != nil {
		return x.handleError(&Error{Kind: DataURIError, Message: "Invalid data URI", Err: err})
	}
	res, err := response.Assemble(x.responseType, data.Bytes, data.MediaType)
	if err != nil {
		return x.handleError(&Error{Kind: DataURIError, Message: "Invalid data URI", Err: err})
	}

	x.status = 200
	x.responseURL = x.settings.URL
	x.setResult(res)
	x.setState(Done)
	return nil
}

func (x *XMLHttpRequest) sendFile(u *url.URL) error {
	if !x.cfg.GetAllowFileSystemResources() {
		return x.handleError(newError(ResourceError, "Not allowed to load local resource: "+x.settings.URL))
	}
	if x.settings.Method != "GET" {
		return newError(ResourceError, "XMLHttpRequest: Only GET method is supported")
	}

	path := scheme.FilePath(u)
	if !x.settings.Async {
		data, err := afero.ReadFile(x.fs, path)
		return x.fileLoaded(data, err)
	}

	x.sendFlag = true
	x.spawn(func(ctx context.Context, post func(func() error)) {
		data, err := afero.ReadFile(x.fs, path)
		post(func() error {
			x.sendFlag = false
			return x.fileLoaded(data, err)
		})
	})
	return nil
}

func (x *XMLHttpRequest) fileLoaded(data []byte, err error) error {
	if err != nil {
		return x.handleError(wrapError(ResourceError, fileErrorStatus(err), err))
	}
	res, err := response.Assemble(x.responseType, data, "")
	if err != nil {
		return wrapError(ParseError, 0, err)
	}
	x.status = 200
	x.responseURL = x.settings.URL
	x.setResult(res)
	x.setState(Done)
	return nil
}

// fileErrorStatus mirrors the negative errno a failed read reports.
func fileErrorStatus(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return -int(errno)
	}
	return -1
}

func (x *XMLHttpRequest) sendAsync(req *xhttp.Request) {
	x.sendFlag = true
	// fired while still Opened, as browsers do
	x.dispatch(events.ReadyStateChange)

	client := x.httpClient()
	rtype := x.responseType
	x.spawn(func(ctx context.Context, post func(func() error)) {
		resp, body, err := client.Stream(ctx, req)
		if err != nil {
			post(func() error { return x.handleError(networkError(err, 0)) })
			return
		}
		defer body.Close()

		asm := response.NewAssembler(rtype)
		asm.SetBlobType(resp.Header("Content-Type"))
		post(func() error {
			x.headersReceived(resp)
			return nil
		})

		buf := make([]byte, readChunkSize)
		for {
			n, rerr := body.Read(buf)
			if n > 0 {
				chunk := append([]byte(nil), buf[:n]...)
				post(func() error {
					x.receive(asm, chunk)
					return nil
				})
			}
			if errors.Is(rerr, io.EOF) {
				post(func() error { return x.finish(asm, resp) })
				return
			}
			if rerr != nil {
				post(func() error { return x.handleError(networkError(rerr, 0)) })
				return
			}
		}
	})

	x.dispatch(events.LoadStart)
}

// spawn runs work on its own goroutine. Everything work posts runs on the
// event loop, and is dropped once the request is aborted or reopened.
func (x *XMLHttpRequest) spawn(work func(ctx context.Context, post func(func() error))) {
	id := x.attempt
	ctx, cancel := context.WithCancel(context.Background())
	x.cancel = cancel

	hold := x.loop.RegisterCallback()
	tq := taskqueue.New(x.loop.RegisterCallback)
	post := func(f func() error) {
		tq.Queue(func() error {
			if x.attempt != id {
				return nil
			}
			return f()
		})
	}

	go func() {
		defer func() {
			cancel()
			tq.Close()
			hold(func() error { return nil })
		}()
		work(ctx, post)
	}()
}

func (x *XMLHttpRequest) headersReceived(resp *xhttp.Response) {
	x.status = resp.StatusCode
	x.statusText = resp.Status
	x.responseHeaders = resp.Headers
	x.setState(HeadersReceived)
}

func (x *XMLHttpRequest) receive(asm *response.Assembler, chunk []byte) {
	asm.Write(chunk)
	if asm.Text() != "" {
		x.responseText = asm.Text()
	}
	if x.sendFlag {
		x.setState(Loading)
	}
}

func (x *XMLHttpRequest) finish(asm *response.Assembler, resp *xhttp.Response) error {
	if !x.sendFlag {
		return nil
	}
	x.sendFlag = false

	res, err := asm.Finish()
	if err != nil {
		return wrapError(ParseError, 0, err)
	}
	x.setResult(res)
	x.statusText = resp.Status
	x.responseURL = resp.URL
	x.cancel = nil
	x.setState(Done)
	return nil
}

func (x *XMLHttpRequest) sendSync(req *xhttp.Request) error {
	desc := &syncbridge.Description{
		Method:             req.Method,
		URL:                req.URL,
		Headers:            req.Headers,
		Body:               req.Body,
		TLS:                x.cfg.TLS,
		RejectUnauthorized: x.cfg.GetRejectUnauthorized(),
		MaxRedirects:       x.cfg.GetMaxRedirects(),
		Proxy:              x.cfg.Proxy,
	}

	res, err := x.syncRunner().Run(context.Background(), desc)
	if err != nil {
		var werr *syncbridge.Error
		if errors.As(err, &werr) && werr.Redirect {
			return x.handleError(&Error{Kind: NetworkError, Message: werr.Message, Err: err})
		}
		return x.handleError(networkError(err, 503))
	}

	contentType, _ := res.Headers.Get("content-type")
	result, err := response.Assemble(x.responseType, res.Data, contentType)
	if err != nil {
		return wrapError(ParseError, 0, err)
	}

	x.status = res.StatusCode
	x.statusText = res.StatusText
	x.responseURL = res.URL
	x.responseHeaders = res.Headers
	x.setResult(result)
	x.setState(Done)
	return nil
}

func (x *XMLHttpRequest) setResult(res *response.Result) {
	x.responseText = res.Text
	x.response = res.Value
}

func networkError(err error, status int) *Error {
	for _, rerr := range []error{redirect.ErrTooManyRedirects, redirect.ErrUnsafeRedirect} {
		if errors.Is(err, rerr) {
			return &Error{Kind: NetworkError, Message: rerr.Error(), Err: err}
		}
	}
	return wrapError(NetworkError, status, err)
}

func (x *XMLHttpRequest) httpClient() *xhttp.Client {
	if x.client != nil {
		return x.client
	}

	opts := []xhttp.ClientOption{
		xhttp.WithMaxRedirects(x.cfg.GetMaxRedirects()),
		xhttp.WithValidateSSL(x.cfg.GetRejectUnauthorized()),
		xhttp.WithAutoUnref(x.cfg.GetAutoUnref()),
		xhttp.WithProxy(x.cfg.Proxy),
		xhttp.WithLogger(x.logger),
	}
	if x.roundTripper != nil {
		opts = append(opts, xhttp.WithRoundTripper(x.roundTripper), xhttp.WithKeepAlive(true))
	}
	tlsConfig, err := xhttp.LoadTLSConfig(x.fs, x.cfg.TLS, x.cfg.GetRejectUnauthorized())
	if err != nil {
		x.logger.WithError(err).Warn("ignoring unusable TLS material")
	} else {
		opts = append(opts, xhttp.WithTLSConfig(tlsConfig))
	}

	x.client = xhttp.NewClient(opts...)
	return x.client
}

func (x *XMLHttpRequest) syncRunner() syncbridge.Runner {
	if x.runner != nil {
		return x.runner
	}

	if x.cfg.GetSyncWorker() == config.SyncWorkerProcess {
		runner, err := syncbridge.NewProcessRunner(syncbridge.WithLogger(x.logger))
		if err == nil {
			x.runner = runner
			return runner
		}
		x.logger.WithError(err).Warn("falling back to the inline sync worker")
	}
	x.runner = syncbridge.NewInlineRunner(x.fs, x.logger)
	return x.runner
}
