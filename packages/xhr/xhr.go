package xhr

import (
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
	"github.com/abdul-hamid-achik/xhrkit/packages/eventloop"
	"github.com/abdul-hamid-achik/xhrkit/packages/events"
	"github.com/abdul-hamid-achik/xhrkit/packages/headers"
	xhttp "github.com/abdul-hamid-achik/xhrkit/packages/http"
	"github.com/abdul-hamid-achik/xhrkit/packages/policy"
	"github.com/abdul-hamid-achik/xhrkit/packages/response"
	"github.com/abdul-hamid-achik/xhrkit/packages/syncbridge"
)

// XMLHttpRequest is a single request object. It is not safe for concurrent
// use; see the package documentation.
type XMLHttpRequest struct {
	loop         *eventloop.EventLoop
	cfg          *config.Config
	logger       logrus.FieldLogger
	fs           afero.Fs
	roundTripper http.RoundTripper
	runner       syncbridge.Runner
	client       *xhttp.Client

	settings           Settings
	headers            *headers.Map
	disableHeaderCheck bool

	readyState  ReadyState
	sendFlag    bool
	errorFlag   bool
	abortedFlag bool

	status          int
	statusText      string
	responseText    string
	responseURL     string
	responseHeaders *headers.Map
	response        any
	responseType    response.Type
	err             *Error

	target events.Target

	// attempt identifies the current send; work posted by an older one is dropped.
	attempt uint64
	cancel  func()
}

// New returns a request object. Asynchronous requests run on loop; with a
// nil loop only synchronous requests are possible.
func New(loop *eventloop.EventLoop, opts ...Option) *XMLHttpRequest {
	x := &XMLHttpRequest{
		loop: loop,
		cfg:  config.DefaultConfig(),
		fs:   afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		x.logger = l
	}
	x.disableHeaderCheck = x.cfg.GetDisableHeaderCheck()
	x.headers = x.defaultHeaders()
	return x
}

func (x *XMLHttpRequest) defaultHeaders() *headers.Map {
	h := headers.New()
	h.Set("User-Agent", x.cfg.GetUserAgent())
	h.Set("Accept", "*/*")
	return h
}

// Open initializes a request. It aborts any request in flight first.
func (x *XMLHttpRequest) Open(method, rawURL string, opts ...OpenOption) error {
	x.Abort()
	x.errorFlag = false
	x.abortedFlag = false

	if !policy.IsAllowedMethod(method) {
		return newError(SecurityError, "Request method not allowed")
	}
	if !policy.ValidMethod(method) {
		return newError(SyntaxError, "Invalid request method")
	}

	o := openOptions{async: true}
	for _, opt := range opts {
		opt(&o)
	}

	x.settings = Settings{
		Method:   strings.ToUpper(method),
		URL:      rawURL,
		Async:    o.async,
		User:     o.user,
		Password: o.password,
		Origin:   parseOrigin(x.cfg.Origin),
	}
	x.clearResponse()
	x.status = 0
	x.statusText = ""
	x.err = nil

	x.setState(Opened)
	return nil
}

// SetDisableHeaderCheck turns the forbidden header check off or on.
func (x *XMLHttpRequest) SetDisableHeaderCheck(disabled bool) {
	x.disableHeaderCheck = disabled
}

// SetRequestHeader sets a request header. Forbidden names are refused with
// false and a warning rather than an error.
func (x *XMLHttpRequest) SetRequestHeader(name, value string) (bool, error) {
	if x.readyState != Opened {
		return false, newError(StateError, "setRequestHeader can only be called when state is OPEN")
	}
	if !policy.IsAllowedHeader(name, x.disableHeaderCheck) {
		x.logger.Warnf("Refused to set unsafe header %q", name)
		return false, nil
	}
	if x.sendFlag {
		return false, newError(StateError, "send flag is true")
	}
	if !policy.ValidHeader(name, value) {
		return false, newError(SyntaxError, "invalid header "+name)
	}
	x.headers.Set(name, value)
	return true, nil
}

// GetRequestHeader returns a request header, or "" when unset.
func (x *XMLHttpRequest) GetRequestHeader(name string) string {
	v, _ := x.headers.Get(name)
	return v
}

// GetResponseHeader returns a response header once headers have arrived.
func (x *XMLHttpRequest) GetResponseHeader(name string) (string, bool) {
	if x.readyState <= Opened || x.errorFlag || x.responseHeaders == nil {
		return "", false
	}
	return x.responseHeaders.Get(strings.ToLower(name))
}

// GetAllResponseHeaders returns "name: value" lines joined by CRLF.
// Cookie headers are excluded.
func (x *XMLHttpRequest) GetAllResponseHeaders() string {
	if x.readyState < HeadersReceived || x.errorFlag || x.responseHeaders == nil {
		return ""
	}
	var lines []string
	for _, f := range x.responseHeaders.Fields() {
		name := strings.ToLower(f.Name)
		if name == "set-cookie" || name == "set-cookie2" {
			continue
		}
		lines = append(lines, name+": "+f.Value)
	}
	return strings.Join(lines, "\r\n")
}

func (x *XMLHttpRequest) ReadyState() ReadyState { return x.readyState }

func (x *XMLHttpRequest) Status() int { return x.status }

func (x *XMLHttpRequest) StatusText() string { return x.statusText }

// ResponseText is the decoded body for the "" and "text" response types.
func (x *XMLHttpRequest) ResponseText() string { return x.responseText }

// ResponseXML is always empty; documents are not parsed.
func (x *XMLHttpRequest) ResponseXML() string { return "" }

// ResponseURL is the final URL after redirects.
func (x *XMLHttpRequest) ResponseURL() string { return x.responseURL }

// Response returns the body as a string, a decoded JSON value, a []byte or
// a *response.Blob depending on the response type.
func (x *XMLHttpRequest) Response() any { return x.response }

func (x *XMLHttpRequest) ResponseType() response.Type { return x.responseType }

// Err returns the failure recorded for the last request, if any. It is how
// asynchronous callers learn why an error event fired.
func (x *XMLHttpRequest) Err() error {
	if x.err == nil {
		return nil
	}
	return x.err
}

// Settings returns the request as opened.
func (x *XMLHttpRequest) Settings() Settings { return x.settings }

// SetResponseType selects how the body is materialized. It must be called
// before the body starts loading.
func (x *XMLHttpRequest) SetResponseType(t string) error {
	rt, err := response.ParseType(t)
	if err != nil {
		return wrapError(StateError, 0, err)
	}
	if x.readyState == Loading || x.readyState == Done {
		return newError(StateError, "responseType cannot be changed while loading or done")
	}
	x.responseType = rt
	return nil
}

// On sets the single handler slot for k; nil clears it.
func (x *XMLHttpRequest) On(k events.Kind, h events.Handler) {
	x.target.On(k, h)
}

func (x *XMLHttpRequest) AddEventListener(k events.Kind, h events.Handler) events.ListenerID {
	return x.target.AddEventListener(k, h)
}

func (x *XMLHttpRequest) RemoveEventListener(k events.Kind, id events.ListenerID) {
	x.target.RemoveEventListener(k, id)
}

// Abort cancels the request in flight. A request that was sending passes
// through Done with an abort event; the state always ends as Unsent.
func (x *XMLHttpRequest) Abort() {
	if x.cancel != nil {
		x.cancel()
		x.cancel = nil
	}
	x.attempt++

	x.headers = x.defaultHeaders()
	x.responseText = ""
	x.response = nil
	x.status = 0
	x.statusText = ""

	x.errorFlag = true
	x.abortedFlag = true
	if x.readyState != Unsent &&
		(x.readyState != Opened || x.sendFlag) &&
		x.readyState != Done {
		x.sendFlag = false
		x.setState(Done)
	}
	x.readyState = Unsent
}

func (x *XMLHttpRequest) clearResponse() {
	x.responseText = ""
	x.responseURL = ""
	x.responseHeaders = nil
	x.response = nil
}

// handleError records a failed request and moves to Done. Synchronous
// requests also get the error back.
func (x *XMLHttpRequest) handleError(err *Error) error {
	x.logger.WithError(err).WithField("url", x.settings.URL).Debug("request failed")

	x.err = err
	x.status = err.Status
	x.statusText = err.Message
	x.clearResponse()
	x.errorFlag = true
	x.sendFlag = false
	x.setState(Done)

	if !x.settings.Async {
		return err
	}
	return nil
}

func (x *XMLHttpRequest) setState(state ReadyState) {
	if x.readyState == state || (x.readyState == Unsent && x.abortedFlag) {
		return
	}
	x.readyState = state

	if x.settings.Async || state < Opened || state == Done {
		x.dispatch(events.ReadyStateChange)
	}

	if state == Done {
		terminal := events.Load
		switch {
		case x.abortedFlag:
			terminal = events.Abort
		case x.errorFlag:
			terminal = events.Error
		}
		x.dispatch(terminal)
		x.dispatch(events.LoadEnd)
	}
}

// dispatch delivers k to its handlers. In async mode handlers for Done run
// on a later loop turn so the caller's stack unwinds first.
func (x *XMLHttpRequest) dispatch(k events.Kind) {
	run := events.Inline
	if x.readyState == Done && x.settings.Async && x.loop != nil {
		run = x.loop.Post
	}
	x.target.Dispatch(k, run)
}
