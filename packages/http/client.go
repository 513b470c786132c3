package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	neturl "net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abdul-hamid-achik/xhrkit/packages/headers"
	"github.com/abdul-hamid-achik/xhrkit/packages/redirect"
)

const (
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

type Client struct {
	httpClient   *http.Client
	transport    http.RoundTripper
	timeout      time.Duration
	maxRedirects int
	validateSSL  bool
	keepAlive    bool
	autoUnref    bool
	proxyURL     string
	tlsConfig    *tls.Config
	logger       logrus.FieldLogger
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		maxRedirects: redirect.DefaultMax,
		validateSSL:  true,
		logger:       discardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = c.newTransport()
	}

	c.httpClient = &http.Client{
		Transport: c.transport,
		Timeout:   c.timeout,
		// redirects are followed by Stream so the budget and Host rules apply
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return c
}

func (c *Client) newTransport() *http.Transport {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        DefaultMaxIdleConns,
		MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     DefaultIdleConnTimeout,
		DisableKeepAlives:   !c.keepAlive,
	}

	tlsConfig := &tls.Config{}
	if c.tlsConfig != nil {
		tlsConfig = c.tlsConfig.Clone()
	}
	if !c.validateSSL {
		tlsConfig.InsecureSkipVerify = true
	}
	transport.TLSClientConfig = tlsConfig

	if c.proxyURL != "" {
		proxyURL, err := neturl.Parse(c.proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			c.logger.WithError(err).Warn("ignoring invalid proxy URL")
		}
	}

	return transport
}

// WithTimeout bounds a whole request including redirects. Zero means no limit.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRedirects sets the redirect budget. Negative values clamp to 0.
func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithTLSConfig sets client certificates, root CAs and cipher suites.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithKeepAlive keeps connections in the pool between requests.
func WithKeepAlive(keep bool) ClientOption {
	return func(c *Client) {
		c.keepAlive = keep
	}
}

// WithAutoUnref drops idle pooled connections once each response body is closed.
func WithAutoUnref(unref bool) ClientOption {
	return func(c *Client) {
		c.autoUnref = unref
	}
}

// WithRoundTripper replaces the transport, e.g. to share a connection pool.
// TLS, proxy and keep-alive options are then the caller's responsibility.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Do sends req, follows redirects and reads the whole body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, body, err := c.Stream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	resp.Body, err = io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Stream sends req and follows redirects. The returned response has no Body;
// the caller reads and closes the returned reader instead.
func (c *Client) Stream(ctx context.Context, req *Request) (*Response, io.ReadCloser, error) {
	u, err := parseURL(req.URL)
	if err != nil {
		return nil, nil, err
	}

	hdrs := req.Headers.Clone()
	if !hdrs.Has("Host") {
		hdrs.Set("Host", redirect.HostHeader(u))
	}
	method, body := req.Method, req.Body
	budget := redirect.NewBudget(c.maxRedirects)
	start := time.Now()

	for {
		httpResp, err := c.roundTrip(ctx, method, u, hdrs, body)
		if err != nil {
			return nil, nil, err
		}

		if !redirect.IsRedirect(httpResp.StatusCode) {
			resp := &Response{
				StatusCode: httpResp.StatusCode,
				Status:     reasonPhrase(httpResp),
				Headers:    headers.FromHTTP(httpResp.Header),
				URL:        u.String(),
				Duration:   time.Since(start),
				Redirects:  budget.Count,
			}
			return resp, c.wrapBody(httpResp.Body), nil
		}

		location := httpResp.Header.Get("Location")
		discard(httpResp.Body)

		target, err := budget.Next(httpResp.StatusCode, location, u, method)
		if err != nil {
			return nil, nil, err
		}

		c.logger.WithFields(logrus.Fields{
			"status": httpResp.StatusCode,
			"from":   u.String(),
			"to":     target.URL.String(),
			"count":  budget.Count,
		}).Debug("following redirect")

		u, method = target.URL, target.Method
		hdrs.Set("Host", target.Host)
		if target.DropBody {
			body = nil
			hdrs.Del("Content-Type")
			hdrs.Del("Content-Length")
		}
	}
}

func (c *Client) roundTrip(ctx context.Context, method string, u *neturl.URL, hdrs *headers.Map, body []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		var reused bool
		trace := &httptrace.ClientTrace{
			GotConn: func(info httptrace.GotConnInfo) {
				reused = info.Reused
			},
		}

		var reader io.Reader
		if len(body) > 0 {
			reader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), method, u.String(), reader)
		if err != nil {
			return nil, err
		}
		for _, f := range hdrs.Fields() {
			switch strings.ToLower(f.Name) {
			case "host":
				httpReq.Host = f.Value
			case "content-length":
				// derived from the body by net/http
			default:
				httpReq.Header.Set(f.Name, f.Value)
			}
		}
		if _, ok := hdrs.Get("User-Agent"); !ok {
			// net/http would otherwise add its own
			httpReq.Header["User-Agent"] = nil
		}

		httpResp, err := c.httpClient.Do(httpReq)
		if err == nil {
			return httpResp, nil
		}
		if attempt == 0 && reused && errors.Is(err, syscall.ECONNRESET) {
			c.logger.WithField("url", u.String()).Debug("reused connection reset, retrying")
			continue
		}
		return nil, err
	}
}

// CloseIdleConnections drops pooled connections that are not in use.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) wrapBody(body io.ReadCloser) io.ReadCloser {
	if !c.autoUnref {
		return body
	}
	return &unrefBody{ReadCloser: body, client: c}
}

type unrefBody struct {
	io.ReadCloser
	client *Client
}

func (b *unrefBody) Close() error {
	err := b.ReadCloser.Close()
	b.client.CloseIdleConnections()
	return err
}

func discard(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

func reasonPhrase(resp *http.Response) string {
	return strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
}

func parseURL(rawURL string) (*neturl.URL, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return neturl.Parse(rawURL)
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
