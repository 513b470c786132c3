package xhr

import (
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
	"github.com/abdul-hamid-achik/xhrkit/packages/syncbridge"
)

// Option configures a request object at construction.
type Option func(*XMLHttpRequest)

// WithConfig sets TLS material, redirect budget, origin and the other
// constructor settings. The config is not modified.
func WithConfig(cfg *config.Config) Option {
	return func(x *XMLHttpRequest) {
		if cfg != nil {
			x.cfg = cfg
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(x *XMLHttpRequest) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithFS sets the filesystem used for file: URLs and TLS material.
func WithFS(fs afero.Fs) Option {
	return func(x *XMLHttpRequest) {
		if fs != nil {
			x.fs = fs
		}
	}
}

// WithRoundTripper shares a transport, and with it a connection pool,
// between request objects. Asynchronous requests only.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(x *XMLHttpRequest) {
		x.roundTripper = rt
	}
}

// WithSyncRunner overrides the runner chosen by the syncWorker setting.
func WithSyncRunner(r syncbridge.Runner) Option {
	return func(x *XMLHttpRequest) {
		x.runner = r
	}
}

type openOptions struct {
	async    bool
	user     *string
	password *string
}

// OpenOption modifies a single Open call.
type OpenOption func(*openOptions)

// Sync makes Send block until the request completes.
func Sync() OpenOption {
	return func(o *openOptions) {
		o.async = false
	}
}

// Credentials sets Basic authentication. An empty user means none.
func Credentials(user, password string) OpenOption {
	return func(o *openOptions) {
		o.user, o.password = nil, nil
		if user != "" {
			o.user = &user
		}
		if password != "" {
			o.password = &password
		}
	}
}

// Settings is the request as opened.
type Settings struct {
	Method   string
	URL      string
	Async    bool
	User     *string
	Password *string
	Origin   *url.URL
}

func parseOrigin(raw string) *url.URL {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil
	}
	return u
}
