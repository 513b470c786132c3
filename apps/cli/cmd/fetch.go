package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/xhrkit/packages/core/config"
	"github.com/abdul-hamid-achik/xhrkit/packages/core/env"
	"github.com/abdul-hamid-achik/xhrkit/packages/eventloop"
	xhttp "github.com/abdul-hamid-achik/xhrkit/packages/http"
	"github.com/abdul-hamid-achik/xhrkit/packages/output"
	"github.com/abdul-hamid-achik/xhrkit/packages/response"
	"github.com/abdul-hamid-achik/xhrkit/packages/stats"
	"github.com/abdul-hamid-achik/xhrkit/packages/xhr"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Send a request and print the response",
	Long: `Send a request with XMLHttpRequest semantics and print the response body.

The URL, header values and body may reference {{name}} placeholders, which
are filled from the environment (including --env-file).

Examples:
  xhrkit fetch https://api.example.com/users
  xhrkit fetch -X POST -H "Content-Type: application/json" -d '{"name":"a"}' https://api.example.com/users
  xhrkit fetch --type json --select items.#.id https://api.example.com/items
  xhrkit fetch --sync --headers file:///etc/hostname
  xhrkit fetch --origin https://api.example.com v1/status
  xhrkit fetch --repeat 100 --rate 20 --keep-alive https://api.example.com/health`,
	Args: cobra.ExactArgs(1),
	RunE: fetchCommand,
}

var (
	methodFlag        string
	headerFlags       []string
	dataFlag          string
	dataFileFlag      string
	userFlag          string
	syncFlag          bool
	typeFlag          string
	maxRedirectsFlag  int
	insecureFlag      bool
	originFlag        string
	denyFSFlag        bool
	unsafeHeadersFlag bool
	userAgentFlag     string
	syncWorkerFlag    string
	proxyFlag         string
	certFlag          string
	keyFlag           string
	cacertFlag        string
	configFlag        string
	envFileFlag       string

	// Output flags
	selectFlag  string
	schemaFlag  string
	outputFlag  string
	verboseFlag int // 0=warnings, 1=-v, 2=-vv, 3=-vvv
	noColorFlag bool
	headersFlag bool

	// Repeat flags
	repeatFlag    int
	rateFlag      float64
	keepAliveFlag bool
)

func init() {
	f := fetchCmd.Flags()

	// Request flags
	f.StringVarP(&methodFlag, "method", "X", "", "Request method (default GET, or POST with a body)")
	f.StringArrayVarP(&headerFlags, "header", "H", nil, `Request header "Name: value" (repeatable)`)
	f.StringVarP(&dataFlag, "data", "d", "", "Request body")
	f.StringVar(&dataFileFlag, "data-file", "", `Read the request body from a file ("-" for stdin)`)
	f.StringVarP(&userFlag, "user", "u", "", "Basic auth credentials as user:password")
	f.BoolVar(&syncFlag, "sync", false, "Use a synchronous request")
	f.StringVar(&typeFlag, "type", "", "Response type: text, json, arraybuffer, blob")

	// Config overrides
	f.IntVar(&maxRedirectsFlag, "max-redirects", config.DefaultMaxRedirects, "Maximum redirects to follow")
	f.BoolVarP(&insecureFlag, "insecure", "k", false, "Disable TLS certificate validation")
	f.StringVar(&originFlag, "origin", "", "Origin relative URLs are resolved against")
	f.BoolVar(&denyFSFlag, "deny-fs", false, "Refuse file: URLs")
	f.BoolVar(&unsafeHeadersFlag, "unsafe-headers", false, "Allow setting forbidden request headers")
	f.StringVarP(&userAgentFlag, "user-agent", "A", "", "User-Agent header")
	f.StringVar(&syncWorkerFlag, "sync-worker", "", "Synchronous worker: process or inline")
	f.StringVar(&proxyFlag, "proxy", "", "Proxy URL for HTTP requests")
	f.StringVar(&certFlag, "cert", "", "Client certificate file (PEM)")
	f.StringVar(&keyFlag, "key", "", "Client private key file (PEM)")
	f.StringVar(&cacertFlag, "cacert", "", "CA bundle file (PEM)")
	f.StringVar(&configFlag, "config", "", "Path to config file")
	f.StringVar(&envFileFlag, "env-file", "", "Path to .env file loaded into the environment")

	// Output flags
	f.StringVar(&selectFlag, "select", "", "Print only the JSON value at this gjson path")
	f.StringVar(&schemaFlag, "schema", "", "Validate the JSON body against a schema file")
	f.StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json")
	f.CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v, -vv, -vvv for more detail)")
	f.BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	f.BoolVar(&headersFlag, "headers", false, "Print the status line and response headers")

	// Repeat flags
	f.IntVarP(&repeatFlag, "repeat", "n", 1, "Send the request N times and print a latency summary")
	f.Float64Var(&rateFlag, "rate", 0, "Maximum requests per second when repeating")
	f.BoolVar(&keepAliveFlag, "keep-alive", false, "Reuse connections between asynchronous requests")
}

// exchangeFormatter is implemented by every output format.
type exchangeFormatter interface {
	FormatExchange(ex *output.Exchange)
	FormatSummary(s *stats.Summary)
	FormatError(err error)
	FormatHeader(version string)
}

// fetchRequest is the request as given on the command line, placeholders resolved.
type fetchRequest struct {
	Method   string
	URL      string
	Headers  [][2]string
	Body     []byte
	User     string
	Password string
}

func fetchCommand(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd.ErrOrStderr(), verboseFlag)
	fs := afero.NewOsFs()

	if envFileFlag != "" {
		if _, err := env.LoadAndExportDotEnv(fs, envFileFlag); err != nil {
			return withCode(ExitConfigError, fmt.Errorf("loading env file: %w", err))
		}
	}

	cfg, err := config.Load(configFlag)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	cfg = cfg.Merge(flagConfig(cmd))
	if err := cfg.Validate(); err != nil {
		return withCode(ExitConfigError, err)
	}

	if repeatFlag < 1 {
		return withCode(ExitUsageError, fmt.Errorf("--repeat must be at least 1"))
	}
	if _, err := response.ParseType(typeFlag); err != nil {
		return withCode(ExitUsageError, err)
	}

	resolver := env.NewResolver()
	resolver.SetWarnFunc(logger.Warnf)
	req, err := buildFetchRequest(cmd, fs, resolver, args[0])
	if err != nil {
		return withCode(ExitUsageError, err)
	}

	var formatter exchangeFormatter
	switch strings.ToLower(outputFlag) {
	case "json":
		formatter = output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
	case "console":
		formatter = output.NewConsoleFormatter(
			output.WithWriter(cmd.OutOrStdout()),
			output.WithVerbose(verboseFlag > 0),
			output.WithNoColor(noColorFlag),
			output.WithHeaders(headersFlag),
		)
	default:
		return withCode(ExitUsageError, fmt.Errorf("unknown output format %q", outputFlag))
	}
	formatter.FormatHeader(version)

	var transport http.RoundTripper
	if keepAliveFlag && !syncFlag {
		t, err := sharedTransport(fs, cfg)
		if err != nil {
			return withCode(ExitConfigError, err)
		}
		defer t.CloseIdleConnections()
		transport = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := stats.NewRecorder()
	pacer := stats.NewPacer(rateFlag)
	code := ExitSuccess
	var firstErr error

	recorder.Start()
	for i := 0; i < repeatFlag; i++ {
		if err := pacer.Wait(ctx); err != nil {
			break
		}

		ex, sendErr := performFetch(ctx, req, cfg, fs, logger, transport)
		recorder.Record(ex.Status, ex.Duration, ex.Err)

		rc := ExitSuccess
		switch {
		case sendErr != nil:
			rc = requestExitCode(sendErr)
		case ex.Status >= 400:
			rc = ExitHTTPError
		default:
			if err := postProcess(fs, ex); err != nil {
				ex.Err = err
				rc = ExitParseError
			}
		}
		if rc != ExitSuccess && code == ExitSuccess {
			code = rc
			firstErr = ex.Err
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %d %s", ex.URL, ex.Status, ex.StatusText)
			}
		}

		formatter.FormatExchange(ex)
	}
	recorder.Stop()

	var summary *stats.Summary
	if repeatFlag > 1 {
		summary = recorder.Summary()
		formatter.FormatSummary(summary)
	}
	if jf, ok := formatter.(*output.JSONFormatter); ok {
		if err := jf.Flush(summary); err != nil {
			return withCode(ExitUsageError, err)
		}
	}

	if code != ExitSuccess {
		return reported(code, firstErr)
	}
	return nil
}

// performFetch runs one request through a fresh request object.
func performFetch(ctx context.Context, req *fetchRequest, cfg *config.Config, fs afero.Fs, logger logrus.FieldLogger, transport http.RoundTripper) (*output.Exchange, error) {
	var loop *eventloop.EventLoop
	if !syncFlag {
		loop = eventloop.New()
	}
	opts := []xhr.Option{xhr.WithConfig(cfg), xhr.WithLogger(logger), xhr.WithFS(fs)}
	if transport != nil {
		opts = append(opts, xhr.WithRoundTripper(transport))
	}
	x := xhr.New(loop, opts...)

	ex := &output.Exchange{Method: req.Method, URL: req.URL}
	fail := func(err error) (*output.Exchange, error) {
		ex.Err = err
		return ex, err
	}

	if err := x.SetResponseType(typeFlag); err != nil {
		return fail(err)
	}

	var openOpts []xhr.OpenOption
	if syncFlag {
		openOpts = append(openOpts, xhr.Sync())
	}
	if req.User != "" {
		openOpts = append(openOpts, xhr.Credentials(req.User, req.Password))
	}
	if err := x.Open(req.Method, req.URL, openOpts...); err != nil {
		return fail(err)
	}
	for _, h := range req.Headers {
		if _, err := x.SetRequestHeader(h[0], h[1]); err != nil {
			return fail(err)
		}
	}

	start := time.Now()
	var err error
	if syncFlag {
		err = x.Send(req.Body)
	} else {
		err = loop.Start(ctx, func() error {
			return x.Send(req.Body)
		})
		if err == nil {
			err = x.Err()
		}
	}
	ex.Duration = time.Since(start)

	ex.Status = x.Status()
	ex.StatusText = x.StatusText()
	if u := x.ResponseURL(); u != "" {
		ex.URL = u
	}
	ex.Headers = x.GetAllResponseHeaders()
	ex.Body = bodyString(x.Response())

	if err != nil {
		return fail(err)
	}
	return ex, nil
}

func bodyString(v any) string {
	switch body := v.(type) {
	case nil:
		return ""
	case string:
		return body
	case []byte:
		return string(body)
	case *response.Blob:
		return string(body.Bytes())
	default:
		out, err := json.Marshal(body)
		if err != nil {
			return fmt.Sprint(body)
		}
		return string(out)
	}
}

// postProcess applies --schema and then --select to a successful response.
func postProcess(fs afero.Fs, ex *output.Exchange) error {
	if schemaFlag != "" {
		if err := output.ValidateSchema(fs, schemaFlag, []byte(ex.Body)); err != nil {
			return err
		}
	}
	if selectFlag != "" {
		selected, err := output.Select(ex.Body, selectFlag)
		if err != nil {
			return err
		}
		ex.Body = selected
	}
	return nil
}

func buildFetchRequest(cmd *cobra.Command, fs afero.Fs, resolver *env.Resolver, rawURL string) (*fetchRequest, error) {
	req := &fetchRequest{
		Method: methodFlag,
		URL:    resolver.Resolve(rawURL),
	}

	for _, raw := range headerFlags {
		name, value, ok := strings.Cut(raw, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", raw)
		}
		req.Headers = append(req.Headers, [2]string{
			strings.TrimSpace(name),
			resolver.Resolve(strings.TrimSpace(value)),
		})
	}

	switch {
	case dataFlag != "" && dataFileFlag != "":
		return nil, fmt.Errorf("--data and --data-file are mutually exclusive")
	case dataFlag != "":
		req.Body = []byte(resolver.Resolve(dataFlag))
	case dataFileFlag == "-":
		body, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading body from stdin: %w", err)
		}
		req.Body = body
	case dataFileFlag != "":
		body, err := afero.ReadFile(fs, dataFileFlag)
		if err != nil {
			return nil, fmt.Errorf("reading body: %w", err)
		}
		req.Body = body
	}

	if req.Method == "" {
		req.Method = "GET"
		if req.Body != nil {
			req.Method = "POST"
		}
	}

	if userFlag != "" {
		req.User, req.Password, _ = strings.Cut(userFlag, ":")
	}
	return req, nil
}

// flagConfig returns a config holding only the settings given as flags.
func flagConfig(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	c := &config.Config{
		Origin:     originFlag,
		UserAgent:  userAgentFlag,
		SyncWorker: syncWorkerFlag,
		Proxy:      proxyFlag,
		TLS: config.TLS{
			CertFile: certFlag,
			KeyFile:  keyFlag,
			CAFile:   cacertFlag,
		},
	}
	if flags.Changed("max-redirects") {
		c.MaxRedirects = config.IntPtr(maxRedirectsFlag)
	}
	if insecureFlag {
		c.RejectUnauthorized = config.BoolPtr(false)
	}
	if denyFSFlag {
		c.AllowFileSystemResources = config.BoolPtr(false)
	}
	if unsafeHeadersFlag {
		c.DisableHeaderCheck = config.BoolPtr(true)
	}
	if keepAliveFlag {
		c.AutoUnref = config.BoolPtr(false)
	}
	return c
}

// sharedTransport builds the pooled transport used with --keep-alive.
func sharedTransport(fs afero.Fs, cfg *config.Config) (*http.Transport, error) {
	tlsConfig, err := xhttp.LoadTLSConfig(fs, cfg.TLS, cfg.GetRejectUnauthorized())
	if err != nil {
		return nil, err
	}

	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsConfig,
		MaxIdleConns:        xhttp.DefaultMaxIdleConns,
		MaxIdleConnsPerHost: xhttp.DefaultMaxIdleConnsPerHost,
		IdleConnTimeout:     xhttp.DefaultIdleConnTimeout,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		t.Proxy = http.ProxyURL(proxyURL)
	}
	return t, nil
}
