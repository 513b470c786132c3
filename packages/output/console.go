package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/xhrkit/packages/stats"
)

type ConsoleFormatter struct {
	writer      io.Writer
	verbose     bool
	noColor     bool
	showHeaders bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithHeaders prints response headers before the body.
func WithHeaders(show bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.showHeaders = show
	}
}

// FormatExchange prints the status line, optionally the headers, and the body.
func (f *ConsoleFormatter) FormatExchange(ex *Exchange) {
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if ex.Err != nil {
		fmt.Fprintf(f.writer, "%s %s %s\n", red("x"), ex.URL, red(fmt.Sprintf("(%v)", ex.Err)))
		return
	}

	if f.verbose || f.showHeaders {
		fmt.Fprintf(f.writer, "%s %s %s\n", f.statusColor(ex.Status)(fmt.Sprintf("%d %s", ex.Status, ex.StatusText)),
			ex.URL, cyan(fmt.Sprintf("(%dms)", ex.Duration.Milliseconds())))
	}
	if f.showHeaders {
		for _, line := range ex.HeaderLines() {
			fmt.Fprintf(f.writer, "%s\n", faint(line))
		}
		fmt.Fprintf(f.writer, "\n")
	}

	fmt.Fprint(f.writer, ex.Body)
	if ex.Body != "" && ex.Body[len(ex.Body)-1] != '\n' {
		fmt.Fprintf(f.writer, "\n")
	}
}

func (f *ConsoleFormatter) statusColor(status int) func(a ...any) string {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen).SprintFunc()
	case status >= 300 && status < 400:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

// FormatSummary prints the latency and status breakdown of a repeated run.
func (f *ConsoleFormatter) FormatSummary(s *stats.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Summary"))
	fmt.Fprintf(f.writer, "Requests: %d", s.Total)
	if ok := s.Total - s.Errors; ok > 0 {
		fmt.Fprintf(f.writer, ", %s", green(fmt.Sprintf("%d ok", ok)))
	}
	if s.Errors > 0 {
		fmt.Fprintf(f.writer, ", %s", red(fmt.Sprintf("%d failed (%s)", s.Errors, stats.FormatPercent(s.ErrorRate))))
	}
	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Rate:     %s req/s\n", stats.FormatFloat(s.RPS))
	fmt.Fprintf(f.writer, "Latency:  min %s  p50 %s  p95 %s  p99 %s  max %s\n",
		s.Min, s.P50, s.P95, s.P99, s.Max)

	statuses := make([]int, 0, len(s.Statuses))
	for status := range s.Statuses {
		statuses = append(statuses, status)
	}
	sort.Ints(statuses)
	for _, status := range statuses {
		fmt.Fprintf(f.writer, "  %s %d\n", f.statusColor(status)(fmt.Sprintf("[%d]", status)), s.Statuses[status])
	}
	fmt.Fprintf(f.writer, "Time:     %dms\n", s.Duration.Milliseconds())
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	if !f.verbose {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("xhrkit"), version)
}
