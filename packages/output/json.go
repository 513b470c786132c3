package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/xhrkit/packages/stats"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Requests []JSONExchange `json:"requests"`
	Summary  *JSONSummary   `json:"summary,omitempty"`
	Time     string         `json:"time"`
}

// JSONExchange represents a single request
type JSONExchange struct {
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       json.RawMessage   `json:"body,omitempty"`
	Text       string            `json:"text,omitempty"`
	Duration   float64           `json:"duration"`
	Error      string            `json:"error,omitempty"`
}

// JSONSummary is the aggregate of a repeated run. Durations are milliseconds.
type JSONSummary struct {
	*stats.Summary
	Duration float64 `json:"duration"`
	P50      float64 `json:"p50"`
	P95      float64 `json:"p95"`
	P99      float64 `json:"p99"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
}

// JSONFormatter accumulates exchanges and writes them on Flush.
type JSONFormatter struct {
	writer    io.Writer
	exchanges []JSONExchange
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:    os.Stdout,
		exchanges: make([]JSONExchange, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatExchange(ex *Exchange) {
	out := JSONExchange{
		Method:     ex.Method,
		URL:        ex.URL,
		StatusCode: ex.Status,
		Status:     ex.StatusText,
		Headers:    ex.HeaderMap(),
		Duration:   millis(ex.Duration),
	}
	if ex.Err != nil {
		out.Error = ex.Err.Error()
	}
	// JSON bodies are embedded as-is, anything else as a string
	if json.Valid([]byte(ex.Body)) {
		out.Body = json.RawMessage(ex.Body)
	} else {
		out.Text = ex.Body
	}
	f.exchanges = append(f.exchanges, out)
}

func (f *JSONFormatter) FormatSummary(s *stats.Summary) {}

func (f *JSONFormatter) FormatError(err error) {
	f.exchanges = append(f.exchanges, JSONExchange{Error: err.Error()})
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output. s may be nil.
func (f *JSONFormatter) Flush(s *stats.Summary) error {
	output := JSONOutput{
		Requests: f.exchanges,
		Time:     time.Now().Format(time.RFC3339),
	}
	if s != nil {
		output.Summary = &JSONSummary{
			Summary:  s,
			Duration: millis(s.Duration),
			P50:      millis(s.P50),
			P95:      millis(s.P95),
			P99:      millis(s.P99),
			Min:      millis(s.Min),
			Max:      millis(s.Max),
			Mean:     millis(s.Mean),
		}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
