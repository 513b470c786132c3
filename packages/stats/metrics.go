package stats

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Recorder collects request outcomes. It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	total  atomic.Int64
	errors atomic.Int64

	// latency in microseconds
	histogram *hdrhistogram.Histogram
	statuses  map[int]int64

	startTime time.Time
	endTime   time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{
		// 1us to 60s, 3 significant digits
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statuses:  make(map[int]int64),
	}
}

// Start marks the beginning of the run.
func (r *Recorder) Start() {
	r.startTime = time.Now()
}

// Stop marks the end of the run.
func (r *Recorder) Stop() {
	r.endTime = time.Now()
}

// Record adds one completed request. A non-nil err counts as an error
// whatever the status.
func (r *Recorder) Record(status int, duration time.Duration, err error) {
	r.total.Add(1)
	if err != nil || status <= 0 || status >= 400 {
		r.errors.Add(1)
	}

	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	r.mu.Lock()
	_ = r.histogram.RecordValue(latencyUs)
	r.statuses[status]++
	r.mu.Unlock()
}

// Summary is the aggregate of a run.
type Summary struct {
	Duration time.Duration `json:"-"`
	Total    int64         `json:"total"`
	Errors   int64         `json:"errors"`

	RPS       float64 `json:"rps"`
	ErrorRate float64 `json:"errorRate"`

	P50    time.Duration `json:"-"`
	P95    time.Duration `json:"-"`
	P99    time.Duration `json:"-"`
	Min    time.Duration `json:"-"`
	Max    time.Duration `json:"-"`
	Mean   time.Duration `json:"-"`
	StdDev time.Duration `json:"-"`

	// Statuses counts responses by status; 0 and negative values are
	// failures without an HTTP response.
	Statuses map[int]int64 `json:"statuses"`
}

func (r *Recorder) Summary() *Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := r.endTime.Sub(r.startTime)
	if r.endTime.IsZero() {
		duration = time.Since(r.startTime)
	}

	total := r.total.Load()
	errors := r.errors.Load()

	rps := float64(0)
	if duration.Seconds() > 0 {
		rps = float64(total) / duration.Seconds()
	}
	errorRate := float64(0)
	if total > 0 {
		errorRate = float64(errors) / float64(total)
	}

	statuses := make(map[int]int64, len(r.statuses))
	for status, n := range r.statuses {
		statuses[status] = n
	}

	return &Summary{
		Duration:  duration,
		Total:     total,
		Errors:    errors,
		RPS:       rps,
		ErrorRate: errorRate,
		P50:       micros(r.histogram.ValueAtQuantile(50)),
		P95:       micros(r.histogram.ValueAtQuantile(95)),
		P99:       micros(r.histogram.ValueAtQuantile(99)),
		Min:       micros(r.histogram.Min()),
		Max:       micros(r.histogram.Max()),
		Mean:      time.Duration(r.histogram.Mean()) * time.Microsecond,
		StdDev:    time.Duration(r.histogram.StdDev()) * time.Microsecond,
		Statuses:  statuses,
	}
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// FormatPercent renders a 0..1 ratio as a percentage.
func FormatPercent(f float64) string {
	return FormatFloat(f*100) + "%"
}

func FormatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
