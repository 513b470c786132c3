package syncbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// WorkerEnv marks a process started by ProcessRunner.
const WorkerEnv = "XHRKIT_SYNC_CHILD"

// DefaultPollInterval is how often the sentinel is checked when no
// filesystem event arrives.
const DefaultPollInterval = 250 * time.Millisecond

// ProcessRunner executes each request in a child copy of the current
// executable, which must call Init at startup.
type ProcessRunner struct {
	fs           afero.Fs
	dir          string
	executable   string
	pollInterval time.Duration
	logger       logrus.FieldLogger
}

type ProcessOption func(*ProcessRunner)

// WithDir sets where sentinel and result files are created.
func WithDir(dir string) ProcessOption {
	return func(r *ProcessRunner) {
		r.dir = dir
	}
}

// WithExecutable overrides the worker binary.
func WithExecutable(path string) ProcessOption {
	return func(r *ProcessRunner) {
		r.executable = path
	}
}

func WithPollInterval(d time.Duration) ProcessOption {
	return func(r *ProcessRunner) {
		r.pollInterval = d
	}
}

func WithLogger(logger logrus.FieldLogger) ProcessOption {
	return func(r *ProcessRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

var (
	// ErrNotInitialized is returned when the current executable would be
	// re-run as a worker but never called Init.
	ErrNotInitialized = errors.New("sync worker unavailable: syncbridge.Init was not called")
	// ErrNestedWorker is returned inside a worker process.
	ErrNestedWorker = errors.New("sync worker unavailable: already running as a worker")
)

// NewProcessRunner returns a runner using the OS temp dir for its files.
// Without WithExecutable the current executable is the worker, so Init must
// have run in this process.
func NewProcessRunner(opts ...ProcessOption) (*ProcessRunner, error) {
	if os.Getenv(WorkerEnv) != "" {
		return nil, ErrNestedWorker
	}

	r := &ProcessRunner{
		fs:           afero.NewOsFs(),
		dir:          os.TempDir(),
		pollInterval: DefaultPollInterval,
		logger:       discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.executable == "" {
		if !initialized.Load() {
			return nil, ErrNotInitialized
		}
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("locate worker executable: %w", err)
		}
		r.executable = exe
	}

	dir, err := filepath.Abs(r.dir)
	if err != nil {
		return nil, err
	}
	r.dir = dir
	return r, nil
}

func (r *ProcessRunner) Run(ctx context.Context, d *Description) (*Result, error) {
	id := fmt.Sprintf("%d-%s", os.Getpid(), uuid.NewString())
	desc := *d
	desc.SentinelPath = filepath.Join(r.dir, ".xhrkit-sync-"+id)
	desc.ResultPath = filepath.Join(r.dir, ".xhrkit-content-"+id)

	log := r.logger.WithField("id", id)

	if err := afero.WriteFile(r.fs, desc.SentinelPath, nil, 0o600); err != nil {
		return nil, fmt.Errorf("create sentinel: %w", err)
	}
	defer func() {
		_ = r.fs.Remove(desc.SentinelPath)
		_ = r.fs.Remove(desc.ResultPath)
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch sentinel: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(r.dir); err != nil {
		return nil, fmt.Errorf("watch sentinel: %w", err)
	}

	payload, err := json.Marshal(&desc)
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.executable)
	cmd.Env = append(os.Environ(), WorkerEnv+"=1")
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start sync worker: %w", err)
	}
	log.WithField("pid", cmd.Process.Pid).Debug("sync worker started")

	exited := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(exited)
	}()

	if err := r.waitSentinel(ctx, watcher, desc.SentinelPath, exited); err != nil {
		<-exited
		if errors.Is(err, errWorkerExited) {
			return nil, fmt.Errorf("sync worker exited before completing: %v: %s", waitErr, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}

	data, err := afero.ReadFile(r.fs, desc.ResultPath)
	if err != nil {
		<-exited
		return nil, fmt.Errorf("read sync result: %w", err)
	}

	select {
	case <-exited:
	case <-ctx.Done():
		<-exited
	}
	log.Debug("sync worker finished")

	return DecodeResult(data)
}

var errWorkerExited = errors.New("worker exited")

// waitSentinel returns once path no longer exists. Filesystem events are the
// primary signal; the ticker and the worker's exit cover missed events.
func (r *ProcessRunner) waitSentinel(ctx context.Context, w *fsnotify.Watcher, path string, exited <-chan struct{}) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	events, errs := w.Events, w.Errors
	for {
		if !r.exists(path) {
			return nil
		}

		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) == path && ev.Has(fsnotify.Remove|fsnotify.Rename) {
				return nil
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.logger.WithError(err).Debug("sentinel watcher error")
		case <-exited:
			if !r.exists(path) {
				return nil
			}
			return errWorkerExited
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *ProcessRunner) exists(path string) bool {
	ok, err := afero.Exists(r.fs, path)
	return err == nil && ok
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
