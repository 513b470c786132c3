package syncbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// initialized is set once Init has returned in a non-worker process, which
// makes the executable safe to re-run as a worker.
var initialized atomic.Bool

// Init runs the sync worker and exits when the process was started by a
// ProcessRunner. Otherwise it returns false immediately. Call it first thing
// in main and in TestMain of packages that issue synchronous requests.
func Init() bool {
	if os.Getenv(WorkerEnv) != "1" {
		initialized.Store(true)
		return false
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if err := Serve(context.Background(), os.Stdin, afero.NewOsFs(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "xhrkit sync worker: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
	return true
}

// Serve reads one Description from in, performs it, writes the result file
// and removes the sentinel.
func Serve(ctx context.Context, in io.Reader, fs afero.Fs, logger logrus.FieldLogger) error {
	var d Description
	if err := json.NewDecoder(in).Decode(&d); err != nil {
		return fmt.Errorf("decode description: %w", err)
	}
	if d.ResultPath == "" || d.SentinelPath == "" {
		return fmt.Errorf("description is missing result or sentinel path")
	}

	res, err := Execute(ctx, fs, logger, &d)
	data, err := EncodeResult(res, err)
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, d.ResultPath, data, 0o600); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := fs.Remove(d.SentinelPath); err != nil {
		return fmt.Errorf("remove sentinel: %w", err)
	}
	return nil
}
