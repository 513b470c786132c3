package syncbridge

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Runner blocks until the described request completes.
type Runner interface {
	Run(ctx context.Context, d *Description) (*Result, error)
}

// InlineRunner executes requests on a goroutine of the calling process and
// joins it through a one-shot channel.
type InlineRunner struct {
	fs     afero.Fs
	logger logrus.FieldLogger
}

// NewInlineRunner returns a runner reading TLS material from fs.
func NewInlineRunner(fs afero.Fs, logger logrus.FieldLogger) *InlineRunner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &InlineRunner{fs: fs, logger: logger}
}

func (r *InlineRunner) Run(ctx context.Context, d *Description) (*Result, error) {
	type outcome struct {
		data []byte
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		res, err := Execute(ctx, r.fs, r.logger, d)
		data, encErr := EncodeResult(res, err)
		done <- outcome{data: data, err: encErr}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			return nil, o.err
		}
		// same decoding as the process worker so both modes agree byte for byte
		return DecodeResult(o.data)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
