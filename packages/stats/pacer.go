package stats

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer spaces requests to a target rate. A zero Pacer does not wait.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a pacer allowing rps requests per second. Values <= 0
// disable pacing.
func NewPacer(rps float64) *Pacer {
	if rps <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait blocks until the next request may start or ctx ends.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}

// Limit reports the configured rate, 0 when unpaced.
func (p *Pacer) Limit() float64 {
	if p == nil || p.limiter == nil {
		return 0
	}
	return float64(p.limiter.Limit())
}
