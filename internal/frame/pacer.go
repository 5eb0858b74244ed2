package frame

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer caps frame-loop iterations per second. The engine installs one
// whenever vSync is disabled (spec.md §6 context.swapchain.vSyncEnabled),
// without checking the collaborator's present mode: without a cap, an
// uncapped present loop spins the frame job's goroutine as fast as the
// collaborator allows.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer builds a Pacer allowing up to fps iterations per second, with a
// burst of one (no frame catch-up after a stall).
func NewPacer(fps float64) *Pacer {
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(fps), 1)}
}

// Wait blocks until the next iteration is permitted, or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// Unpaced returns a nil Pacer, which never throttles: Wait on it returns
// at once. It suits vSync-enabled loops, whose present mode already paces
// frames.
func Unpaced() *Pacer { return nil }
