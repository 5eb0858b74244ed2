package job

import "sync/atomic"

// Counter is an atomic non-negative fan-in barrier shared by all jobs of a
// batch and by any dependents parked on it. It is fixed-fan-in: increment is
// not exposed after construction.
type Counter struct {
	v atomic.Uint64
}

// NewCounter creates a counter initialized to n, the batch's fan-in count.
func NewCounter(n uint64) *Counter {
	c := &Counter{}
	c.v.Store(n)
	return c
}

// Load returns the current value.
func (c *Counter) Load() uint64 {
	return c.v.Load()
}

// Satisfied reports whether the counter has reached zero.
func (c *Counter) Satisfied() bool {
	return c.Load() == 0
}

// Decrement subtracts one and returns the value the counter held just
// before the decrement. Callers compare the return value to 1 to detect the
// decrement that drove the counter to zero.
func (c *Counter) Decrement() uint64 {
	for {
		old := c.v.Load()
		if old == 0 {
			return 0
		}
		if c.v.CompareAndSwap(old, old-1) {
			return old
		}
	}
}
