package job

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CounterTestSuite struct {
	suite.Suite
}

func TestCounterTestSuite(t *testing.T) {
	suite.Run(t, new(CounterTestSuite))
}

func (ts *CounterTestSuite) TestNewCounterSatisfied() {
	c := NewCounter(0)
	ts.True(c.Satisfied())

	c = NewCounter(3)
	ts.False(c.Satisfied())
	ts.Equal(uint64(3), c.Load())
}

func (ts *CounterTestSuite) TestDecrementToZero() {
	c := NewCounter(2)

	prev := c.Decrement()
	ts.Equal(uint64(2), prev)
	ts.False(c.Satisfied())

	prev = c.Decrement()
	ts.Equal(uint64(1), prev)
	ts.True(c.Satisfied())
}

func (ts *CounterTestSuite) TestDecrementNeverUnderflows() {
	c := NewCounter(1)
	c.Decrement()
	ts.True(c.Satisfied())

	prev := c.Decrement()
	ts.Equal(uint64(0), prev)
	ts.True(c.Satisfied())
}

func (ts *CounterTestSuite) TestConcurrentDecrementReachesZeroExactlyOnce() {
	const n = 1000
	c := NewCounter(n)

	var wg sync.WaitGroup
	var zeroHits int
	var mu sync.Mutex

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if prev := c.Decrement(); prev == 1 {
				mu.Lock()
				zeroHits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	ts.Equal(1, zeroHits, "exactly one decrement must observe the transition to zero")
	ts.True(c.Satisfied())
}
