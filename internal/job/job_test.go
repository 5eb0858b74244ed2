package job

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type JobTestSuite struct {
	suite.Suite
}

func TestJobTestSuite(t *testing.T) {
	suite.Run(t, new(JobTestSuite))
}

func (ts *JobTestSuite) TestResumeUntilDone() {
	c := NewCounter(1)
	ran := false
	j := NewJob(c, func(counter *Counter, y Yielder, arg any) {
		ran = true
		y.Done(counter)
	}, nil)

	yld, ok := j.Resume()
	ts.True(ok)
	ts.Equal(OutcomeDone, yld.Outcome)
	ts.Same(c, yld.Counter)
	ts.True(ran)
}

func (ts *JobTestSuite) TestWaitThenResumeThenDone() {
	c := NewCounter(1)
	waitC := NewCounter(1)
	stage := 0

	j := NewJob(c, func(counter *Counter, y Yielder, arg any) {
		stage = 1
		y.Wait(waitC)
		stage = 2
		y.Done(counter)
	}, nil)

	yld, ok := j.Resume()
	ts.True(ok)
	ts.Equal(OutcomeWait, yld.Outcome)
	ts.Same(waitC, yld.Counter)
	ts.Equal(1, stage)

	yld, ok = j.Resume()
	ts.True(ok)
	ts.Equal(OutcomeDone, yld.Outcome)
	ts.Equal(2, stage)
}

func (ts *JobTestSuite) TestArgIsPassedThrough() {
	c := NewCounter(1)
	var seen any
	j := NewJob(c, func(counter *Counter, y Yielder, arg any) {
		seen = arg
		y.Done(counter)
	}, "payload")

	ts.Equal("payload", j.Arg())
	j.Resume()
	ts.Equal("payload", seen)
}

func (ts *JobTestSuite) TestReturnWithoutDoneReportsNotOK() {
	c := NewCounter(1)
	j := NewJob(c, func(counter *Counter, y Yielder, arg any) {
		// deliberately returns without yielding Done
	}, nil)

	_, ok := j.Resume()
	ts.False(ok, "a body that returns without Done must be reported via ok=false")
}

func (ts *JobTestSuite) TestPanicInBodyIsContained() {
	c := NewCounter(1)
	j := NewJob(c, func(counter *Counter, y Yielder, arg any) {
		panic("boom")
	}, nil)

	ts.NotPanics(func() {
		_, ok := j.Resume()
		ts.False(ok)
	})
}
