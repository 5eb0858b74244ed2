package job

// Outcome tags the kind of yield a Job produced.
type Outcome int

const (
	// OutcomeWait means the job is parked until Counter reaches zero.
	OutcomeWait Outcome = iota
	// OutcomeDone means the job finished its batch contribution and
	// Counter should be decremented.
	OutcomeDone
	// outcomeReturned is internal: the job body returned without ever
	// yielding Done. Resume returns it only together with ok == false, so
	// callers check ok rather than this value.
	outcomeReturned
)

// Yield is the value a Job produces at a suspension point.
type Yield struct {
	Outcome Outcome
	Counter *Counter
}

// Yielder is the interface a job body uses to suspend itself. It is
// implemented by *Job; a body never constructs a Yield directly.
type Yielder interface {
	// Wait suspends the job until c is satisfied (reaches zero).
	Wait(c *Counter)
	// Done suspends the job permanently, signalling that c should be
	// decremented because this job has finished its contribution to the
	// batch c guards.
	Done(c *Counter)
}

// Func is the resumable body of a Job. It receives the batch counter it was
// constructed against (the same value submit_batch will eventually need to
// decrement) and a Yielder to suspend with. arg carries caller-supplied
// per-job data (mirrors original_source's JobFunction(counter, scheduler,
// engine, arg) signature, minus the engine back-reference per spec.md §9's
// instruction against back-references).
type Func func(counter *Counter, y Yielder, arg any)

// Job is a resumable computation backed by a dedicated goroutine blocked on
// a rendezvous channel pair. Resume hands control to the job's body until
// its next yield point (or until the body returns); the handoff through an
// unbuffered channel is itself the synchronization point that gives the
// body's writes happens-before visibility relative to the yielded value, so
// no additional atomics are needed to satisfy that guarantee.
//
// A Job is owned by exactly one of: the ready queue, a running worker, or
// the wait list, never more than one at a time — Scheduler is responsible
// for upholding that invariant; Job itself only implements the rendezvous.
type Job struct {
	resumeCh chan struct{}
	yieldCh  chan Yield
	arg      any
}

// NewJob wraps body into a Job that will run with the given counter and
// argument once first resumed. The job's goroutine starts immediately but
// blocks until the first Resume call.
func NewJob(counter *Counter, body Func, arg any) *Job {
	j := &Job{
		resumeCh: make(chan struct{}),
		yieldCh:  make(chan Yield),
		arg:      arg,
	}
	go func() {
		<-j.resumeCh
		func() {
			// A failing job terminates its own batch contribution, not the
			// scheduler: recover here so a panicking body still reaches the
			// outcomeReturned path below instead of crashing the worker
			// goroutine that's blocked in Resume.
			defer func() { recover() }()
			body(counter, j, arg)
		}()
		close(j.yieldCh)
	}()
	return j
}

// Arg returns the caller-supplied argument the job was constructed with.
func (j *Job) Arg() any {
	return j.arg
}

// Wait implements Yielder.
func (j *Job) Wait(c *Counter) {
	j.yieldCh <- Yield{Outcome: OutcomeWait, Counter: c}
	<-j.resumeCh
}

// Done implements Yielder. The job body must not touch the job again after
// calling Done; its goroutine exits once Done returns control to Resume.
func (j *Job) Done(c *Counter) {
	j.yieldCh <- Yield{Outcome: OutcomeDone, Counter: c}
}

// Resume runs the job until its next yield point (or completion) and
// reports what it yielded. ok is false when the job's body returned without
// ever yielding Done — a programming error the scheduler treats as fatal in
// debug builds and a leak in release builds (spec.md §4.5, §7).
func (j *Job) Resume() (Yield, bool) {
	j.resumeCh <- struct{}{}
	y, ok := <-j.yieldCh
	if !ok {
		return Yield{Outcome: outcomeReturned}, false
	}
	return y, true
}
