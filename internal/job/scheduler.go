package job

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrQueueFull is returned by SubmitBatch when the ready queue cannot accept
// every job of the batch (spec.md §7, resource exhaustion).
var ErrQueueFull = errors.New("job: ready queue full")

// Spec describes one job to submit: its resumable body and an opaque
// argument passed through to it.
type Spec struct {
	Func Func
	Arg  any
}

// Config configures a Scheduler. Mirrors go-foundations-workerpool's own
// Config/DefaultConfig builder-style surface.
type Config struct {
	// MaxJobs bounds the ready queue, wait list and free-slot pool
	// capacity (spec.md §6 scheduler.maxJobs).
	MaxJobs int
	// WorkerThreads is the number of non-main worker goroutines started
	// by the first RunMain call (spec.md §6 scheduler.workerThreads).
	WorkerThreads int
	// Debug makes a job that returns without yielding Done panic. When
	// false, that error is reported via OnLeak instead, matching spec.md
	// §7's "leak in release builds" language. A concurrent RunMain call
	// panics regardless of Debug.
	Debug bool
	// OnLeak, if set, is invoked (from whichever goroutine detected it)
	// when a job returns without yielding Done in a non-Debug build.
	OnLeak func(err error)
}

// DefaultConfig returns the spec.md §6 defaults, except WorkerThreads which
// defaults to hardware concurrency minus one (spec.md §5).
func DefaultConfig() Config {
	workers := runtime.GOMAXPROCS(0) - 1
	if workers < 1 {
		workers = 1
	}
	return Config{
		MaxJobs:       200,
		WorkerThreads: workers,
		Debug:         false,
	}
}

// Metrics is a snapshot of scheduler occupancy and throughput, the Go
// analogue of go-foundations-workerpool's Metrics struct and
// Guti2010-Proyecto-SO's Pool.metrics() map, re-exported as real
// instrumentation by internal/schedmetrics.
type Metrics struct {
	ReadyQueued   int
	ReadyCapacity int
	WaitParked    int
	WaitCapacity  int
	WorkersBusy   int
	WorkersTotal  int
	Submitted     uint64
	Completed     uint64
	Leaked        uint64
	Rejected      uint64
}

// Scheduler is the lock-free-queue-and-wait-list worker pool described in
// spec.md §4.5: a bounded ready queue, a bounded wait list, a configurable
// worker pool, and a main-thread driver loop implementing the yield state
// machine.
type Scheduler struct {
	cfg Config

	ready *Queue[*Job]
	wait  *WaitList

	running   atomic.Bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	workersWG sync.WaitGroup

	mainRunning atomic.Bool

	submitted atomic.Uint64
	completed atomic.Uint64
	leaked    atomic.Uint64
	rejected  atomic.Uint64

	busy atomic.Int64
}

// New creates a Scheduler with the given configuration, normalizing zero
// values to DefaultConfig's.
func New(cfg Config) *Scheduler {
	d := DefaultConfig()
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = d.MaxJobs
	}
	if cfg.WorkerThreads <= 0 {
		cfg.WorkerThreads = d.WorkerThreads
	}
	return &Scheduler{
		cfg:    cfg,
		ready:  NewQueue[*Job](cfg.MaxJobs),
		wait:   NewWaitList(cfg.MaxJobs),
		stopCh: make(chan struct{}),
	}
}

// SubmitBatch allocates a fresh Counter initialized to len(specs), wraps
// each Spec into a Job that will decrement it on its final Done yield, and
// pushes each Job onto the ready queue. It returns the Counter so callers
// can express a dependency by yielding Wait(counter) from another job.
//
// If the ready queue cannot accept every job (because some concurrent
// burst of submissions has filled it), SubmitBatch returns ErrQueueFull;
// jobs already pushed before the failing one remain queued and will run —
// partial submission is visible to the caller via the non-nil counter
// still initialized to the full len(specs), matching spec.md's "Submit
// fails with QueueFull" without silently losing already-queued work.
func (s *Scheduler) SubmitBatch(specs []Spec) (*Counter, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("job: empty batch")
	}
	c := NewCounter(uint64(len(specs)))
	for _, spec := range specs {
		j := NewJob(c, spec.Func, spec.Arg)
		if !s.ready.Push(j) {
			s.rejected.Add(1)
			return c, ErrQueueFull
		}
		s.submitted.Add(1)
	}
	return c, nil
}

// Submit is a convenience for SubmitBatch([]Spec{spec}).
func (s *Scheduler) Submit(spec Spec) (*Counter, error) {
	return s.SubmitBatch([]Spec{spec})
}

// RunMain must be called from the application's entry goroutine. It pins
// that goroutine to its OS thread (runtime.LockOSThread), the idiomatic Go
// substitute for the C++ "main thread" identity check spec.md §4.5
// requires — Go doesn't expose goroutine-to-OS-thread identity, so a
// concurrent second call is treated as the equivalent programmer error and
// panics, matching "calling from a non-main thread is fatal". On first
// call it starts the configured worker pool. It loops popping and resuming
// ready jobs, handling yields, and calling perTick once per iteration,
// until shouldContinue returns false.
func (s *Scheduler) RunMain(shouldContinue func() bool, perTick func()) {
	if !s.mainRunning.CompareAndSwap(false, true) {
		panic("job: RunMain called concurrently")
	}
	runtime.LockOSThread()
	defer s.mainRunning.Store(false)

	s.startWorkersOnce()

	for s.running.Load() && shouldContinue() {
		if j, ok := s.ready.Pop(); ok {
			s.resumeAndHandle(j)
		}
		if perTick != nil {
			perTick()
		}
	}
}

// startWorkersOnce spawns the configured worker pool exactly once per
// Scheduler, no matter how many times RunMain is called: mainRunning only
// guards against concurrent/overlapping RunMain calls, and resets once a
// call returns, so a second sequential RunMain on the same Scheduler would
// otherwise spawn another full batch of worker goroutines on top of any
// still running.
func (s *Scheduler) startWorkersOnce() {
	s.startOnce.Do(func() {
		s.running.Store(true)
		for i := 0; i < s.cfg.WorkerThreads; i++ {
			s.workersWG.Add(1)
			go s.workerLoop()
		}
	})
}

func (s *Scheduler) workerLoop() {
	defer s.workersWG.Done()
	for {
		j, ok := s.ready.PopWait(s.stopCh)
		if !ok {
			return
		}
		s.resumeAndHandle(j)
	}
}

// StopWorkers signals the worker loop to exit; workers drain no further
// jobs and the main driver returns at its next shouldContinue check
// (spec.md §4.5, §8 scenario 6). The ready queue is not drained.
func (s *Scheduler) StopWorkers() {
	s.running.Store(false)
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.workersWG.Wait()
}

// YieldInline is the primitive frame jobs use to let the
// scheduler reclaim a stalled worker while a GPU fence is pending: it pops
// and resumes exactly one ready job, inline, on the caller's own goroutine.
// Calling it from anywhere but the coroutine that owns the calling frame
// job is undefined per spec.md §5. It is a no-op (returns false) if the
// ready queue is currently empty.
func (s *Scheduler) YieldInline() bool {
	j, ok := s.ready.Pop()
	if !ok {
		return false
	}
	s.resumeAndHandle(j)
	return true
}

// resumeAndHandle resumes j and routes its yield per the state machine of
// spec.md §4.5.
func (s *Scheduler) resumeAndHandle(j *Job) {
	s.busy.Add(1)
	y, ok := j.Resume()
	s.busy.Add(-1)

	if !ok {
		// The coroutine returned without ever yielding Done: spec.md §4.5's
		// "Returned" row. Fatal in debug builds, a tracked leak otherwise.
		s.leaked.Add(1)
		err := fmt.Errorf("job: body returned without yielding Done")
		if s.cfg.Debug {
			panic(err)
		}
		if s.cfg.OnLeak != nil {
			s.cfg.OnLeak(err)
		}
		return
	}

	switch y.Outcome {
	case OutcomeWait:
		s.handleWait(j, y.Counter)
	case OutcomeDone:
		s.handleDone(j, y.Counter)
	}
}

func (s *Scheduler) handleWait(j *Job, c *Counter) {
	if c.Satisfied() {
		s.ready.Push(j)
		return
	}

	if !s.wait.Park(j, c) {
		// Wait list full: spec.md §7 treats this the same as "counter
		// satisfied" and re-queues the job directly.
		s.ready.Push(j)
		return
	}

	// Double-check: close the ABA race where the satisfier's Sweep ran
	// between our Satisfied() check above and Park succeeding.
	if c.Satisfied() {
		if s.wait.Unpark(j) {
			s.ready.Push(j)
		}
		// If Unpark fails here, a concurrent Sweep already claimed this
		// job and re-queued it itself — nothing left to do.
	}
}

func (s *Scheduler) handleDone(j *Job, c *Counter) {
	prev := c.Decrement()
	if prev == 1 {
		for _, woken := range s.wait.Sweep(c) {
			s.ready.Push(woken)
		}
	}
	s.completed.Add(1)
}

// Metrics returns a point-in-time snapshot of scheduler occupancy and
// throughput.
func (s *Scheduler) Metrics() Metrics {
	return Metrics{
		ReadyQueued:   s.ready.Len(),
		ReadyCapacity: s.ready.Cap(),
		WaitParked:    s.wait.Len(),
		WaitCapacity:  len(s.wait.slots),
		WorkersBusy:   int(s.busy.Load()),
		WorkersTotal:  s.cfg.WorkerThreads,
		Submitted:     s.submitted.Load(),
		Completed:     s.completed.Load(),
		Leaked:        s.leaked.Load(),
		Rejected:      s.rejected.Load(),
	}
}
