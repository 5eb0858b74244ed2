package gfx

import (
	"context"
	"sync"
	"sync/atomic"
)

// FakeGfx is an in-memory Gfx implementation used by tests and the
// cooperative-wait scenarios in internal/frame: it never touches a real
// GPU, simulates fence readiness and swapchain invalidation on demand, and
// records every call for assertions.
type FakeGfx struct {
	mu sync.Mutex

	nextHandle uint64

	// PendingAcquires, when > 0, makes FenceStatus report FenceNotReady
	// that many times before reporting FenceReady, simulating a stalled
	// GPU fence for scenario 5 of spec.md §8.
	PendingAcquires int

	// ForceOutOfDateOnNextAcquire/Present force the corresponding call to
	// report the out-of-date result exactly once.
	ForceOutOfDateOnNextAcquire bool
	ForceOutOfDateOnNextPresent bool

	// ForceAcquireErr, when non-nil, makes the next AcquireNextImage call
	// fail with this error instead of succeeding, simulating a genuine
	// (non-recoverable) acquire failure.
	ForceAcquireErr error

	Rebuilds  atomic.Int64
	Presents  atomic.Int64
	Submits   atomic.Int64
	Destroyed atomic.Bool
}

// NewFakeGfx constructs a ready-to-use fake.
func NewFakeGfx() *FakeGfx {
	return &FakeGfx{}
}

func (f *FakeGfx) handle() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	return f.nextHandle
}

func (f *FakeGfx) CreateContext(_ context.Context, _ Window, opts Options) (*Context, error) {
	frames := opts.Swapchain.MinFrames
	if frames <= 0 {
		frames = 3
	}
	wctx := &Context{
		FramesInFlight: frames,
		ImageCount:     frames,
		ImagesInFlight: make([]*Fence, frames),
		InFlightFences: make([]*Fence, frames),
		ImageAvailable: make([]*Semaphore, frames),
		RenderFinished: make([]*Semaphore, frames),
		AcquireFence:   &Fence{id: f.handle()},
	}
	for i := 0; i < frames; i++ {
		wctx.InFlightFences[i] = &Fence{id: f.handle()}
		wctx.ImageAvailable[i] = &Semaphore{id: f.handle()}
		wctx.RenderFinished[i] = &Semaphore{id: f.handle()}
	}
	return wctx, nil
}

func (f *FakeGfx) DestroyContext(_ context.Context, _ *Context) error {
	f.Destroyed.Store(true)
	return nil
}

func (f *FakeGfx) WaitFence(*Fence) error { return nil }

func (f *FakeGfx) ResetFence(*Fence) {}

func (f *FakeGfx) FenceStatus(*Fence) FenceStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PendingAcquires > 0 {
		f.PendingAcquires--
		return FenceNotReady
	}
	return FenceReady
}

func (f *FakeGfx) AcquireNextImage(wctx *Context, _ *Semaphore, _ *Fence) (int, AcquireResult, error) {
	f.mu.Lock()
	force := f.ForceOutOfDateOnNextAcquire
	f.ForceOutOfDateOnNextAcquire = false
	err := f.ForceAcquireErr
	f.ForceAcquireErr = nil
	f.mu.Unlock()
	if err != nil {
		return 0, AcquireSuccess, err
	}
	if force {
		return 0, AcquireOutOfDate, nil
	}
	return wctx.CurrentFrame % wctx.ImageCount, AcquireSuccess, nil
}

func (f *FakeGfx) RecordCommandBuffer(_ *Context, imageIndex int, _ ClearColor, record func(Recorder)) error {
	if record != nil {
		record(fakeRecorder{imageIndex: imageIndex})
	}
	return nil
}

func (f *FakeGfx) Submit(*Context, int, *Semaphore, *Semaphore, *Fence) error {
	f.Submits.Add(1)
	return nil
}

func (f *FakeGfx) Present(*Context, int, *Semaphore) (PresentResult, error) {
	f.Presents.Add(1)
	f.mu.Lock()
	force := f.ForceOutOfDateOnNextPresent
	f.ForceOutOfDateOnNextPresent = false
	f.mu.Unlock()
	if force {
		return PresentOutOfDate, nil
	}
	return PresentOK, nil
}

func (f *FakeGfx) RebuildSwapchain(_ context.Context, wctx *Context) error {
	f.Rebuilds.Add(1)
	wctx.ResizeRequested = false
	for i := range wctx.ImagesInFlight {
		wctx.ImagesInFlight[i] = nil
	}
	return nil
}

type fakeRecorder struct{ imageIndex int }

func (r fakeRecorder) ImageIndex() int { return r.imageIndex }

// FakeWindow is an in-memory Window used by tests: ShouldClose and resize
// requests are driven explicitly rather than by a real windowing system.
type FakeWindow struct {
	mu      sync.Mutex
	closed  bool
	width   int
	height  int
	resizes int
}

// NewFakeWindow constructs a fake window of the given framebuffer size.
func NewFakeWindow(width, height int) *FakeWindow {
	return &FakeWindow{width: width, height: height}
}

func (w *FakeWindow) ShouldClose() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *FakeWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func (w *FakeWindow) PollEvents() {}

func (w *FakeWindow) FramebufferSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Resize updates the fake's framebuffer dimensions; the caller is
// responsible for also setting the paired Context's ResizeRequested flag,
// mirroring how a real Window emits a framebuffer-size callback that the
// engine glue forwards to the active Context.
func (w *FakeWindow) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
	w.resizes++
}

func (w *FakeWindow) ToggleFullscreen() bool { return false }
