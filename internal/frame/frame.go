// Package frame implements the per-window frame presentation job: the
// cooperative acquire/record/submit/present cycle described in spec.md
// §4.6, whose GPU-wait point yields to the scheduler instead of blocking a
// worker thread.
package frame

import (
	"context"

	"github.com/nova-engine/jobrt/internal/gfx"
	"github.com/nova-engine/jobrt/internal/job"
)

// Logger is the minimal logging surface FrameLoop needs; *enginelog.Logger
// satisfies it without this package importing enginelog, avoiding a
// dependency cycle between the ambient and domain stacks.
type Logger interface {
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config configures a FrameLoop.
type Config struct {
	ClearColor gfx.ClearColor
	// Pacer throttles present iterations; nil means uncapped (vSync
	// enabled, per spec.md §6).
	Pacer *Pacer
	// Record is the user callback invoked during command-buffer recording
	// (spec.md §4.6 step 6). May be nil.
	Record func(gfx.Recorder)
	Log    Logger
}

// FrameLoop drives one window's per-frame acquire/submit/present cycle. A
// FrameLoop is pinned to the Context it was created with: spec.md §5
// requires a WindowContext never be shared between workers, so every
// method here assumes it is only ever invoked from the goroutine currently
// resuming its job.
type FrameLoop struct {
	gfx   gfx.Gfx
	win   gfx.Window
	wctx  *gfx.Context
	sched *job.Scheduler
	cfg   Config
}

// New constructs a FrameLoop for an already-created Context.
func New(g gfx.Gfx, win gfx.Window, wctx *gfx.Context, sched *job.Scheduler, cfg Config) *FrameLoop {
	if cfg.Log == nil {
		cfg.Log = noopLogger{}
	}
	return &FrameLoop{gfx: g, win: win, wctx: wctx, sched: sched, cfg: cfg}
}

// Start submits the first iteration of the frame loop as a job against a
// fresh counter, returning that counter.
func (fl *FrameLoop) Start() (*job.Counter, error) {
	return fl.sched.Submit(job.Spec{Func: fl.step})
}

// step is the Job body for one frame iteration: spec.md §4.6 steps 1–11.
// It resubmits itself (tail call) before yielding Done, except in two
// cases: the window has signalled close, in which case it tears the context
// down instead, or a fence wait, acquire, record, submit, present or
// post-present rebuild fails, in which case it logs the error and yields
// Done without resubmitting.
func (fl *FrameLoop) step(counter *job.Counter, y job.Yielder, arg any) {
	ctx := context.Background()

	if fl.win.ShouldClose() {
		if err := fl.gfx.DestroyContext(ctx, fl.wctx); err != nil {
			fl.cfg.Log.Error("frame: destroy context failed", "err", err)
		}
		y.Done(counter)
		return
	}

	fl.win.PollEvents()

	if fl.cfg.Pacer != nil {
		if err := fl.cfg.Pacer.Wait(ctx); err != nil {
			fl.cfg.Log.Warn("frame: pacer wait interrupted", "err", err)
		}
	}

	cf := fl.wctx.CurrentFrame

	// Step 1: wait on this frame's in-flight fence.
	if err := fl.gfx.WaitFence(fl.wctx.InFlightFences[cf]); err != nil {
		fl.cfg.Log.Error("frame: in-flight fence wait failed", "err", err)
		y.Done(counter)
		return
	}

	imageIndex, acquired, fatal := fl.acquireImage(y)
	if fatal {
		y.Done(counter)
		return
	}
	if !acquired {
		fl.resubmitAndFinish(counter, y)
		return
	}

	// Step 5: wait on any fence already using this swapchain image.
	if fl.wctx.ImagesInFlight[imageIndex] != nil {
		if err := fl.gfx.WaitFence(fl.wctx.ImagesInFlight[imageIndex]); err != nil {
			fl.cfg.Log.Error("frame: image-in-flight fence wait failed", "err", err)
			y.Done(counter)
			return
		}
	}
	fl.wctx.ImagesInFlight[imageIndex] = fl.wctx.InFlightFences[cf]

	// Step 6: record.
	if err := fl.gfx.RecordCommandBuffer(fl.wctx, imageIndex, fl.cfg.ClearColor, fl.cfg.Record); err != nil {
		fl.cfg.Log.Error("frame: command buffer recording failed", "err", err)
		y.Done(counter)
		return
	}

	// Step 7: submit.
	if err := fl.gfx.Submit(fl.wctx, imageIndex, fl.wctx.ImageAvailable[cf], fl.wctx.RenderFinished[cf], fl.wctx.InFlightFences[cf]); err != nil {
		fl.cfg.Log.Error("frame: submit failed", "err", err)
		y.Done(counter)
		return
	}

	// Step 8: present.
	result, err := fl.gfx.Present(fl.wctx, imageIndex, fl.wctx.RenderFinished[cf])
	if err != nil {
		fl.cfg.Log.Error("frame: present failed", "err", err)
		y.Done(counter)
		return
	}

	// Step 9: rebuild on out-of-date/suboptimal/resize.
	if result == gfx.PresentOutOfDate || result == gfx.PresentSuboptimal || fl.wctx.ResizeRequested {
		if err := fl.gfx.RebuildSwapchain(ctx, fl.wctx); err != nil {
			fl.cfg.Log.Error("frame: swapchain rebuild after present failed", "err", err)
			y.Done(counter)
			return
		}
	}

	// Step 10: advance.
	fl.wctx.CurrentFrame = (fl.wctx.CurrentFrame + 1) % fl.wctx.FramesInFlight

	fl.resubmitAndFinish(counter, y)
}

// acquireImage implements spec.md §4.6 steps 2–4: unconditional fence reset
// before every acquire call (spec.md §9's fence-reset-ordering decision,
// including on the path re-entered after a resize), cooperative wait via
// the scheduler's inline-yield primitive while the fence is pending, and
// resize/out-of-date handling. ok is false when the caller should simply
// resubmit for next frame without recording/submitting/presenting this one
// (a rebuild occurred, or the window closed mid-wait). fatal is true only
// for a genuine AcquireNextImage failure (spec.md §4.6 step 4, "other
// failure: fatal"), distinct from the recoverable OutOfDate/resize cases
// above: the caller must terminate the job via Done instead of resubmitting,
// matching every sibling failure point in step (WaitFence, RecordCommandBuffer,
// Submit, Present).
func (fl *FrameLoop) acquireImage(y job.Yielder) (imageIndex int, ok bool, fatal bool) {
	for {
		if fl.win.ShouldClose() {
			return 0, false, false
		}

		// Unconditional: reset before every acquire attempt, not just the
		// first, per spec.md §9.
		fl.gfx.ResetFence(fl.wctx.AcquireFence)

		idx, result, err := fl.gfx.AcquireNextImage(fl.wctx, fl.wctx.ImageAvailable[fl.wctx.CurrentFrame], fl.wctx.AcquireFence)
		if err != nil {
			fl.cfg.Log.Error("frame: acquire next image failed", "err", err)
			return 0, false, true
		}

		switch result {
		case gfx.AcquireOutOfDate:
			if rerr := fl.gfx.RebuildSwapchain(context.Background(), fl.wctx); rerr != nil {
				fl.cfg.Log.Error("frame: swapchain rebuild after out-of-date acquire failed", "err", rerr)
			}
			return 0, false, false
		case gfx.AcquireSuccess, gfx.AcquireSuboptimal:
			// Poll the acquire fence; AcquireNextImage in this core's
			// abstraction already reports completion synchronously via
			// result, but the fence status loop below still honours
			// spec.md's explicit "poll the fence while NotReady" shape
			// for a real async-acquire binding.
		}

		for fl.gfx.FenceStatus(fl.wctx.AcquireFence) == gfx.FenceNotReady {
			if fl.wctx.ResizeRequested {
				if rerr := fl.gfx.RebuildSwapchain(context.Background(), fl.wctx); rerr != nil {
					fl.cfg.Log.Error("frame: swapchain rebuild after resize signal failed", "err", rerr)
				}
				fl.gfx.ResetFence(fl.wctx.AcquireFence)
				return 0, false, false
			}
			fl.sched.YieldInline()
		}

		return idx, true, false
	}
}

// resubmitAndFinish implements spec.md §4.6 step 11: tail-call resubmit
// this same frame loop as a fresh job, then yield Done against the
// counter the current invocation was submitted with.
func (fl *FrameLoop) resubmitAndFinish(counter *job.Counter, y job.Yielder) {
	if _, err := fl.sched.Submit(job.Spec{Func: fl.step}); err != nil {
		fl.cfg.Log.Error("frame: failed to resubmit next frame", "err", err)
	}
	y.Done(counter)
}
