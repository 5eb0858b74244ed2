// Package engine composes the external collaborators and the job
// scheduler into a runnable process, replacing original_source's
// Initializable/Terminatable inheritance hierarchy (include/Terminatable.hpp)
// with a value-typed SubSystem interface and explicit dependency injection,
// per spec.md §9's instruction that the inheritance and the Engine's
// subsystem back-references are layout accidents, not requirements.
package engine

import (
	"context"
	"fmt"

	"github.com/nova-engine/jobrt/internal/engineconfig"
	"github.com/nova-engine/jobrt/internal/enginelog"
	"github.com/nova-engine/jobrt/internal/frame"
	"github.com/nova-engine/jobrt/internal/gfx"
	"github.com/nova-engine/jobrt/internal/job"
)

// SubSystem is the lifecycle contract every engine collaborator
// implements: Init(cfg) then, eventually, Shutdown(). Unlike
// original_source's Initializable/Terminatable base class, there are no
// polymorphic call sites beyond this interface and no subsystem holds a
// back-reference to the Engine.
type SubSystem interface {
	Init(cfg *engineconfig.Config) error
	Shutdown() error
}

type namedSubSystem struct {
	name string
	sub  SubSystem
}

type windowEntry struct {
	win  gfx.Window
	wctx *gfx.Context
	loop *frame.FrameLoop
}

// Engine composes the logger, configuration, scheduler, graphics
// collaborator and per-window frame loops. It owns no back-references: each
// collaborator it talks to was handed to it, or it hands itself to nothing.
type Engine struct {
	Log       *enginelog.Logger
	Config    *engineconfig.Config
	Scheduler *job.Scheduler
	Gfx       gfx.Gfx

	subsystems []namedSubSystem
	windows    []*windowEntry
}

// New constructs an Engine from its already-loaded configuration, logger
// and graphics collaborator, and a scheduler sized per
// cfg.Scheduler.{MaxJobs,WorkerThreads}.
func New(cfg *engineconfig.Config, log *enginelog.Logger, g gfx.Gfx) *Engine {
	sched := job.New(job.Config{
		MaxJobs:       int(cfg.Scheduler.MaxJobs),
		WorkerThreads: int(cfg.Scheduler.WorkerThreads),
	})
	return &Engine{
		Log:       log,
		Config:    cfg,
		Scheduler: sched,
		Gfx:       g,
	}
}

// InitSubSystems runs Init on each subsystem in order, logging each
// attempt the way original_source's Engine::initSubSystem does. On the
// first failure it shuts down every subsystem already initialized (in
// reverse order) and returns the error — surfaced by the caller as exit
// code 1 (spec.md §6/§7).
func (e *Engine) InitSubSystems(named map[string]SubSystem, order []string) error {
	for _, name := range order {
		sub, ok := named[name]
		if !ok {
			continue
		}
		e.Log.Info("initializing subsystem", "name", name)
		if err := sub.Init(e.Config); err != nil {
			e.Log.Error("subsystem init failed", "name", name, "err", err)
			e.shutdownInitialized()
			return fmt.Errorf("engine: init %s: %w", name, err)
		}
		e.Log.Info("subsystem initialized", "name", name)
		e.subsystems = append(e.subsystems, namedSubSystem{name: name, sub: sub})
	}
	return nil
}

func (e *Engine) shutdownInitialized() {
	for i := len(e.subsystems) - 1; i >= 0; i-- {
		ns := e.subsystems[i]
		if err := ns.sub.Shutdown(); err != nil {
			e.Log.Error("subsystem shutdown failed during rollback", "name", ns.name, "err", err)
		}
	}
	e.subsystems = nil
}

// AddWindow creates a graphics Context for win via e.Gfx, builds a
// FrameLoop over it, and submits the loop's first frame job. The returned
// counter belongs to that first frame job only: each later frame is
// resubmitted against a fresh counter just before the previous frame
// yields Done, so this counter reaches zero once the first frame finishes;
// callers generally don't need to wait on it.
func (e *Engine) AddWindow(win gfx.Window) (*job.Counter, error) {
	clear, err := gfx.ParseClearColor(e.Config.Context.ClearColor, 1)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	opts := gfx.Options{
		Name: e.Config.Name,
		Swapchain: gfx.SwapchainOptions{
			MinFrames:    int(e.Config.Context.Swapchain.MinFrames),
			VSyncEnabled: e.Config.Context.Swapchain.VSyncEnabled,
		},
		ClearColor: clear,
	}

	wctx, err := e.Gfx.CreateContext(context.Background(), win, opts)
	if err != nil {
		return nil, fmt.Errorf("engine: create context: %w", err)
	}

	var pacer *frame.Pacer
	if !opts.Swapchain.VSyncEnabled {
		pacer = frame.NewPacer(240)
	}

	loop := frame.New(e.Gfx, win, wctx, e.Scheduler, frame.Config{
		ClearColor: clear,
		Pacer:      pacer,
		Log:        e.Log,
	})

	e.windows = append(e.windows, &windowEntry{win: win, wctx: wctx, loop: loop})
	return loop.Start()
}

// Run is the main-thread driver loop: it calls Scheduler.RunMain until
// every registered window has closed and the scheduler has drained the
// in-flight jobs that close triggered (each window's final frame job still
// has to run to tear its Context down, per spec.md §4.6 step 11's Done
// path — so closed-but-not-yet-drained keeps the loop going one beat
// longer than anyWindowOpen alone would).
func (e *Engine) Run() {
	e.Scheduler.RunMain(e.shouldContinue, nil)
}

func (e *Engine) anyWindowOpen() bool {
	for _, w := range e.windows {
		if !w.win.ShouldClose() {
			return true
		}
	}
	return false
}

func (e *Engine) shouldContinue() bool {
	if e.anyWindowOpen() {
		return true
	}
	m := e.Scheduler.Metrics()
	return m.ReadyQueued > 0 || m.WaitParked > 0 || m.WorkersBusy > 0
}

// Shutdown stops the worker pool and shuts down every initialized
// subsystem in reverse order, matching original_source's onTerminate
// ordering (jobScheduler.terminate() before the other subsystems).
// Errors from individual subsystems are each logged; Shutdown returns the
// first one encountered (surfaced as exit code 2).
func (e *Engine) Shutdown() error {
	e.Scheduler.StopWorkers()

	var first error
	for i := len(e.subsystems) - 1; i >= 0; i-- {
		ns := e.subsystems[i]
		if err := ns.sub.Shutdown(); err != nil {
			e.Log.Error("subsystem shutdown failed", "name", ns.name, "err", err)
			if first == nil {
				first = fmt.Errorf("engine: shutdown %s: %w", ns.name, err)
			}
		}
	}
	e.subsystems = nil
	return first
}
