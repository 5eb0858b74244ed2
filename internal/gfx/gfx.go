// Package gfx declares the external collaborator contracts the frame loop
// drives: window creation, swapchain/context lifecycle, and the per-frame
// acquire/submit/present primitives. A real binding (GLFW + Vulkan) lives
// outside this repository's core per spec; this package only carries the
// interfaces the core depends on, plus a fake in-memory implementation used
// by tests.
package gfx

import (
	"context"
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FenceStatus is the result of polling a Fence.
type FenceStatus int

const (
	FenceNotReady FenceStatus = iota
	FenceReady
)

// AcquireResult is the result of AcquireNextImage.
type AcquireResult int

const (
	AcquireSuccess AcquireResult = iota
	AcquireSuboptimal
	AcquireOutOfDate
)

// PresentResult is the result of Present.
type PresentResult int

const (
	PresentOK PresentResult = iota
	PresentSuboptimal
	PresentOutOfDate
)

// Fence and Semaphore are opaque sync handles owned by a Context; the core
// never interprets their contents, only passes them back to Gfx calls.
type Fence struct{ id uint64 }

type Semaphore struct{ id uint64 }

// ClearColor is the render pass's clear value, parsed from the
// context.clearColor configuration entry.
type ClearColor struct {
	R, G, B, A float32
}

// DefaultClearColor is spec.md §6's context.clearColor default.
func DefaultClearColor() ClearColor {
	return ClearColor{R: 0, G: 0, B: 0, A: 1}
}

// ParseClearColor parses a "#rrggbb" hex string into a ClearColor with the
// given alpha, using go-colorful's sRGB hex parser rather than hand-rolled
// byte math.
func ParseClearColor(hex string, alpha float32) (ClearColor, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return ClearColor{}, fmt.Errorf("gfx: invalid clear color %q: %w", hex, err)
	}
	return ClearColor{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: alpha}, nil
}

// SwapchainOptions carries the context.swapchain.* configuration entries.
type SwapchainOptions struct {
	MinFrames    int
	VSyncEnabled bool
}

// Options is passed to CreateContext: spec.md §9's resolution of the
// "multiple Context variants" open question — one Context per window, and
// Options carries both swapchain parameters and clear colour together.
type Options struct {
	Name       string
	Swapchain  SwapchainOptions
	ClearColor ClearColor
	// Debug enables the Gfx collaborator's validation-layer debug
	// messenger (spec.md §6's build-time debug toggle).
	Debug bool
}

// Context is the per-window resource bundle the frame loop drives. Its
// fields mirror spec.md §3's WindowContext entity. It is not shared between
// goroutines: exactly one frame job owns and mutates a given Context.
type Context struct {
	FramesInFlight int
	ImageCount     int
	CurrentFrame   int

	ImagesInFlight []*Fence
	InFlightFences []*Fence
	ImageAvailable []*Semaphore
	RenderFinished []*Semaphore
	AcquireFence   *Fence

	// ResizeRequested is set when a framebuffer resize has been observed
	// and not yet handled. The fake never sets it; tests set it directly.
	ResizeRequested bool
}

// Recorder is passed to RecordCommandBuffer's user callback; a real binding
// would expose actual Vulkan command-buffer recording methods here. It
// carries nothing in this repository's core scope, which only specifies
// the collaborator's interface (spec.md §1).
type Recorder interface {
	ImageIndex() int
}

// Gfx is the external collaborator that owns Vulkan instance/device
// creation, swapchain and context lifecycle, and the per-frame
// acquire/submit/present primitives (spec.md §4.7).
type Gfx interface {
	CreateContext(ctx context.Context, win Window, opts Options) (*Context, error)
	DestroyContext(ctx context.Context, wctx *Context) error

	WaitFence(f *Fence) error
	ResetFence(f *Fence)
	FenceStatus(f *Fence) FenceStatus

	AcquireNextImage(wctx *Context, sem *Semaphore, fence *Fence) (imageIndex int, result AcquireResult, err error)
	RecordCommandBuffer(wctx *Context, imageIndex int, clear ClearColor, record func(Recorder)) error
	Submit(wctx *Context, imageIndex int, wait *Semaphore, signalSem *Semaphore, signalFence *Fence) error
	Present(wctx *Context, imageIndex int, wait *Semaphore) (PresentResult, error)

	RebuildSwapchain(ctx context.Context, wctx *Context) error
}

// Window is the external windowing collaborator (spec.md §4.7).
type Window interface {
	ShouldClose() bool
	PollEvents()
	FramebufferSize() (width, height int)
	// ToggleFullscreen is a supplemented capability from original_source's
	// GameWindow::toggleFullScreen, not named by spec.md's Window contract
	// but not excluded by its Non-goals either (SPEC_FULL.md §6).
	ToggleFullscreen() bool
}
