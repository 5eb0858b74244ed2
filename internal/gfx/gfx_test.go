package gfx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type GfxTestSuite struct {
	suite.Suite
}

func TestGfxTestSuite(t *testing.T) {
	suite.Run(t, new(GfxTestSuite))
}

func (ts *GfxTestSuite) TestDefaultClearColor() {
	c := DefaultClearColor()
	ts.Equal(ClearColor{R: 0, G: 0, B: 0, A: 1}, c)
}

func (ts *GfxTestSuite) TestParseClearColorValid() {
	c, err := ParseClearColor("#ff0000", 1)
	ts.Require().NoError(err)
	ts.InDelta(1.0, c.R, 0.01)
	ts.InDelta(0.0, c.G, 0.01)
	ts.InDelta(0.0, c.B, 0.01)
	ts.Equal(float32(1), c.A)
}

func (ts *GfxTestSuite) TestParseClearColorInvalid() {
	_, err := ParseClearColor("not-a-color", 1)
	ts.Error(err)
}

func (ts *GfxTestSuite) TestFakeGfxCreateContext() {
	f := NewFakeGfx()
	win := NewFakeWindow(640, 480)

	wctx, err := f.CreateContext(context.Background(), win, Options{
		Swapchain: SwapchainOptions{MinFrames: 3},
	})
	ts.Require().NoError(err)
	ts.Equal(3, wctx.FramesInFlight)
	ts.Len(wctx.InFlightFences, 3)
	ts.NotNil(wctx.AcquireFence)
}

func (ts *GfxTestSuite) TestFakeGfxFenceStatusEventuallyReady() {
	f := NewFakeGfx()
	f.PendingAcquires = 3

	notReadyCount := 0
	for f.FenceStatus(nil) == FenceNotReady {
		notReadyCount++
		if notReadyCount > 10 {
			ts.Fail("fence never became ready")
			break
		}
	}
	ts.Equal(3, notReadyCount)
}

func (ts *GfxTestSuite) TestFakeGfxAcquireForceOutOfDate() {
	f := NewFakeGfx()
	win := NewFakeWindow(640, 480)
	wctx, err := f.CreateContext(context.Background(), win, Options{Swapchain: SwapchainOptions{MinFrames: 2}})
	ts.Require().NoError(err)

	f.ForceOutOfDateOnNextAcquire = true
	_, result, err := f.AcquireNextImage(wctx, nil, nil)
	ts.Require().NoError(err)
	ts.Equal(AcquireOutOfDate, result)

	_, result, err = f.AcquireNextImage(wctx, nil, nil)
	ts.Require().NoError(err)
	ts.Equal(AcquireSuccess, result)
}

func (ts *GfxTestSuite) TestFakeGfxRebuildClearsImagesInFlight() {
	f := NewFakeGfx()
	win := NewFakeWindow(640, 480)
	wctx, err := f.CreateContext(context.Background(), win, Options{Swapchain: SwapchainOptions{MinFrames: 2}})
	ts.Require().NoError(err)
	wctx.ImagesInFlight[0] = &Fence{id: 99}

	ts.Require().NoError(f.RebuildSwapchain(context.Background(), wctx))
	ts.Nil(wctx.ImagesInFlight[0])
	ts.False(wctx.ResizeRequested)
	ts.EqualValues(1, f.Rebuilds.Load())
}
