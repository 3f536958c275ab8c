package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"framechain/src/render"
	"framechain/src/render/rendertest"
)

func TestLoopStopsOnClose(t *testing.T) {
	dev := rendertest.NewDevice(rendertest.Caps(800, 600))
	win := rendertest.NewWindow(800, 600)
	win.CloseAfter(4)
	r := newRenderer(t, dev, win)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, uint64(3), r.Synchronizer().Stats().Frames)

	ops := dev.Ops()
	require.Equal(t, "WaitIdle", ops[len(ops)-1])
	require.Zero(t, dev.Pending())
	require.Empty(t, dev.Violations())
}

func TestLoopStopsOnCancel(t *testing.T) {
	dev := rendertest.NewDevice(rendertest.Caps(800, 600))
	win := rendertest.NewWindow(800, 600)
	r := newRenderer(t, dev, win)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.Run(ctx))
	require.Zero(t, win.Polls())
	require.Zero(t, r.Synchronizer().Stats().Frames)
}

func TestLoopWaitsWhileMinimized(t *testing.T) {
	dev := rendertest.NewDevice(rendertest.Caps(800, 600))
	win := rendertest.NewWindow(0, 0)
	win.OnWait(func(w *rendertest.Window) { w.Resize(800, 600) })
	win.CloseAfter(3)
	r := newRenderer(t, dev, win)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 1, win.Waits())
	require.Equal(t, uint64(1), r.Synchronizer().Stats().Frames)
	require.Equal(t, uint64(1), r.Synchronizer().Stats().Rebuilds)
}

func TestLoopResize(t *testing.T) {
	dev := rendertest.NewDevice(rendertest.Caps(800, 600))
	win := rendertest.NewWindow(800, 600)
	win.CloseAfter(5)
	r := newRenderer(t, dev, win)
	win.Resize(800, 600)

	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, uint64(4), r.Synchronizer().Stats().Frames)
	require.Equal(t, uint64(1), r.Synchronizer().Stats().Rebuilds)
	require.Empty(t, dev.Violations())
}

func TestLoopReturnsFrameError(t *testing.T) {
	dev := rendertest.NewDevice(rendertest.Caps(800, 600))
	win := rendertest.NewWindow(800, 600)
	r := newRenderer(t, dev, win)
	dev.LoseDevice()

	require.ErrorIs(t, r.Run(context.Background()), render.ErrDeviceLost)
	require.Equal(t, 1, win.Polls())
}

type panicWindow struct {
	*rendertest.Window
}

func (panicWindow) PollEvents() {
	panic(errBoom)
}

func TestLoopRecoversPanic(t *testing.T) {
	dev := rendertest.NewDevice(rendertest.Caps(800, 600))
	win := panicWindow{rendertest.NewWindow(800, 600)}
	r := newRenderer(t, dev, win.Window)

	err := render.NewLoop(win, r.Synchronizer()).Run(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestOrPanic(t *testing.T) {
	require.NotPanics(t, func() { render.OrPanic(nil) })

	ran := false
	require.PanicsWithError(t, errBoom.Error(), func() {
		render.OrPanic(errBoom, func() { ran = true })
	})
	require.True(t, ran)

	err := func() (err error) {
		defer render.CheckError(&err)
		panic("not an error")
	}()
	require.Error(t, err)
	require.False(t, errors.Is(err, errBoom))
}
