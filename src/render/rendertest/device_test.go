package rendertest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"framechain/src/render"
)

// frame acquires, submits and presents once, signalling finished.
func frame(t *testing.T, d *Device, sc render.Swapchain, available, finished render.Semaphore, fence render.Fence, cb render.CommandBuffer) uint32 {
	t.Helper()
	require.NoError(t, d.WaitForFence(fence, time.Second))
	index, err := d.AcquireNextImage(sc, time.Second, available)
	require.NoError(t, err)
	require.NoError(t, d.ResetFence(fence))
	require.NoError(t, d.QueueSubmit(0, render.Submission{Command: cb, Wait: available, Signal: finished, Fence: fence}))
	require.NoError(t, d.QueuePresent(0, sc, index, finished))
	return index
}

func TestPresentHoldsSemaphoreUntilReacquire(t *testing.T) {
	d := NewDevice(Caps(800, 600))
	sc, err := d.CreateSwapchain(render.SurfaceConfig{Extent: render.Extent{Width: 800, Height: 600}, ImageCount: 3}, render.QueueFamilies{})
	require.NoError(t, err)
	pool, err := d.CreateCommandPool(0)
	require.NoError(t, err)
	cbs, err := d.AllocateCommandBuffers(pool, 2)
	require.NoError(t, err)

	var available, finished [2]render.Semaphore
	var fences [2]render.Fence
	for i := range fences {
		available[i], _ = d.CreateSemaphore()
		finished[i], _ = d.CreateSemaphore()
		fences[i], _ = d.CreateFence(true)
	}

	// Two slots over three images: slot 0 comes back to image 2 while the
	// present of image 0 still waits on its semaphore.
	require.Equal(t, uint32(0), frame(t, d, sc, available[0], finished[0], fences[0], cbs[0]))
	require.Equal(t, uint32(1), frame(t, d, sc, available[1], finished[1], fences[1], cbs[1]))
	require.Empty(t, d.Violations())
	require.Equal(t, uint32(2), frame(t, d, sc, available[0], finished[0], fences[0], cbs[0]))
	require.Len(t, d.Violations(), 1)
	require.Contains(t, d.Violations()[0], "still waited on by a present")
}

func TestReacquireReleasesPresentSemaphore(t *testing.T) {
	d := NewDevice(Caps(800, 600))
	sc, err := d.CreateSwapchain(render.SurfaceConfig{Extent: render.Extent{Width: 800, Height: 600}, ImageCount: 2}, render.QueueFamilies{})
	require.NoError(t, err)
	pool, err := d.CreateCommandPool(0)
	require.NoError(t, err)
	cbs, err := d.AllocateCommandBuffers(pool, 1)
	require.NoError(t, err)
	available, _ := d.CreateSemaphore()
	fence, _ := d.CreateFence(true)
	var finished [2]render.Semaphore
	for i := range finished {
		finished[i], _ = d.CreateSemaphore()
	}

	for i := 0; i < 6; i++ {
		index := frame(t, d, sc, available, finished[i%2], fence, cbs[0])
		require.Equal(t, uint32(i%2), index)
	}
	require.Empty(t, d.Violations())

	require.NoError(t, d.WaitIdle())
	d.DestroySwapchain(sc)
	require.Empty(t, d.Violations())
}
