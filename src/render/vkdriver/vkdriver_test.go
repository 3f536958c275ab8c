package vkdriver

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vulkan-go/vulkan"

	"framechain/src/render"
)

func TestNewError(t *testing.T) {
	for _, tc := range []struct {
		res  vulkan.Result
		want error
	}{
		{vulkan.ErrorOutOfDate, render.ErrChainStale},
		{vulkan.Suboptimal, render.ErrChainSuboptimal},
		{vulkan.ErrorDeviceLost, render.ErrDeviceLost},
		{vulkan.Timeout, render.ErrSyncTimeout},
		{vulkan.NotReady, render.ErrSyncTimeout},
	} {
		err := NewError(tc.res)
		require.ErrorIs(t, err, tc.want)
		require.Contains(t, err.Error(), "TestNewError")
	}

	require.NoError(t, NewError(vulkan.Success))
	require.NoError(t, NewError(vulkan.Incomplete))
	require.Error(t, NewError(vulkan.ErrorOutOfHostMemory))
	require.False(t, IsError(vulkan.Success))
	require.True(t, IsError(vulkan.Suboptimal))
}

func TestRepackUint32(t *testing.T) {
	words, err := repackUint32([]byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00})
	require.NoError(t, err)
	require.Equal(t, []uint32{0x07230203, 0x00010000}, words)

	for _, code := range [][]byte{nil, {1, 2, 3}, {1, 2, 3, 4, 5}} {
		_, err := repackUint32(code)
		require.Error(t, err)
	}
}

func TestCstr(t *testing.T) {
	require.Equal(t, "main\x00", cstr("main"))
	require.Equal(t, "main\x00", cstr("main\x00"))
	require.Equal(t, []string{"a\x00", "b\x00"}, cstrs([]string{"a", "b\x00"}))
}

func TestSurfaceCaps(t *testing.T) {
	caps := vulkan.SurfaceCapabilities{
		MinImageCount:  2,
		MaxImageCount:  0,
		CurrentExtent:  vulkan.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vulkan.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vulkan.Extent2D{Width: 4096, Height: 4096},
	}
	formats := []vulkan.SurfaceFormat{
		{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpaceSrgbNonlinear},
	}
	modes := []vulkan.PresentMode{vulkan.PresentModeFifo, vulkan.PresentModeMailbox}

	got := surfaceCaps(caps, formats, modes)
	require.Equal(t, render.Extent{Width: 800, Height: 600}, got.CurrentExtent)
	require.Equal(t, render.Extent{Width: 4096, Height: 4096}, got.MaxImageExtent)
	require.Equal(t, uint32(2), got.MinImageCount)
	require.Equal(t, []render.SurfaceFormat{
		{Format: render.FormatB8G8R8A8Srgb, ColorSpace: render.ColorSpaceSrgbNonlinear},
	}, got.Formats)
	require.Equal(t, []render.PresentMode{render.PresentModeFifo, render.PresentModeMailbox}, got.PresentModes)

	cfg, err := render.Negotiate(got, render.Extent{}, render.DefaultPreferences())
	require.NoError(t, err)
	require.Equal(t, render.PresentModeMailbox, cfg.PresentMode)
}

func TestTable(t *testing.T) {
	var ids uint64
	a := newTable[*int](&ids)
	b := newTable[*string](&ids)

	x, s := 1, "s"
	ha := a.put(&x)
	hb := b.put(&s)
	require.NotEqual(t, ha, hb)
	require.Same(t, &x, a.get(ha))
	require.Nil(t, a.get(hb))

	got, ok := a.take(ha)
	require.True(t, ok)
	require.Same(t, &x, got)
	_, ok = a.take(ha)
	require.False(t, ok)
	require.Zero(t, a.len())
	require.Equal(t, 1, b.len())
}
