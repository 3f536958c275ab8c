package render_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"framechain/src/render"
	"framechain/src/render/rendertest"
)

var (
	unorm = render.SurfaceFormat{Format: render.FormatR8G8B8A8Unorm, ColorSpace: render.ColorSpaceSrgbNonlinear}
	srgb  = render.SurfaceFormat{Format: render.FormatB8G8R8A8Srgb, ColorSpace: render.ColorSpaceSrgbNonlinear}
)

func TestNegotiatePreferred(t *testing.T) {
	caps := render.SurfaceCaps{
		Formats:       []render.SurfaceFormat{unorm, srgb},
		PresentModes:  []render.PresentMode{render.PresentModeFifo, render.PresentModeMailbox},
		CurrentExtent: render.Extent{Width: 800, Height: 600},
		MinImageCount: 2,
		MaxImageCount: 4,
	}
	cfg, err := render.Negotiate(caps, render.Extent{}, render.DefaultPreferences())
	require.NoError(t, err)
	require.Equal(t, srgb, cfg.Format)
	require.Equal(t, render.PresentModeMailbox, cfg.PresentMode)
	require.Equal(t, uint32(3), cfg.ImageCount)
	require.Equal(t, render.Extent{Width: 800, Height: 600}, cfg.Extent)
}

func TestNegotiateFallback(t *testing.T) {
	caps := render.SurfaceCaps{
		Formats:       []render.SurfaceFormat{unorm},
		PresentModes:  []render.PresentMode{render.PresentModeFifo},
		CurrentExtent: render.Extent{Width: 640, Height: 480},
		MinImageCount: 2,
	}
	cfg, err := render.Negotiate(caps, render.Extent{}, render.DefaultPreferences())
	require.NoError(t, err)
	require.Equal(t, unorm, cfg.Format)
	require.Equal(t, render.PresentModeFifo, cfg.PresentMode)
}

func TestNegotiateNoFormats(t *testing.T) {
	caps := rendertest.Caps(800, 600)
	caps.Formats = nil
	_, err := render.Negotiate(caps, render.Extent{}, render.DefaultPreferences())
	require.ErrorIs(t, err, render.ErrConfig)
}

func TestNegotiateVSync(t *testing.T) {
	prefs := render.DefaultPreferences()
	prefs.VSync = true
	cfg, err := render.Negotiate(rendertest.Caps(800, 600), render.Extent{}, prefs)
	require.NoError(t, err)
	require.Equal(t, render.PresentModeFifo, cfg.PresentMode)
}

func TestNegotiateExtent(t *testing.T) {
	for idx, tc := range []struct {
		current render.Extent
		hint    render.Extent
		want    render.Extent
	}{
		{render.Extent{Width: 800, Height: 600}, render.Extent{Width: 10, Height: 10}, render.Extent{Width: 800, Height: 600}},
		{render.Extent{Width: render.UndefinedExtent}, render.Extent{Width: 1024, Height: 768}, render.Extent{Width: 1024, Height: 768}},
		{render.Extent{Width: render.UndefinedExtent}, render.Extent{Width: 9000, Height: 0}, render.Extent{Width: 4096, Height: 1}},
		{render.Extent{Width: 0, Height: 0}, render.Extent{Width: 800, Height: 600}, render.Extent{}},
	} {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			caps := rendertest.Caps(0, 0)
			caps.CurrentExtent = tc.current
			cfg, err := render.Negotiate(caps, tc.hint, render.DefaultPreferences())
			require.NoError(t, err)
			require.Equal(t, tc.want, cfg.Extent)
		})
	}
}

func TestNegotiateImageCount(t *testing.T) {
	for idx, tc := range []struct {
		min, max uint32
		want     uint32
	}{
		{2, 4, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 8, 2},
	} {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			caps := rendertest.Caps(800, 600)
			caps.MinImageCount, caps.MaxImageCount = tc.min, tc.max
			cfg, err := render.Negotiate(caps, render.Extent{}, render.DefaultPreferences())
			require.NoError(t, err)
			require.Equal(t, tc.want, cfg.ImageCount)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := render.ParseFormat("B8G8R8A8_SRGB")
	require.NoError(t, err)
	require.Equal(t, render.FormatB8G8R8A8Srgb, f)

	_, err = render.ParseFormat("D32_SFLOAT")
	require.Error(t, err)

	m, err := render.ParsePresentMode("MAILBOX")
	require.NoError(t, err)
	require.Equal(t, render.PresentModeMailbox, m)
}
