package render

import (
	"fmt"
	"math"
)

// UndefinedExtent is the current extent reported by surfaces whose size
// is determined by the chain built for them.
const UndefinedExtent = math.MaxUint32

// SurfaceCaps is the capability set reported by the display surface.
type SurfaceCaps struct {
	Formats        []SurfaceFormat
	PresentModes   []PresentMode
	CurrentExtent  Extent
	MinImageExtent Extent
	MaxImageExtent Extent
	MinImageCount  uint32
	// MaxImageCount of zero means no limit.
	MaxImageCount uint32
	Transform     uint32
}

// SurfaceConfig is the negotiated display contract.
type SurfaceConfig struct {
	Format      SurfaceFormat
	PresentMode PresentMode
	Extent      Extent
	ImageCount  uint32
	Transform   uint32
}

func (c SurfaceConfig) String() string {
	return fmt.Sprintf("%v %v %v x%d", c.Format.Format, c.PresentMode, c.Extent, c.ImageCount)
}

// Preferences steer negotiation.
type Preferences struct {
	Format      SurfaceFormat
	PresentMode PresentMode
	// VSync forces FIFO regardless of PresentMode.
	VSync bool
}

// DefaultPreferences prefers 8-bit sRGB and mailbox presentation.
func DefaultPreferences() Preferences {
	return Preferences{
		Format:      SurfaceFormat{Format: FormatB8G8R8A8Srgb, ColorSpace: ColorSpaceSrgbNonlinear},
		PresentMode: PresentModeMailbox,
	}
}

// Negotiate selects a SurfaceConfig from caps.
// The hint is only used when the surface reports an undefined extent.
// It fails with ErrConfig if caps lists no formats.
func Negotiate(caps SurfaceCaps, hint Extent, prefs Preferences) (SurfaceConfig, error) {
	if len(caps.Formats) == 0 {
		return SurfaceConfig{}, fmt.Errorf("%w: surface lists no formats", ErrConfig)
	}
	return SurfaceConfig{
		Format:      chooseFormat(caps.Formats, prefs.Format),
		PresentMode: choosePresentMode(caps.PresentModes, prefs),
		Extent:      chooseExtent(caps, hint),
		ImageCount:  chooseImageCount(caps),
		Transform:   caps.Transform,
	}, nil
}

func chooseFormat(available []SurfaceFormat, want SurfaceFormat) SurfaceFormat {
	for _, f := range available {
		if f == want {
			return f
		}
	}
	Logger().Warn("preferred surface format not available, using first listed",
		"want", want.Format, "got", available[0].Format)
	return available[0]
}

func choosePresentMode(available []PresentMode, prefs Preferences) PresentMode {
	if prefs.VSync {
		return PresentModeFifo
	}
	for _, m := range available {
		if m == prefs.PresentMode {
			return m
		}
	}
	if prefs.PresentMode != PresentModeFifo {
		Logger().Warn("preferred present mode not available, using FIFO", "want", prefs.PresentMode)
	}
	return PresentModeFifo
}

func chooseExtent(caps SurfaceCaps, hint Extent) Extent {
	if caps.CurrentExtent.Width != UndefinedExtent {
		return caps.CurrentExtent
	}
	return Extent{
		Width:  clamp(hint.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(hint.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum so the host is
// never blocked on the image being presented.
func chooseImageCount(caps SurfaceCaps) uint32 {
	n := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && n > caps.MaxImageCount {
		n = caps.MaxImageCount
	}
	return n
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if hi > 0 && v > hi {
		return hi
	}
	return v
}
