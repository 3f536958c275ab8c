package render

import "fmt"

// Format is a pixel format. Values match the Vulkan enumeration.
type Format uint32

const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatR8G8B8A8Srgb  Format = 43
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

var formatNames = map[Format]string{
	FormatUndefined:     "UNDEFINED",
	FormatR8G8B8A8Unorm: "R8G8B8A8_UNORM",
	FormatR8G8B8A8Srgb:  "R8G8B8A8_SRGB",
	FormatB8G8R8A8Unorm: "B8G8R8A8_UNORM",
	FormatB8G8R8A8Srgb:  "B8G8R8A8_SRGB",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

// ParseFormat returns the Format named s, as printed by String.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return FormatUndefined, fmt.Errorf("render: unknown format %q", s)
}

// ColorSpace is a presentation color space.
type ColorSpace uint32

const ColorSpaceSrgbNonlinear ColorSpace = 0

// SurfaceFormat pairs a pixel format with its color space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode is a presentation mode. Values match the Vulkan enumeration.
type PresentMode uint32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

var presentModeNames = map[PresentMode]string{
	PresentModeImmediate:   "IMMEDIATE",
	PresentModeMailbox:     "MAILBOX",
	PresentModeFifo:        "FIFO",
	PresentModeFifoRelaxed: "FIFO_RELAXED",
}

func (m PresentMode) String() string {
	if s, ok := presentModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("PresentMode(%d)", uint32(m))
}

// ParsePresentMode returns the PresentMode named s, as printed by String.
func ParsePresentMode(s string) (PresentMode, error) {
	for m, name := range presentModeNames {
		if name == s {
			return m, nil
		}
	}
	return PresentModeFifo, fmt.Errorf("render: unknown present mode %q", s)
}

// ImageLayout is an image layout. Values match the Vulkan enumeration.
type ImageLayout uint32

const (
	LayoutUndefined       ImageLayout = 0
	LayoutColorAttachment ImageLayout = 2
	LayoutPresentSrc      ImageLayout = 1000001002
)

func (l ImageLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "UNDEFINED"
	case LayoutColorAttachment:
		return "COLOR_ATTACHMENT_OPTIMAL"
	case LayoutPresentSrc:
		return "PRESENT_SRC"
	}
	return fmt.Sprintf("ImageLayout(%d)", uint32(l))
}

// Topology is a primitive topology. Values match the Vulkan enumeration.
type Topology uint32

const (
	TopologyPointList     Topology = 0
	TopologyLineList      Topology = 1
	TopologyLineStrip     Topology = 2
	TopologyTriangleList  Topology = 3
	TopologyTriangleStrip Topology = 4
)

// Extent is a two-dimensional size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// Empty reports whether either dimension is zero.
func (e Extent) Empty() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}
