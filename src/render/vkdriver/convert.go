package vkdriver

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/vulkan-go/vulkan"

	"framechain/src/render"
)

func toExtent(e render.Extent) vulkan.Extent2D {
	return vulkan.Extent2D{Width: e.Width, Height: e.Height}
}

func fromExtent(e vulkan.Extent2D) render.Extent {
	e.Deref()
	return render.Extent{Width: e.Width, Height: e.Height}
}

// surfaceCaps converts what the surface queries returned. caps must have
// been dereferenced.
func surfaceCaps(caps vulkan.SurfaceCapabilities, formats []vulkan.SurfaceFormat, modes []vulkan.PresentMode) render.SurfaceCaps {
	out := render.SurfaceCaps{
		CurrentExtent:  fromExtent(caps.CurrentExtent),
		MinImageExtent: fromExtent(caps.MinImageExtent),
		MaxImageExtent: fromExtent(caps.MaxImageExtent),
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		Transform:      uint32(caps.CurrentTransform),
	}
	for _, f := range formats {
		f.Deref()
		out.Formats = append(out.Formats, render.SurfaceFormat{
			Format:     render.Format(f.Format),
			ColorSpace: render.ColorSpace(f.ColorSpace),
		})
	}
	for _, m := range modes {
		out.PresentModes = append(out.PresentModes, render.PresentMode(m))
	}
	return out
}

// repackUint32 turns SPIR-V byte code into the words the API expects.
func repackUint32(code []byte) ([]uint32, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("byte code size %d is not a positive multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words, nil
}

// cstr null terminates s for the C side.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func cstrs(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = cstr(s)
	}
	return out
}
