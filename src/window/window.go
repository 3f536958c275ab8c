// Package window owns the native window and its event queue.
// All functions must be called from the main thread.
package window

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/vulkan-go/vulkan"

	"framechain/src/render"
)

// Window is a GLFW window without a client API, for Vulkan presentation.
type Window struct {
	win     *glfw.Window
	resized atomic.Bool
}

var _ render.Window = (*Window)(nil)

// Open initializes GLFW and creates a resizable window. Escape closes it.
func Open(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: glfw reports no vulkan loader", render.ErrConfig)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		render.Logger().Debug("framebuffer resized", "width", width, "height", height)
		w.resized.Store(true)
	})
	win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	return w, nil
}

func (w *Window) PollEvents()       { glfw.PollEvents() }
func (w *Window) WaitEvents()       { glfw.WaitEvents() }
func (w *Window) ShouldClose() bool { return w.win.ShouldClose() }

func (w *Window) Resized() bool {
	return w.resized.Swap(false)
}

func (w *Window) FramebufferSize() render.Extent {
	width, height := w.win.GetFramebufferSize()
	return render.Extent{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

// Close asks the render loop to stop and wakes it if it is waiting for
// events. Safe to call from any goroutine.
func (w *Window) Close() {
	w.win.SetShouldClose(true)
	glfw.PostEmptyEvent()
}

// ProcAddr is the Vulkan loader entry point GLFW resolved.
func (w *Window) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// RequiredExtensions lists the instance extensions presentation needs.
func (w *Window) RequiredExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

// CreateSurface creates the presentation surface for instance.
func (w *Window) CreateSurface(instance vulkan.Instance) (vulkan.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(instance, nil)
	if err != nil {
		return vulkan.NullSurface, fmt.Errorf("create window surface: %w", err)
	}
	return vulkan.SurfaceFromPointer(ptr), nil
}

// Destroy closes the window and shuts GLFW down.
func (w *Window) Destroy() {
	w.win.Destroy()
	glfw.Terminate()
}
