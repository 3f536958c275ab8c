package rendertest

import (
	"fmt"
	"io/fs"

	"framechain/src/render"
)

// Window is a scripted render.Window.
type Window struct {
	size       render.Extent
	resized    bool
	closed     bool
	closeAfter int
	polls      int
	waits      int
	onWait     func(*Window)
}

var _ render.Window = (*Window)(nil)

func NewWindow(w, h uint32) *Window {
	return &Window{size: render.Extent{Width: w, Height: h}}
}

// Resize changes the framebuffer size and raises the resize flag.
func (w *Window) Resize(width, height uint32) {
	w.size = render.Extent{Width: width, Height: height}
	w.resized = true
}

// CloseAfter makes ShouldClose report true once n polls have happened.
func (w *Window) CloseAfter(n int) {
	w.closeAfter = n
}

func (w *Window) Close() {
	w.closed = true
}

// OnWait sets a function run by WaitEvents.
func (w *Window) OnWait(fn func(*Window)) {
	w.onWait = fn
}

func (w *Window) Polls() int { return w.polls }
func (w *Window) Waits() int { return w.waits }

func (w *Window) PollEvents() {
	w.polls++
	if w.closeAfter > 0 && w.polls >= w.closeAfter {
		w.closed = true
	}
}

func (w *Window) WaitEvents() {
	w.waits++
	if w.onWait != nil {
		w.onWait(w)
	}
}

func (w *Window) ShouldClose() bool {
	return w.closed
}

func (w *Window) Resized() bool {
	r := w.resized
	w.resized = false
	return r
}

func (w *Window) FramebufferSize() render.Extent {
	return w.size
}

// Shaders maps paths to byte code.
type Shaders map[string][]byte

// DefaultShaders holds placeholder byte code at the default shader paths.
func DefaultShaders() Shaders {
	code := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}
	return Shaders{
		render.DefaultVertexShader:   code,
		render.DefaultFragmentShader: code,
	}
}

func (s Shaders) Load(path string) ([]byte, error) {
	code, ok := s[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, fs.ErrNotExist)
	}
	return code, nil
}

// Geometry is a fixed vertex count and topology.
type Geometry struct {
	Vertices uint32
	Topo     render.Topology
}

// Triangle is a single triangle.
var Triangle = Geometry{Vertices: 3, Topo: render.TopologyTriangleList}

func (g Geometry) VertexCount() uint32       { return g.Vertices }
func (g Geometry) Topology() render.Topology { return g.Topo }
