// Package rendertest provides an in-memory render.Device that tracks resource
// lifetimes and checks the synchronization rules of the presentation
// pipeline.
package rendertest

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"framechain/src/render"
)

// Call is one recorded device call.
type Call struct {
	Op     string
	Handle uint64
}

type work struct {
	cb     render.CommandBuffer
	fence  render.Fence
	signal render.Semaphore
}

type chainState struct {
	cfg    render.SurfaceConfig
	images []render.Image
	next   int
	// held maps an image to the semaphore its last present waits on. The
	// semaphore is released when the image is acquired again.
	held map[uint32]render.Semaphore
}

// Device is a fake render.Device.
//
// Submitted work stays pending until its fence is waited on with
// AutoComplete set, Signal or Complete is called, or the device is idled.
// Misuse is not fatal; it is collected and reported by Violations.
type Device struct {
	// AutoComplete makes a fence wait finish the work it guards at once.
	AutoComplete bool

	mu         sync.Mutex
	cond       *sync.Cond
	caps       render.SurfaceCaps
	next       uint64
	live       map[uint64]string
	calls      []Call
	violations []string
	failures   map[string]error
	acquireErr map[int]error
	presentErr map[int]error
	acquires   int
	presents   int
	chains     map[render.Swapchain]*chainState
	configs    []render.SurfaceConfig
	signaled   map[render.Fence]bool
	pending    []work
	acquired   map[render.Semaphore]bool
	presenting map[render.Semaphore]bool
	lastSignal render.Semaphore
	maxPending int
	lost       bool
	destroyed  bool
}

var _ render.Device = (*Device)(nil)

// NewDevice returns a device whose surface reports caps. AutoComplete is set.
func NewDevice(caps render.SurfaceCaps) *Device {
	d := &Device{
		AutoComplete: true,
		caps:         caps,
		live:         make(map[uint64]string),
		failures:     make(map[string]error),
		acquireErr:   make(map[int]error),
		presentErr:   make(map[int]error),
		chains:       make(map[render.Swapchain]*chainState),
		signaled:     make(map[render.Fence]bool),
		acquired:     make(map[render.Semaphore]bool),
		presenting:   make(map[render.Semaphore]bool),
	}
	d.cond = sync.NewCond(&d.mu)
	return d
}

// Caps returns surface capabilities with a defined current extent of w by h.
func Caps(w, h uint32) render.SurfaceCaps {
	return render.SurfaceCaps{
		Formats: []render.SurfaceFormat{
			{Format: render.FormatB8G8R8A8Unorm, ColorSpace: render.ColorSpaceSrgbNonlinear},
			{Format: render.FormatB8G8R8A8Srgb, ColorSpace: render.ColorSpaceSrgbNonlinear},
		},
		PresentModes:   []render.PresentMode{render.PresentModeFifo, render.PresentModeMailbox},
		CurrentExtent:  render.Extent{Width: w, Height: h},
		MinImageExtent: render.Extent{Width: 1, Height: 1},
		MaxImageExtent: render.Extent{Width: 4096, Height: 4096},
		MinImageCount:  2,
		MaxImageCount:  8,
	}
}

// SetCaps replaces what the surface reports from the next query on.
func (d *Device) SetCaps(caps render.SurfaceCaps) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.caps = caps
}

// FailNext makes the next call named op return err.
func (d *Device) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = err
}

// AcquireResult makes the n-th image acquisition, counted from 1, return err.
// Stale results return no image, any other error is returned with one.
func (d *Device) AcquireResult(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.acquireErr[n] = err
}

// PresentResult makes the n-th presentation, counted from 1, return err.
func (d *Device) PresentResult(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.presentErr[n] = err
}

// LoseDevice drops all pending work. Every later wait, submission,
// acquisition and presentation fails with render.ErrDeviceLost.
func (d *Device) LoseDevice() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lost = true
	d.pending = nil
	d.cond.Broadcast()
}

// Signal finishes all work submitted up to and including the work guarded
// by f.
func (d *Device) Signal(f render.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.complete(f)
	d.cond.Broadcast()
}

// Complete finishes all pending work.
func (d *Device) Complete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completeAll()
	d.cond.Broadcast()
}

// Calls returns the recorded calls in order.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Ops returns the names of the recorded calls, keeping only those in filter
// when it is not empty.
func (d *Device) Ops(filter ...string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	keep := make(map[string]bool, len(filter))
	for _, f := range filter {
		keep[f] = true
	}
	var ops []string
	for _, c := range d.calls {
		if len(keep) == 0 || keep[c.Op] {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

// Count returns how many times op was called.
func (d *Device) Count(op string) int {
	return len(d.Ops(op))
}

// Violations returns the synchronization and lifetime rules broken so far.
func (d *Device) Violations() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.violations...)
}

// Live returns the number of live objects per kind.
func (d *Device) Live() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	live := make(map[string]int)
	for _, kind := range d.live {
		live[kind]++
	}
	return live
}

// LiveKinds returns the sorted kinds that still have live objects.
func (d *Device) LiveKinds() []string {
	var kinds []string
	for kind := range d.Live() {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Configs returns the configuration of every swapchain created so far.
func (d *Device) Configs() []render.SurfaceConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]render.SurfaceConfig(nil), d.configs...)
}

// MaxInFlight returns the largest number of submissions pending at once.
func (d *Device) MaxInFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxPending
}

// Pending returns the number of submissions not yet finished.
func (d *Device) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Destroyed reports whether Destroy was called.
func (d *Device) Destroyed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.destroyed
}

func (d *Device) record(op string, h uint64) {
	d.calls = append(d.calls, Call{Op: op, Handle: h})
}

func (d *Device) violate(format string, args ...any) {
	d.violations = append(d.violations, fmt.Sprintf(format, args...))
}

func (d *Device) fail(op string) error {
	err, ok := d.failures[op]
	if !ok {
		return nil
	}
	delete(d.failures, op)
	return err
}

func (d *Device) alloc(kind string) uint64 {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *Device) create(op, kind string) (uint64, error) {
	if err := d.fail(op); err != nil {
		d.record(op, 0)
		return 0, err
	}
	h := d.alloc(kind)
	d.record(op, h)
	return h, nil
}

func (d *Device) destroy(op, kind string, h uint64) {
	d.record(op, h)
	if h == 0 {
		return
	}
	if d.live[h] != kind {
		d.violate("%s: %s %d is not live", op, kind, h)
		return
	}
	if len(d.pending) > 0 {
		d.violate("%s: %s %d destroyed with %d submissions pending", op, kind, h, len(d.pending))
	}
	delete(d.live, h)
}

func (d *Device) inFlight(cb render.CommandBuffer) bool {
	for _, w := range d.pending {
		if w.cb == cb {
			return true
		}
	}
	return false
}

func (d *Device) guards(f render.Fence) bool {
	for _, w := range d.pending {
		if w.fence == f {
			return true
		}
	}
	return false
}

func (d *Device) complete(f render.Fence) {
	for i, w := range d.pending {
		if w.fence != f {
			continue
		}
		for _, done := range d.pending[:i+1] {
			d.signaled[done.fence] = true
		}
		d.pending = d.pending[i+1:]
		return
	}
}

func (d *Device) completeAll() {
	for _, w := range d.pending {
		d.signaled[w.fence] = true
	}
	d.pending = nil
}

func (d *Device) SurfaceCapabilities() (render.SurfaceCaps, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SurfaceCapabilities", 0)
	if err := d.fail("SurfaceCapabilities"); err != nil {
		return render.SurfaceCaps{}, err
	}
	return d.caps, nil
}

func (d *Device) CreateSwapchain(cfg render.SurfaceConfig, _ render.QueueFamilies) (render.Swapchain, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateSwapchain", "swapchain")
	if err != nil {
		return 0, err
	}
	if cfg.Extent.Empty() {
		d.violate("CreateSwapchain: empty extent %v", cfg.Extent)
	}
	c := &chainState{cfg: cfg, held: make(map[uint32]render.Semaphore)}
	for i := uint32(0); i < cfg.ImageCount; i++ {
		d.next++
		c.images = append(c.images, render.Image(d.next))
	}
	sc := render.Swapchain(h)
	d.chains[sc] = c
	d.configs = append(d.configs, cfg)
	return sc, nil
}

func (d *Device) SwapchainImages(sc render.Swapchain) ([]render.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SwapchainImages", uint64(sc))
	if err := d.fail("SwapchainImages"); err != nil {
		return nil, err
	}
	c, ok := d.chains[sc]
	if !ok || d.live[uint64(sc)] != "swapchain" {
		return nil, fmt.Errorf("swapchain %d is not live", sc)
	}
	return append([]render.Image(nil), c.images...), nil
}

func (d *Device) DestroySwapchain(sc render.Swapchain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroySwapchain", "swapchain", uint64(sc))
	if c, ok := d.chains[sc]; ok {
		for _, sem := range c.held {
			delete(d.presenting, sem)
		}
		delete(d.chains, sc)
	}
}

func (d *Device) CreateImageView(_ render.Image, _ render.Format) (render.ImageView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateImageView", "image view")
	return render.ImageView(h), err
}

func (d *Device) DestroyImageView(v render.ImageView) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyImageView", "image view", uint64(v))
}

func (d *Device) AcquireNextImage(sc render.Swapchain, _ time.Duration, signal render.Semaphore) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("AcquireNextImage", uint64(sc))
	if d.lost {
		return 0, render.ErrDeviceLost
	}
	d.acquires++
	c, ok := d.chains[sc]
	if !ok || d.live[uint64(sc)] != "swapchain" {
		d.violate("AcquireNextImage: swapchain %d is not live", sc)
		return 0, render.ErrChainStale
	}
	err := d.acquireErr[d.acquires]
	if err != nil && !errors.Is(err, render.ErrChainSuboptimal) {
		return 0, err
	}
	if d.acquired[signal] {
		d.violate("AcquireNextImage: semaphore %d already has a pending signal", signal)
	}
	d.acquired[signal] = true
	index := uint32(c.next % len(c.images))
	c.next++
	if sem, ok := c.held[index]; ok {
		delete(d.presenting, sem)
		delete(c.held, index)
	}
	return index, err
}

func (d *Device) QueuePresent(_ render.Queue, sc render.Swapchain, index uint32, wait render.Semaphore) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("QueuePresent", uint64(sc))
	if d.lost {
		return render.ErrDeviceLost
	}
	d.presents++
	if wait != d.lastSignal {
		d.violate("QueuePresent: waits on semaphore %d, last submission signals %d", wait, d.lastSignal)
	}
	d.lastSignal = 0
	if c, ok := d.chains[sc]; ok {
		c.held[index] = wait
		d.presenting[wait] = true
	}
	return d.presentErr[d.presents]
}

func (d *Device) CreateSemaphore() (render.Semaphore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateSemaphore", "semaphore")
	return render.Semaphore(h), err
}

func (d *Device) DestroySemaphore(s render.Semaphore) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroySemaphore", "semaphore", uint64(s))
	delete(d.acquired, s)
	delete(d.presenting, s)
}

func (d *Device) CreateFence(signaled bool) (render.Fence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateFence", "fence")
	if err != nil {
		return 0, err
	}
	d.signaled[render.Fence(h)] = signaled
	return render.Fence(h), nil
}

func (d *Device) DestroyFence(f render.Fence) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyFence", "fence", uint64(f))
	delete(d.signaled, f)
}

// WaitForFence blocks until f is signaled or timeout expires.
func (d *Device) WaitForFence(f render.Fence, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("WaitForFence", uint64(f))
	if d.lost {
		return render.ErrDeviceLost
	}
	if d.live[uint64(f)] != "fence" {
		d.violate("WaitForFence: fence %d is not live", f)
	}
	if d.AutoComplete {
		d.complete(f)
	}
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.cond.Broadcast()
	})
	defer timer.Stop()
	for !d.signaled[f] {
		if d.lost {
			return render.ErrDeviceLost
		}
		if !time.Now().Before(deadline) {
			return render.ErrSyncTimeout
		}
		d.cond.Wait()
	}
	return nil
}

func (d *Device) ResetFence(f render.Fence) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ResetFence", uint64(f))
	if d.guards(f) {
		d.violate("ResetFence: fence %d guards pending work", f)
	}
	d.signaled[f] = false
	return nil
}

func (d *Device) WaitIdle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("WaitIdle", 0)
	if d.lost {
		return render.ErrDeviceLost
	}
	d.completeAll()
	d.cond.Broadcast()
	return nil
}

func (d *Device) CreateCommandPool(uint32) (render.CommandPool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateCommandPool", "command pool")
	return render.CommandPool(h), err
}

func (d *Device) DestroyCommandPool(pool render.CommandPool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyCommandPool", "command pool", uint64(pool))
}

func (d *Device) AllocateCommandBuffers(pool render.CommandPool, n int) ([]render.CommandBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("AllocateCommandBuffers", uint64(pool))
	if err := d.fail("AllocateCommandBuffers"); err != nil {
		return nil, err
	}
	bufs := make([]render.CommandBuffer, n)
	for i := range bufs {
		bufs[i] = render.CommandBuffer(d.alloc("command buffer"))
	}
	return bufs, nil
}

func (d *Device) FreeCommandBuffers(_ render.CommandPool, bufs []render.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cb := range bufs {
		d.destroy("FreeCommandBuffers", "command buffer", uint64(cb))
	}
}

func (d *Device) ResetCommandBuffer(cb render.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("ResetCommandBuffer", uint64(cb))
	if d.inFlight(cb) {
		d.violate("ResetCommandBuffer: command buffer %d is pending", cb)
	}
	return nil
}

func (d *Device) BeginCommandBuffer(cb render.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("BeginCommandBuffer", uint64(cb))
	return d.fail("BeginCommandBuffer")
}

func (d *Device) EndCommandBuffer(cb render.CommandBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("EndCommandBuffer", uint64(cb))
	return d.fail("EndCommandBuffer")
}

func (d *Device) CmdImageBarrier(cb render.CommandBuffer, b render.ImageBarrier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CmdImageBarrier", uint64(b.Image))
}

func (d *Device) CmdBeginRenderPass(cb render.CommandBuffer, rp render.RenderPass, fb render.Framebuffer, _ render.Extent, _ render.ClearColor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CmdBeginRenderPass", uint64(fb))
	if d.live[uint64(rp)] != "render pass" {
		d.violate("CmdBeginRenderPass: render pass %d is not live", rp)
	}
	if d.live[uint64(fb)] != "framebuffer" {
		d.violate("CmdBeginRenderPass: framebuffer %d is not live", fb)
	}
}

func (d *Device) CmdEndRenderPass(cb render.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CmdEndRenderPass", uint64(cb))
}

func (d *Device) CmdBindPipeline(cb render.CommandBuffer, p render.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CmdBindPipeline", uint64(p))
	if d.live[uint64(p)] != "pipeline" {
		d.violate("CmdBindPipeline: pipeline %d is not live", p)
	}
}

func (d *Device) CmdSetViewport(cb render.CommandBuffer, _ render.Extent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CmdSetViewport", uint64(cb))
}

func (d *Device) CmdDraw(cb render.CommandBuffer, p render.DrawParams) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("CmdDraw", uint64(p.VertexCount))
}

func (d *Device) QueueSubmit(_ render.Queue, s render.Submission) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("QueueSubmit", uint64(s.Command))
	if d.lost {
		return render.ErrDeviceLost
	}
	if err := d.fail("QueueSubmit"); err != nil {
		return err
	}
	if !d.acquired[s.Wait] {
		d.violate("QueueSubmit: waits on semaphore %d with no pending signal", s.Wait)
	}
	delete(d.acquired, s.Wait)
	if d.presenting[s.Signal] {
		d.violate("QueueSubmit: signals semaphore %d still waited on by a present", s.Signal)
	}
	if d.signaled[s.Fence] {
		d.violate("QueueSubmit: fence %d is still signaled", s.Fence)
	}
	if d.inFlight(s.Command) {
		d.violate("QueueSubmit: command buffer %d is already pending", s.Command)
	}
	d.pending = append(d.pending, work{cb: s.Command, fence: s.Fence, signal: s.Signal})
	if len(d.pending) > d.maxPending {
		d.maxPending = len(d.pending)
	}
	d.lastSignal = s.Signal
	return nil
}

func (d *Device) CreateShaderModule(code []byte) (render.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateShaderModule", "shader module")
	return render.ShaderModule(h), err
}

func (d *Device) DestroyShaderModule(m render.ShaderModule) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyShaderModule", "shader module", uint64(m))
}

func (d *Device) CreateRenderPass(render.Format) (render.RenderPass, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreateRenderPass", "render pass")
	return render.RenderPass(h), err
}

func (d *Device) DestroyRenderPass(rp render.RenderPass) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyRenderPass", "render pass", uint64(rp))
}

func (d *Device) CreatePipelineLayout() (render.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, err := d.create("CreatePipelineLayout", "pipeline layout")
	return render.PipelineLayout(h), err
}

func (d *Device) DestroyPipelineLayout(l render.PipelineLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyPipelineLayout", "pipeline layout", uint64(l))
}

func (d *Device) CreateGraphicsPipeline(desc render.GraphicsPipelineDesc) (render.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live[uint64(desc.Vertex)] != "shader module" || d.live[uint64(desc.Fragment)] != "shader module" {
		d.violate("CreateGraphicsPipeline: shader modules %d, %d are not live", desc.Vertex, desc.Fragment)
	}
	h, err := d.create("CreateGraphicsPipeline", "pipeline")
	return render.Pipeline(h), err
}

func (d *Device) DestroyPipeline(p render.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyPipeline", "pipeline", uint64(p))
}

func (d *Device) CreateFramebuffer(_ render.RenderPass, view render.ImageView, _ render.Extent) (render.Framebuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live[uint64(view)] != "image view" {
		d.violate("CreateFramebuffer: image view %d is not live", view)
	}
	h, err := d.create("CreateFramebuffer", "framebuffer")
	return render.Framebuffer(h), err
}

func (d *Device) DestroyFramebuffer(fb render.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroy("DestroyFramebuffer", "framebuffer", uint64(fb))
}

func (d *Device) Queue(family uint32) render.Queue {
	return render.Queue(0x1000 + uint64(family))
}

func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Destroy", 0)
	if d.destroyed {
		d.violate("Destroy: device already destroyed")
	}
	d.destroyed = true
}
