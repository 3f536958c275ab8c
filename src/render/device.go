package render

import "time"

// Opaque device object handles. The zero value is the null handle.
type (
	Queue          uint64
	Swapchain      uint64
	Image          uint64
	ImageView      uint64
	Semaphore      uint64
	Fence          uint64
	CommandPool    uint64
	CommandBuffer  uint64
	ShaderModule   uint64
	RenderPass     uint64
	PipelineLayout uint64
	Pipeline       uint64
	Framebuffer    uint64
)

// QueueFamilies identifies the queue families resolved at bootstrap.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
}

// Shared reports whether a single family serves both graphics and present.
func (q QueueFamilies) Shared() bool {
	return q.Graphics == q.Present
}

// Stage is a pipeline stage mask.
type Stage uint32

const (
	StageTopOfPipe             Stage = 0x00000001
	StageColorAttachmentOutput Stage = 0x00000400
	StageBottomOfPipe          Stage = 0x00002000
)

// Access is a memory access mask.
type Access uint32

const (
	AccessNone                 Access = 0
	AccessColorAttachmentRead  Access = 0x00000080
	AccessColorAttachmentWrite Access = 0x00000100
)

// ImageBarrier describes a layout transition of a whole color image.
type ImageBarrier struct {
	Image     Image
	OldLayout ImageLayout
	NewLayout ImageLayout
	SrcStage  Stage
	DstStage  Stage
	SrcAccess Access
	DstAccess Access
}

// ClearColor is an RGBA clear value.
type ClearColor [4]float32

// DrawParams are the parameters of a non-indexed draw call.
type DrawParams struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// Submission is one graphics queue submission.
type Submission struct {
	Command   CommandBuffer
	Wait      Semaphore
	WaitStage Stage
	Signal    Semaphore
	Fence     Fence
}

// GraphicsPipelineDesc holds what the device needs to build the draw pipeline.
type GraphicsPipelineDesc struct {
	Vertex     ShaderModule
	Fragment   ShaderModule
	Layout     PipelineLayout
	RenderPass RenderPass
	Topology   Topology
}

// SurfaceDevice queries the display surface.
type SurfaceDevice interface {
	SurfaceCapabilities() (SurfaceCaps, error)
}

// ChainDevice manages presentable images.
type ChainDevice interface {
	CreateSwapchain(cfg SurfaceConfig, families QueueFamilies) (Swapchain, error)
	SwapchainImages(sc Swapchain) ([]Image, error)
	DestroySwapchain(sc Swapchain)
	CreateImageView(img Image, format Format) (ImageView, error)
	DestroyImageView(view ImageView)

	// AcquireNextImage returns ErrChainStale when the chain no longer
	// matches the surface, in which case signal is left untouched.
	// It returns the index together with ErrChainSuboptimal when
	// the image is usable but the chain should be rebuilt.
	AcquireNextImage(sc Swapchain, timeout time.Duration, signal Semaphore) (uint32, error)

	// QueuePresent may return ErrChainStale or ErrChainSuboptimal.
	QueuePresent(q Queue, sc Swapchain, index uint32, wait Semaphore) error
}

// SyncDevice manages host and device synchronization primitives.
type SyncDevice interface {
	CreateSemaphore() (Semaphore, error)
	DestroySemaphore(s Semaphore)
	CreateFence(signaled bool) (Fence, error)
	DestroyFence(f Fence)
	WaitForFence(f Fence, timeout time.Duration) error
	ResetFence(f Fence) error
	WaitIdle() error
}

// CommandDevice records and submits commands.
type CommandDevice interface {
	CreateCommandPool(family uint32) (CommandPool, error)
	DestroyCommandPool(pool CommandPool)
	AllocateCommandBuffers(pool CommandPool, n int) ([]CommandBuffer, error)
	FreeCommandBuffers(pool CommandPool, bufs []CommandBuffer)
	ResetCommandBuffer(cb CommandBuffer) error
	BeginCommandBuffer(cb CommandBuffer) error
	EndCommandBuffer(cb CommandBuffer) error

	CmdImageBarrier(cb CommandBuffer, b ImageBarrier)
	CmdBeginRenderPass(cb CommandBuffer, rp RenderPass, fb Framebuffer, extent Extent, clear ClearColor)
	CmdEndRenderPass(cb CommandBuffer)
	CmdBindPipeline(cb CommandBuffer, p Pipeline)
	CmdSetViewport(cb CommandBuffer, extent Extent)
	CmdDraw(cb CommandBuffer, d DrawParams)

	QueueSubmit(q Queue, s Submission) error
}

// PipelineDevice builds the fixed-function draw pipeline and its attachments.
type PipelineDevice interface {
	CreateShaderModule(code []byte) (ShaderModule, error)
	DestroyShaderModule(m ShaderModule)
	CreateRenderPass(format Format) (RenderPass, error)
	DestroyRenderPass(rp RenderPass)
	CreatePipelineLayout() (PipelineLayout, error)
	DestroyPipelineLayout(l PipelineLayout)
	CreateGraphicsPipeline(desc GraphicsPipelineDesc) (Pipeline, error)
	DestroyPipeline(p Pipeline)
	CreateFramebuffer(rp RenderPass, view ImageView, extent Extent) (Framebuffer, error)
	DestroyFramebuffer(fb Framebuffer)
}

// Device is the full set of graphics API calls issued by the pipeline.
type Device interface {
	SurfaceDevice
	ChainDevice
	SyncDevice
	CommandDevice
	PipelineDevice

	// Queue returns queue 0 of the given family.
	Queue(family uint32) Queue

	// Destroy releases the logical device and everything the
	// bootstrap created with it.
	Destroy()
}
