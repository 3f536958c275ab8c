// Package vkdriver implements render.Device on top of Vulkan.
package vkdriver

import (
	"fmt"
	"time"

	"github.com/vulkan-go/vulkan"

	"framechain/src/render"
)

// Device is a logical Vulkan device bound to one presentation surface.
// Objects are handed out as render handles and resolved through per kind
// tables.
type Device struct {
	instance vulkan.Instance
	surface  vulkan.Surface
	gpu      vulkan.PhysicalDevice
	device   vulkan.Device
	families render.QueueFamilies
	debug    vulkan.DebugReportCallback

	ids          uint64
	queues       table[vulkan.Queue]
	queueIDs     map[uint32]render.Queue
	swapchains   table[vulkan.Swapchain]
	images       table[vulkan.Image]
	chainImages  map[render.Swapchain][]render.Image
	views        table[vulkan.ImageView]
	semaphores   table[vulkan.Semaphore]
	fences       table[vulkan.Fence]
	pools        table[vulkan.CommandPool]
	commands     table[vulkan.CommandBuffer]
	modules      table[vulkan.ShaderModule]
	passes       table[vulkan.RenderPass]
	layouts      table[vulkan.PipelineLayout]
	pipelines    table[vulkan.Pipeline]
	framebuffers table[vulkan.Framebuffer]
}

var _ render.Device = (*Device)(nil)

func newDevice() *Device {
	d := &Device{
		queueIDs:    make(map[uint32]render.Queue),
		chainImages: make(map[render.Swapchain][]render.Image),
	}
	d.queues = newTable[vulkan.Queue](&d.ids)
	d.swapchains = newTable[vulkan.Swapchain](&d.ids)
	d.images = newTable[vulkan.Image](&d.ids)
	d.views = newTable[vulkan.ImageView](&d.ids)
	d.semaphores = newTable[vulkan.Semaphore](&d.ids)
	d.fences = newTable[vulkan.Fence](&d.ids)
	d.pools = newTable[vulkan.CommandPool](&d.ids)
	d.commands = newTable[vulkan.CommandBuffer](&d.ids)
	d.modules = newTable[vulkan.ShaderModule](&d.ids)
	d.passes = newTable[vulkan.RenderPass](&d.ids)
	d.layouts = newTable[vulkan.PipelineLayout](&d.ids)
	d.pipelines = newTable[vulkan.Pipeline](&d.ids)
	d.framebuffers = newTable[vulkan.Framebuffer](&d.ids)
	return d
}

// Families returns the queue families resolved at bootstrap.
func (d *Device) Families() render.QueueFamilies {
	return d.families
}

func (d *Device) Queue(family uint32) render.Queue {
	if q, ok := d.queueIDs[family]; ok {
		return q
	}
	var q vulkan.Queue
	vulkan.GetDeviceQueue(d.device, family, 0, &q)
	id := render.Queue(d.queues.put(q))
	d.queueIDs[family] = id
	return id
}

func (d *Device) SurfaceCapabilities() (render.SurfaceCaps, error) {
	var caps vulkan.SurfaceCapabilities
	if err := NewError(vulkan.GetPhysicalDeviceSurfaceCapabilities(d.gpu, d.surface, &caps)); err != nil {
		return render.SurfaceCaps{}, err
	}
	caps.Deref()

	var n uint32
	if err := NewError(vulkan.GetPhysicalDeviceSurfaceFormats(d.gpu, d.surface, &n, nil)); err != nil {
		return render.SurfaceCaps{}, err
	}
	formats := make([]vulkan.SurfaceFormat, n)
	if n > 0 {
		if err := NewError(vulkan.GetPhysicalDeviceSurfaceFormats(d.gpu, d.surface, &n, formats)); err != nil {
			return render.SurfaceCaps{}, err
		}
	}

	if err := NewError(vulkan.GetPhysicalDeviceSurfacePresentModes(d.gpu, d.surface, &n, nil)); err != nil {
		return render.SurfaceCaps{}, err
	}
	modes := make([]vulkan.PresentMode, n)
	if n > 0 {
		if err := NewError(vulkan.GetPhysicalDeviceSurfacePresentModes(d.gpu, d.surface, &n, modes)); err != nil {
			return render.SurfaceCaps{}, err
		}
	}
	return surfaceCaps(caps, formats, modes), nil
}

func (d *Device) CreateSwapchain(cfg render.SurfaceConfig, families render.QueueFamilies) (render.Swapchain, error) {
	info := vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          d.surface,
		MinImageCount:    cfg.ImageCount,
		ImageFormat:      vulkan.Format(cfg.Format.Format),
		ImageColorSpace:  vulkan.ColorSpace(cfg.Format.ColorSpace),
		ImageExtent:      toExtent(cfg.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit),
		ImageSharingMode: vulkan.SharingModeExclusive,
		PreTransform:     vulkan.SurfaceTransformFlagBits(cfg.Transform),
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      vulkan.PresentMode(cfg.PresentMode),
		Clipped:          vulkan.True,
		OldSwapchain:     vulkan.NullSwapchain,
	}
	if !families.Shared() {
		info.ImageSharingMode = vulkan.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{families.Graphics, families.Present}
	}
	var sc vulkan.Swapchain
	if err := NewError(vulkan.CreateSwapchain(d.device, &info, nil, &sc)); err != nil {
		return 0, err
	}
	return render.Swapchain(d.swapchains.put(sc)), nil
}

func (d *Device) SwapchainImages(h render.Swapchain) ([]render.Image, error) {
	if ids, ok := d.chainImages[h]; ok {
		return ids, nil
	}
	sc := d.swapchains.get(uint64(h))
	var n uint32
	if err := NewError(vulkan.GetSwapchainImages(d.device, sc, &n, nil)); err != nil {
		return nil, err
	}
	images := make([]vulkan.Image, n)
	if err := NewError(vulkan.GetSwapchainImages(d.device, sc, &n, images)); err != nil {
		return nil, err
	}
	ids := make([]render.Image, len(images))
	for i, img := range images {
		ids[i] = render.Image(d.images.put(img))
	}
	d.chainImages[h] = ids
	return ids, nil
}

func (d *Device) DestroySwapchain(h render.Swapchain) {
	for _, img := range d.chainImages[h] {
		d.images.take(uint64(img))
	}
	delete(d.chainImages, h)
	if sc, ok := d.swapchains.take(uint64(h)); ok {
		vulkan.DestroySwapchain(d.device, sc, nil)
	}
}

func (d *Device) CreateImageView(img render.Image, format render.Format) (render.ImageView, error) {
	info := vulkan.ImageViewCreateInfo{
		SType:    vulkan.StructureTypeImageViewCreateInfo,
		Image:    d.images.get(uint64(img)),
		ViewType: vulkan.ImageViewType2d,
		Format:   vulkan.Format(format),
		Components: vulkan.ComponentMapping{
			R: vulkan.ComponentSwizzleIdentity,
			G: vulkan.ComponentSwizzleIdentity,
			B: vulkan.ComponentSwizzleIdentity,
			A: vulkan.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorRange(),
	}
	var view vulkan.ImageView
	if err := NewError(vulkan.CreateImageView(d.device, &info, nil, &view)); err != nil {
		return 0, err
	}
	return render.ImageView(d.views.put(view)), nil
}

func (d *Device) DestroyImageView(h render.ImageView) {
	if view, ok := d.views.take(uint64(h)); ok {
		vulkan.DestroyImageView(d.device, view, nil)
	}
}

func (d *Device) AcquireNextImage(h render.Swapchain, timeout time.Duration, signal render.Semaphore) (uint32, error) {
	var index uint32
	res := vulkan.AcquireNextImage(d.device, d.swapchains.get(uint64(h)), uint64(timeout.Nanoseconds()),
		d.semaphores.get(uint64(signal)), vulkan.NullFence, &index)
	return index, NewError(res)
}

func (d *Device) QueuePresent(q render.Queue, h render.Swapchain, index uint32, wait render.Semaphore) error {
	info := vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{d.semaphores.get(uint64(wait))},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{d.swapchains.get(uint64(h))},
		PImageIndices:      []uint32{index},
	}
	return NewError(vulkan.QueuePresent(d.queues.get(uint64(q)), &info))
}

func (d *Device) CreateSemaphore() (render.Semaphore, error) {
	info := vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}
	var s vulkan.Semaphore
	if err := NewError(vulkan.CreateSemaphore(d.device, &info, nil, &s)); err != nil {
		return 0, err
	}
	return render.Semaphore(d.semaphores.put(s)), nil
}

func (d *Device) DestroySemaphore(h render.Semaphore) {
	if s, ok := d.semaphores.take(uint64(h)); ok {
		vulkan.DestroySemaphore(d.device, s, nil)
	}
}

func (d *Device) CreateFence(signaled bool) (render.Fence, error) {
	info := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit)
	}
	var f vulkan.Fence
	if err := NewError(vulkan.CreateFence(d.device, &info, nil, &f)); err != nil {
		return 0, err
	}
	return render.Fence(d.fences.put(f)), nil
}

func (d *Device) DestroyFence(h render.Fence) {
	if f, ok := d.fences.take(uint64(h)); ok {
		vulkan.DestroyFence(d.device, f, nil)
	}
}

func (d *Device) WaitForFence(h render.Fence, timeout time.Duration) error {
	fences := []vulkan.Fence{d.fences.get(uint64(h))}
	return NewError(vulkan.WaitForFences(d.device, 1, fences, vulkan.True, uint64(timeout.Nanoseconds())))
}

func (d *Device) ResetFence(h render.Fence) error {
	fences := []vulkan.Fence{d.fences.get(uint64(h))}
	return NewError(vulkan.ResetFences(d.device, 1, fences))
}

func (d *Device) WaitIdle() error {
	return NewError(vulkan.DeviceWaitIdle(d.device))
}

func (d *Device) CreateCommandPool(family uint32) (render.CommandPool, error) {
	info := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}
	var pool vulkan.CommandPool
	if err := NewError(vulkan.CreateCommandPool(d.device, &info, nil, &pool)); err != nil {
		return 0, err
	}
	return render.CommandPool(d.pools.put(pool)), nil
}

func (d *Device) DestroyCommandPool(h render.CommandPool) {
	if pool, ok := d.pools.take(uint64(h)); ok {
		vulkan.DestroyCommandPool(d.device, pool, nil)
	}
}

func (d *Device) AllocateCommandBuffers(h render.CommandPool, n int) ([]render.CommandBuffer, error) {
	info := vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.pools.get(uint64(h)),
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}
	bufs := make([]vulkan.CommandBuffer, n)
	if err := NewError(vulkan.AllocateCommandBuffers(d.device, &info, bufs)); err != nil {
		return nil, err
	}
	ids := make([]render.CommandBuffer, n)
	for i, cb := range bufs {
		ids[i] = render.CommandBuffer(d.commands.put(cb))
	}
	return ids, nil
}

func (d *Device) FreeCommandBuffers(h render.CommandPool, ids []render.CommandBuffer) {
	bufs := make([]vulkan.CommandBuffer, 0, len(ids))
	for _, id := range ids {
		if cb, ok := d.commands.take(uint64(id)); ok {
			bufs = append(bufs, cb)
		}
	}
	if len(bufs) > 0 {
		vulkan.FreeCommandBuffers(d.device, d.pools.get(uint64(h)), uint32(len(bufs)), bufs)
	}
}

func (d *Device) ResetCommandBuffer(h render.CommandBuffer) error {
	return NewError(vulkan.ResetCommandBuffer(d.commands.get(uint64(h)), 0))
}

func (d *Device) BeginCommandBuffer(h render.CommandBuffer) error {
	info := vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
		Flags: vulkan.CommandBufferUsageFlags(vulkan.CommandBufferUsageOneTimeSubmitBit),
	}
	return NewError(vulkan.BeginCommandBuffer(d.commands.get(uint64(h)), &info))
}

func (d *Device) EndCommandBuffer(h render.CommandBuffer) error {
	return NewError(vulkan.EndCommandBuffer(d.commands.get(uint64(h))))
}

func (d *Device) CmdImageBarrier(h render.CommandBuffer, b render.ImageBarrier) {
	barrier := vulkan.ImageMemoryBarrier{
		SType:               vulkan.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vulkan.AccessFlags(b.SrcAccess),
		DstAccessMask:       vulkan.AccessFlags(b.DstAccess),
		OldLayout:           vulkan.ImageLayout(b.OldLayout),
		NewLayout:           vulkan.ImageLayout(b.NewLayout),
		SrcQueueFamilyIndex: vulkan.QueueFamilyIgnored,
		DstQueueFamilyIndex: vulkan.QueueFamilyIgnored,
		Image:               d.images.get(uint64(b.Image)),
		SubresourceRange:    colorRange(),
	}
	vulkan.CmdPipelineBarrier(
		d.commands.get(uint64(h)),
		vulkan.PipelineStageFlags(b.SrcStage), vulkan.PipelineStageFlags(b.DstStage),
		0,
		0, nil,
		0, nil,
		1, []vulkan.ImageMemoryBarrier{barrier},
	)
}

func (d *Device) CmdBeginRenderPass(h render.CommandBuffer, rp render.RenderPass, fb render.Framebuffer, extent render.Extent, clear render.ClearColor) {
	info := vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  d.passes.get(uint64(rp)),
		Framebuffer: d.framebuffers.get(uint64(fb)),
		RenderArea: vulkan.Rect2D{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: toExtent(extent),
		},
		ClearValueCount: 1,
		PClearValues:    []vulkan.ClearValue{vulkan.NewClearValue(clear[:])},
	}
	vulkan.CmdBeginRenderPass(d.commands.get(uint64(h)), &info, vulkan.SubpassContentsInline)
}

func (d *Device) CmdEndRenderPass(h render.CommandBuffer) {
	vulkan.CmdEndRenderPass(d.commands.get(uint64(h)))
}

func (d *Device) CmdBindPipeline(h render.CommandBuffer, p render.Pipeline) {
	vulkan.CmdBindPipeline(d.commands.get(uint64(h)), vulkan.PipelineBindPointGraphics, d.pipelines.get(uint64(p)))
}

// CmdSetViewport sets both the viewport and the scissor to extent.
func (d *Device) CmdSetViewport(h render.CommandBuffer, extent render.Extent) {
	cb := d.commands.get(uint64(h))
	viewport := vulkan.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vulkan.CmdSetViewport(cb, 0, 1, []vulkan.Viewport{viewport})
	scissor := vulkan.Rect2D{
		Offset: vulkan.Offset2D{X: 0, Y: 0},
		Extent: toExtent(extent),
	}
	vulkan.CmdSetScissor(cb, 0, 1, []vulkan.Rect2D{scissor})
}

func (d *Device) CmdDraw(h render.CommandBuffer, p render.DrawParams) {
	vulkan.CmdDraw(d.commands.get(uint64(h)), p.VertexCount, p.InstanceCount, p.FirstVertex, p.FirstInstance)
}

func (d *Device) QueueSubmit(q render.Queue, s render.Submission) error {
	info := vulkan.SubmitInfo{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{d.semaphores.get(uint64(s.Wait))},
		PWaitDstStageMask:    []vulkan.PipelineStageFlags{vulkan.PipelineStageFlags(s.WaitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{d.commands.get(uint64(s.Command))},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{d.semaphores.get(uint64(s.Signal))},
	}
	res := vulkan.QueueSubmit(d.queues.get(uint64(q)), 1, []vulkan.SubmitInfo{info}, d.fences.get(uint64(s.Fence)))
	return NewError(res)
}

func (d *Device) CreateShaderModule(code []byte) (render.ShaderModule, error) {
	words, err := repackUint32(code)
	if err != nil {
		return 0, err
	}
	info := vulkan.ShaderModuleCreateInfo{
		SType:    vulkan.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    words,
	}
	var m vulkan.ShaderModule
	if err := NewError(vulkan.CreateShaderModule(d.device, &info, nil, &m)); err != nil {
		return 0, err
	}
	return render.ShaderModule(d.modules.put(m)), nil
}

func (d *Device) DestroyShaderModule(h render.ShaderModule) {
	if m, ok := d.modules.take(uint64(h)); ok {
		vulkan.DestroyShaderModule(d.device, m, nil)
	}
}

// CreateRenderPass creates a single subpass pass over one color attachment.
// Layout transitions are recorded as explicit barriers, so the attachment
// stays in the color attachment layout for the whole pass.
func (d *Device) CreateRenderPass(format render.Format) (render.RenderPass, error) {
	attachment := vulkan.AttachmentDescription{
		Format:         vulkan.Format(format),
		Samples:        vulkan.SampleCount1Bit,
		LoadOp:         vulkan.AttachmentLoadOpClear,
		StoreOp:        vulkan.AttachmentStoreOpStore,
		StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
		StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
		InitialLayout:  vulkan.ImageLayoutColorAttachmentOptimal,
		FinalLayout:    vulkan.ImageLayoutColorAttachmentOptimal,
	}
	ref := vulkan.AttachmentReference{
		Attachment: 0,
		Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vulkan.SubpassDescription{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vulkan.AttachmentReference{ref},
	}
	info := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vulkan.AttachmentDescription{attachment},
		SubpassCount:    1,
		PSubpasses:      []vulkan.SubpassDescription{subpass},
	}
	var rp vulkan.RenderPass
	if err := NewError(vulkan.CreateRenderPass(d.device, &info, nil, &rp)); err != nil {
		return 0, err
	}
	return render.RenderPass(d.passes.put(rp)), nil
}

func (d *Device) DestroyRenderPass(h render.RenderPass) {
	if rp, ok := d.passes.take(uint64(h)); ok {
		vulkan.DestroyRenderPass(d.device, rp, nil)
	}
}

func (d *Device) CreatePipelineLayout() (render.PipelineLayout, error) {
	info := vulkan.PipelineLayoutCreateInfo{
		SType: vulkan.StructureTypePipelineLayoutCreateInfo,
	}
	var l vulkan.PipelineLayout
	if err := NewError(vulkan.CreatePipelineLayout(d.device, &info, nil, &l)); err != nil {
		return 0, err
	}
	return render.PipelineLayout(d.layouts.put(l)), nil
}

func (d *Device) DestroyPipelineLayout(h render.PipelineLayout) {
	if l, ok := d.layouts.take(uint64(h)); ok {
		vulkan.DestroyPipelineLayout(d.device, l, nil)
	}
}

// CreateGraphicsPipeline builds a pipeline without vertex input. Vertex
// positions come from the shaders; viewport and scissor are dynamic.
func (d *Device) CreateGraphicsPipeline(desc render.GraphicsPipelineDesc) (render.Pipeline, error) {
	stages := []vulkan.PipelineShaderStageCreateInfo{
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageVertexBit,
			Module: d.modules.get(uint64(desc.Vertex)),
			PName:  cstr("main"),
		},
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageFragmentBit,
			Module: d.modules.get(uint64(desc.Fragment)),
			PName:  cstr("main"),
		},
	}
	vertexInput := vulkan.PipelineVertexInputStateCreateInfo{
		SType: vulkan.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vulkan.PipelineInputAssemblyStateCreateInfo{
		SType:                  vulkan.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vulkan.PrimitiveTopology(desc.Topology),
		PrimitiveRestartEnable: vulkan.False,
	}
	viewportState := vulkan.PipelineViewportStateCreateInfo{
		SType:         vulkan.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vulkan.PipelineRasterizationStateCreateInfo{
		SType:                   vulkan.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vulkan.False,
		RasterizerDiscardEnable: vulkan.False,
		PolygonMode:             vulkan.PolygonModeFill,
		LineWidth:               1,
		CullMode:                vulkan.CullModeFlags(vulkan.CullModeNone),
		FrontFace:               vulkan.FrontFaceClockwise,
		DepthBiasEnable:         vulkan.False,
	}
	multisampling := vulkan.PipelineMultisampleStateCreateInfo{
		SType:                vulkan.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vulkan.SampleCount1Bit,
		MinSampleShading:     1,
	}
	blendAttachment := vulkan.PipelineColorBlendAttachmentState{
		ColorWriteMask: vulkan.ColorComponentFlags(
			vulkan.ColorComponentRBit |
				vulkan.ColorComponentGBit |
				vulkan.ColorComponentBBit |
				vulkan.ColorComponentABit,
		),
		BlendEnable: vulkan.False,
	}
	blending := vulkan.PipelineColorBlendStateCreateInfo{
		SType:           vulkan.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vulkan.False,
		LogicOp:         vulkan.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vulkan.PipelineColorBlendAttachmentState{blendAttachment},
	}
	dynamicStates := []vulkan.DynamicState{
		vulkan.DynamicStateViewport,
		vulkan.DynamicStateScissor,
	}
	dynamic := vulkan.PipelineDynamicStateCreateInfo{
		SType:             vulkan.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	info := vulkan.GraphicsPipelineCreateInfo{
		SType:               vulkan.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &blending,
		PDynamicState:       &dynamic,
		Layout:              d.layouts.get(uint64(desc.Layout)),
		RenderPass:          d.passes.get(uint64(desc.RenderPass)),
		Subpass:             0,
		BasePipelineIndex:   -1,
	}
	pipelines := make([]vulkan.Pipeline, 1)
	res := vulkan.CreateGraphicsPipelines(d.device, vulkan.PipelineCache(vulkan.NullHandle), 1, []vulkan.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if err := NewError(res); err != nil {
		return 0, err
	}
	return render.Pipeline(d.pipelines.put(pipelines[0])), nil
}

func (d *Device) DestroyPipeline(h render.Pipeline) {
	if p, ok := d.pipelines.take(uint64(h)); ok {
		vulkan.DestroyPipeline(d.device, p, nil)
	}
}

func (d *Device) CreateFramebuffer(rp render.RenderPass, view render.ImageView, extent render.Extent) (render.Framebuffer, error) {
	info := vulkan.FramebufferCreateInfo{
		SType:           vulkan.StructureTypeFramebufferCreateInfo,
		RenderPass:      d.passes.get(uint64(rp)),
		AttachmentCount: 1,
		PAttachments:    []vulkan.ImageView{d.views.get(uint64(view))},
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
	var fb vulkan.Framebuffer
	if err := NewError(vulkan.CreateFramebuffer(d.device, &info, nil, &fb)); err != nil {
		return 0, err
	}
	return render.Framebuffer(d.framebuffers.put(fb)), nil
}

func (d *Device) DestroyFramebuffer(h render.Framebuffer) {
	if fb, ok := d.framebuffers.take(uint64(h)); ok {
		vulkan.DestroyFramebuffer(d.device, fb, nil)
	}
}

// Destroy releases the logical device, the surface and the instance.
// Objects still registered are reported and not released.
func (d *Device) Destroy() {
	if n := d.live(); n > 0 {
		render.Logger().Warn("device destroyed with live objects", "count", n)
	}
	if d.device != nil {
		vulkan.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.surface != vulkan.NullSurface {
		vulkan.DestroySurface(d.instance, d.surface, nil)
		d.surface = vulkan.NullSurface
	}
	if d.debug != vulkan.NullDebugReportCallback {
		vulkan.DestroyDebugReportCallback(d.instance, d.debug, nil)
		d.debug = vulkan.NullDebugReportCallback
	}
	if d.instance != nil {
		vulkan.DestroyInstance(d.instance, nil)
		d.instance = nil
	}
}

func (d *Device) live() int {
	return d.swapchains.len() + d.views.len() + d.semaphores.len() + d.fences.len() +
		d.pools.len() + d.commands.len() + d.modules.len() + d.passes.len() +
		d.layouts.len() + d.pipelines.len() + d.framebuffers.len()
}

func colorRange() vulkan.ImageSubresourceRange {
	return vulkan.ImageSubresourceRange{
		AspectMask:     vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
		BaseMipLevel:   0,
		LevelCount:     1,
		BaseArrayLayer: 0,
		LayerCount:     1,
	}
}

func (d *Device) String() string {
	return fmt.Sprintf("vkdriver.Device(graphics=%d present=%d)", d.families.Graphics, d.families.Present)
}
