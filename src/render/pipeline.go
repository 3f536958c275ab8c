package render

import "fmt"

// ShaderSource is the shader byte code collaborator.
type ShaderSource interface {
	Load(path string) ([]byte, error)
}

// Geometry is the geometry collaborator. Only counts reach the draw call.
type Geometry interface {
	VertexCount() uint32
	Topology() Topology
}

// PipelineDesc describes the draw pipeline.
type PipelineDesc struct {
	VertexShader   string
	FragmentShader string
	Format         Format
	Topology       Topology
}

// DrawPipeline is the fixed-function draw pipeline and its render pass.
type DrawPipeline struct {
	ctx        *Context
	desc       PipelineDesc
	renderPass RenderPass
	layout     PipelineLayout
	pipeline   Pipeline
	res        releaser
}

// BuildPipeline loads the shaders named by desc and builds the pipeline.
// A shader that cannot be loaded yields an error wrapping ErrIO.
func BuildPipeline(ctx *Context, shaders ShaderSource, desc PipelineDesc) (_ *DrawPipeline, err error) {
	dev := ctx.Device()
	p := &DrawPipeline{ctx: ctx, desc: desc}
	defer func() {
		if err != nil {
			p.res.release()
		}
	}()

	// Modules are only needed until the pipeline exists.
	var modules releaser
	defer modules.release()
	load := func(path string) (ShaderModule, error) {
		code, err := shaders.Load(path)
		if err != nil {
			return 0, fmt.Errorf("load shader %q: %w: %w", path, ErrIO, err)
		}
		m, err := dev.CreateShaderModule(code)
		if err != nil {
			return 0, fmt.Errorf("create shader module %q: %w", path, err)
		}
		modules.push(func() { dev.DestroyShaderModule(m) })
		return m, nil
	}
	vert, err := load(desc.VertexShader)
	if err != nil {
		return nil, err
	}
	frag, err := load(desc.FragmentShader)
	if err != nil {
		return nil, err
	}

	p.renderPass, err = dev.CreateRenderPass(desc.Format)
	if err != nil {
		return nil, fmt.Errorf("create render pass: %w", err)
	}
	p.res.push(func() { dev.DestroyRenderPass(p.renderPass) })

	p.layout, err = dev.CreatePipelineLayout()
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	p.res.push(func() { dev.DestroyPipelineLayout(p.layout) })

	p.pipeline, err = dev.CreateGraphicsPipeline(GraphicsPipelineDesc{
		Vertex:     vert,
		Fragment:   frag,
		Layout:     p.layout,
		RenderPass: p.renderPass,
		Topology:   desc.Topology,
	})
	if err != nil {
		return nil, fmt.Errorf("create graphics pipeline: %w", err)
	}
	p.res.push(func() { dev.DestroyPipeline(p.pipeline) })

	Logger().Info("pipeline built", "format", desc.Format, "topology", desc.Topology)
	return p, nil
}

func (p *DrawPipeline) Handle() Pipeline       { return p.pipeline }
func (p *DrawPipeline) RenderPass() RenderPass { return p.renderPass }
func (p *DrawPipeline) Format() Format         { return p.desc.Format }
func (p *DrawPipeline) Desc() PipelineDesc     { return p.desc }

// Destroy releases the pipeline, its layout and its render pass.
func (p *DrawPipeline) Destroy() {
	if p == nil {
		return
	}
	p.res.release()
}

// Attachments are the framebuffers binding a chain's views to a pipeline's
// render pass. They share the chain's lifetime.
type Attachments struct {
	ctx          *Context
	framebuffers []Framebuffer
}

// Attach creates one framebuffer per view of chain.
func (p *DrawPipeline) Attach(chain *ImageChain) (*Attachments, error) {
	dev := p.ctx.Device()
	a := &Attachments{ctx: p.ctx, framebuffers: make([]Framebuffer, 0, chain.Len())}
	for i, view := range chain.Views() {
		fb, err := dev.CreateFramebuffer(p.renderPass, view, chain.Extent())
		if err != nil {
			a.Release()
			return nil, fmt.Errorf("create framebuffer %d: %w", i, err)
		}
		a.framebuffers = append(a.framebuffers, fb)
	}
	return a, nil
}

// Framebuffer returns the framebuffer of image i.
func (a *Attachments) Framebuffer(i uint32) Framebuffer {
	return a.framebuffers[i]
}

// Release destroys the framebuffers. Further calls have no effect.
func (a *Attachments) Release() {
	if a == nil {
		return
	}
	dev := a.ctx.Device()
	for _, fb := range a.framebuffers {
		dev.DestroyFramebuffer(fb)
	}
	a.framebuffers = nil
}
