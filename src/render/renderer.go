package render

import (
	"context"
	"fmt"
)

// Renderer owns every device resource of the presentation pipeline.
type Renderer struct {
	ctx    *Context
	sync   *Synchronizer
	loop   *Loop
	res    releaser
	closed bool
}

// NewRenderer builds the pipeline for win and takes ownership of ctx.
//
// Resources are acquired in the order frame slot sync objects, command
// pool and buffers, draw pipeline, image chain. If any step fails, what was
// acquired so far is released, ctx included, and no frame is ever drawn.
func NewRenderer(ctx *Context, win Window, shaders ShaderSource, geom Geometry, opts ...Option) (_ *Renderer, err error) {
	o := applyOptions(opts)
	r := &Renderer{ctx: ctx}
	r.res.push(ctx.Destroy)
	defer func() {
		if err != nil {
			r.res.release()
		}
	}()
	dev := ctx.Device()

	caps, err := dev.SurfaceCapabilities()
	if err != nil {
		return nil, fmt.Errorf("query surface: %w", err)
	}
	cfg, err := Negotiate(caps, win.FramebufferSize(), o.Preferences)
	if err != nil {
		return nil, err
	}
	Logger().Info("surface negotiated", "config", cfg.String())

	slots, err := createSlotSync(dev, o.FramesInFlight, &r.res)
	if err != nil {
		return nil, err
	}
	if err := createSlotCommands(ctx, slots, &r.res); err != nil {
		return nil, err
	}

	pipeline, err := BuildPipeline(ctx, shaders, PipelineDesc{
		VertexShader:   o.VertexShader,
		FragmentShader: o.FragmentShader,
		Format:         cfg.Format.Format,
		Topology:       geom.Topology(),
	})
	if err != nil {
		return nil, err
	}
	s := &Synchronizer{
		ctx:      ctx,
		shaders:  shaders,
		opts:     o,
		hint:     win.FramebufferSize,
		pipeline: pipeline,
		recorder: NewRecorder(dev, pipeline, geom, o.ClearColor),
		config:   cfg,
		slots:    slots,
	}
	r.res.push(func() { s.pipeline.Destroy() })
	r.res.push(s.release)

	if cfg.Extent.Empty() {
		// DrawFrame builds the chain once the window has an area.
		s.pending = true
	} else {
		if s.chain, err = BuildChain(ctx, cfg); err != nil {
			return nil, err
		}
		if s.att, err = pipeline.Attach(s.chain); err != nil {
			return nil, err
		}
	}

	r.sync = s
	r.loop = NewLoop(win, s)
	return r, nil
}

// Synchronizer returns the frame synchronizer.
func (r *Renderer) Synchronizer() *Synchronizer {
	return r.sync
}

// Run runs the presentation loop. See Loop.Run.
func (r *Renderer) Run(ctx context.Context) error {
	return r.loop.Run(ctx)
}

// Shutdown waits for the device to go idle and releases every resource in
// reverse acquisition order: image chain, pipeline, command pool and
// buffers, sync objects, device context. Calls after the first do nothing.
func (r *Renderer) Shutdown() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.ctx.Device().WaitIdle()
	r.res.release()
	if err != nil {
		return fmt.Errorf("shutdown: wait idle: %w", err)
	}
	return nil
}
