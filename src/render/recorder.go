package render

import "fmt"

// DrawCommandSequence is the GPU work of one frame against one image.
type DrawCommandSequence struct {
	ImageIndex  uint32
	Image       Image
	Framebuffer Framebuffer
	Extent      Extent
	// Before moves the image into a renderable layout, After hands it
	// to presentation.
	Before ImageBarrier
	After  ImageBarrier
	Clear  ClearColor
	Draw   DrawParams
}

// Recorder records draw command sequences for one pipeline.
type Recorder struct {
	dev      CommandDevice
	pipeline *DrawPipeline
	clear    ClearColor
	draw     DrawParams
}

// NewRecorder returns a Recorder drawing geom with p, clearing to clear.
func NewRecorder(dev CommandDevice, p *DrawPipeline, geom Geometry, clear ClearColor) *Recorder {
	return &Recorder{
		dev:      dev,
		pipeline: p,
		clear:    clear,
		draw: DrawParams{
			VertexCount:   geom.VertexCount(),
			InstanceCount: 1,
		},
	}
}

// Sequence builds the command sequence for image index of chain.
func (r *Recorder) Sequence(chain *ImageChain, att *Attachments, index uint32) DrawCommandSequence {
	img := chain.Image(index)
	return DrawCommandSequence{
		ImageIndex:  index,
		Image:       img,
		Framebuffer: att.Framebuffer(index),
		Extent:      chain.Extent(),
		Before: ImageBarrier{
			Image:     img,
			OldLayout: LayoutUndefined,
			NewLayout: LayoutColorAttachment,
			SrcStage:  StageColorAttachmentOutput,
			DstStage:  StageColorAttachmentOutput,
			SrcAccess: AccessNone,
			DstAccess: AccessColorAttachmentWrite,
		},
		After: ImageBarrier{
			Image:     img,
			OldLayout: LayoutColorAttachment,
			NewLayout: LayoutPresentSrc,
			SrcStage:  StageColorAttachmentOutput,
			DstStage:  StageBottomOfPipe,
			SrcAccess: AccessColorAttachmentWrite,
			DstAccess: AccessNone,
		},
		Clear: r.clear,
		Draw:  r.draw,
	}
}

// Record records seq into cb. The buffer must have been reset.
func (r *Recorder) Record(cb CommandBuffer, seq DrawCommandSequence) error {
	if err := r.dev.BeginCommandBuffer(cb); err != nil {
		return fmt.Errorf("begin command buffer: %w", err)
	}
	r.dev.CmdImageBarrier(cb, seq.Before)
	r.dev.CmdBeginRenderPass(cb, r.pipeline.RenderPass(), seq.Framebuffer, seq.Extent, seq.Clear)
	r.dev.CmdBindPipeline(cb, r.pipeline.Handle())
	r.dev.CmdSetViewport(cb, seq.Extent)
	r.dev.CmdDraw(cb, seq.Draw)
	r.dev.CmdEndRenderPass(cb)
	r.dev.CmdImageBarrier(cb, seq.After)
	if err := r.dev.EndCommandBuffer(cb); err != nil {
		return fmt.Errorf("end command buffer: %w", err)
	}
	return nil
}

// setPipeline switches the recorder to a rebuilt pipeline.
func (r *Recorder) setPipeline(p *DrawPipeline) {
	r.pipeline = p
}
