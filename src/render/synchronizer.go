package render

import (
	"errors"
	"fmt"
)

// Stats counts synchronizer events.
type Stats struct {
	Frames        uint64
	Rebuilds      uint64
	StaleAcquires uint64
	// Suboptimal counts frames that saw a suboptimal result at acquire,
	// present or both.
	Suboptimal uint64
}

// Synchronizer drives frames through their slots and owns the image chain.
// It is not safe for concurrent use; one host thread calls DrawFrame.
type Synchronizer struct {
	ctx      *Context
	shaders  ShaderSource
	opts     Options
	hint     func() Extent
	pipeline *DrawPipeline
	recorder *Recorder
	chain    *ImageChain
	att      *Attachments
	config   SurfaceConfig
	slots    []*FrameSlot
	current  int
	pending  bool
	stats    Stats
}

func (s *Synchronizer) Slots() []*FrameSlot   { return s.slots }
func (s *Synchronizer) Current() int          { return s.current }
func (s *Synchronizer) Chain() *ImageChain    { return s.chain }
func (s *Synchronizer) Config() SurfaceConfig { return s.config }
func (s *Synchronizer) Stats() Stats          { return s.stats }

// DrawFrame runs one frame through the current slot: wait for the slot,
// acquire an image, record, submit and present, then move to the next slot.
// resized reports a window size change observed since the last frame.
//
// A stale chain at acquire abandons the frame before anything is submitted
// and rebuilds the chain. A stale or suboptimal present, a suboptimal
// acquire or resized schedule a rebuild once the frame is presented.
func (s *Synchronizer) DrawFrame(resized bool) error {
	if s.chain == nil {
		if err := s.Rebuild(); err != nil {
			return err
		}
		if s.chain == nil {
			return nil
		}
	}
	dev := s.ctx.Device()
	slot := s.slots[s.current]
	log := Logger().With("slot", slot.Index)

	if err := dev.WaitForFence(slot.FrameComplete, s.opts.FenceTimeout); err != nil {
		return fmt.Errorf("wait for slot %d: %w", slot.Index, err)
	}

	slot.State = SlotAcquiring
	suboptimal := false
	index, err := dev.AcquireNextImage(s.chain.Swapchain(), s.opts.AcquireTimeout, slot.ImageAvailable)
	switch {
	case errors.Is(err, ErrChainStale):
		slot.State = SlotIdle
		s.stats.StaleAcquires++
		log.Debug("stale chain at acquire, frame abandoned")
		return s.Rebuild()
	case errors.Is(err, ErrChainSuboptimal):
		suboptimal = true
	case err != nil:
		slot.State = SlotIdle
		return fmt.Errorf("acquire image: %w", err)
	}

	if err := dev.ResetFence(slot.FrameComplete); err != nil {
		return fmt.Errorf("reset fence of slot %d: %w", slot.Index, err)
	}
	if err := dev.ResetCommandBuffer(slot.Command); err != nil {
		return fmt.Errorf("reset command buffer of slot %d: %w", slot.Index, err)
	}

	slot.State = SlotRecording
	seq := s.recorder.Sequence(s.chain, s.att, index)
	if err := s.recorder.Record(slot.Command, seq); err != nil {
		return fmt.Errorf("record slot %d: %w", slot.Index, err)
	}

	finished := s.chain.RenderFinished(index)
	err = dev.QueueSubmit(s.ctx.GraphicsQueue(), Submission{
		Command:   slot.Command,
		Wait:      slot.ImageAvailable,
		WaitStage: StageColorAttachmentOutput,
		Signal:    finished,
		Fence:     slot.FrameComplete,
	})
	if err != nil {
		return fmt.Errorf("submit slot %d: %w", slot.Index, err)
	}
	slot.State = SlotSubmitted
	log.Debug("frame submitted", "image", index)

	slot.State = SlotPresenting
	err = dev.QueuePresent(s.ctx.PresentQueue(), s.chain.Swapchain(), index, finished)
	switch {
	case errors.Is(err, ErrChainStale):
		s.pending = true
	case errors.Is(err, ErrChainSuboptimal):
		suboptimal = true
		s.stats.Frames++
	case err != nil:
		return fmt.Errorf("present image %d: %w", index, err)
	default:
		s.stats.Frames++
	}
	if suboptimal {
		s.stats.Suboptimal++
	}
	if resized || suboptimal {
		s.pending = true
	}
	slot.State = SlotIdle

	s.current = (s.current + 1) % len(s.slots)
	if s.pending {
		return s.Rebuild()
	}
	return nil
}

// Rebuild waits for the device to go idle, replaces the image chain and its
// attachments with ones negotiated against the live surface, and clears any
// pending rebuild. Frame slots are kept. If the surface currently has no
// area the chain is left empty and DrawFrame retries.
func (s *Synchronizer) Rebuild() error {
	dev := s.ctx.Device()
	if err := dev.WaitIdle(); err != nil {
		return fmt.Errorf("rebuild: wait idle: %w", err)
	}
	s.att.Release()
	s.att = nil
	s.chain.Teardown()
	s.chain = nil

	caps, err := dev.SurfaceCapabilities()
	if err != nil {
		return fmt.Errorf("rebuild: query surface: %w", err)
	}
	cfg, err := Negotiate(caps, s.hint(), s.opts.Preferences)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	if cfg.Extent.Empty() {
		s.pending = true
		Logger().Debug("surface has no area, chain rebuild deferred")
		return nil
	}

	if cfg.Format.Format != s.pipeline.Format() {
		desc := s.pipeline.Desc()
		desc.Format = cfg.Format.Format
		p, err := BuildPipeline(s.ctx, s.shaders, desc)
		if err != nil {
			return fmt.Errorf("rebuild: %w", err)
		}
		s.pipeline.Destroy()
		s.pipeline = p
		s.recorder.setPipeline(p)
	}

	chain, err := BuildChain(s.ctx, cfg)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	att, err := s.pipeline.Attach(chain)
	if err != nil {
		chain.Teardown()
		return fmt.Errorf("rebuild: %w", err)
	}
	s.chain, s.att, s.config = chain, att, cfg
	s.pending = false
	s.stats.Rebuilds++
	Logger().Info("image chain rebuilt", "config", cfg.String())
	return nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (s *Synchronizer) WaitIdle() error {
	return s.ctx.Device().WaitIdle()
}

// release tears down the image chain and its attachments.
func (s *Synchronizer) release() {
	s.att.Release()
	s.att = nil
	s.chain.Teardown()
	s.chain = nil
}
