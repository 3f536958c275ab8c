package render

import (
	"context"
	"fmt"
)

// Window is the window and event collaborator.
type Window interface {
	// PollEvents processes pending events without blocking.
	PollEvents()
	// WaitEvents blocks until at least one event arrives.
	WaitEvents()
	// ShouldClose reports whether the loop must stop.
	ShouldClose() bool
	// Resized reports whether the surface size changed since the last
	// call, and clears the flag.
	Resized() bool
	// FramebufferSize returns the current drawable size in pixels.
	FramebufferSize() Extent
}

// Loop is the presentation loop.
type Loop struct {
	win  Window
	sync *Synchronizer
}

func NewLoop(win Window, sync *Synchronizer) *Loop {
	return &Loop{win: win, sync: sync}
}

// Run draws one frame per iteration until the window asks to close or ctx
// is done, then waits for the device to finish all submitted work.
// Both stop signals are observed once per iteration, before any frame work.
// While the window has no drawable area Run waits for events instead of
// drawing. Any error from a frame ends the loop and is returned.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer CheckError(&err)
	for ctx.Err() == nil {
		l.win.PollEvents()
		if l.win.ShouldClose() {
			break
		}
		if l.win.FramebufferSize().Empty() {
			l.win.WaitEvents()
			continue
		}
		if err := l.sync.DrawFrame(l.win.Resized()); err != nil {
			return err
		}
	}
	if err := l.sync.WaitIdle(); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}
