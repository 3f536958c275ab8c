package render

import "fmt"

// SlotState is the position of a frame slot in the per-frame state machine.
type SlotState int

const (
	SlotIdle SlotState = iota
	SlotAcquiring
	SlotRecording
	SlotSubmitted
	SlotPresenting
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "IDLE"
	case SlotAcquiring:
		return "ACQUIRING"
	case SlotRecording:
		return "RECORDING"
	case SlotSubmitted:
		return "SUBMITTED"
	case SlotPresenting:
		return "PRESENTING"
	}
	return fmt.Sprintf("SlotState(%d)", int(s))
}

// FrameSlot is one in-flight frame context. Slots are created once and
// cycled round-robin; the fence guards reuse of everything else. The
// render-finished semaphore belongs to the acquired image, see
// ImageChain.RenderFinished.
type FrameSlot struct {
	Index          int
	ImageAvailable Semaphore
	FrameComplete  Fence
	Command        CommandBuffer
	State          SlotState
}

// createSlotSync creates n slots with their semaphore and fence.
// Fences start signaled so the first wait on each slot returns at once.
// Releases are pushed onto res.
func createSlotSync(dev SyncDevice, n int, res *releaser) ([]*FrameSlot, error) {
	slots := make([]*FrameSlot, n)
	for i := range slots {
		s := &FrameSlot{Index: i}
		var err error
		if s.ImageAvailable, err = dev.CreateSemaphore(); err != nil {
			return nil, fmt.Errorf("slot %d: create semaphore: %w", i, err)
		}
		res.push(func() { dev.DestroySemaphore(s.ImageAvailable) })
		if s.FrameComplete, err = dev.CreateFence(true); err != nil {
			return nil, fmt.Errorf("slot %d: create fence: %w", i, err)
		}
		res.push(func() { dev.DestroyFence(s.FrameComplete) })
		slots[i] = s
	}
	return slots, nil
}

// createSlotCommands creates a command pool on the graphics family and gives
// each slot a primary command buffer. Releases are pushed onto res.
func createSlotCommands(ctx *Context, slots []*FrameSlot, res *releaser) error {
	dev := ctx.Device()
	pool, err := dev.CreateCommandPool(ctx.Families().Graphics)
	if err != nil {
		return fmt.Errorf("create command pool: %w", err)
	}
	res.push(func() { dev.DestroyCommandPool(pool) })

	bufs, err := dev.AllocateCommandBuffers(pool, len(slots))
	if err != nil {
		return fmt.Errorf("allocate command buffers: %w", err)
	}
	res.push(func() { dev.FreeCommandBuffers(pool, bufs) })
	for i, s := range slots {
		s.Command = bufs[i]
	}
	return nil
}
