package vkdriver

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/vulkan-go/vulkan"

	"framechain/src/render"
)

// NewError converts a result code into an error carrying the calling frame.
// Results the frame pipeline reacts to wrap the matching render sentinel.
// It returns nil for results that are not failures.
func NewError(res vulkan.Result) error {
	var kind error
	switch res {
	case vulkan.Success, vulkan.Incomplete:
		return nil
	case vulkan.ErrorOutOfDate:
		kind = render.ErrChainStale
	case vulkan.Suboptimal:
		kind = render.ErrChainSuboptimal
	case vulkan.ErrorDeviceLost:
		kind = render.ErrDeviceLost
	case vulkan.Timeout, vulkan.NotReady:
		kind = render.ErrSyncTimeout
	default:
		if kind = vulkan.Error(res); kind == nil {
			return nil
		}
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("vulkan error: %w (%d)", kind, res)
	}
	return fmt.Errorf("vulkan error: %w (%d) on %s", kind, res, newStackFrame(pc))
}

// IsError reports whether res is anything but success.
func IsError(res vulkan.Result) bool {
	return res != vulkan.Success
}

type stackFrame struct {
	name string
	file string
	line int
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{name: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{name: fn.Name(), file: file, line: line}
}

func (f stackFrame) String() string {
	if f.file == "" {
		return f.name
	}
	return fmt.Sprintf("%s (%s:%d)", f.name, filepath.Base(f.file), f.line)
}
