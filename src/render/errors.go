package render

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig means that the surface offers nothing the chain can be
	// built from. It is surfaced before any frame is produced.
	ErrConfig = errors.New("render: no usable surface configuration")

	// ErrChainStale means that the image chain no longer matches the
	// surface and must be rebuilt before it can be used again.
	ErrChainStale = errors.New("render: image chain out of date")

	// ErrChainSuboptimal means that the image chain can still be used
	// but no longer matches the surface exactly.
	ErrChainSuboptimal = errors.New("render: image chain suboptimal")

	// ErrIO means that shader byte code could not be loaded.
	ErrIO = errors.New("render: i/o error")

	// ErrDeviceLost means that the platform reported the device as lost.
	ErrDeviceLost = errors.New("render: device lost")

	// ErrSyncTimeout means that a bounded fence or image wait expired.
	ErrSyncTimeout = errors.New("render: synchronization timeout")
)

// OrPanic runs the finalizers and panics if err is not nil.
func OrPanic(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	panic(err)
}

// CheckError recovers a panic into *err. It must be deferred.
func CheckError(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = fmt.Errorf("render: recovered: %w", e)
			return
		}
		*err = fmt.Errorf("render: recovered: %+v", v)
	}
}
