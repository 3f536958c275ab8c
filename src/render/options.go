package render

import "time"

// Default settings.
const (
	DefaultFramesInFlight = 2
	DefaultFenceTimeout   = 5 * time.Second
	DefaultAcquireTimeout = 5 * time.Second
	DefaultVertexShader   = "shaders/vert.spv"
	DefaultFragmentShader = "shaders/frag.spv"
)

// Options configures a Renderer.
type Options struct {
	FramesInFlight int
	Preferences    Preferences
	FenceTimeout   time.Duration
	AcquireTimeout time.Duration
	ClearColor     ClearColor
	VertexShader   string
	FragmentShader string
}

// Option is a functional option for NewRenderer.
type Option func(*Options)

// DefaultOptions returns the settings used when no option is given.
func DefaultOptions() Options {
	return Options{
		FramesInFlight: DefaultFramesInFlight,
		Preferences:    DefaultPreferences(),
		FenceTimeout:   DefaultFenceTimeout,
		AcquireTimeout: DefaultAcquireTimeout,
		ClearColor:     ClearColor{0, 0, 0, 1},
		VertexShader:   DefaultVertexShader,
		FragmentShader: DefaultFragmentShader,
	}
}

func applyOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.FramesInFlight < 1 {
		o.FramesInFlight = 1
	}
	return o
}

// WithFramesInFlight sets the number of frame slots.
// Values below 1 are raised to 1.
func WithFramesInFlight(n int) Option {
	return func(o *Options) {
		o.FramesInFlight = n
	}
}

// WithPreferredFormat sets the surface format negotiation looks for first.
func WithPreferredFormat(f SurfaceFormat) Option {
	return func(o *Options) {
		o.Preferences.Format = f
	}
}

// WithPreferredPresentMode sets the present mode negotiation looks for first.
func WithPreferredPresentMode(m PresentMode) Option {
	return func(o *Options) {
		o.Preferences.PresentMode = m
	}
}

// WithVSync forces FIFO presentation.
func WithVSync(enabled bool) Option {
	return func(o *Options) {
		o.Preferences.VSync = enabled
	}
}

// WithFenceTimeout bounds the per-frame fence wait.
func WithFenceTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.FenceTimeout = d
	}
}

// WithAcquireTimeout bounds the wait for the next presentable image.
func WithAcquireTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.AcquireTimeout = d
	}
}

// WithClearColor sets the color each frame is cleared to.
func WithClearColor(c ClearColor) Option {
	return func(o *Options) {
		o.ClearColor = c
	}
}

// WithShaders sets the byte code paths handed to the shader source.
func WithShaders(vertex, fragment string) Option {
	return func(o *Options) {
		o.VertexShader = vertex
		o.FragmentShader = fragment
	}
}
