// Package config reads the framechain YAML settings file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"framechain/src/geometry"
	"framechain/src/render"
)

// Config is the settings file layout.
type Config struct {
	Window   Window   `yaml:"window"`
	Render   Render   `yaml:"render"`
	Shaders  Shaders  `yaml:"shaders"`
	Shape    string   `yaml:"shape"`
	LogLevel LogLevel `yaml:"log_level"`
	// Validation enables the Vulkan validation layer.
	Validation bool `yaml:"validation"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type Render struct {
	FramesInFlight int               `yaml:"frames_in_flight"`
	Format         string            `yaml:"format"`
	PresentMode    string            `yaml:"present_mode"`
	VSync          bool              `yaml:"vsync"`
	FenceTimeout   time.Duration     `yaml:"fence_timeout"`
	AcquireTimeout time.Duration     `yaml:"acquire_timeout"`
	ClearColor     render.ClearColor `yaml:"clear_color,flow"`
}

type Shaders struct {
	Dir      string `yaml:"dir"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// LogLevel is a slog level spelled as in slog ("debug", "info", ...).
type LogLevel struct {
	slog.Level
}

func (l *LogLevel) UnmarshalYAML(node *yaml.Node) error {
	return l.UnmarshalText([]byte(node.Value))
}

func (l LogLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// Default returns the settings used for anything the file leaves out.
func Default() Config {
	o := render.DefaultOptions()
	return Config{
		Window: Window{Width: 800, Height: 600, Title: "framechain"},
		Render: Render{
			FramesInFlight: o.FramesInFlight,
			Format:         o.Preferences.Format.Format.String(),
			PresentMode:    o.Preferences.PresentMode.String(),
			FenceTimeout:   o.FenceTimeout,
			AcquireTimeout: o.AcquireTimeout,
			ClearColor:     o.ClearColor,
		},
		Shaders: Shaders{
			Dir:      ".",
			Vertex:   o.VertexShader,
			Fragment: o.FragmentShader,
		},
		Shape:    "triangle",
		LogLevel: LogLevel{slog.LevelInfo},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", render.ErrIO, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", render.ErrConfig, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", render.ErrConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return bad("window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Render.FramesInFlight < 1:
		return bad("frames_in_flight %d", c.Render.FramesInFlight)
	case c.Render.FenceTimeout <= 0:
		return bad("fence_timeout %v", c.Render.FenceTimeout)
	case c.Render.AcquireTimeout <= 0:
		return bad("acquire_timeout %v", c.Render.AcquireTimeout)
	case c.Shaders.Vertex == "" || c.Shaders.Fragment == "":
		return bad("shader paths must be set")
	}
	if _, err := render.ParseFormat(c.Render.Format); err != nil {
		return bad("%v", err)
	}
	if _, err := render.ParsePresentMode(c.Render.PresentMode); err != nil {
		return bad("%v", err)
	}
	if _, err := geometry.Lookup(c.Shape); err != nil {
		return bad("%v", err)
	}
	// Only vertex counts reach the draw call, so the default vertex shader,
	// which hard-codes its three positions, can only draw the triangle.
	if c.Shape != "triangle" && c.Shaders.Vertex == render.DefaultVertexShader {
		return bad("shape %q needs a vertex shader other than %s", c.Shape, render.DefaultVertexShader)
	}
	return nil
}

// Options converts the render section. c must be valid.
func (c Config) Options() []render.Option {
	format, _ := render.ParseFormat(c.Render.Format)
	mode, _ := render.ParsePresentMode(c.Render.PresentMode)
	return []render.Option{
		render.WithFramesInFlight(c.Render.FramesInFlight),
		render.WithPreferredFormat(render.SurfaceFormat{Format: format, ColorSpace: render.ColorSpaceSrgbNonlinear}),
		render.WithPreferredPresentMode(mode),
		render.WithVSync(c.Render.VSync),
		render.WithFenceTimeout(c.Render.FenceTimeout),
		render.WithAcquireTimeout(c.Render.AcquireTimeout),
		render.WithClearColor(c.Render.ClearColor),
		render.WithShaders(c.Shaders.Vertex, c.Shaders.Fragment),
	}
}

// Mesh returns the configured shape, expanded. c must be valid.
func (c Config) Mesh() *geometry.Mesh {
	s, _ := geometry.Lookup(c.Shape)
	return geometry.NewMesh(s)
}
