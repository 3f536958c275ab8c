package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framechain/src/render"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "B8G8R8A8_SRGB", cfg.Render.Format)
	assert.Equal(t, "MAILBOX", cfg.Render.PresentMode)
	assert.Equal(t, render.DefaultFramesInFlight, cfg.Render.FramesInFlight)
	assert.Equal(t, uint32(3), cfg.Mesh().VertexCount())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "framechain.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framechain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  width: 1280
  height: 720
  title: demo
render:
  frames_in_flight: 3
  format: B8G8R8A8_UNORM
  present_mode: FIFO
  vsync: true
  fence_timeout: 250ms
  clear_color: [0.1, 0.2, 0.3, 1]
shaders:
  dir: assets
  vertex: tri.vert.spv
  fragment: tri.frag.spv
shape: cube
log_level: debug
validation: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Window{Width: 1280, Height: 720, Title: "demo"}, cfg.Window)
	assert.Equal(t, 3, cfg.Render.FramesInFlight)
	assert.Equal(t, 250*time.Millisecond, cfg.Render.FenceTimeout)
	assert.Equal(t, render.DefaultAcquireTimeout, cfg.Render.AcquireTimeout)
	assert.Equal(t, render.ClearColor{0.1, 0.2, 0.3, 1}, cfg.Render.ClearColor)
	assert.Equal(t, Shaders{Dir: "assets", Vertex: "tri.vert.spv", Fragment: "tri.frag.spv"}, cfg.Shaders)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel.Level)
	assert.True(t, cfg.Validation)
	assert.Equal(t, uint32(36), cfg.Mesh().VertexCount())

	o := render.DefaultOptions()
	for _, opt := range cfg.Options() {
		opt(&o)
	}
	assert.Equal(t, 3, o.FramesInFlight)
	assert.Equal(t, render.FormatB8G8R8A8Unorm, o.Preferences.Format.Format)
	assert.Equal(t, render.PresentModeFifo, o.Preferences.PresentMode)
	assert.True(t, o.Preferences.VSync)
	assert.Equal(t, 250*time.Millisecond, o.FenceTimeout)
	assert.Equal(t, "tri.vert.spv", o.VertexShader)
	assert.Equal(t, "tri.frag.spv", o.FragmentShader)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseInvalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":   "colour: red",
		"bad yaml":      "window: [",
		"zero width":    "window: {width: 0}",
		"zero frames":   "render: {frames_in_flight: 0}",
		"bad format":    "render: {format: RGB565}",
		"bad mode":      "render: {present_mode: TEARING}",
		"bad timeout":   "render: {fence_timeout: -1s}",
		"bad duration":  "render: {acquire_timeout: soon}",
		"no shader":     "shaders: {vertex: ''}",
		"bad shape":     "shape: torus",
		"cube shader":   "shape: cube",
		"bad log level": "log_level: loud",
	} {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, render.ErrConfig, name)
	}
}
