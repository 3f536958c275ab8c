// Command framechain opens a window and draws the configured shape until
// the window is closed or the process is interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/vulkan-go/vulkan"

	"framechain/src/config"
	"framechain/src/render"
	"framechain/src/render/vkdriver"
	"framechain/src/shader"
	"framechain/src/window"
)

func init() {
	// GLFW event handling must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "framechain.yaml", "settings file")
	debug := flag.Bool("debug", false, "log at debug level and enable validation")
	flag.Parse()

	if err := run(*configPath, *debug); err != nil {
		fmt.Fprintln(os.Stderr, "framechain:", err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool) (err error) {
	defer render.CheckError(&err)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.LogLevel.Level = slog.LevelDebug
		cfg.Validation = true
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel.Level})))

	win, err := window.Open(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	dev, err := vkdriver.Open(vkdriver.Bootstrap{
		AppName:    cfg.Window.Title,
		ProcAddr:   win.ProcAddr(),
		Extensions: win.RequiredExtensions(),
		Validation: cfg.Validation,
		Surface: func(instance vulkan.Instance) (vulkan.Surface, error) {
			return win.CreateSurface(instance)
		},
	})
	if err != nil {
		return err
	}

	shaders := shader.NewSource(os.DirFS(filepath.Clean(cfg.Shaders.Dir)))
	mesh := cfg.Mesh()
	lo, hi := mesh.Bounds()
	render.Logger().Debug("mesh", "shape", mesh.Name(), "vertices", mesh.VertexCount(), "min", lo, "max", hi)
	r, err := render.NewRenderer(render.NewContext(dev, dev.Families()), win, shaders, mesh, cfg.Options()...)
	if err != nil {
		return err
	}
	defer func() {
		render.OrPanic(r.Shutdown())
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done, exited := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			win.Close()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		<-exited
	}()

	render.Logger().Info("running", "device", dev.String(), "shape", cfg.Shape)
	return r.Run(ctx)
}
