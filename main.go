/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/assets/loaders"
	"github.com/spaghettifunk/tessera/engine/audio/speaker"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/platform"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/headless"
	"github.com/spaghettifunk/tessera/engine/renderer/opengl"
	"github.com/spaghettifunk/tessera/testbed"
)

// openglPrograms compiles demo shaders on the OpenGL backend.
func openglPrograms(backend renderer.RendererBackend, src *loaders.ShaderSources, varyings []string) (testbed.Program, error) {
	gl, ok := backend.(*opengl.Backend)
	if !ok {
		return testbed.HeadlessPrograms(backend, src, varyings)
	}
	return gl.NewProgram(opengl.ProgramSource{
		Name:             src.Name,
		Vertex:           src.Vertex,
		Geometry:         src.Geometry,
		Fragment:         src.Fragment,
		FeedbackVaryings: varyings,
	})
}

func main() {
	configPath := flag.String("config", "tessera.toml", "path to the TOML configuration")
	frames := flag.Uint64("frames", 0, "stop after this many frames (0 runs until quit)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}
	core.SetLogLevel(cfg.Log.Level)

	var (
		backend renderer.RendererBackend
		window  engine.Window
		plat    *platform.Platform
	)
	switch cfg.Renderer.Backend {
	case config.BackendOpenGL:
		plat = platform.New()
		app := cfg.Application
		if err := plat.Startup(app.Name, app.StartX, app.StartY, app.Width, app.Height); err != nil {
			core.LogFatal("failed to open window: %s", err)
		}
		gl, err := opengl.New(cfg.Renderer.DebugChecks)
		if err != nil {
			core.LogFatal("failed to initialize OpenGL: %s", err)
		}
		if n := gl.MaxTextureUnits(); n < cfg.Renderer.MaxTextureUnits {
			cfg.Renderer.MaxTextureUnits = n
		}
		backend, window = gl, plat
	case config.BackendHeadless:
		backend = headless.New()
	}

	tb := testbed.NewTestGame(openglPrograms)
	e, err := engine.New(tb.Game, cfg, backend, window)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}
	sys := e.Systems()
	if plat != nil {
		plat.Attach(sys.Input, sys.Events)
		dev, err := speaker.Open(cfg.Audio.SampleRate, cfg.Audio.BufferMs, sys.Events)
		if err != nil {
			core.LogWarn("running without audio: %s", err)
		} else {
			sys.Output = dev
		}
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal("failed to initialize engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		e.Quit()
	}()

	runErr := e.RunFrames(*frames)
	if err := e.Shutdown(); err != nil {
		core.LogError("shutdown: %s", err)
	}
	if runErr != nil {
		core.LogFatal("engine stopped: %s", runErr)
	}
}
