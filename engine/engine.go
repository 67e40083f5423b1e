package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/audio"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/surface"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released every system
	EngineStageShutdown
)

const (
	// assetPollInterval is how often the watcher goroutine checks for asset events.
	assetPollInterval = 50 * time.Millisecond
	suspendedSleep    = 10 * time.Millisecond
)

type Engine struct {
	currentStage Stage
	gameInstance *Game
	systems      *Systems
	window       Window

	isRunning   bool
	isSuspended bool
	width       int32
	height      int32
	clock       *core.Clock
	lastTime    float64
	frameCount  uint64

	events      *core.Observer[core.Event]
	assetEvents *core.Observer[assets.AssetEvent]
	stopAssets  chan struct{}
	assetsDone  sync.WaitGroup
}

// New wires the engine systems around an already created backend. window may be nil.
// An audio output can be set on Systems before Initialize.
func New(g *Game, cfg *config.Config, backend renderer.RendererBackend, window Window) (*Engine, error) {
	if g == nil || cfg == nil || backend == nil {
		return nil, fmt.Errorf("func New: game, config and backend are required: %w", core.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(cfg.Log.Level)
	core.SetGenLogging(cfg.Log.GenObjects)

	queue, err := renderer.NewCommandQueue(backend, cfg.Renderer.QueueSize)
	if err != nil {
		return nil, err
	}

	subject := core.NewSubject[core.Event]()
	sys := &Systems{
		Config:  cfg,
		Backend: backend,
		Queue:   queue,
		Surface: surface.New(backend, 0),
		Input:   core.NewInput(subject),
		Events:  subject,
		Metrics: core.NewMetrics(),
		Player:  audio.NewImmediatePlayer(cfg.Audio.Voices),
	}
	sys.Surface.SetMaxTextureUnits(cfg.Renderer.MaxTextureUnits)

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		systems:      sys,
		window:       window,
		width:        cfg.Application.Width,
		height:       cfg.Application.Height,
		clock:        core.NewClock(),
		events:       core.NewObserver(subject, 0),
		stopAssets:   make(chan struct{}),
	}
	if window != nil {
		e.width, e.height = window.FramebufferSize()
	}
	return e, nil
}

func (e *Engine) Systems() *Systems {
	return e.systems
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Frames() uint64 {
	return e.frameCount
}

func (e *Engine) Initialize() error {
	cfg := e.systems.Config

	if _, err := os.Stat(cfg.Assets.Dir); errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("assets directory %s not found, running without assets", cfg.Assets.Dir)
	} else {
		am, err := assets.NewAssetManager(cfg.Assets.Dir, nil)
		if err != nil {
			return err
		}
		e.systems.Assets = am
		e.assetEvents = core.NewObserver(am.Subject(), 0)
		if cfg.Assets.Watch {
			if err := am.Watch(); err != nil {
				core.LogWarn("asset hot reload disabled: %s", err)
			}
		}
		e.assetsDone.Add(1)
		go e.forwardAssets()
	}

	e.systems.Surface.SetViewport(0, 0, e.width, e.height)

	e.gameInstance.Systems = e.systems
	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized with the %s backend", e.systems.Backend.Name())
	return nil
}

// forwardAssets hands asset events to the game off the render thread.
func (e *Engine) forwardAssets() {
	defer e.assetsDone.Done()
	ticker := time.NewTicker(assetPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stopAssets:
			return
		case <-ticker.C:
			for {
				ev, ok := e.assetEvents.Observe()
				if !ok {
					break
				}
				core.LogDebug("asset %s %s", ev.Asset.Path, ev.Op)
				if e.gameInstance.FnOnAsset != nil {
					e.gameInstance.FnOnAsset(ev)
				}
			}
		}
	}
}

// Quit stops the frame loop at the end of the current frame. Safe from any goroutine.
func (e *Engine) Quit() {
	e.systems.Events.NotifyAll(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT, Sender: e})
}

func (e *Engine) Run() error {
	return e.run(0)
}

// RunFrames runs at most n frames, or until quit.
func (e *Engine) RunFrames(n uint64) error {
	return e.run(n)
}

func (e *Engine) run(limit uint64) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("func Run - engine is not initialized: %w", core.ErrInvalidArgument)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var ran uint64
	for e.isRunning && (limit == 0 || ran < limit) {
		if e.window != nil && !e.window.PumpMessages() {
			e.isRunning = false
		}
		if err := e.processEvents(); err != nil {
			return err
		}
		if !e.isRunning {
			break
		}
		if e.isSuspended {
			time.Sleep(suspendedSleep)
			continue
		}
		if err := e.frame(); err != nil {
			e.isRunning = false
			return err
		}
		ran++
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) frame() error {
	// Update clock and get delta time.
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	frameStart := time.Now()

	// Work submitted by other goroutines runs before the game touches the context.
	e.systems.Queue.Drain()

	if err := e.gameInstance.FnUpdate(delta); err != nil {
		core.LogError("game update failed, shutting down: %s", err)
		return err
	}

	s := e.systems.Surface
	s.Bind()
	s.UseViewport()
	s.Clear()
	if err := e.gameInstance.FnRender(delta); err != nil {
		core.LogError("game render failed, shutting down: %s", err)
		return err
	}
	if e.window != nil {
		e.window.SwapBuffers()
	}

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded; I.E. before this line.
	e.systems.Input.Update()

	e.systems.Metrics.Update(time.Since(frameStart).Seconds())
	e.frameCount++
	if e.frameCount%600 == 0 {
		fps, ms := e.systems.Metrics.Frame()
		core.LogDebug("%.0f fps, %.3f ms/frame", fps, ms)
	}
	e.lastTime = currentTime
	return nil
}

func (e *Engine) processEvents() error {
	for {
		ev, ok := e.events.Observe()
		if !ok {
			return nil
		}
		switch ev.Code {
		case core.EVENT_CODE_APPLICATION_QUIT:
			core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
			e.isRunning = false
		case core.EVENT_CODE_KEY_PRESSED:
			if core.KeyCode(ev.Data.Data.U16[0]) == core.KEY_ESCAPE {
				e.isRunning = false
			}
		case core.EVENT_CODE_RESIZED:
			if err := e.onResized(int32(ev.Data.Data.U16[0]), int32(ev.Data.Data.U16[1])); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) onResized(width, height int32) error {
	if width == e.width && height == e.height {
		return nil
	}
	// Minimised windows report a zero size.
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application.")
		e.isSuspended = true
		return nil
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application.")
		e.isSuspended = false
	}
	e.width, e.height = width, height
	e.systems.Surface.SetViewport(0, 0, width, height)
	return e.gameInstance.FnOnResize(width, height)
}

// GetFramebufferSize returns the width and height (in this order) of the framebuffer.
func (e *Engine) GetFramebufferSize() (int32, int32) {
	return e.width, e.height
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}

	close(e.stopAssets)
	e.assetsDone.Wait()
	if e.systems.Assets != nil {
		errs = append(errs, e.systems.Assets.Close())
	}

	// run whatever was submitted before the queue closed
	e.systems.Queue.Close()
	e.systems.Queue.Drain()

	errs = append(errs, e.systems.Player.Close())
	if e.systems.Output != nil {
		e.systems.Output.Close()
	}
	if e.window != nil {
		errs = append(errs, e.window.Shutdown())
	}
	e.currentStage = EngineStageShutdown
	return errors.Join(errs...)
}
