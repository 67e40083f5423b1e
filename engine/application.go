package engine

import (
	"path/filepath"

	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/audio"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/surface"
)

// Window is the platform window owning the graphics context. A nil Window runs the engine
// without presentation, for the headless backend.
type Window interface {
	// PumpMessages processes window events and returns false once the window should close.
	PumpMessages() bool
	SwapBuffers()
	FramebufferSize() (int32, int32)
	Shutdown() error
}

// AudioOutput is an opened audio device.
type AudioOutput interface {
	Context() audio.PlaybackContext
	Close()
}

// Systems are the engine services handed to the game. Only the render thread, the one
// running the game callbacks, may touch Backend and Surface directly; other goroutines go
// through Queue.
type Systems struct {
	Config  *config.Config
	Backend renderer.RendererBackend
	Queue   *renderer.CommandQueue
	Surface *surface.Surface
	Input   *core.Input
	Events  *core.Subject[core.Event]
	Metrics *core.Metrics
	// Assets is nil when the assets directory does not exist.
	Assets *assets.AssetManager
	Player *audio.ImmediatePlayer
	// Output is nil when no audio device is open.
	Output AudioOutput
}

// PlaySound plays the clip at path, relative to the assets directory, on the next voice.
func (s *Systems) PlaySound(path string, pitch, gain float64, loop bool) error {
	if s.Output == nil {
		core.LogDebug("no audio output, skipping %s", path)
		return nil
	}
	if s.Assets != nil {
		path = filepath.Join(s.Assets.Dir(), path)
	}
	return s.Player.Play(s.Output.Context(), path, pitch, gain, loop)
}
