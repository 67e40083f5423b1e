package engine

import "github.com/spaghettifunk/tessera/engine/assets"

type Game struct {
	// Systems is set by the engine before FnInitialize runs.
	Systems *Systems
	State   interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
	// FnOnAsset is optional. It runs on the asset watcher goroutine, never on the render
	// thread; graphics work must be submitted to Systems.Queue.
	FnOnAsset OnAsset
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width int32, height int32) error
type Shutdown func() error
type OnAsset func(event assets.AssetEvent)
