package engine

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/headless"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

type countingGame struct {
	*Game
	updates, renders int
	resizes          [][2]int32
	assetEvents      atomic.Int32
	failRender       error
}

func newCountingGame() *countingGame {
	g := &countingGame{Game: &Game{}}
	g.FnInitialize = func() error { return nil }
	g.FnUpdate = func(float64) error { g.updates++; return nil }
	g.FnRender = func(float64) error { g.renders++; return g.failRender }
	g.FnOnResize = func(w, h int32) error { g.resizes = append(g.resizes, [2]int32{w, h}); return nil }
	g.FnOnAsset = func(assets.AssetEvent) { g.assetEvents.Add(1) }
	return g
}

func testConfig(t *testing.T, assetsDir string, watch bool) *config.Config {
	cfg := config.Default()
	cfg.Renderer.Backend = config.BackendHeadless
	cfg.Assets.Dir = assetsDir
	cfg.Assets.Watch = watch
	return cfg
}

func newTestEngine(t *testing.T, g *countingGame, cfg *config.Config) (*Engine, *headless.Backend) {
	t.Helper()
	backend := headless.New()
	e, err := New(g.Game, cfg, backend, nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, backend
}

func TestRunFrames(t *testing.T) {
	g := newCountingGame()
	e, backend := newTestEngine(t, g, testConfig(t, filepath.Join(t.TempDir(), "none"), false))

	assert.Nil(t, e.Systems().Assets)
	assert.Equal(t, [][2]int32{{1280, 720}}, g.resizes)

	ran := false
	require.NoError(t, e.Systems().Queue.Submit(func(renderer.RendererBackend) { ran = true }))

	require.NoError(t, e.RunFrames(3))
	assert.True(t, ran)
	assert.Equal(t, 3, g.updates)
	assert.Equal(t, 3, g.renders)
	assert.Equal(t, uint64(3), e.Frames())
	assert.Equal(t, 3, backend.Clears())
	assert.Equal(t, metadata.Viewport{Width: 1280, Height: 720}, backend.CurrentViewport())
}

func TestEventsDriveTheLoop(t *testing.T) {
	g := newCountingGame()
	e, backend := newTestEngine(t, g, testConfig(t, filepath.Join(t.TempDir(), "none"), false))

	resize := core.Event{Code: core.EVENT_CODE_RESIZED}
	resize.Data.Data.U16[0], resize.Data.Data.U16[1] = 800, 600
	e.Systems().Events.NotifyAll(resize)
	require.NoError(t, e.RunFrames(1))
	assert.Equal(t, [2]int32{800, 600}, g.resizes[len(g.resizes)-1])
	assert.Equal(t, metadata.Viewport{Width: 800, Height: 600}, backend.CurrentViewport())
	w, h := e.GetFramebufferSize()
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(600), h)

	e.Systems().Input.ProcessKey(core.KEY_ESCAPE, true)
	require.NoError(t, e.RunFrames(5))
	assert.Equal(t, 1, g.updates)

	e.Quit()
	require.NoError(t, e.RunFrames(5))
	assert.Equal(t, 1, g.updates)
}

func TestRenderFailureStopsTheLoop(t *testing.T) {
	g := newCountingGame()
	g.failRender = errors.New("boom")
	e, _ := newTestEngine(t, g, testConfig(t, filepath.Join(t.TempDir(), "none"), false))

	assert.ErrorIs(t, e.RunFrames(10), g.failRender)
	assert.Equal(t, 1, g.updates)
}

func TestRunRequiresInitialize(t *testing.T) {
	g := newCountingGame()
	e, err := New(g.Game, testConfig(t, t.TempDir(), false), headless.New(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Run(), core.ErrInvalidArgument)

	_, err = New(g.Game, nil, headless.New(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestAssetEventsReachTheGame(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shaders"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "quad.vert"), []byte("void main() {}"), 0o644))

	g := newCountingGame()
	e, _ := newTestEngine(t, g, testConfig(t, dir, true))
	require.NotNil(t, e.Systems().Assets)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaders", "quad.frag"), []byte("void main() {}"), 0o644))
	assert.Eventually(t, func() bool { return g.assetEvents.Load() > 0 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, e.Shutdown())
	assert.Equal(t, EngineStageShutdown, e.Stage())
	require.NoError(t, e.Shutdown())
}

func TestPlaySoundWithoutOutput(t *testing.T) {
	g := newCountingGame()
	e, _ := newTestEngine(t, g, testConfig(t, t.TempDir(), false))
	assert.NoError(t, e.Systems().PlaySound("sounds/click.wav", 1, 1, false))
}
