package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/config"
	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer/headless"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func newHeadlessDemo(t *testing.T) (*engine.Engine, *headless.Backend, *TestGame) {
	t.Helper()
	cfg := config.Default()
	cfg.Renderer.Backend = config.BackendHeadless
	cfg.Assets.Dir = "../assets"
	cfg.Assets.Watch = false

	backend := headless.New()
	game := NewTestGame(nil)
	e, err := engine.New(game.Game, cfg, backend, nil)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	return e, backend, game
}

func TestDemoFrame(t *testing.T) {
	e, backend, game := newHeadlessDemo(t)
	state := game.state()
	assert.Equal(t, uint32(24), state.field.Schema().InstanceStride())
	assert.Equal(t, uint32(fieldSide*fieldSide), state.field.UploadedInstanceCount())
	advance, ok := state.programs[programAdvance].(*headless.Program)
	require.True(t, ok)
	assert.NotEmpty(t, advance.Varyings())

	require.NoError(t, e.RunFrames(2))
	assert.Empty(t, backend.Errors())

	draws := backend.Draws()
	require.Len(t, draws, 8)
	frame := draws[4:]

	assert.Equal(t, "DrawElements", frame[0].Call)
	assert.Equal(t, int32(6), frame[0].Count)

	assert.Equal(t, "DrawArraysInstanced", frame[1].Call)
	assert.Equal(t, int32(3), frame[1].Count)
	assert.Equal(t, int32(fieldSide*fieldSide), frame[1].Instances)

	assert.Equal(t, "DrawArrays", frame[2].Call)
	assert.Equal(t, metadata.PrimitiveTopologyPoints, frame[2].Mode)
	assert.Equal(t, int32(particleCount), frame[2].Count)
	assert.Equal(t, advance.ID(), frame[2].Program)
	assert.False(t, backend.FeedbackActive())

	// the captured particles are drawn from the feedback buffer
	assert.Equal(t, "DrawArrays", frame[3].Call)
	assert.Equal(t, int32(particleCount), frame[3].Count)
	assert.NotEqual(t, frame[2].VertexArray, frame[3].VertexArray)

	require.NoError(t, e.Shutdown())
	assert.Zero(t, backend.Live(metadata.ObjectKindBuffer))
	assert.Zero(t, backend.Live(metadata.ObjectKindVertexArray))
	assert.Zero(t, backend.Live(metadata.ObjectKindQuery))
}

func TestDemoKeys(t *testing.T) {
	e, backend, game := newHeadlessDemo(t)
	defer e.Shutdown()

	e.Systems().Input.ProcessKey(core.KEY_SPACE, true)
	e.Systems().Input.ProcessKey(core.KEY_R, true)
	require.NoError(t, e.RunFrames(1))
	assert.Empty(t, backend.Errors())
	assert.Equal(t, uint32(particleCount), game.state().particles.UploadedVertexCount())
}

func TestProgramsReloadThroughQueue(t *testing.T) {
	e, backend, game := newHeadlessDemo(t)
	defer e.Shutdown()

	before := game.state().programs[programQuad]
	game.OnAsset(assetChanged("shaders/quad.frag"))
	game.OnAsset(assetChanged("shaders/unknown.vert"))
	assert.Equal(t, 1, e.Systems().Queue.Pending())

	require.NoError(t, e.RunFrames(1))
	assert.NotSame(t, before, game.state().programs[programQuad])
	assert.Empty(t, backend.Errors())
}
