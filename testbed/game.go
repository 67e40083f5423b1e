package testbed

import (
	"fmt"
	"math"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine"
	"github.com/spaghettifunk/tessera/engine/assets"
	"github.com/spaghettifunk/tessera/engine/assets/loaders"
	"github.com/spaghettifunk/tessera/engine/core"
	tmath "github.com/spaghettifunk/tessera/engine/math"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/geometry"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
	"github.com/spaghettifunk/tessera/engine/renderer/surface"
)

const (
	fieldSide     = 8
	particleCount = 256
	clickSound    = "sounds/click.wav"
)

type quadVertex struct {
	Position [2]float32
	UV       [2]float32
}

type fieldVertex struct {
	Position [2]float32
}

// fieldInstance matches the ubyte4 tint attribute, which takes four bytes per element.
type fieldInstance struct {
	Offset [2]float32
	Colour [4]uint8
	_      [12]byte
}

type particle struct {
	Position [2]float32
	Velocity [2]float32
}

type TestGame struct {
	*engine.Game
	build ProgramBuilder
}

type gameState struct {
	events *core.Observer[core.Event]
	rng    *tmath.Random
	time   float64
	aspect float32

	programs map[string]Program

	quad      *geometry.Mesh[quadVertex, geometry.NoInstance]
	field     *geometry.Mesh[fieldVertex, fieldInstance]
	particles *geometry.Mesh[particle, geometry.NoInstance]
	feedback  *geometry.Mesh[particle, geometry.NoInstance]
}

// NewTestGame creates the demo. build links its shaders; nil uses HeadlessPrograms.
func NewTestGame(build ProgramBuilder) *TestGame {
	if build == nil {
		build = HeadlessPrograms
	}
	tg := &TestGame{
		build: build,
		Game: &engine.Game{
			State: &gameState{
				rng:      tmath.NewRandom(1),
				programs: make(map[string]Program),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	tg.FnOnAsset = tg.OnAsset

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Systems == nil {
		return fmt.Errorf("the engine is not yet initialized with all the systems")
	}
	state := g.state()
	state.events = core.NewObserver(g.Systems.Events, 0)
	g.Systems.Surface.SetClearColor(mgl32.Vec4{0.08, 0.08, 0.12, 1})

	for _, name := range []string{programQuad, programField, programAdvance, programParticles} {
		if err := g.loadProgram(name); err != nil {
			return err
		}
	}
	if err := g.buildQuad(); err != nil {
		return err
	}
	if err := g.buildField(); err != nil {
		return err
	}
	return g.buildParticles()
}

func (g *TestGame) loadProgram(name string) error {
	if g.Systems.Assets == nil {
		return fmt.Errorf("program %s needs the assets directory: %w", name, core.ErrInvalidArgument)
	}
	src, err := g.Systems.Assets.LoadProgram(name)
	if err != nil {
		return err
	}
	return g.replaceProgram(g.Systems.Backend, name, src)
}

func (g *TestGame) replaceProgram(backend renderer.RendererBackend, name string, src *loaders.ShaderSources) error {
	p, err := g.build(backend, src, feedbackVaryings[name])
	if err != nil {
		core.LogError("failed to build program %s: %s", name, err)
		return err
	}
	state := g.state()
	if old, ok := state.programs[name]; ok {
		old.Delete()
	}
	state.programs[name] = p
	return nil
}

func (g *TestGame) buildQuad() error {
	schema := geometry.NewSchema()
	if err := schema.AddFloat(2, false); err != nil {
		return err
	}
	if err := schema.AddFloat(2, false); err != nil {
		return err
	}
	quad := geometry.NewMesh[quadVertex, geometry.NoInstance](g.Systems.Backend, schema, geometry.WithName("quad"))
	if err := quad.PushVertices(
		quadVertex{Position: [2]float32{-0.25, -0.25}, UV: [2]float32{0, 0}},
		quadVertex{Position: [2]float32{0.25, -0.25}, UV: [2]float32{1, 0}},
		quadVertex{Position: [2]float32{0.25, 0.25}, UV: [2]float32{1, 1}},
		quadVertex{Position: [2]float32{-0.25, 0.25}, UV: [2]float32{0, 1}},
	); err != nil {
		return err
	}
	if err := quad.PushIndices(0, 1, 2, 2, 3, 0); err != nil {
		return err
	}
	if err := quad.Upload(); err != nil {
		return err
	}
	g.state().quad = quad
	return nil
}

func (g *TestGame) buildField() error {
	schema := geometry.NewSchema()
	if err := schema.AddFloat(2, false); err != nil {
		return err
	}
	if err := schema.AddFloat(2, true); err != nil {
		return err
	}
	if err := schema.AddUbyte(4, true); err != nil {
		return err
	}
	field := geometry.NewMesh[fieldVertex, fieldInstance](g.Systems.Backend, schema, geometry.WithName("field"))
	if err := field.PushVertices(
		fieldVertex{Position: [2]float32{0, 0.03}},
		fieldVertex{Position: [2]float32{-0.03, -0.03}},
		fieldVertex{Position: [2]float32{0.03, -0.03}},
	); err != nil {
		return err
	}
	state := g.state()
	for y := 0; y < fieldSide; y++ {
		for x := 0; x < fieldSide; x++ {
			if err := field.PushInstance(fieldInstance{
				Offset: [2]float32{-0.9 + float32(x)*0.1, -0.9 + float32(y)*0.1},
				Colour: [4]uint8{uint8(state.rng.IntInRange(64, 255)), uint8(state.rng.IntInRange(64, 255)), 200, 255},
			}); err != nil {
				return err
			}
		}
	}
	if err := field.Upload(); err != nil {
		return err
	}
	state.field = field
	return nil
}

func (g *TestGame) spawnParticles(m *geometry.Mesh[particle, geometry.NoInstance]) error {
	rng := g.state().rng
	for i := 0; i < particleCount; i++ {
		if err := m.PushVertex(particle{
			Position: [2]float32{rng.FloatInRange(-0.2, 0.2), rng.FloatInRange(0.4, 0.6)},
			Velocity: [2]float32{rng.FloatInRange(-0.5, 0.5), rng.FloatInRange(-0.1, 0.6)},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) buildParticles() error {
	schema := geometry.NewSchema()
	if err := schema.AddFloat(2, false); err != nil {
		return err
	}
	if err := schema.AddFloat(2, false); err != nil {
		return err
	}
	state := g.state()
	particles := geometry.NewMesh[particle, geometry.NoInstance](g.Systems.Backend, schema,
		geometry.WithName("particles"), geometry.WithUsage(metadata.BufferUsageStreamDraw))
	if err := g.spawnParticles(particles); err != nil {
		return err
	}
	if err := particles.Upload(); err != nil {
		return err
	}

	feedback := geometry.NewMesh[particle, geometry.NoInstance](g.Systems.Backend, schema.Clone(),
		geometry.WithName("particles-feedback"), geometry.AsFeedback())
	if err := feedback.InitFeedback(particleCount); err != nil {
		return err
	}
	state.particles = particles
	state.feedback = feedback
	return nil
}

// resetParticles respawns every particle through the staging path.
func (g *TestGame) resetParticles() error {
	p := g.state().particles
	p.Clean()
	if err := g.spawnParticles(p); err != nil {
		return err
	}
	return p.UpdateAllVertexData()
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	state.time += deltaTime

	for {
		ev, ok := state.events.Observe()
		if !ok {
			break
		}
		if ev.Code != core.EVENT_CODE_KEY_PRESSED {
			continue
		}
		switch core.KeyCode(ev.Data.Data.U16[0]) {
		case core.KEY_SPACE:
			pitch := float64(state.rng.FloatInRange(0.8, 1.2))
			if err := g.Systems.PlaySound(clickSound, pitch, 0.8, false); err != nil {
				core.LogWarn("click: %s", err)
			}
		case core.KEY_R:
			if err := g.resetParticles(); err != nil {
				return err
			}
		}
	}

	// pulse the first row of the field
	insts, err := state.field.Instances()
	if err != nil {
		return err
	}
	for x := uint32(0); x < fieldSide; x++ {
		inst := insts[x]
		inst.Offset[1] = -0.9 + 0.02*float32(math.Sin(state.time*3+float64(x)))
		if err := state.field.SetInstance(x, inst); err != nil {
			return err
		}
	}
	return state.field.UpdateAllInstanceData()
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.state()
	s := g.Systems.Surface
	projection := mgl32.Ortho2D(-state.aspect, state.aspect, -1, 1)

	quad := surface.NewRenderStates(state.programs[programQuad])
	quad.Transform = projection.Mul4(mgl32.HomogRotate3DZ(float32(state.time)))
	if err := s.Draw(state.quad, metadata.PrimitiveTopologyTriangles, &quad, true); err != nil {
		return err
	}

	field := surface.NewRenderStates(state.programs[programField])
	field.Transform = projection
	if err := s.Draw(state.field, metadata.PrimitiveTopologyTriangles, &field, true); err != nil {
		return err
	}

	// advance the particles on the GPU, then draw what was captured. The program cannot
	// change while capturing, so it is bound before the capture starts.
	advance := surface.NewRenderStates(state.programs[programAdvance])
	advance.Shader.Use()
	if err := state.feedback.StartCapture(metadata.PrimitiveTopologyPoints); err != nil {
		return err
	}
	if err := s.Draw(state.particles, metadata.PrimitiveTopologyPoints, &advance, false); err != nil {
		_, _ = state.feedback.EndCapture()
		return err
	}
	if _, err := state.feedback.EndCapture(); err != nil {
		return err
	}

	points := surface.NewRenderStates(state.programs[programParticles])
	points.Transform = projection
	points.Blend = metadata.BlendAdditive
	if err := s.Draw(state.feedback, metadata.PrimitiveTopologyPoints, &points, true); err != nil {
		return err
	}

	// the captured state is the input of the next frame
	next, err := state.feedback.ReadVertices(0, state.feedback.CapturedVertexCount())
	if err != nil {
		return err
	}
	return state.particles.UpdateVertexRange(0, uint32(len(next)), next)
}

func (g *TestGame) OnResize(width int32, height int32) error {
	g.state().aspect = float32(width) / float32(height)
	return nil
}

// OnAsset rebuilds a program whose sources changed. Sources are read here, off the render
// thread; compilation is queued for it.
func (g *TestGame) OnAsset(ev assets.AssetEvent) {
	if ev.Op != assets.AssetChanged || !ev.Asset.Type.IsShader() {
		return
	}
	base := path.Base(ev.Asset.Path)
	name := strings.TrimSuffix(base, path.Ext(base))
	src, err := g.Systems.Assets.LoadProgram(name)
	if err != nil {
		core.LogWarn("not reloading %s: %s", name, err)
		return
	}
	err = g.Systems.Queue.Submit(func(backend renderer.RendererBackend) {
		if _, known := g.state().programs[name]; !known {
			return
		}
		if err := g.replaceProgram(backend, name, src); err == nil {
			core.LogInfo("reloaded program %s", name)
		}
	})
	if err != nil {
		core.LogWarn("not reloading %s: %s", name, err)
	}
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	if state.quad != nil {
		state.quad.Remove()
	}
	if state.field != nil {
		state.field.Remove()
	}
	if state.particles != nil {
		state.particles.Remove()
	}
	if state.feedback != nil {
		state.feedback.Remove()
	}
	for name, p := range state.programs {
		p.Delete()
		delete(state.programs, name)
	}
	if state.events != nil {
		state.events.Unsubscribe()
	}
	return nil
}
