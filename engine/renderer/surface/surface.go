package surface

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/core"
	"github.com/spaghettifunk/tessera/engine/renderer"
	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// DefaultMaxTextureUnits is the texture unit count every implementation guarantees.
const DefaultMaxTextureUnits = 16

// Surface is a render target: a framebuffer, the attachments drawn to and a viewport.
// Framebuffer 0 is the window.
type Surface struct {
	backend         renderer.RendererBackend
	framebuffer     uint32
	drawBuffers     []uint32
	viewport        metadata.Viewport
	clearColour     mgl32.Vec4
	maxTextureUnits int
}

func New(backend renderer.RendererBackend, framebuffer uint32) *Surface {
	return &Surface{
		backend:         backend,
		framebuffer:     framebuffer,
		drawBuffers:     []uint32{0},
		maxTextureUnits: DefaultMaxTextureUnits,
	}
}

// SetMaxTextureUnits changes the unit count above which Draw warns.
func (s *Surface) SetMaxTextureUnits(n int) {
	if n > 0 {
		s.maxTextureUnits = n
	}
}

// Draw binds d and states and issues the draw call chosen by Plan. When selfBindShader is
// false the caller has already made the shader current.
func (s *Surface) Draw(d Drawable, mode metadata.PrimitiveTopology, states *RenderStates, selfBindShader bool) error {
	if states == nil || !states.Valid() {
		err := fmt.Errorf("func Draw - %s: render states without shader: %w", d.Name(), core.ErrInvalidArgument)
		core.LogWarn("%s", err)
		return err
	}
	if d.VertexArrayID() == 0 {
		err := fmt.Errorf("func Draw - %s: %w", d.Name(), core.ErrNotUploaded)
		core.LogWarn("%s", err)
		return err
	}

	s.backend.BindVertexArray(d.VertexArrayID())
	if selfBindShader {
		states.Shader.Use()
	}

	if len(states.Textures) > s.maxTextureUnits {
		core.LogWarn("%s binds %d textures, more than the %d guaranteed units", d.Name(), len(states.Textures), s.maxTextureUnits)
	}
	for unit, tex := range states.Textures {
		s.backend.ActiveTexture(uint32(unit))
		s.backend.BindTexture(tex.Target, tex.ID)
	}
	s.backend.SetBlend(states.Blend)
	states.Shader.SetMat4(states.Shader.UniformLocation(TransformUniform), states.Transform)

	Plan(d, mode).Issue(s.backend)
	s.backend.BindVertexArray(0)
	return nil
}

// SetViewport stores the viewport; it takes effect on UseViewport or Bind.
func (s *Surface) SetViewport(x, y, width, height int32) {
	s.viewport = metadata.Viewport{X: x, Y: y, Width: width, Height: height}
}

func (s *Surface) UseViewport() {
	s.backend.Viewport(s.viewport)
}

func (s *Surface) Viewport() metadata.Viewport {
	return s.viewport
}

func (s *Surface) Width() float32 {
	return float32(s.viewport.Width)
}

func (s *Surface) Height() float32 {
	return float32(s.viewport.Height)
}

// Aspect is width over height, 0 for an empty viewport.
func (s *Surface) Aspect() float32 {
	if s.viewport.Height == 0 {
		return 0
	}
	return s.Width() / s.Height()
}

// Projection is an orthographic projection mapping the viewport to clip space, origin at
// the top left.
func (s *Surface) Projection() mgl32.Mat4 {
	return mgl32.Ortho2D(0, s.Width(), s.Height(), 0)
}

func (s *Surface) SetClearColor(colour mgl32.Vec4) {
	s.clearColour = colour
	s.backend.ClearColor(colour.X(), colour.Y(), colour.Z(), colour.W())
}

func (s *Surface) ClearColour() mgl32.Vec4 {
	return s.clearColour
}

// Clear binds the surface and clears colour and depth.
func (s *Surface) Clear() {
	s.Bind()
	s.backend.Clear(metadata.ClearColour | metadata.ClearDepth)
}

// ClearRegion clears a rectangle of one colour attachment.
func (s *Surface) ClearRegion(x, y, width, height int32, colour mgl32.Vec4, drawBuffer int32) {
	s.Bind()
	s.backend.ClearRegion(x, y, width, height, colour, drawBuffer)
}

// Bind makes the surface the draw target.
func (s *Surface) Bind() {
	s.UseViewport()
	s.backend.BindFramebuffer(s.framebuffer)
	s.backend.DrawBuffers(s.drawBuffers)
}

// SetDrawBuffers selects the colour attachments fragment outputs go to.
func (s *Surface) SetDrawBuffers(attachments ...uint32) {
	s.drawBuffers = append(s.drawBuffers[:0], attachments...)
}

func (s *Surface) Framebuffer() uint32 {
	return s.framebuffer
}
