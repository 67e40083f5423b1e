package surface

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// TransformUniform is the uniform every shader receives the draw transform in.
const TransformUniform = "transform"

// Shader is a linked program that can be made current and receive matrix uniforms.
type Shader interface {
	Use()
	// UniformLocation returns -1 for unknown uniforms.
	UniformLocation(name string) int32
	SetMat4(location int32, m mgl32.Mat4)
}

/**
 * @brief Everything a draw needs besides the geometry. Textures are bound to the unit
 * matching their position in the list.
 */
type RenderStates struct {
	Shader    Shader
	Textures  []metadata.TextureBinding
	Blend     metadata.BlendMode
	Transform mgl32.Mat4
}

// NewRenderStates returns states with alpha blending and an identity transform.
func NewRenderStates(shader Shader) RenderStates {
	return RenderStates{
		Shader:    shader,
		Blend:     metadata.BlendAlpha,
		Transform: mgl32.Ident4(),
	}
}

// Valid reports whether the states can be drawn with.
func (s *RenderStates) Valid() bool {
	return s.Shader != nil
}
