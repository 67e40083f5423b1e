package opengl

import (
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

func TestEnumTablesAreComplete(t *testing.T) {
	for s := metadata.ScalarTypeFloat32; s <= metadata.ScalarTypeUByte; s++ {
		assert.Contains(t, scalarTypes, s, s.String())
	}
	for u := metadata.BufferUsageStaticDraw; u <= metadata.BufferUsageStreamDraw; u++ {
		assert.Contains(t, bufferUsages, u, u.String())
	}
	for p := metadata.PrimitiveTopologyPoints; p <= metadata.PrimitiveTopologyTriangleStrip; p++ {
		assert.Contains(t, topologies, p, p.String())
	}
	for f := metadata.BlendFactorZero; f <= metadata.BlendFactorOneMinusDstAlpha; f++ {
		assert.Contains(t, blendFactors, f)
	}
	for e := metadata.BlendEquationAdd; e <= metadata.BlendEquationMax; e++ {
		assert.Contains(t, blendEquations, e)
	}
	assert.Len(t, bufferTargets, 3)
	assert.Len(t, textureTargets, 4)
}

func TestScalarTypesMatchAttributePaths(t *testing.T) {
	assert.Equal(t, uint32(gl.FLOAT), scalarTypes[metadata.ScalarTypeFloat32])
	assert.Equal(t, uint32(gl.UNSIGNED_BYTE), scalarTypes[metadata.ScalarTypeUByte])
	assert.Equal(t, uint32(gl.TRANSFORM_FEEDBACK_PRIMITIVES_WRITTEN), queryTargets[metadata.QueryTargetPrimitivesWritten])
}

func TestClearMask(t *testing.T) {
	assert.Equal(t, uint32(gl.COLOR_BUFFER_BIT|gl.DEPTH_BUFFER_BIT), clearMask(metadata.ClearColour|metadata.ClearDepth))
	assert.Equal(t, uint32(gl.STENCIL_BUFFER_BIT), clearMask(metadata.ClearStencil))
	assert.Equal(t, uint32(0), clearMask(0))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "GL_INVALID_ENUM", ErrorString(gl.INVALID_ENUM, false))
	assert.Contains(t, ErrorString(gl.OUT_OF_MEMORY, true), "not enough memory")
	assert.Equal(t, "GL error 0x1", ErrorString(1, false))
}
