package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

var bufferTargets = map[metadata.BufferTarget]uint32{
	metadata.BufferTargetArray:             gl.ARRAY_BUFFER,
	metadata.BufferTargetElementArray:      gl.ELEMENT_ARRAY_BUFFER,
	metadata.BufferTargetTransformFeedback: gl.TRANSFORM_FEEDBACK_BUFFER,
}

var bufferUsages = map[metadata.BufferUsage]uint32{
	metadata.BufferUsageStaticDraw:  gl.STATIC_DRAW,
	metadata.BufferUsageDynamicDraw: gl.DYNAMIC_DRAW,
	metadata.BufferUsageStreamDraw:  gl.STREAM_DRAW,
}

var scalarTypes = map[metadata.ScalarType]uint32{
	metadata.ScalarTypeFloat32: gl.FLOAT,
	metadata.ScalarTypeUInt32:  gl.UNSIGNED_INT,
	metadata.ScalarTypeInt32:   gl.INT,
	metadata.ScalarTypeUByte:   gl.UNSIGNED_BYTE,
}

var topologies = map[metadata.PrimitiveTopology]uint32{
	metadata.PrimitiveTopologyPoints:        gl.POINTS,
	metadata.PrimitiveTopologyLines:         gl.LINES,
	metadata.PrimitiveTopologyLineStrip:     gl.LINE_STRIP,
	metadata.PrimitiveTopologyTriangles:     gl.TRIANGLES,
	metadata.PrimitiveTopologyTriangleStrip: gl.TRIANGLE_STRIP,
}

var queryTargets = map[metadata.QueryTarget]uint32{
	metadata.QueryTargetPrimitivesWritten: gl.TRANSFORM_FEEDBACK_PRIMITIVES_WRITTEN,
}

var textureTargets = map[metadata.TextureTarget]uint32{
	metadata.TextureTarget2D:      gl.TEXTURE_2D,
	metadata.TextureTarget2DArray: gl.TEXTURE_2D_ARRAY,
	metadata.TextureTargetCubeMap: gl.TEXTURE_CUBE_MAP,
	metadata.TextureTarget3D:      gl.TEXTURE_3D,
}

var blendFactors = map[metadata.BlendFactor]uint32{
	metadata.BlendFactorZero:             gl.ZERO,
	metadata.BlendFactorOne:              gl.ONE,
	metadata.BlendFactorSrcColor:         gl.SRC_COLOR,
	metadata.BlendFactorOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	metadata.BlendFactorDstColor:         gl.DST_COLOR,
	metadata.BlendFactorOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	metadata.BlendFactorSrcAlpha:         gl.SRC_ALPHA,
	metadata.BlendFactorOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	metadata.BlendFactorDstAlpha:         gl.DST_ALPHA,
	metadata.BlendFactorOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
}

var blendEquations = map[metadata.BlendEquation]uint32{
	metadata.BlendEquationAdd:             gl.FUNC_ADD,
	metadata.BlendEquationSubtract:        gl.FUNC_SUBTRACT,
	metadata.BlendEquationReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
	metadata.BlendEquationMin:             gl.MIN,
	metadata.BlendEquationMax:             gl.MAX,
}

func clearMask(flags metadata.ClearFlags) uint32 {
	var mask uint32
	if flags&metadata.ClearColour != 0 {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if flags&metadata.ClearDepth != 0 {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if flags&metadata.ClearStencil != 0 {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	return mask
}
