package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/renderer/metadata"
)

// RendererBackend is the boundary to the graphics context. Every method must be called on
// the thread that owns the context. Names returned by the Gen* methods are never 0; 0 is
// the "no object" name accepted by the Bind* methods to unbind.
type RendererBackend interface {
	Name() string

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target metadata.BufferTarget, id uint32)
	// BufferData (re)specifies the storage of the buffer bound to target. When data is nil
	// the storage is size bytes of undefined content.
	BufferData(target metadata.BufferTarget, size int, data []byte, usage metadata.BufferUsage)
	BufferSubData(target metadata.BufferTarget, offset int, data []byte)
	GetBufferSubData(target metadata.BufferTarget, offset int, out []byte)
	BindBufferBase(target metadata.BufferTarget, index uint32, id uint32)

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	VertexAttribPointer(slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr)
	VertexAttribIPointer(slot uint32, size int32, scalar metadata.ScalarType, stride int32, offset uintptr)
	EnableVertexAttribArray(slot uint32)
	VertexAttribDivisor(slot uint32, divisor uint32)

	BeginTransformFeedback(kind metadata.PrimitiveTopology)
	EndTransformFeedback()
	GenQuery() uint32
	DeleteQuery(id uint32)
	BeginQuery(target metadata.QueryTarget, id uint32)
	EndQuery(target metadata.QueryTarget)
	// QueryResult blocks until the result of the query is available.
	QueryResult(id uint32) uint32

	ActiveTexture(unit uint32)
	BindTexture(target metadata.TextureTarget, id uint32)
	SetBlend(mode metadata.BlendMode)

	DrawArrays(mode metadata.PrimitiveTopology, first int32, count int32)
	DrawArraysInstanced(mode metadata.PrimitiveTopology, first int32, count int32, instances int32)
	DrawElements(mode metadata.PrimitiveTopology, count int32)
	DrawElementsInstanced(mode metadata.PrimitiveTopology, count int32, instances int32)

	BindFramebuffer(id uint32)
	DrawBuffers(attachments []uint32)
	Viewport(v metadata.Viewport)
	ClearColor(r, g, b, a float32)
	Clear(flags metadata.ClearFlags)
	ClearRegion(x, y, width, height int32, colour mgl32.Vec4, drawBuffer int32)
}
